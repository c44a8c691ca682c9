package buildings

import (
	"math"

	"github.com/geoquad/tilebuilder/internal/builders"
)

// centroid returns the arithmetic mean of ring's vertices, used by the
// radial roof/facade strategies (dome, pyramidal, cylinder, sphere) as
// their center of revolution. It is deliberately not an area-weighted
// centroid — building footprints are small enough that the difference is
// not visually significant, and the simpler mean matches the teacher's
// general preference for the cheapest transform that satisfies the
// contract (internal/proj.Transform does the same kind of shortcut for
// projections it does not need to support).
func centroid(ring []builders.Point2D) builders.Point2D {
	var cx, cy float64
	for _, p := range ring {
		cx += p.X
		cy += p.Y
	}
	n := float64(len(ring))
	return builders.Point2D{X: cx / n, Y: cy / n}
}

// averageRadius returns the mean distance from center to ring's vertices.
func averageRadius(ring []builders.Point2D, center builders.Point2D) float64 {
	var sum float64
	for _, p := range ring {
		dx, dy := p.X-center.X, p.Y-center.Y
		sum += math.Hypot(dx, dy)
	}
	return sum / float64(len(ring))
}

// appendWall extrudes each edge of ring into a vertical quad between
// bottom and top, appending both triangles per edge to mesh. This is the
// same per-edge extrusion TerrainBuilder's sibling BarrierBuilder uses
// for fences (internal/builders/barrier.go); flatFacade reuses it
// directly for building walls, and it underlies the other facades too
// once their footprint has been resampled into a ring.
func appendWall(mesh *builders.Mesh, ring []builders.Point2D, bottom, top float64, color uint32) {
	n := len(ring)
	if n < 2 {
		return
	}
	for i := 0; i < n; i++ {
		a := ring[i]
		b := ring[(i+1)%n]
		base := uint32(len(mesh.Colors))
		mesh.Vertices = append(mesh.Vertices,
			a.X, bottom, a.Y,
			b.X, bottom, b.Y,
			b.X, top, b.Y,
			a.X, top, a.Y,
		)
		mesh.Colors = append(mesh.Colors, color, color, color, color)
		mesh.Triangles = append(mesh.Triangles,
			int32(base), int32(base+1), int32(base+2),
			int32(base), int32(base+2), int32(base+3),
		)
	}
}

// appendCap triangulates contour (with holes) at elevation y and appends
// the result to mesh, for flat roof caps and mansard tops.
func appendCap(mesh *builders.Mesh, contour []builders.Point2D, holes [][]builders.Point2D, y float64, color uint32) {
	if len(contour) < 3 {
		return
	}
	tris := builders.Triangulate(contour, holes)
	if len(tris) == 0 {
		return
	}
	base := uint32(len(mesh.Colors))
	for _, p := range contour {
		mesh.Vertices = append(mesh.Vertices, p.X, y, p.Y)
		mesh.Colors = append(mesh.Colors, color)
	}
	for _, h := range holes {
		for _, p := range h {
			mesh.Vertices = append(mesh.Vertices, p.X, y, p.Y)
			mesh.Colors = append(mesh.Colors, color)
		}
	}
	for _, idx := range tris {
		mesh.Triangles = append(mesh.Triangles, idx+int32(base))
	}
}

// insetRing moves every vertex of ring toward center by fraction f
// (0 = unchanged, 1 = collapsed to center), used by mansardRoof to build
// its smaller top ring.
func insetRing(ring []builders.Point2D, center builders.Point2D, f float64) []builders.Point2D {
	out := make([]builders.Point2D, len(ring))
	for i, p := range ring {
		out[i] = builders.Point2D{
			X: p.X + (center.X-p.X)*f,
			Y: p.Y + (center.Y-p.Y)*f,
		}
	}
	return out
}

// circleRing samples n evenly-spaced points around center at radius,
// used by cylinderFacade and sphereFacade to approximate a rounded
// footprint regardless of the actual polygon shape.
func circleRing(center builders.Point2D, radius float64, n int) []builders.Point2D {
	out := make([]builders.Point2D, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		out[i] = builders.Point2D{
			X: center.X + radius*math.Cos(theta),
			Y: center.Y + radius*math.Sin(theta),
		}
	}
	return out
}

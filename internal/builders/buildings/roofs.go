package buildings

import (
	"math"

	"github.com/geoquad/tilebuilder/internal/builders"
)

// noneRoof renders nothing: a flat-topped building with no roof cap at
// all, the cheapest of the five variants and the sensible default for
// footprints too small or irregular to roof convincingly.
type noneRoof struct{}

func (noneRoof) Build(*builders.MeshContext, *Polygon, float64, float64, uint32) error {
	return nil
}

// flatRoof caps the footprint with a single triangulated horizontal
// surface at minHeight, ignoring height entirely (a flat roof's "height"
// would just be a second, coincident cap).
type flatRoof struct{}

func (flatRoof) Build(mctx *builders.MeshContext, polygon *Polygon, _, minHeight float64, color uint32) error {
	contours, holes := polygon.projected()
	for _, c := range contours {
		appendCap(mctx.Mesh, c, holes, minHeight, color)
	}
	return nil
}

// pyramidalRoof fans every contour edge up to a single apex above the
// footprint's centroid, reaching minHeight+height.
type pyramidalRoof struct{}

func (pyramidalRoof) Build(mctx *builders.MeshContext, polygon *Polygon, height, minHeight float64, color uint32) error {
	contours, _ := polygon.projected()
	for _, ring := range contours {
		if len(ring) < 3 {
			continue
		}
		c := centroid(ring)
		apex := builders.Point2D{X: c.X, Y: c.Y}
		mesh := mctx.Mesh
		base := uint32(len(mesh.Colors))
		for _, p := range ring {
			mesh.Vertices = append(mesh.Vertices, p.X, minHeight, p.Y)
			mesh.Colors = append(mesh.Colors, color)
		}
		apexIdx := uint32(len(mesh.Colors))
		mesh.Vertices = append(mesh.Vertices, apex.X, minHeight+height, apex.Y)
		mesh.Colors = append(mesh.Colors, color)

		n := len(ring)
		for i := 0; i < n; i++ {
			next := (i + 1) % n
			mesh.Triangles = append(mesh.Triangles,
				int32(base)+int32(i), int32(base)+int32(next), int32(apexIdx),
			)
		}
	}
	return nil
}

// domeRoof approximates a hemisphere by stacking concentric rings that
// shrink toward the apex following a quarter-sine profile, rather than
// the single-apex cone pyramidalRoof uses — the extra rings are what
// read visually as "curved" instead of "pointed".
type domeRoof struct{}

const domeRings = 4

func (domeRoof) Build(mctx *builders.MeshContext, polygon *Polygon, height, minHeight float64, color uint32) error {
	contours, _ := polygon.projected()
	for _, ring := range contours {
		if len(ring) < 3 {
			continue
		}
		c := centroid(ring)
		r := averageRadius(ring, c)
		mesh := mctx.Mesh

		// Ring 0 is the footprint itself; each subsequent ring shrinks in
		// radius and rises in height following sin/cos of a quarter circle,
		// ring domeRings collapses to the apex point.
		levels := make([][]builders.Point2D, domeRings+1)
		levels[0] = ring
		for lvl := 1; lvl <= domeRings; lvl++ {
			if lvl == domeRings {
				levels[lvl] = []builders.Point2D{{X: c.X, Y: c.Y}}
				continue
			}
			angle := float64(lvl) / float64(domeRings) * math.Pi / 2
			levels[lvl] = circleRing(c, r*math.Cos(angle), len(ring))
		}

		for lvl := 0; lvl < domeRings; lvl++ {
			t0 := float64(lvl) / float64(domeRings)
			t1 := float64(lvl+1) / float64(domeRings)
			y0 := minHeight + height*math.Sin(t0*math.Pi/2)
			y1 := minHeight + height*math.Sin(t1*math.Pi/2)
			connectRings(mesh, levels[lvl], levels[lvl+1], y0, y1, color)
		}
	}
	return nil
}

// mansardRoof slants inward from the footprint to a smaller inset ring,
// then caps that inset ring flat — the classic two-stage mansard
// profile, using a fixed inset fraction since the pipeline does not
// carry a separate mansard-angle style property.
type mansardRoof struct{}

const mansardInset = 0.55

func (mansardRoof) Build(mctx *builders.MeshContext, polygon *Polygon, height, minHeight float64, color uint32) error {
	contours, _ := polygon.projected()
	for _, ring := range contours {
		if len(ring) < 3 {
			continue
		}
		c := centroid(ring)
		top := minHeight + height
		inset := insetRing(ring, c, mansardInset)

		mesh := mctx.Mesh
		connectRings(mesh, ring, inset, minHeight, top, color)
		appendCap(mesh, inset, nil, top, color)
	}
	return nil
}

// connectRings builds a quad strip between two rings of equal vertex
// count at two elevations, used by domeRoof (successive shrinking rings)
// and mansardRoof (footprint to inset ring).
func connectRings(mesh *builders.Mesh, lower, upper []builders.Point2D, lowerY, upperY float64, color uint32) {
	if len(lower) == 1 && len(upper) != 1 {
		connectRings(mesh, upper, lower, upperY, lowerY, color)
		return
	}
	if len(upper) == 1 {
		// collapsed to the apex point: fan instead of a quad strip.
		apex := upper[0]
		base := uint32(len(mesh.Colors))
		for _, p := range lower {
			mesh.Vertices = append(mesh.Vertices, p.X, lowerY, p.Y)
			mesh.Colors = append(mesh.Colors, color)
		}
		apexIdx := uint32(len(mesh.Colors))
		mesh.Vertices = append(mesh.Vertices, apex.X, upperY, apex.Y)
		mesh.Colors = append(mesh.Colors, color)
		n := len(lower)
		for i := 0; i < n; i++ {
			next := (i + 1) % n
			mesh.Triangles = append(mesh.Triangles, int32(base)+int32(i), int32(base)+int32(next), int32(apexIdx))
		}
		return
	}

	n := len(lower)
	if len(upper) != n {
		n = min(n, len(upper))
	}
	for i := 0; i < n; i++ {
		next := (i + 1) % n
		a, b := lower[i], lower[next]
		c, d := upper[i], upper[next]
		base := uint32(len(mesh.Colors))
		mesh.Vertices = append(mesh.Vertices,
			a.X, lowerY, a.Y,
			b.X, lowerY, b.Y,
			d.X, upperY, d.Y,
			c.X, upperY, c.Y,
		)
		mesh.Colors = append(mesh.Colors, color, color, color, color)
		mesh.Triangles = append(mesh.Triangles,
			int32(base), int32(base+1), int32(base+2),
			int32(base), int32(base+2), int32(base+3),
		)
	}
}

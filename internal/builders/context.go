// Package builders implements the tile-build orchestration from spec
// §4.4 (QuadKeyBuilder) and the shared per-tile/per-element context types
// every element builder (terrain, tree, barrier, building) is built
// against.
package builders

import (
	"github.com/geoquad/tilebuilder/internal/elevation"
	"github.com/geoquad/tilebuilder/internal/quadkey"
	"github.com/geoquad/tilebuilder/internal/stringtable"
	"github.com/geoquad/tilebuilder/internal/style"
)

// Point2D is a planar vertex used by Polygon before elevation/extrusion
// turns it into a Mesh's 3-D vertex triple.
type Point2D struct {
	X, Y float64
}

// Polygon is a contour set plus a hole set, per spec §3: each contour is
// a closed, non-self-intersecting ring; holes lie inside some contour.
// Winding direction distinguishes the two (model.IsClockwise): clockwise
// areas become Contours, counter-clockwise areas become Holes.
type Polygon struct {
	Contours [][]Point2D
	Holes    [][]Point2D
}

// AddContour appends a closed ring to the polygon's outer boundary.
func (p *Polygon) AddContour(ring []Point2D) {
	p.Contours = append(p.Contours, ring)
}

// AddHole appends a closed ring to the polygon's hole set.
func (p *Polygon) AddHole(ring []Point2D) {
	p.Holes = append(p.Holes, ring)
}

// Mesh is the output geometry from spec §3: |Vertices| must equal
// 3*|Colors|, and every Triangles index must land in [0, len(Colors)).
type Mesh struct {
	Name      string
	Vertices  []float64
	Triangles []int32
	Colors    []uint32
}

// IsEmpty reports whether the mesh has no vertices — the condition
// QuadKeyBuilder's wrapped meshCallback uses to suppress onMesh (spec
// Testable Property 4).
func (m *Mesh) IsEmpty() bool {
	return m == nil || len(m.Vertices) == 0
}

// MeshContext bundles a mesh under construction with the style that
// governs it. Ownership of Mesh belongs exclusively to the element
// builder that created it until it is handed to a BuilderContext's
// meshCallback.
type MeshContext struct {
	Mesh  *Mesh
	Style style.Style
}

// BuilderContext is constructed fresh for each QuadKeyBuilder.Build call
// and wraps every per-tile collaborator an element builder needs (spec
// §3's BuilderContext value type).
type BuilderContext struct {
	QuadKey       quadkey.QuadKey
	StyleProvider style.Provider
	EleProvider   elevation.Provider
	StringTable   *stringtable.Table

	// MeshCallback is already guarded/ordered by QuadKeyBuilder; element
	// builders just call it. The element callback itself (spec §6's
	// onElement) fires once per element from QuadKeyBuilder.Build's own
	// dispatch loop, before any builder sees the element, so it has no
	// business living on BuilderContext.
	MeshCallback func(*Mesh)
}

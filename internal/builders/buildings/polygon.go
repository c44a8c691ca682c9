// Package buildings implements BuildingBuilder (spec §4.5): the
// deepest subsystem in the pipeline, reconciling area- and
// relation-based polygon geometry into a single mesh via pluggable roof
// and facade strategies.
package buildings

import (
	"github.com/geoquad/tilebuilder/internal/builders"
	"github.com/geoquad/tilebuilder/internal/proj"
	"github.com/geoquad/tilebuilder/internal/quadkey"
)

// Polygon holds a building footprint's contours and holes in geographic
// coordinates (unlike builders.Polygon, which is already projected) —
// BuildingBuilder needs the raw GeoCoordinate values for its
// representative-point quirk and for ElevationProvider lookups, and only
// projects to meters right before handing geometry to a roof/facade
// strategy.
type Polygon struct {
	Contours [][]quadkey.GeoCoordinate
	Holes    [][]quadkey.GeoCoordinate
}

func (p *Polygon) AddContour(ring []quadkey.GeoCoordinate) {
	p.Contours = append(p.Contours, ring)
}

func (p *Polygon) AddHole(ring []quadkey.GeoCoordinate) {
	p.Holes = append(p.Holes, ring)
}

// RepresentativePoint preserves the original implementation's documented
// quirk (spec §4.5 step 1 / §9 "Representative-point choice"): rather
// than a centroid, it reuses the first two raw coordinate components of
// the footprint — which, expressed over this package's GeoCoordinate
// contours, is simply the first contour's first vertex.
func (p *Polygon) RepresentativePoint() quadkey.GeoCoordinate {
	if len(p.Contours) == 0 || len(p.Contours[0]) == 0 {
		return quadkey.GeoCoordinate{}
	}
	return p.Contours[0][0]
}

// projectRing converts a geographic ring to meters via Web Mercator, the
// same projection internal/proj already provides (adapted here from its
// role in the teacher's tile-coordinate pipeline to the building mesh's
// local planar geometry).
func projectRing(ring []quadkey.GeoCoordinate) []builders.Point2D {
	t, _ := proj.NewTransformer(proj.SRID4326, proj.SRID3857)
	out := make([]builders.Point2D, len(ring))
	for i, c := range ring {
		x, y := t.Transform(c.Lon, c.Lat)
		out[i] = builders.Point2D{X: x, Y: y}
	}
	return out
}

// projected returns the polygon's contours and holes projected to meters,
// ready for builders.Triangulate or direct wall extrusion.
func (p *Polygon) projected() (contours [][]builders.Point2D, holes [][]builders.Point2D) {
	for _, c := range p.Contours {
		contours = append(contours, projectRing(c))
	}
	for _, h := range p.Holes {
		holes = append(holes, projectRing(h))
	}
	return
}

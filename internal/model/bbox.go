package model

import (
	"github.com/geoquad/tilebuilder/internal/quadkey"
	"github.com/paulmach/orb"
)

// BoundingBox computes the bounding box of any Element variant, recursing
// into Relation members.
func BoundingBox(e Element) quadkey.BoundingBox {
	switch el := e.(type) {
	case *Node:
		return quadkey.BoundingBox{Min: el.Coordinate, Max: el.Coordinate}
	case *Way:
		return quadkey.BoundingBoxFromCoords(el.Coordinates)
	case *Area:
		return quadkey.BoundingBoxFromCoords(el.Coordinates)
	case *Relation:
		// Start from a deliberately invalid box so a relation with no
		// geometric members (or only other empty relations) reports an
		// invalid bbox rather than the zero-value point at (0,0).
		box := quadkey.BoundingBox{Min: quadkey.GeoCoordinate{Lat: 1, Lon: 1}, Max: quadkey.GeoCoordinate{Lat: -1, Lon: -1}}
		first := true
		for _, member := range el.Elements {
			mb := BoundingBox(member)
			if !mb.IsValid() {
				continue
			}
			if first {
				box = mb
				first = false
				continue
			}
			box.Expand(mb)
		}
		return box
	default:
		return quadkey.BoundingBox{}
	}
}

// toOrbRing converts a coordinate sequence (lat/lon) into an orb.Ring
// (lon/lat, orb's x/y convention) for winding-direction queries.
func toOrbRing(coords []quadkey.GeoCoordinate) orb.Ring {
	ring := make(orb.Ring, len(coords))
	for i, c := range coords {
		ring[i] = orb.Point{c.Lon, c.Lat}
	}
	return ring
}

// IsClockwise reports whether an Area's contour winds clockwise, using
// paulmach/orb's ring orientation primitive rather than a hand-rolled
// shoelace sum (see SPEC_FULL.md §3). Clockwise means an outer contour;
// counter-clockwise means a hole (spec §3, §4.5).
func IsClockwise(coords []quadkey.GeoCoordinate) bool {
	if len(coords) < 3 {
		return true
	}
	return toOrbRing(coords).Orientation() == orb.CW
}

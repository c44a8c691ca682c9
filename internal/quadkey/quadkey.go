// Package quadkey implements Bing-style quadtree tile addressing and the
// bounding-box conversions the tile-build pipeline needs.
package quadkey

import (
	"fmt"
	"math"
	"strings"
)

// GeoCoordinate is a point in WGS84 lat/lon space.
type GeoCoordinate struct {
	Lat float64
	Lon float64
}

// BoundingBox is an axis-aligned box in lat/lon space.
type BoundingBox struct {
	Min GeoCoordinate
	Max GeoCoordinate
}

// IsValid reports whether the box satisfies min.lat <= max.lat and
// min.lon <= max.lon.
func (b BoundingBox) IsValid() bool {
	return b.Min.Lat <= b.Max.Lat && b.Min.Lon <= b.Max.Lon
}

// Intersects reports whether two boxes overlap, including edge touches.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.Min.Lon <= o.Max.Lon && b.Max.Lon >= o.Min.Lon &&
		b.Min.Lat <= o.Max.Lat && b.Max.Lat >= o.Min.Lat
}

// Expand grows the box to include another box.
func (b *BoundingBox) Expand(o BoundingBox) {
	if o.Min.Lat < b.Min.Lat {
		b.Min.Lat = o.Min.Lat
	}
	if o.Min.Lon < b.Min.Lon {
		b.Min.Lon = o.Min.Lon
	}
	if o.Max.Lat > b.Max.Lat {
		b.Max.Lat = o.Max.Lat
	}
	if o.Max.Lon > b.Max.Lon {
		b.Max.Lon = o.Max.Lon
	}
}

// ExpandPoint grows the box to include a single coordinate.
func (b *BoundingBox) ExpandPoint(c GeoCoordinate) {
	b.Expand(BoundingBox{Min: c, Max: c})
}

// BoundingBoxFromCoords computes the bounding box of an ordered coordinate
// sequence. The returned box is the zero value if coords is empty.
func BoundingBoxFromCoords(coords []GeoCoordinate) BoundingBox {
	if len(coords) == 0 {
		return BoundingBox{}
	}
	box := BoundingBox{Min: coords[0], Max: coords[0]}
	for _, c := range coords[1:] {
		box.ExpandPoint(c)
	}
	return box
}

// LodRange is an inclusive level-of-detail interval.
type LodRange struct {
	Min int
	Max int
}

// IsValid reports whether Min <= Max.
func (r LodRange) IsValid() bool {
	return r.Min <= r.Max
}

// Contains reports whether lod falls within the range.
func (r LodRange) Contains(lod int) bool {
	return lod >= r.Min && lod <= r.Max
}

// QuadKey identifies a tile in a Bing-style quadtree: a square tile at
// (tileX, tileY) among 2^levelOfDetail tiles per axis.
type QuadKey struct {
	TileX         int32
	TileY         int32
	LevelOfDetail int32
}

// IsValid reports whether 0 <= tileX,tileY < 2^levelOfDetail.
func (q QuadKey) IsValid() bool {
	if q.LevelOfDetail < 0 || q.LevelOfDetail > 30 {
		return false
	}
	n := int32(1) << uint(q.LevelOfDetail)
	return q.TileX >= 0 && q.TileX < n && q.TileY >= 0 && q.TileY < n
}

// String renders the quadkey in z/x/y form, matching the teacher's
// expire.Tile.String convention.
func (q QuadKey) String() string {
	return fmt.Sprintf("%d/%d/%d", q.LevelOfDetail, q.TileX, q.TileY)
}

// Web Mercator latitude bounds, beyond which the projection is undefined.
const (
	maxMercatorLat = 85.0511287798
	minMercatorLat = -85.0511287798
)

// FromCoordinate computes the quadkey containing the given coordinate at
// the given level of detail, using the standard OSM/Bing slippy-map tile
// scheme.
func FromCoordinate(c GeoCoordinate, lod int) QuadKey {
	lat := c.Lat
	if lat > maxMercatorLat {
		lat = maxMercatorLat
	}
	if lat < minMercatorLat {
		lat = minMercatorLat
	}
	lon := c.Lon
	if lon < -180 {
		lon = -180
	}
	if lon > 180 {
		lon = 180
	}

	n := float64(int64(1) << uint(lod))

	x := int64((lon + 180.0) / 360.0 * n)
	if x >= int64(n) {
		x = int64(n) - 1
	}

	latRad := lat * math.Pi / 180.0
	y := int64((1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n)
	if y >= int64(n) {
		y = int64(n) - 1
	}
	if y < 0 {
		y = 0
	}

	return QuadKey{TileX: int32(x), TileY: int32(y), LevelOfDetail: int32(lod)}
}

// ToBoundingBox returns the geographic bounding box covered by a quadkey.
func (q QuadKey) ToBoundingBox() BoundingBox {
	n := float64(int64(1) << uint(q.LevelOfDetail))

	minLon := float64(q.TileX)/n*360.0 - 180.0
	maxLon := float64(q.TileX+1)/n*360.0 - 180.0

	maxLat := tileYToLat(float64(q.TileY), n)
	minLat := tileYToLat(float64(q.TileY+1), n)

	return BoundingBox{
		Min: GeoCoordinate{Lat: minLat, Lon: minLon},
		Max: GeoCoordinate{Lat: maxLat, Lon: maxLon},
	}
}

func tileYToLat(y, n float64) float64 {
	yFrac := 1.0 - 2.0*y/n
	return 180.0 / math.Pi * math.Atan(math.Sinh(math.Pi*yFrac))
}

// BoundingBoxToQuadKeys returns every quadkey at the given level of detail
// whose bounding box intersects bbox. This is the inverse of
// ToBoundingBox and is what ElementStore.Add uses to fan an element out to
// every tile it touches (spec Testable Property 1 and 2).
func BoundingBoxToQuadKeys(bbox BoundingBox, lod int) []QuadKey {
	if !bbox.IsValid() {
		return nil
	}

	topLeft := FromCoordinate(GeoCoordinate{Lat: bbox.Max.Lat, Lon: bbox.Min.Lon}, lod)
	bottomRight := FromCoordinate(GeoCoordinate{Lat: bbox.Min.Lat, Lon: bbox.Max.Lon}, lod)

	minX, maxX := topLeft.TileX, bottomRight.TileX
	minY, maxY := topLeft.TileY, bottomRight.TileY
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	if minY > maxY {
		minY, maxY = maxY, minY
	}

	keys := make([]QuadKey, 0, int(maxX-minX+1)*int(maxY-minY+1))
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			qk := QuadKey{TileX: x, TileY: y, LevelOfDetail: int32(lod)}
			if qk.ToBoundingBox().Intersects(bbox) {
				keys = append(keys, qk)
			}
		}
	}
	return keys
}

// Key renders a string key suitable for use as a map key or persistent
// store column value.
func (q QuadKey) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:%d:%d", q.LevelOfDetail, q.TileX, q.TileY)
	return b.String()
}

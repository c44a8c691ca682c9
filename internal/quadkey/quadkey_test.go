package quadkey

import "testing"

// TestRoundTrip checks Testable Property 1: for every quadkey q,
// BoundingBoxToQuadKeys(q.ToBoundingBox(), q.LevelOfDetail) contains q.
func TestRoundTrip(t *testing.T) {
	cases := []QuadKey{
		{TileX: 0, TileY: 0, LevelOfDetail: 1},
		{TileX: 1, TileY: 1, LevelOfDetail: 1},
		{TileX: 5, TileY: 12, LevelOfDetail: 4},
		{TileX: 0, TileY: 0, LevelOfDetail: 16},
		{TileX: 32768, TileY: 21845, LevelOfDetail: 16},
	}

	for _, q := range cases {
		box := q.ToBoundingBox()
		got := BoundingBoxToQuadKeys(box, int(q.LevelOfDetail))
		found := false
		for _, g := range got {
			if g == q {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("round-trip failed for %v: box %v did not yield it back (got %v)", q, box, got)
		}
	}
}

func TestQuadKeyIsValid(t *testing.T) {
	if !(QuadKey{TileX: 0, TileY: 0, LevelOfDetail: 0}).IsValid() {
		t.Fatal("lod 0 origin should be valid")
	}
	if (QuadKey{TileX: 4, TileY: 0, LevelOfDetail: 2}).IsValid() {
		t.Fatal("tileX 4 at lod 2 (max 4) should be invalid")
	}
}

func TestBoundingBoxIntersects(t *testing.T) {
	a := BoundingBox{Min: GeoCoordinate{Lat: 0, Lon: 0}, Max: GeoCoordinate{Lat: 10, Lon: 10}}
	b := BoundingBox{Min: GeoCoordinate{Lat: 5, Lon: 5}, Max: GeoCoordinate{Lat: 15, Lon: 15}}
	c := BoundingBox{Min: GeoCoordinate{Lat: 20, Lon: 20}, Max: GeoCoordinate{Lat: 30, Lon: 30}}

	if !a.Intersects(b) {
		t.Fatal("a and b should intersect")
	}
	if a.Intersects(c) {
		t.Fatal("a and c should not intersect")
	}
}

package elevation

import (
	"testing"

	"github.com/geoquad/tilebuilder/internal/quadkey"
)

func TestSelectorThreshold(t *testing.T) {
	srtm := NewSRTM(t.TempDir())
	sel := NewSelector(42, srtm)

	flatQK := quadkey.QuadKey{LevelOfDetail: 10}
	if _, ok := sel.For(flatQK).(Flat); !ok {
		t.Fatal("expected flat provider at or below threshold")
	}

	srtmQK := quadkey.QuadKey{LevelOfDetail: 43}
	if sel.For(srtmQK) != srtm {
		t.Fatal("expected srtm provider above threshold")
	}
}

func TestFlatElevationIsZero(t *testing.T) {
	var f Flat
	if got := f.Elevation(quadkey.GeoCoordinate{Lat: 10, Lon: 10}); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

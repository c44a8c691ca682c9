// Package elevation implements the two ElevationProvider variants from
// spec §4.2 (flat and SRTM) and the level-of-detail threshold that selects
// between them. The SRTM .hgt reader is a real but minimal implementation
// — spec §1 treats the SRTM file format itself as an external
// collaborator, so only the ElevationProvider contract and the selection
// boundary are load-bearing.
package elevation

import "github.com/geoquad/tilebuilder/internal/quadkey"

// Provider resolves ground elevation in meters for a coordinate, and can
// preload a region ahead of a batch of lookups.
//
// Preload is explicitly NOT thread-safe (spec §5): callers must serialize
// calls to Preload on a single Provider instance.
type Provider interface {
	Elevation(c quadkey.GeoCoordinate) float64
	Preload(bbox quadkey.BoundingBox) error
}

// Flat always reports sea level. It needs no preloading.
type Flat struct{}

func (Flat) Elevation(quadkey.GeoCoordinate) float64 { return 0 }
func (Flat) Preload(quadkey.BoundingBox) error       { return nil }

// Selector picks between a Flat and an SRTM provider by level of detail,
// per spec §4.2:
//
//	get_elevation_provider(qk) = if qk.lod <= threshold then flat else srtm
//
// The threshold is configurable (internal/config.Config.SrtmElevationLodStart),
// not a hardcoded constant, per spec's explicit requirement.
type Selector struct {
	Threshold int
	Flat      Provider
	Srtm      Provider
}

// NewSelector builds a Selector with the given threshold, a Flat provider
// and srtm as its SRTM provider (Flat if srtm is nil).
func NewSelector(threshold int, srtm Provider) *Selector {
	if srtm == nil {
		srtm = Flat{}
	}
	return &Selector{Threshold: threshold, Flat: Flat{}, Srtm: srtm}
}

// For returns the provider that should be used to build qk.
func (s *Selector) For(qk quadkey.QuadKey) Provider {
	if int(qk.LevelOfDetail) <= s.Threshold {
		return s.Flat
	}
	return s.Srtm
}

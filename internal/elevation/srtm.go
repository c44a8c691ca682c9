package elevation

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/geoquad/tilebuilder/internal/quadkey"
)

// SRTM reads NASA SRTM .hgt heightmap tiles: a square grid of big-endian
// int16 samples named by the integer lat/lon of its southwest corner
// (e.g. "N51E000.hgt"). Each Preload call loads every tile overlapping
// the given bounding box into an in-memory cache; Elevation does a
// nearest-sample lookup against whatever has been preloaded (no
// bilinear interpolation — the .hgt decoding itself is the external
// collaborator here per spec §1, only the ElevationProvider contract is
// load-bearing).
type SRTM struct {
	Dir string

	mu    sync.Mutex
	tiles map[string]*hgtTile
}

type hgtTile struct {
	size    int // samples per side
	samples []int16
}

// NewSRTM creates an SRTM provider rooted at a directory of .hgt files.
func NewSRTM(dir string) *SRTM {
	return &SRTM{Dir: dir, tiles: make(map[string]*hgtTile)}
}

// Preload loads every .hgt tile overlapping bbox. Not thread-safe (spec
// §5): callers must serialize Preload calls on one SRTM instance.
func (s *SRTM) Preload(bbox quadkey.BoundingBox) error {
	minLat, maxLat := int(math.Floor(bbox.Min.Lat)), int(math.Floor(bbox.Max.Lat))
	minLon, maxLon := int(math.Floor(bbox.Min.Lon)), int(math.Floor(bbox.Max.Lon))

	for lat := minLat; lat <= maxLat; lat++ {
		for lon := minLon; lon <= maxLon; lon++ {
			name := hgtName(lat, lon)
			if _, ok := s.tiles[name]; ok {
				continue
			}
			tile, err := loadHgtTile(filepath.Join(s.Dir, name))
			if err != nil {
				if os.IsNotExist(err) {
					continue // no coverage for this 1x1 degree cell
				}
				return fmt.Errorf("srtm: preload %s: %w", name, err)
			}
			s.tiles[name] = tile
		}
	}
	return nil
}

// Elevation returns the nearest sample for c, or 0 if its tile was never
// preloaded.
func (s *SRTM) Elevation(c quadkey.GeoCoordinate) float64 {
	lat := int(math.Floor(c.Lat))
	lon := int(math.Floor(c.Lon))
	name := hgtName(lat, lon)

	s.mu.Lock()
	tile, ok := s.tiles[name]
	s.mu.Unlock()
	if !ok {
		return 0
	}

	fracLat := c.Lat - float64(lat)
	fracLon := c.Lon - float64(lon)
	row := tile.size - 1 - int(math.Round(fracLat*float64(tile.size-1)))
	col := int(math.Round(fracLon * float64(tile.size-1)))
	if row < 0 {
		row = 0
	}
	if row >= tile.size {
		row = tile.size - 1
	}
	if col < 0 {
		col = 0
	}
	if col >= tile.size {
		col = tile.size - 1
	}

	v := tile.samples[row*tile.size+col]
	if v == -32768 { // SRTM void sentinel
		return 0
	}
	return float64(v)
}

func hgtName(lat, lon int) string {
	ns := "N"
	if lat < 0 {
		ns = "S"
		lat = -lat
	}
	ew := "E"
	if lon < 0 {
		ew = "W"
		lon = -lon
	}
	return fmt.Sprintf("%s%02d%s%03d.hgt", ns, lat, ew, lon)
}

func loadHgtTile(path string) (*hgtTile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// SRTM tiles are square grids of int16 samples; side length is
	// sqrt(len/2) (1201 for SRTM3, 3601 for SRTM1).
	n := len(data) / 2
	size := int(math.Round(math.Sqrt(float64(n))))
	if size*size != n {
		return nil, fmt.Errorf("srtm: %s: unexpected sample count %d", path, n)
	}

	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = int16(binary.BigEndian.Uint16(data[i*2:]))
	}
	return &hgtTile{size: size, samples: samples}, nil
}

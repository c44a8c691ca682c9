package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/geoquad/tilebuilder"
	"github.com/geoquad/tilebuilder/internal/config"
	"github.com/geoquad/tilebuilder/internal/logger"
	"github.com/geoquad/tilebuilder/internal/metrics"
	"github.com/geoquad/tilebuilder/internal/quadkey"
)

// startSystemMetrics runs a gopsutil-backed Collector for the lifetime of
// a subcommand. The returned func stops it; callers defer it.
func startSystemMetrics() func() {
	ctx, cancel := context.WithCancel(context.Background())
	collector := metrics.NewCollector(cfg.MetricsInterval, logger.Get())
	go collector.Start(ctx)
	return cancel
}

// toQuadKeyBBox converts a CLI-parsed BBox into the quadkey package's
// BoundingBox, which AddToInMemoryStoreBBox expects.
func toQuadKeyBBox(b *config.BBox) quadkey.BoundingBox {
	return quadkey.BoundingBox{
		Min: quadkey.GeoCoordinate{Lat: b.MinLat, Lon: b.MinLon},
		Max: quadkey.GeoCoordinate{Lat: b.MaxLat, Lon: b.MaxLon},
	}
}

// newApplication constructs the Application every subcommand shares,
// wiring onError to the same logger the rest of the CLI uses rather than
// a second independent error path.
func newApplication() *tilebuilder.Application {
	log := logger.Get()
	return tilebuilder.New(cfg.StringTablePath, cfg.DataDir, cfg.ElevationDir, func(message string) {
		log.Error("tilebuilder", zap.String("detail", message))
	})
}

// parseQuadKey parses "lod/x/y", the same form QuadKey.String renders.
func parseQuadKey(s string) (quadkey.QuadKey, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return quadkey.QuadKey{}, fmt.Errorf("quadkey must be lod/x/y, got %q", s)
	}
	lod, err := strconv.Atoi(parts[0])
	if err != nil {
		return quadkey.QuadKey{}, fmt.Errorf("invalid lod %q: %w", parts[0], err)
	}
	x, err := strconv.Atoi(parts[1])
	if err != nil {
		return quadkey.QuadKey{}, fmt.Errorf("invalid tile x %q: %w", parts[1], err)
	}
	y, err := strconv.Atoi(parts[2])
	if err != nil {
		return quadkey.QuadKey{}, fmt.Errorf("invalid tile y %q: %w", parts[2], err)
	}
	qk := quadkey.QuadKey{TileX: int32(x), TileY: int32(y), LevelOfDetail: int32(lod)}
	if !qk.IsValid() {
		return quadkey.QuadKey{}, fmt.Errorf("quadkey %q out of range for its level of detail", s)
	}
	return qk, nil
}

// parseLodRange parses "min-max" or a single "lod" (treated as min==max).
func parseLodRange(s string) (quadkey.LodRange, error) {
	parts := strings.SplitN(s, "-", 2)
	min, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return quadkey.LodRange{}, fmt.Errorf("invalid lod range %q: %w", s, err)
	}
	max := min
	if len(parts) == 2 {
		max, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return quadkey.LodRange{}, fmt.Errorf("invalid lod range %q: %w", s, err)
		}
	}
	r := quadkey.LodRange{Min: min, Max: max}
	if !r.IsValid() {
		return quadkey.LodRange{}, fmt.Errorf("lod range %q has min > max", s)
	}
	return r, nil
}

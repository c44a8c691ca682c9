package geostore

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/quadkey"
	"github.com/geoquad/tilebuilder/internal/style"
	"github.com/geoquad/tilebuilder/internal/tberrors"
)

// Ingestor parses a single source file, calling visit once per decoded
// element. Concrete implementations live in internal/shapefile and
// internal/osmxml; GeoStore dispatches to one by the source path's
// extension, the same way the teacher's main.go picks a pipeline stage
// by input format.
type Ingestor interface {
	Ingest(path string, visit func(model.Element) error) error
}

// GeoStore is the façade from spec §4.1: an ordered map of name to
// ElementStore, plus the ingestion sources that turn a file on disk into
// a stream of Elements for add().
type GeoStore struct {
	mu        sync.RWMutex
	names     []string
	stores    map[string]ElementStore
	ingestors map[string]Ingestor
}

// New creates an empty GeoStore.
func New() *GeoStore {
	return &GeoStore{
		stores:    make(map[string]ElementStore),
		ingestors: make(map[string]Ingestor),
	}
}

// RegisterStore adds or idempotently replaces the named store.
func (g *GeoStore) RegisterStore(name string, store ElementStore) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.stores[name]; !exists {
		g.names = append(g.names, name)
	}
	g.stores[name] = store
}

// RegisterIngestor binds an Ingestor to a lowercase file extension
// (including the leading dot, e.g. ".shp").
func (g *GeoStore) RegisterIngestor(ext string, ing Ingestor) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ingestors[strings.ToLower(ext)] = ing
}

func (g *GeoStore) store(name string) (ElementStore, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.stores[name]
	if !ok {
		return nil, tberrors.New(tberrors.StoreIOError, fmt.Sprintf("unregistered store %q", name))
	}
	return s, nil
}

func (g *GeoStore) ingestorFor(path string) (Ingestor, error) {
	ext := strings.ToLower(filepath.Ext(path))
	g.mu.RLock()
	defer g.mu.RUnlock()
	ing, ok := g.ingestors[ext]
	if !ok {
		return nil, tberrors.New(tberrors.UnsupportedShape, fmt.Sprintf("no ingestor registered for %q", ext))
	}
	return ing, nil
}

// styleCheck resolves element's style, surfacing StyleParseFailed if the
// provider itself errors. It does not filter on the result: whether an
// element "participates" is left to the element builders at build time
// (spec §4.4 step 3), exactly as documented for add().
func styleCheck(provider style.Provider, element model.Element, lod int) error {
	if provider == nil {
		return nil
	}
	if _, err := provider.ForElement(element, lod); err != nil {
		return tberrors.Wrap(tberrors.StyleParseFailed, "resolve style for element", err)
	}
	return nil
}

// AddSource ingests sourcePath into the named store across every LoD in
// lodRange, with no spatial restriction.
func (g *GeoStore) AddSource(ctx context.Context, name, sourcePath string, lodRange quadkey.LodRange, provider style.Provider) error {
	return g.addSourceFiltered(ctx, name, sourcePath, lodRange, provider, nil)
}

// AddSourceQuadKey restricts ingestion to elements whose bbox intersects
// qk's bbox, at qk's own LoD only.
func (g *GeoStore) AddSourceQuadKey(ctx context.Context, name, sourcePath string, qk quadkey.QuadKey, provider style.Provider) error {
	if !qk.IsValid() {
		return tberrors.New(tberrors.InvalidQuadKey, qk.String())
	}
	box := qk.ToBoundingBox()
	lodRange := quadkey.LodRange{Min: int(qk.LevelOfDetail), Max: int(qk.LevelOfDetail)}
	return g.addSourceFiltered(ctx, name, sourcePath, lodRange, provider, &box)
}

// AddSourceBBox restricts ingestion to elements whose bbox intersects
// bbox, across every LoD in lodRange.
func (g *GeoStore) AddSourceBBox(ctx context.Context, name, sourcePath string, bbox quadkey.BoundingBox, lodRange quadkey.LodRange, provider style.Provider) error {
	return g.addSourceFiltered(ctx, name, sourcePath, lodRange, provider, &bbox)
}

func (g *GeoStore) addSourceFiltered(ctx context.Context, name, sourcePath string, lodRange quadkey.LodRange, provider style.Provider, filter *quadkey.BoundingBox) error {
	if !lodRange.IsValid() {
		return tberrors.New(tberrors.InvalidLodRange, fmt.Sprintf("%d..%d", lodRange.Min, lodRange.Max))
	}
	s, err := g.store(name)
	if err != nil {
		return err
	}
	ing, err := g.ingestorFor(sourcePath)
	if err != nil {
		return err
	}

	return ing.Ingest(sourcePath, func(element model.Element) error {
		if filter != nil {
			box := model.BoundingBox(element)
			if !box.IsValid() || !box.Intersects(*filter) {
				return nil
			}
		}
		if err := styleCheck(provider, element, lodRange.Min); err != nil {
			return err
		}
		return s.Add(ctx, element, lodRange)
	})
}

// AddElement is the single-element variant: add(name, element, lod_range, style).
func (g *GeoStore) AddElement(ctx context.Context, name string, element model.Element, lodRange quadkey.LodRange, provider style.Provider) error {
	if !lodRange.IsValid() {
		return tberrors.New(tberrors.InvalidLodRange, fmt.Sprintf("%d..%d", lodRange.Min, lodRange.Max))
	}
	s, err := g.store(name)
	if err != nil {
		return err
	}
	if err := styleCheck(provider, element, lodRange.Min); err != nil {
		return err
	}
	return s.Add(ctx, element, lodRange)
}

// Search streams every element indexed under qk from the named store.
func (g *GeoStore) Search(ctx context.Context, name string, qk quadkey.QuadKey) ([]model.Element, error) {
	s, err := g.store(name)
	if err != nil {
		return nil, err
	}
	return s.Search(ctx, qk)
}

// HasData reports whether the named store has anything indexed under qk.
func (g *GeoStore) HasData(ctx context.Context, name string, qk quadkey.QuadKey) (bool, error) {
	s, err := g.store(name)
	if err != nil {
		return false, err
	}
	return s.HasData(ctx, qk)
}

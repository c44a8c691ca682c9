// Package tilebuilder is the public entry point for the tile-build
// pipeline (spec §6): construct an Application once, register
// stylesheets and data sources against it, then drive LoadQuadKey per
// tile. Every exported method runs its body under a single top-level
// error boundary (spec §7) that routes failures to the caller-supplied
// onError callback rather than letting them escape — the closest Go
// analogue of the source's single-catch-site propagation policy.
package tilebuilder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/geoquad/tilebuilder/internal/builders"
	"github.com/geoquad/tilebuilder/internal/builders/buildings"
	"github.com/geoquad/tilebuilder/internal/config"
	"github.com/geoquad/tilebuilder/internal/elevation"
	"github.com/geoquad/tilebuilder/internal/geostore"
	"github.com/geoquad/tilebuilder/internal/logger"
	"github.com/geoquad/tilebuilder/internal/metrics"
	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/osmxml"
	"github.com/geoquad/tilebuilder/internal/quadkey"
	"github.com/geoquad/tilebuilder/internal/shapefile"
	"github.com/geoquad/tilebuilder/internal/stringtable"
	"github.com/geoquad/tilebuilder/internal/style"
	"github.com/geoquad/tilebuilder/internal/tberrors"
)

// OnError is invoked once per failed operation with a human-readable
// message (spec §6 callback contract). It must not itself raise back
// into the Application.
type OnError func(message string)

const (
	memoryStoreName     = "memory"
	persistentStoreName = "persistent"
)

// Application bundles every collaborator the public API needs: the
// GeoStore facade, the QuadKeyBuilder orchestrator, the StyleProvider
// cache, the ElevationProvider selector, and the shared StringTable.
type Application struct {
	cfg     *config.Config
	onError OnError
	logger  *zap.Logger

	table      *stringtable.Table
	styleCache *style.Cache
	geoStore   *geostore.GeoStore
	qkBuilder  *builders.QuadKeyBuilder
	elevation  *elevation.Selector

	mu              sync.Mutex
	persistentStore *geostore.Persistent
	pgPool          *pgxpool.Pool
}

// New constructs the Application and registers its default stores and
// element builders (spec §6's new(stringPath, dataPath, elePath,
// onError)). dataPath is recorded as the configuration's DataDir and is
// not read afterwards: the persistent store is a PostgreSQL database
// reached through the configuration's connection settings, not files under
// dataPath, and shapefile/OSM-XML source paths are opened exactly as given.
func New(stringPath, dataPath, elePath string, onError OnError) *Application {
	cfg := config.DefaultConfig()
	cfg.StringTablePath = stringPath
	cfg.DataDir = dataPath
	cfg.ElevationDir = elePath

	table := stringtable.New()

	app := &Application{
		cfg:     cfg,
		onError: onError,
		logger:  logger.Get(),
		table:   table,
	}

	app.styleCache = style.NewCache(&style.DeclarativeLoader{Table: table})

	app.geoStore = geostore.New()
	app.geoStore.RegisterStore(memoryStoreName, geostore.NewInMemory())
	app.geoStore.RegisterIngestor(".shp", shapefile.Source{Table: table})
	app.geoStore.RegisterIngestor(".osm", osmxml.Source{Table: table})
	app.geoStore.RegisterIngestor(".xml", osmxml.Source{Table: table})

	app.qkBuilder = builders.New(app.geoStore, memoryStoreName)
	app.qkBuilder.RegisterElementBuilder("terrain", builders.NewTerrainBuilder)
	app.qkBuilder.RegisterElementBuilder("tree", builders.NewTreeBuilder)
	app.qkBuilder.RegisterElementBuilder("barrier", builders.NewBarrierBuilder)
	app.qkBuilder.RegisterElementBuilder("building", buildings.NewBuildingBuilder)

	app.elevation = elevation.NewSelector(cfg.SrtmElevationLodStart, elevation.NewSRTM(elePath))

	return app
}

// safeExecute runs fn under the top-level error boundary: a panic from
// fn (the closest Go equivalent of the source's thrown exception) is
// recovered and folded into the same error path, logged, and reported to
// onError exactly once (spec Testable Property 9). The error is also
// returned, so Go callers that want it directly still get it.
func (a *Application) safeExecute(op string, fn func() error) error {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s: panic: %v", op, r)
			}
		}()
		err = fn()
	}()

	if err != nil {
		a.logger.Error(op, zap.Error(err))
		if a.onError != nil {
			a.onError(op + ": " + err.Error())
		}
	}
	return err
}

// RegisterStylesheet forces style cache warmup for path (spec §6).
func (a *Application) RegisterStylesheet(path string) error {
	return a.safeExecute("register_stylesheet", func() error {
		_, err := a.styleCache.Get(path)
		return err
	})
}

// PreloadElevation blocks until qk's bounding box has been preloaded
// into whichever ElevationProvider serves that LoD (spec §4.2, §6). Not
// safe to call concurrently against the same underlying provider (spec
// §5's ElevationProvider.preload non-thread-safety carries through
// unchanged).
func (a *Application) PreloadElevation(qk quadkey.QuadKey) error {
	return a.safeExecute("preload_elevation", func() error {
		if !qk.IsValid() {
			return tberrors.New(tberrors.InvalidQuadKey, qk.String())
		}
		provider := a.elevation.For(qk)
		return provider.Preload(qk.ToBoundingBox())
	})
}

func (a *Application) ensurePersistentStore(ctx context.Context) (*geostore.Persistent, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.persistentStore != nil {
		return a.persistentStore, nil
	}

	pool, err := pgxpool.New(ctx, a.cfg.ConnectionString())
	if err != nil {
		return nil, tberrors.Wrap(tberrors.StoreIOError, "connect postgres", err)
	}
	store := geostore.NewPersistent(pool, a.cfg.DBSchema)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	a.geoStore.RegisterStore(persistentStoreName, store)
	a.persistentStore = store
	a.pgPool = pool
	return store, nil
}

// AddToPersistentStore ingests path into the on-disk store across every
// LoD in lodRange (spec §6).
func (a *Application) AddToPersistentStore(styleFile, path string, lodRange quadkey.LodRange) error {
	return a.safeExecute("add_to_persistent_store", func() error {
		ctx := context.Background()
		if _, err := a.ensurePersistentStore(ctx); err != nil {
			return err
		}
		provider, err := a.styleCache.Get(styleFile)
		if err != nil {
			return err
		}
		return a.geoStore.AddSource(ctx, persistentStoreName, path, lodRange, provider)
	})
}

// AddToPersistentStoreQuadKey ingests path into the on-disk store. The
// source left this overload empty; it is implemented here by analogy
// with the LodRange overload, treating qk as a degenerate LoD range of
// one level (LodRange{Min: qk.LevelOfDetail, Max: qk.LevelOfDetail}) and
// routing through the same AddSource path rather than the spatially
// restricted AddSourceQuadKey, which belongs to the distinct
// AddToInMemoryStoreQuadKey overload instead.
func (a *Application) AddToPersistentStoreQuadKey(styleFile, path string, qk quadkey.QuadKey) error {
	return a.safeExecute("add_to_persistent_store_quadkey", func() error {
		ctx := context.Background()
		if _, err := a.ensurePersistentStore(ctx); err != nil {
			return err
		}
		provider, err := a.styleCache.Get(styleFile)
		if err != nil {
			return err
		}
		lodRange := quadkey.LodRange{Min: int(qk.LevelOfDetail), Max: int(qk.LevelOfDetail)}
		return a.geoStore.AddSource(ctx, persistentStoreName, path, lodRange, provider)
	})
}

// AddToInMemoryStoreQuadKey ingests path into the in-memory store, one
// tile (spec §6's add_to_in_memory_store(styleFile, path, quadKey,
// onError)).
func (a *Application) AddToInMemoryStoreQuadKey(styleFile, path string, qk quadkey.QuadKey) error {
	return a.safeExecute("add_to_in_memory_store_quadkey", func() error {
		provider, err := a.styleCache.Get(styleFile)
		if err != nil {
			return err
		}
		return a.geoStore.AddSourceQuadKey(context.Background(), memoryStoreName, path, qk, provider)
	})
}

// AddToInMemoryStoreBBox ingests path into the in-memory store, within
// bbox across every LoD in lodRange.
func (a *Application) AddToInMemoryStoreBBox(styleFile, path string, bbox quadkey.BoundingBox, lodRange quadkey.LodRange) error {
	return a.safeExecute("add_to_in_memory_store_bbox", func() error {
		provider, err := a.styleCache.Get(styleFile)
		if err != nil {
			return err
		}
		return a.geoStore.AddSourceBBox(context.Background(), memoryStoreName, path, bbox, lodRange, provider)
	})
}

// AddToInMemoryStore ingests path into the in-memory store everywhere,
// across every LoD in lodRange.
func (a *Application) AddToInMemoryStore(styleFile, path string, lodRange quadkey.LodRange) error {
	return a.safeExecute("add_to_in_memory_store", func() error {
		provider, err := a.styleCache.Get(styleFile)
		if err != nil {
			return err
		}
		return a.geoStore.AddSource(context.Background(), memoryStoreName, path, lodRange, provider)
	})
}

// AddInMemoryStore ingests a single, already-decoded element into the
// in-memory store (spec §6's add_in_memory_store(styleFile, element,
// lodRange, onError)).
func (a *Application) AddInMemoryStore(styleFile string, element model.Element, lodRange quadkey.LodRange) error {
	return a.safeExecute("add_in_memory_store", func() error {
		provider, err := a.styleCache.Get(styleFile)
		if err != nil {
			return err
		}
		return a.geoStore.AddElement(context.Background(), memoryStoreName, element, lodRange, provider)
	})
}

// HasData reports whether any registered store has data indexed under
// qk (spec §6). A lookup error against one store (e.g. the persistent
// store's connection having gone away) is treated as "no data" there
// rather than failing the whole call, since HasData is a boolean
// existence probe, not a fallible ingest operation.
func (a *Application) HasData(qk quadkey.QuadKey) bool {
	ctx := context.Background()
	if ok, err := a.geoStore.HasData(ctx, memoryStoreName, qk); err == nil && ok {
		return true
	}

	a.mu.Lock()
	hasPersistent := a.persistentStore != nil
	a.mu.Unlock()
	if !hasPersistent {
		return false
	}
	ok, err := a.geoStore.HasData(ctx, persistentStoreName, qk)
	return err == nil && ok
}

// LoadQuadKey runs the full per-tile pipeline for qk against the
// in-memory store (spec §6): resolve styleFile's StyleProvider, pick the
// LoD-appropriate ElevationProvider, and drive QuadKeyBuilder.Build.
func (a *Application) LoadQuadKey(
	styleFile string,
	qk quadkey.QuadKey,
	onMesh func(*builders.Mesh),
	onElement func(model.Element),
) error {
	return a.safeExecute("load_quadkey", func() error {
		buildID := logger.NewBuildID()
		log := logger.WithBuildID(buildID)

		if !qk.IsValid() {
			return tberrors.New(tberrors.InvalidQuadKey, qk.String())
		}

		provider, err := a.styleCache.Get(styleFile)
		if err != nil {
			return err
		}
		eleProvider := a.elevation.For(qk)

		start := time.Now()
		log.Debug("load_quadkey starting", zap.String("quadkey", qk.String()))
		err = a.qkBuilder.Build(context.Background(), qk, provider, eleProvider, a.table, onMesh, onElement)
		metrics.ObserveTileBuild(time.Since(start).Seconds())
		if err != nil {
			log.Error("load_quadkey failed", zap.String("quadkey", qk.String()), zap.Error(err))
		} else {
			log.Debug("load_quadkey finished", zap.String("quadkey", qk.String()), zap.Duration("elapsed", time.Since(start)))
		}
		return err
	})
}

// GetStringID interns str against the shared StringTable (spec §6).
func (a *Application) GetStringID(str string) model.StringID {
	return a.table.GetID(str)
}

// Close releases the persistent store's connection pool, if one was ever
// opened.
func (a *Application) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pgPool != nil {
		a.pgPool.Close()
	}
	logger.Sync()
}

package builders

import (
	"context"
	"fmt"
	"sync"

	"github.com/geoquad/tilebuilder/internal/elevation"
	"github.com/geoquad/tilebuilder/internal/geostore"
	"github.com/geoquad/tilebuilder/internal/metrics"
	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/quadkey"
	"github.com/geoquad/tilebuilder/internal/stringtable"
	"github.com/geoquad/tilebuilder/internal/style"
)

// QuadKeyBuilder is the tile-build orchestrator from spec §4.4: it owns
// the registered element-builder factories and drives one Build call per
// quadkey against a GeoStore.
type QuadKeyBuilder struct {
	mu        sync.Mutex
	names     []string
	factories map[string]Factory

	geoStore  *geostore.GeoStore
	storeName string
}

// New creates a QuadKeyBuilder reading elements from the given named
// store in geoStore.
func New(geoStore *geostore.GeoStore, storeName string) *QuadKeyBuilder {
	return &QuadKeyBuilder{
		factories: make(map[string]Factory),
		geoStore:  geoStore,
		storeName: storeName,
	}
}

// RegisterElementBuilder adds or idempotently replaces the factory for a
// named layer. Registration order is preserved and determines both
// element-dispatch and Complete order (spec §4.4's ordering guarantees).
func (b *QuadKeyBuilder) RegisterElementBuilder(layerName string, factory Factory) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.factories[layerName]; !exists {
		b.names = append(b.names, layerName)
	}
	b.factories[layerName] = factory
}

// Build runs the full per-tile pipeline: construct a BuilderContext,
// instantiate every registered builder, stream the geo-store's elements
// for quadKey through each builder in registration order, then Complete
// each builder in that same order. The first error from dispatch or
// Complete is returned after every remaining Complete has still run
// (spec §4.4 step 5, best-effort cleanup before rethrowing).
func (b *QuadKeyBuilder) Build(
	ctx context.Context,
	qk quadkey.QuadKey,
	styleProvider style.Provider,
	eleProvider elevation.Provider,
	table *stringtable.Table,
	onMesh func(*Mesh),
	onElement func(model.Element),
) error {
	guardedOnMesh := func(m *Mesh) {
		if m.IsEmpty() { // spec Testable Property 4
			return
		}
		if onMesh != nil {
			onMesh(m)
		}
	}

	b.mu.Lock()
	names := append([]string(nil), b.names...)
	instances := make([]ElementBuilder, 0, len(names))
	for _, name := range names {
		layer := name
		bctx := &BuilderContext{
			QuadKey:       qk,
			StyleProvider: styleProvider,
			EleProvider:   eleProvider,
			StringTable:   table,
			MeshCallback: func(m *Mesh) {
				if m.IsEmpty() {
					return
				}
				metrics.IncMeshBuilt(layer)
				guardedOnMesh(m)
			},
		}
		instances = append(instances, b.factories[name](bctx))
	}
	b.mu.Unlock()

	elements, err := b.geoStore.Search(ctx, b.storeName, qk)
	if err != nil {
		return err
	}

	var firstErr error
	for _, element := range elements {
		metrics.IncElementProcessed(elementKind(element))
		if onElement != nil {
			onElement(element)
		}
		for _, builder := range instances {
			if err := model.Dispatch(element, builder); err != nil {
				firstErr = fmt.Errorf("build %s: %w", qk, err)
				break
			}
		}
		if firstErr != nil {
			break
		}
	}

	for _, builder := range instances {
		if err := builder.Complete(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("complete %s: %w", qk, err)
		}
	}

	return firstErr
}

// elementKind names an Element variant for the elements-processed
// counter's label.
func elementKind(e model.Element) string {
	switch e.(type) {
	case *model.Node:
		return "node"
	case *model.Way:
		return "way"
	case *model.Area:
		return "area"
	case *model.Relation:
		return "relation"
	default:
		return "unknown"
	}
}

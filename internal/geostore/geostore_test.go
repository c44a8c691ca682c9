package geostore

import (
	"context"
	"testing"

	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/quadkey"
	"github.com/geoquad/tilebuilder/internal/stringtable"
	"github.com/geoquad/tilebuilder/internal/style"
)

type fakeIngestor struct {
	elements []model.Element
}

func (f *fakeIngestor) Ingest(_ string, visit func(model.Element) error) error {
	for _, e := range f.elements {
		if err := visit(e); err != nil {
			return err
		}
	}
	return nil
}

func TestGeoStoreAddSourceAndSearch(t *testing.T) {
	ctx := context.Background()
	table := stringtable.New()
	tags := model.NewTags(table, map[string]string{"building": "true"}, []string{"building"})
	node := &model.Node{ID: 1, TagList: tags, Coordinate: quadkey.GeoCoordinate{Lat: 1, Lon: 1}}

	g := New()
	g.RegisterStore("default", NewInMemory())
	g.RegisterIngestor(".fake", &fakeIngestor{elements: []model.Element{node}})

	provider := style.NewDeclarativeProvider(table, nil)
	lodRange := quadkey.LodRange{Min: 10, Max: 10}
	if err := g.AddSource(ctx, "default", "whatever.fake", lodRange, provider); err != nil {
		t.Fatal(err)
	}

	qk := quadkey.FromCoordinate(node.Coordinate, 10)
	has, err := g.HasData(ctx, "default", qk)
	if err != nil {
		t.Fatal(err)
	}
	if !has {
		t.Fatal("expected ingested node to be indexed at its quadkey")
	}
}

func TestGeoStoreUnregisteredStore(t *testing.T) {
	g := New()
	g.RegisterIngestor(".fake", &fakeIngestor{})
	err := g.AddSource(context.Background(), "missing", "x.fake", quadkey.LodRange{Min: 1, Max: 1}, nil)
	if err == nil {
		t.Fatal("expected error for unregistered store")
	}
}

func TestGeoStoreAddSourceQuadKeyFiltersOutside(t *testing.T) {
	ctx := context.Background()
	table := stringtable.New()
	tags := model.NewTags(table, nil, nil)
	near := &model.Node{ID: 1, TagList: tags, Coordinate: quadkey.GeoCoordinate{Lat: 1, Lon: 1}}
	far := &model.Node{ID: 2, TagList: tags, Coordinate: quadkey.GeoCoordinate{Lat: 80, Lon: -170}}

	g := New()
	g.RegisterStore("default", NewInMemory())
	g.RegisterIngestor(".fake", &fakeIngestor{elements: []model.Element{near, far}})

	qk := quadkey.FromCoordinate(near.Coordinate, 12)
	if err := g.AddSourceQuadKey(ctx, "default", "x.fake", qk, nil); err != nil {
		t.Fatal(err)
	}

	found, err := g.Search(ctx, "default", qk)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range found {
		if e.ElementID() == far.ElementID() {
			t.Fatal("element outside the requested quadkey must not be indexed")
		}
	}
}

package builders

import (
	"context"
	"testing"

	"github.com/geoquad/tilebuilder/internal/elevation"
	"github.com/geoquad/tilebuilder/internal/geostore"
	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/quadkey"
	"github.com/geoquad/tilebuilder/internal/stringtable"
	"github.com/geoquad/tilebuilder/internal/style"
)

func TestQuadKeyBuilderEmptyStoreProducesNothing(t *testing.T) {
	ctx := context.Background()
	gs := geostore.New()
	gs.RegisterStore("default", geostore.NewInMemory())

	qkb := New(gs, "default")
	qkb.RegisterElementBuilder("terrain", NewTerrainBuilder)

	table := stringtable.New()
	provider := style.NewDeclarativeProvider(table, nil)

	var meshes int
	err := qkb.Build(ctx, quadkey.QuadKey{TileX: 0, TileY: 0, LevelOfDetail: 1}, provider, elevation.Flat{}, table, func(*Mesh) {
		meshes++
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if meshes != 0 {
		t.Fatalf("expected no meshes for an empty store, got %d", meshes)
	}
}

func TestQuadKeyBuilderTerrainProducesMesh(t *testing.T) {
	ctx := context.Background()
	gs := geostore.New()
	gs.RegisterStore("default", geostore.NewInMemory())

	table := stringtable.New()
	rules := []style.Rule{
		{Match: map[string][]string{"natural": {"grassland"}}, Properties: map[string]string{"layer": "terrain"}},
	}
	provider := style.NewDeclarativeProvider(table, rules)

	tags := model.NewTags(table, map[string]string{"natural": "grassland"}, []string{"natural"})
	square := &model.Area{ID: 1, TagList: tags, Coordinates: []quadkey.GeoCoordinate{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.001}, {Lat: 0.001, Lon: 0.001}, {Lat: 0.001, Lon: 0},
	}}

	if err := gs.AddElement(ctx, "default", square, quadkey.LodRange{Min: 16, Max: 16}, provider); err != nil {
		t.Fatal(err)
	}

	qkb := New(gs, "default")
	qkb.RegisterElementBuilder("terrain", NewTerrainBuilder)

	qk := quadkey.FromCoordinate(quadkey.GeoCoordinate{Lat: 0.0005, Lon: 0.0005}, 16)

	var meshes []*Mesh
	err := qkb.Build(ctx, qk, provider, elevation.Flat{}, table, func(m *Mesh) {
		meshes = append(meshes, m)
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected exactly 1 terrain mesh, got %d", len(meshes))
	}
	if len(meshes[0].Vertices) == 0 {
		t.Fatal("expected non-empty mesh")
	}
}

package geostore

import (
	"context"
	"testing"

	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/quadkey"
	"github.com/geoquad/tilebuilder/internal/stringtable"
)

func TestInMemorySpatialCompleteness(t *testing.T) {
	ctx := context.Background()
	table := stringtable.New()
	tags := model.NewTags(table, map[string]string{"building": "true"}, []string{"building"})
	node := &model.Node{ID: 1, TagList: tags, Coordinate: quadkey.GeoCoordinate{Lat: 10, Lon: 10}}

	store := NewInMemory()
	lodRange := quadkey.LodRange{Min: 5, Max: 6}
	if err := store.Add(ctx, node, lodRange); err != nil {
		t.Fatal(err)
	}

	box := model.BoundingBox(node)
	for lod := lodRange.Min; lod <= lodRange.Max; lod++ {
		for _, qk := range quadkey.BoundingBoxToQuadKeys(box, lod) {
			has, err := store.HasData(ctx, qk)
			if err != nil {
				t.Fatal(err)
			}
			if !has {
				t.Fatalf("expected data at intersecting quadkey %s", qk)
			}
			found, err := store.Search(ctx, qk)
			if err != nil {
				t.Fatal(err)
			}
			if len(found) != 1 || found[0] != node {
				t.Fatalf("expected exactly the inserted node at %s, got %v", qk, found)
			}
		}
	}

	outsideLod := lodRange.Max + 1
	for _, qk := range quadkey.BoundingBoxToQuadKeys(box, outsideLod) {
		has, err := store.HasData(ctx, qk)
		if err != nil {
			t.Fatal(err)
		}
		if has {
			t.Fatalf("quadkey %s at lod outside range must not carry data", qk)
		}
	}
}

func TestInMemoryEmptyBBoxNotIndexed(t *testing.T) {
	ctx := context.Background()
	table := stringtable.New()
	tags := model.NewTags(table, nil, nil)
	relation := &model.Relation{ID: 1, TagList: tags} // no members, empty bbox

	store := NewInMemory()
	if err := store.Add(ctx, relation, quadkey.LodRange{Min: 1, Max: 1}); err != nil {
		t.Fatal(err)
	}
	if store.ElementsIndexed.Load() != 0 {
		t.Fatal("element with invalid bbox must not be indexed")
	}
}

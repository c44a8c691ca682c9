package buildings

import (
	"errors"
	"testing"

	"github.com/geoquad/tilebuilder/internal/builders"
	"github.com/geoquad/tilebuilder/internal/elevation"
	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/quadkey"
	"github.com/geoquad/tilebuilder/internal/stringtable"
	"github.com/geoquad/tilebuilder/internal/style"
	"github.com/geoquad/tilebuilder/internal/tberrors"
)

func newTestContext(table *stringtable.Table, provider style.Provider) *builders.BuilderContext {
	return &builders.BuilderContext{
		QuadKey:       quadkey.QuadKey{LevelOfDetail: 16},
		StyleProvider: provider,
		EleProvider:   elevation.Flat{},
		StringTable:   table,
		MeshCallback:  func(*builders.Mesh) {},
	}
}

func square() []quadkey.GeoCoordinate {
	return []quadkey.GeoCoordinate{
		{Lat: 0, Lon: 0}, {Lat: 0, Lon: 0.001}, {Lat: 0.001, Lon: 0.001}, {Lat: 0.001, Lon: 0},
	}
}

// TestBuildingHeightFallback exercises Testable Property 6: a missing
// height tag (style.GetValue returns 0) substitutes the documented
// default of 10 rather than producing a zero-height building.
func TestBuildingHeightFallback(t *testing.T) {
	table := stringtable.New()
	rules := []style.Rule{
		{Match: map[string][]string{"building": {"true"}}, Properties: map[string]string{
			"building":    "true",
			"roof-type":   "flat",
			"facade-type": "flat",
			// height intentionally absent
		}},
	}
	provider := style.NewDeclarativeProvider(table, rules)

	tags := model.NewTags(table, map[string]string{"building": "true"}, []string{"building"})
	area := &model.Area{ID: 1, TagList: tags, Coordinates: square()}

	ctx := newTestContext(table, provider)
	var captured []*builders.Mesh
	ctx.MeshCallback = func(m *builders.Mesh) {
		if !m.IsEmpty() {
			captured = append(captured, m)
		}
	}

	b := NewBuildingBuilder(ctx)
	if err := b.VisitArea(area); err != nil {
		t.Fatal(err)
	}
	if len(captured) != 1 {
		t.Fatalf("expected exactly one flushed mesh, got %d", len(captured))
	}

	// facade walls extrude from minHeight(0) to height(10): the tallest Y
	// component among the facade's vertices should be close to 10, proving
	// the 0 -> 10 fallback actually took effect rather than silently
	// producing a flat, zero-height extrusion.
	maxY := 0.0
	for i := 1; i < len(captured[0].Vertices); i += 3 {
		if captured[0].Vertices[i] > maxY {
			maxY = captured[0].Vertices[i]
		}
	}
	if maxY < 9.9 {
		t.Fatalf("expected a wall reaching close to height 10, tallest vertex Y was %v", maxY)
	}
}

// TestBuildingMultipolygonWindingSeparatesHoles exercises Testable
// Property 7: a multipolygon relation's clockwise member becomes an
// outer contour and its counter-clockwise member becomes a hole.
func TestBuildingMultipolygonWindingSeparatesHoles(t *testing.T) {
	table := stringtable.New()
	rules := []style.Rule{
		{Match: map[string][]string{"building": {"true"}}, Properties: map[string]string{
			"building":     "true",
			"multipolygon": "true",
			"roof-type":    "none",
			"facade-type":  "flat",
			"height":       "5",
		}},
	}
	provider := style.NewDeclarativeProvider(table, rules)

	outer := []quadkey.GeoCoordinate{ // clockwise per model.IsClockwise
		{Lat: 0, Lon: 0}, {Lat: 0.01, Lon: 0}, {Lat: 0.01, Lon: 0.01}, {Lat: 0, Lon: 0.01},
	}
	if !model.IsClockwise(outer) {
		t.Skip("fixture winding assumption changed")
	}
	inner := make([]quadkey.GeoCoordinate, len(outer))
	for i, c := range outer {
		inner[len(outer)-1-i] = quadkey.GeoCoordinate{Lat: c.Lat*0.4 + 0.003, Lon: c.Lon*0.4 + 0.003}
	}

	emptyTags := model.NewTags(table, nil, nil)
	outerArea := &model.Area{ID: 2, TagList: emptyTags, Coordinates: outer}
	innerArea := &model.Area{ID: 3, TagList: emptyTags, Coordinates: inner}

	relTags := model.NewTags(table, map[string]string{"building": "true"}, []string{"building"})
	relation := &model.Relation{ID: 1, TagList: relTags, Elements: []model.Element{outerArea, innerArea}}

	ctx := newTestContext(table, provider)
	var captured []*builders.Mesh
	ctx.MeshCallback = func(m *builders.Mesh) {
		if !m.IsEmpty() {
			captured = append(captured, m)
		}
	}

	b := &BuildingBuilder{ctx: ctx, roofs: defaultRoofRegistry, facades: defaultFacadeRegistry}
	if err := b.VisitRelation(relation); err != nil {
		t.Fatal(err)
	}
	if len(captured) != 1 {
		t.Fatalf("expected one flushed mesh, got %d", len(captured))
	}
}

// TestBuildingUnknownRoofType exercises the UnknownRoofType error kind
// (spec S5: an undeclared roof-type value must fail with a message
// containing "UnknownRoofType").
func TestBuildingUnknownRoofType(t *testing.T) {
	table := stringtable.New()
	rules := []style.Rule{
		{Match: map[string][]string{"building": {"true"}}, Properties: map[string]string{
			"building":    "true",
			"roof-type":   "turret", // not a registered variant
			"facade-type": "flat",
		}},
	}
	provider := style.NewDeclarativeProvider(table, rules)

	tags := model.NewTags(table, map[string]string{"building": "true"}, []string{"building"})
	area := &model.Area{ID: 1, TagList: tags, Coordinates: square()}

	ctx := newTestContext(table, provider)
	b := NewBuildingBuilder(ctx)

	err := b.VisitArea(area)
	if err == nil {
		t.Fatal("expected an UnknownRoofType error")
	}
	var tbErr *tberrors.Error
	if !errors.As(err, &tbErr) || tbErr.Kind != tberrors.UnknownRoofType {
		t.Fatalf("expected UnknownRoofType, got %v", err)
	}
}

// TestBuildingIgnoresNonBuildingArea confirms an Area without
// building=true never creates a mesh or polygon.
func TestBuildingIgnoresNonBuildingArea(t *testing.T) {
	table := stringtable.New()
	provider := style.NewDeclarativeProvider(table, nil)

	tags := model.NewTags(table, map[string]string{"natural": "water"}, []string{"natural"})
	area := &model.Area{ID: 9, TagList: tags, Coordinates: square()}

	ctx := newTestContext(table, provider)
	var captured []*builders.Mesh
	ctx.MeshCallback = func(m *builders.Mesh) {
		if !m.IsEmpty() {
			captured = append(captured, m)
		}
	}

	b := NewBuildingBuilder(ctx)
	if err := b.VisitArea(area); err != nil {
		t.Fatal(err)
	}
	if len(captured) != 0 {
		t.Fatalf("expected no mesh for a non-building area, got %d", len(captured))
	}
}

package tilebuilder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/geoquad/tilebuilder/internal/builders"
	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/quadkey"
)

const buildingStyle = `
rules:
  - match: {}
    properties:
      roof-type: "flat"
      facade-type: "flat"
      roof-color: "#808080"
      facade-color: "#a0a0a0"
  - match:
      building: ["*"]
    properties:
      building: "true"
`

func newTestApp(t *testing.T) (*Application, *[]string) {
	t.Helper()
	dir := t.TempDir()
	var errs []string
	app := New(
		filepath.Join(dir, "strings.tbl"),
		filepath.Join(dir, "data"),
		filepath.Join(dir, "srtm"),
		func(message string) { errs = append(errs, message) },
	)
	return app, &errs
}

func writeStyle(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "style.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write style: %v", err)
	}
	return path
}

func squareBuilding() *model.Area {
	return &model.Area{
		ID: 1,
		Coordinates: []quadkey.GeoCoordinate{
			{Lat: 0.0, Lon: 0.0},
			{Lat: 0.0001, Lon: 0.0},
			{Lat: 0.0001, Lon: 0.0001},
			{Lat: 0.0, Lon: 0.0001},
			{Lat: 0.0, Lon: 0.0},
		},
	}
}

// TestRegisterStylesheetCachesResult covers Testable Property 3: two
// calls to RegisterStylesheet against the same path must not reparse.
func TestRegisterStylesheetCachesResult(t *testing.T) {
	app, errs := newTestApp(t)
	path := writeStyle(t, buildingStyle)

	if err := app.RegisterStylesheet(path); err != nil {
		t.Fatalf("RegisterStylesheet: %v", err)
	}
	if err := app.RegisterStylesheet(path); err != nil {
		t.Fatalf("RegisterStylesheet (second call): %v", err)
	}
	if len(*errs) != 0 {
		t.Fatalf("unexpected onError calls: %v", *errs)
	}
}

// TestRegisterStylesheetMissingFileReportsError covers spec §7's
// onError-routing contract for a StyleNotReadable failure.
func TestRegisterStylesheetMissingFileReportsError(t *testing.T) {
	app, errs := newTestApp(t)

	if err := app.RegisterStylesheet("/nonexistent/style.yaml"); err == nil {
		t.Fatal("expected an error for a missing stylesheet")
	}
	if len(*errs) != 1 {
		t.Fatalf("expected exactly one onError call, got %d", len(*errs))
	}
}

// TestAddInMemoryStoreThenLoadQuadKeyBuildsBuildingMesh exercises the
// full pipeline (scenario S2-equivalent): intern an element, add it to
// the in-memory store, then build the quadkey that contains it and
// confirm the building layer emits a non-empty mesh.
func TestAddInMemoryStoreThenLoadQuadKeyBuildsBuildingMesh(t *testing.T) {
	app, errs := newTestApp(t)
	styleFile := writeStyle(t, buildingStyle)

	area := squareBuilding()
	area.TagList = model.NewTags(app.table, map[string]string{"building": "yes"}, []string{"building"})

	lodRange := quadkey.LodRange{Min: 15, Max: 15}
	if err := app.AddInMemoryStore(styleFile, area, lodRange); err != nil {
		t.Fatalf("AddInMemoryStore: %v", err)
	}

	qk := quadkey.FromCoordinate(quadkey.GeoCoordinate{Lat: 0.00005, Lon: 0.00005}, 15)
	if !app.HasData(qk) {
		t.Fatal("HasData is false after AddInMemoryStore for the containing quadkey")
	}

	var meshes []*builders.Mesh
	err := app.LoadQuadKey(styleFile, qk, func(m *builders.Mesh) {
		meshes = append(meshes, m)
	}, nil)
	if err != nil {
		t.Fatalf("LoadQuadKey: %v", err)
	}
	if len(*errs) != 0 {
		t.Fatalf("unexpected onError calls: %v", *errs)
	}

	found := false
	for _, m := range meshes {
		if strings.HasPrefix(m.Name, "building:") && !m.IsEmpty() {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a non-empty building mesh, got %d meshes: %+v", len(meshes), meshes)
	}
}

// TestLoadQuadKeyInvalidQuadKeyRoutesToOnError covers spec Testable
// Property 9: exactly one onError call, no partial mesh emitted.
func TestLoadQuadKeyInvalidQuadKeyRoutesToOnError(t *testing.T) {
	app, errs := newTestApp(t)
	styleFile := writeStyle(t, buildingStyle)

	bad := quadkey.QuadKey{TileX: 1 << 20, TileY: 0, LevelOfDetail: 5}

	meshCalled := false
	err := app.LoadQuadKey(styleFile, bad, func(*builders.Mesh) { meshCalled = true }, nil)
	if err == nil {
		t.Fatal("expected an error for an out-of-range quadkey")
	}
	if meshCalled {
		t.Fatal("onMesh must not fire for a failed build")
	}
	if len(*errs) != 1 {
		t.Fatalf("expected exactly one onError call, got %d: %v", len(*errs), *errs)
	}
}

// TestHasDataFalseForEmptyStore confirms HasData reports false before any
// data has been added, rather than panicking on an unregistered store.
func TestHasDataFalseForEmptyStore(t *testing.T) {
	app, _ := newTestApp(t)
	qk := quadkey.QuadKey{TileX: 0, TileY: 0, LevelOfDetail: 3}
	if app.HasData(qk) {
		t.Fatal("expected no data in a freshly constructed Application")
	}
}

// TestGetStringIDInternsConsistently confirms repeated interning of the
// same string returns the same id.
func TestGetStringIDInternsConsistently(t *testing.T) {
	app, _ := newTestApp(t)
	a := app.GetStringID("building")
	b := app.GetStringID("building")
	if a != b {
		t.Fatalf("GetStringID not stable: %v != %v", a, b)
	}
}

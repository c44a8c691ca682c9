package osmxml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/stringtable"
)

const sampleOSM = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
  <node id="1" lat="10.0" lon="20.0"><tag k="amenity" v="cafe"/></node>
  <node id="2" lat="10.1" lon="20.1"/>
  <node id="3" lat="10.0" lon="20.0"/>
  <way id="100">
    <nd ref="1"/>
    <nd ref="2"/>
    <nd ref="3"/>
    <tag k="highway" v="residential"/>
  </way>
  <relation id="200">
    <member type="way" ref="100" role="outer"/>
    <tag k="building" v="true"/>
    <tag k="multipolygon" v="true"/>
  </relation>
</osm>
`

func TestIngestOSMXML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.osm")
	if err := os.WriteFile(path, []byte(sampleOSM), 0o644); err != nil {
		t.Fatal(err)
	}

	table := stringtable.New()
	src := Source{Table: table}

	var nodes []*model.Node
	var ways []*model.Way
	var relations []*model.Relation
	err := src.Ingest(path, func(e model.Element) error {
		switch el := e.(type) {
		case *model.Node:
			nodes = append(nodes, el)
		case *model.Way:
			ways = append(ways, el)
		case *model.Relation:
			relations = append(relations, el)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(nodes))
	}
	if len(ways) != 1 {
		t.Fatalf("expected 1 way, got %d", len(ways))
	}
	if len(ways[0].Coordinates) != 3 {
		t.Fatalf("expected way to resolve 3 coordinates, got %d", len(ways[0].Coordinates))
	}
	if !ways[0].Closed {
		t.Fatal("expected way to be detected closed (first and last node coincide)")
	}
	if len(relations) != 1 {
		t.Fatalf("expected 1 relation, got %d", len(relations))
	}
	if len(relations[0].Elements) != 1 {
		t.Fatalf("expected relation to resolve its way member, got %d elements", len(relations[0].Elements))
	}
	if val, ok := nodes[0].TagList.Get(table, "amenity"); !ok || val != "cafe" {
		t.Fatalf("expected amenity=cafe tag on first node, got %q ok=%v", val, ok)
	}
}

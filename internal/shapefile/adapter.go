package shapefile

import (
	"path/filepath"
	"strings"

	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/quadkey"
	"github.com/geoquad/tilebuilder/internal/stringtable"
)

// ElementVisitor adapts the shapefile Visitor callbacks into model.Element
// values passed to a single sink function, so GeoStore's Ingestor can
// treat a shapefile the same way it treats an OSM XML source. Shapefiles
// carry no stable feature id, so ElementVisitor assigns a sequential one
// per emitted element (including one per ring of a Polygon relation).
type ElementVisitor struct {
	Sink func(model.Element) error

	nextID int64
}

func NewElementVisitor(sink func(model.Element) error) *ElementVisitor {
	return &ElementVisitor{Sink: sink, nextID: 1}
}

func (v *ElementVisitor) id() int64 {
	id := v.nextID
	v.nextID++
	return id
}

func (v *ElementVisitor) VisitNode(coordinate quadkey.GeoCoordinate, tags model.Tags) error {
	return v.Sink(&model.Node{ID: v.id(), TagList: tags, Coordinate: coordinate})
}

func (v *ElementVisitor) VisitWay(coordinates []quadkey.GeoCoordinate, tags model.Tags, isClosed bool) error {
	return v.Sink(&model.Way{ID: v.id(), TagList: tags, Coordinates: coordinates, Closed: isClosed})
}

func (v *ElementVisitor) VisitRelation(members []PolygonMember, tags model.Tags) error {
	relationID := v.id()
	elements := make([]model.Element, 0, len(members))
	for _, m := range members {
		elements = append(elements, &model.Area{ID: v.id(), TagList: tags, Coordinates: m.Coordinates})
	}
	return v.Sink(&model.Relation{ID: relationID, TagList: tags, Elements: elements})
}

// Source implements geostore.Ingestor by stripping path's extension
// (".shp") and parsing the matching .shp/.dbf pair.
type Source struct {
	Table *stringtable.Table
}

func (s Source) Ingest(path string, visit func(model.Element) error) error {
	basePath := strings.TrimSuffix(path, filepath.Ext(path))
	adapter := NewElementVisitor(visit)
	return Parse(basePath, s.Table, adapter)
}

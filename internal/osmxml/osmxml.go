// Package osmxml ingests OpenStreetMap XML (.osm) files into model.Element
// values, using paulmach/osm's osmxml scanner.
package osmxml

import (
	"context"
	"os"
	"sort"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"

	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/quadkey"
	"github.com/geoquad/tilebuilder/internal/stringtable"
	"github.com/geoquad/tilebuilder/internal/tberrors"
)

// Source implements geostore.Ingestor over an OSM XML file.
type Source struct {
	Table *stringtable.Table
}

// Ingest decodes path and calls visit once per Node, Way and Relation, in
// that order. Unlike the PBF extractor's two-pass design (pass 1 builds a
// node index, pass 2 resolves geometries against it), an XML file is
// small enough to hold entirely in memory: one scan collects every node
// and way, then relations are resolved against those maps, including
// relations that reference other relations already seen earlier in the
// same document.
func (s Source) Ingest(path string, visit func(model.Element) error) error {
	f, err := os.Open(path)
	if err != nil {
		return tberrors.Wrap(tberrors.ShapeReadFailed, path, err)
	}
	defer f.Close()

	scanner := osmxml.New(context.Background(), f)
	defer scanner.Close()

	nodes := make(map[osm.NodeID]*model.Node)
	ways := make(map[osm.WayID]*model.Way)
	var nodeOrder []osm.NodeID
	var wayOrder []osm.WayID
	var rawRelations []*osm.Relation
	nodeCoords := make(map[osm.NodeID]quadkey.GeoCoordinate)

	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			coord := quadkey.GeoCoordinate{Lat: o.Lat, Lon: o.Lon}
			nodeCoords[o.ID] = coord
			nodes[o.ID] = &model.Node{
				ID:         int64(o.ID),
				TagList:    tagsOf(s.Table, o.Tags),
				Coordinate: coord,
			}
			nodeOrder = append(nodeOrder, o.ID)
		case *osm.Way:
			coords := make([]quadkey.GeoCoordinate, 0, len(o.Nodes))
			for _, ref := range o.Nodes {
				if c, ok := nodeCoords[ref.ID]; ok {
					coords = append(coords, c)
				}
			}
			closed := len(coords) > 1 && coords[0] == coords[len(coords)-1]
			ways[o.ID] = &model.Way{
				ID:          int64(o.ID),
				TagList:     tagsOf(s.Table, o.Tags),
				Coordinates: coords,
				Closed:      closed,
			}
			wayOrder = append(wayOrder, o.ID)
		case *osm.Relation:
			rawRelations = append(rawRelations, o)
		}
	}
	if err := scanner.Err(); err != nil {
		return tberrors.Wrap(tberrors.ShapeReadFailed, path, err)
	}

	relations := make(map[osm.RelationID]*model.Relation)
	for _, r := range rawRelations {
		rel := &model.Relation{ID: int64(r.ID), TagList: tagsOf(s.Table, r.Tags)}
		for _, member := range r.Members {
			switch member.Type {
			case osm.TypeNode:
				if n, ok := nodes[osm.NodeID(member.Ref)]; ok {
					rel.Elements = append(rel.Elements, n)
				}
			case osm.TypeWay:
				if w, ok := ways[osm.WayID(member.Ref)]; ok {
					rel.Elements = append(rel.Elements, w)
				}
			case osm.TypeRelation:
				if inner, ok := relations[osm.RelationID(member.Ref)]; ok {
					rel.Elements = append(rel.Elements, inner)
				}
			}
		}
		relations[r.ID] = rel
	}

	for _, id := range nodeOrder {
		if err := visit(nodes[id]); err != nil {
			return err
		}
	}
	for _, id := range wayOrder {
		if err := visit(ways[id]); err != nil {
			return err
		}
	}
	for _, r := range rawRelations {
		if err := visit(relations[r.ID]); err != nil {
			return err
		}
	}
	return nil
}

func tagsOf(table *stringtable.Table, tags osm.Tags) model.Tags {
	raw := make(map[string]string, len(tags))
	keys := make([]string, 0, len(tags))
	for _, t := range tags {
		raw[t.Key] = t.Value
		keys = append(keys, t.Key)
	}
	// Sort keys so interning order (and therefore StringTable ids assigned
	// on first use) is deterministic across runs, per spec Testable
	// Property 5.
	sort.Strings(keys)
	return model.NewTags(table, raw, keys)
}

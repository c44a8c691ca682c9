package model

import "github.com/geoquad/tilebuilder/internal/quadkey"

// Element is the tagged sum type every ingestion source and builder
// operates on: Node, Way, Area, or Relation. Unlike the original
// Visitor-pattern source, elements do not double-dispatch into an
// Accept(visitor) method — callers type-switch (or call Dispatch, below)
// against the concrete variant, which is the idiomatic Go reading of a
// closed sum type (see DESIGN.md "Visitor duplication").
type Element interface {
	ElementID() int64
	ElementTags() Tags
}

// Node is a tagged point.
type Node struct {
	ID         int64
	TagList    Tags
	Coordinate quadkey.GeoCoordinate
}

func (n *Node) ElementID() int64  { return n.ID }
func (n *Node) ElementTags() Tags { return n.TagList }

// Way is a tagged open polyline.
type Way struct {
	ID          int64
	TagList     Tags
	Coordinates []quadkey.GeoCoordinate
	Closed      bool
}

func (w *Way) ElementID() int64  { return w.ID }
func (w *Way) ElementTags() Tags { return w.TagList }

// Area is a tagged, implicitly-closed polygon contour. Winding direction
// is significant: clockwise is an outer contour, counter-clockwise a
// hole (spec §3).
type Area struct {
	ID          int64
	TagList     Tags
	Coordinates []quadkey.GeoCoordinate
}

func (a *Area) ElementID() int64  { return a.ID }
func (a *Area) ElementTags() Tags { return a.TagList }

// Relation is a tagged composite of owned Elements.
type Relation struct {
	ID       int64
	TagList  Tags
	Elements []Element
}

func (r *Relation) ElementID() int64  { return r.ID }
func (r *Relation) ElementTags() Tags { return r.TagList }

// Visitor is implemented by element builders: one method per Element
// variant, matching spec §4.5's visit_node/visit_way/visit_area/
// visit_relation contract.
type Visitor interface {
	VisitNode(*Node) error
	VisitWay(*Way) error
	VisitArea(*Area) error
	VisitRelation(*Relation) error
}

// Dispatch type-switches e to the matching Visitor method. Relation
// recursion (forwarding member elements back through a Visitor) is left
// to each Visitor implementation to do explicitly, per spec §4.5's
// BuildingBuilder.visit_relation — Dispatch itself does not recurse into
// a Relation's members.
func Dispatch(e Element, v Visitor) error {
	switch el := e.(type) {
	case *Node:
		return v.VisitNode(el)
	case *Way:
		return v.VisitWay(el)
	case *Area:
		return v.VisitArea(el)
	case *Relation:
		return v.VisitRelation(el)
	default:
		return nil
	}
}

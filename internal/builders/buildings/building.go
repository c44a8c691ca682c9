package buildings

import (
	"strconv"

	"github.com/geoquad/tilebuilder/internal/builders"
	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/style"
	"github.com/geoquad/tilebuilder/internal/tberrors"
)

var (
	defaultRoofRegistry   = NewRoofRegistry()
	defaultFacadeRegistry = NewFacadeRegistry()
)

// BuildingBuilder is the deepest element builder (spec §4.5): a stateful
// per-element polygon+mesh accumulator with pluggable roof and facade
// strategy registries. Unlike the shell builders (terrain/tree/barrier)
// it carries state across a sequence of VisitArea/VisitRelation calls
// for the same logical building, created lazily and flushed once the
// element that started it finishes.
type BuildingBuilder struct {
	ctx     *builders.BuilderContext
	roofs   *Registry
	facades *Registry

	polygon *Polygon
	mesh    *builders.Mesh
}

// NewBuildingBuilder satisfies builders.Factory.
func NewBuildingBuilder(ctx *builders.BuilderContext) builders.ElementBuilder {
	return &BuildingBuilder{ctx: ctx, roofs: defaultRoofRegistry, facades: defaultFacadeRegistry}
}

func (b *BuildingBuilder) VisitNode(*model.Node) error { return nil }
func (b *BuildingBuilder) VisitWay(*model.Way) error   { return nil }

// VisitArea implements spec §4.5's visit_area contract.
func (b *BuildingBuilder) VisitArea(area *model.Area) error {
	sty, err := b.ctx.StyleProvider.ForElement(area, int(b.ctx.QuadKey.LevelOfDetail))
	if err != nil {
		return err
	}
	if v, _ := sty.GetString("building"); v != "true" {
		return nil
	}

	justCreated := b.ensureContext(area.ID)
	b.polygon.AddContour(area.Coordinates)

	if err := b.build(area, sty); err != nil {
		if justCreated {
			b.drop()
		}
		return err
	}
	if justCreated {
		b.flush()
	}
	return nil
}

// VisitRelation implements spec §4.5's visit_relation contract.
func (b *BuildingBuilder) VisitRelation(relation *model.Relation) error {
	if len(relation.Elements) == 0 {
		return nil
	}

	justCreated := b.ensureContext(relation.ID)

	sty, err := b.ctx.StyleProvider.ForElement(relation, int(b.ctx.QuadKey.LevelOfDetail))
	if err != nil {
		if justCreated {
			b.drop()
		}
		return err
	}

	buildingVal, _ := sty.GetString("building")
	multipolygonVal, _ := sty.GetString("multipolygon")

	if buildingVal == "true" && multipolygonVal == "true" {
		mv := &multiPolygonVisitor{builder: b}
		for _, member := range relation.Elements {
			if err := model.Dispatch(member, mv); err != nil {
				if justCreated {
					b.drop()
				}
				return err
			}
		}
		if err := b.build(relation, sty); err != nil {
			if justCreated {
				b.drop()
			}
			return err
		}
	} else {
		for _, member := range relation.Elements {
			if err := model.Dispatch(member, b); err != nil {
				if justCreated {
					b.drop()
				}
				return err
			}
		}
	}

	if justCreated {
		b.flush()
	}
	return nil
}

func (b *BuildingBuilder) Complete() error { return nil }

// ensureContext creates the polygon/mesh pair on the first contributing
// element of a building, reporting whether it did so — the caller uses
// this to decide whether it alone is responsible for flushing.
func (b *BuildingBuilder) ensureContext(id int64) bool {
	if b.polygon != nil {
		return false
	}
	b.polygon = &Polygon{}
	b.mesh = &builders.Mesh{Name: "building:" + strconv.FormatInt(id, 10)}
	return true
}

func (b *BuildingBuilder) drop() {
	b.polygon = nil
	b.mesh = nil
}

func (b *BuildingBuilder) flush() {
	if b.mesh != nil {
		b.ctx.MeshCallback(b.mesh)
	}
	b.drop()
}

// multiPolygonVisitor routes a multipolygon relation's members into the
// enclosing BuildingBuilder's polygon: clockwise areas become outer
// contours, counter-clockwise areas become holes (spec §3, §4.5). Any
// non-area member is malformed input for a multipolygon relation.
type multiPolygonVisitor struct {
	builder *BuildingBuilder
}

func (v *multiPolygonVisitor) VisitNode(*model.Node) error {
	return tberrors.New(tberrors.MalformedRelation, "multipolygon member is a node")
}

func (v *multiPolygonVisitor) VisitWay(*model.Way) error {
	return tberrors.New(tberrors.MalformedRelation, "multipolygon member is a way")
}

func (v *multiPolygonVisitor) VisitArea(area *model.Area) error {
	if model.IsClockwise(area.Coordinates) {
		v.builder.polygon.AddContour(area.Coordinates)
	} else {
		v.builder.polygon.AddHole(area.Coordinates)
	}
	return nil
}

func (v *multiPolygonVisitor) VisitRelation(*model.Relation) error {
	return tberrors.New(tberrors.MalformedRelation, "multipolygon member is a relation")
}

// build implements spec §4.5's build(element, style) algorithm: resolve
// height/elevation, then run the roof and facade strategies in turn,
// each with its own height/minHeight/color reading of the style.
func (b *BuildingBuilder) build(element model.Element, sty style.Style) error {
	point := b.polygon.RepresentativePoint()

	height := sty.GetValue("height")
	if height == 0 {
		height = 10 // documented fallback for a missing height tag
	}
	minHeight := sty.GetValue("min-height")
	elevation := b.ctx.EleProvider.Elevation(point) + minHeight
	effectiveHeight := height - minHeight

	tags := element.ElementTags()

	roofType, _ := sty.GetString("roof-type")
	roofFactory, ok := b.roofs.Get(roofType)
	if !ok {
		return tberrors.New(tberrors.UnknownRoofType, roofType)
	}
	roofHeight := sty.GetValue("roof-height")
	roofMinHeight := elevation + effectiveHeight
	roofColor := evaluateTagColor(sty, "roof-color", tags, b.ctx.StringTable, 0x8d6e63ff)
	meshCtx := &builders.MeshContext{Mesh: b.mesh, Style: sty}
	if err := roofFactory().Build(meshCtx, b.polygon, roofHeight, roofMinHeight, roofColor); err != nil {
		return err
	}

	facadeType, _ := sty.GetString("facade-type")
	facadeFactory, ok := b.facades.Get(facadeType)
	if !ok {
		return tberrors.New(tberrors.UnknownFacadeType, facadeType)
	}
	facadeColor := evaluateTagColor(sty, "facade-color", tags, b.ctx.StringTable, 0xbdbdbdff)
	if err := facadeFactory().Build(meshCtx, b.polygon, effectiveHeight, elevation, facadeColor); err != nil {
		return err
	}

	b.polygon = &Polygon{} // step 8: drop polygon, keep accumulating the mesh
	return nil
}

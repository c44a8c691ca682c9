package builders

import (
	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/proj"
)

// BarrierBuilder extrudes each Way tagged `layer=barrier` (fences,
// walls, hedges) into a thin vertical wall, reusing the same per-edge
// quad extrusion BuildingBuilder's facade strategies use for walls.
type BarrierBuilder struct {
	ctx         *BuilderContext
	transformer *proj.Transformer
}

func NewBarrierBuilder(ctx *BuilderContext) ElementBuilder {
	t, _ := proj.NewTransformer(proj.SRID4326, proj.SRID3857)
	return &BarrierBuilder{ctx: ctx, transformer: t}
}

func (b *BarrierBuilder) VisitNode(*model.Node) error { return nil }

func (b *BarrierBuilder) VisitWay(way *model.Way) error {
	sty, ok, err := resolveLayer(b.ctx, way, "barrier")
	if err != nil || !ok {
		return err
	}
	if len(way.Coordinates) < 2 {
		return nil
	}

	height := sty.GetValue("height")
	if height == 0 {
		height = 1.5
	}
	minHeight := sty.GetValue("min-height")
	colorHex, _ := sty.GetString("color")
	color := parseHexColor(colorHex, 0x9e9e9eff) // gray default

	elevation := b.ctx.EleProvider.Elevation(way.Coordinates[0])
	bottom := elevation + minHeight
	top := elevation + minHeight + height

	mesh := &Mesh{Name: "barrier:" + formatID(way.ID)}
	for i := 0; i+1 < len(way.Coordinates); i++ {
		x0, y0 := b.transformer.Transform(way.Coordinates[i].Lon, way.Coordinates[i].Lat)
		x1, y1 := b.transformer.Transform(way.Coordinates[i+1].Lon, way.Coordinates[i+1].Lat)
		base := uint32(len(mesh.Colors))

		mesh.Vertices = append(mesh.Vertices,
			x0, bottom, y0,
			x1, bottom, y1,
			x1, top, y1,
			x0, top, y0,
		)
		mesh.Colors = append(mesh.Colors, color, color, color, color)
		mesh.Triangles = append(mesh.Triangles,
			int32(base), int32(base+1), int32(base+2),
			int32(base), int32(base+2), int32(base+3),
		)
	}

	b.ctx.MeshCallback(mesh)
	return nil
}

func (b *BarrierBuilder) VisitArea(*model.Area) error { return nil }

func (b *BarrierBuilder) VisitRelation(relation *model.Relation) error {
	for _, member := range relation.Elements {
		if err := model.Dispatch(member, b); err != nil {
			return err
		}
	}
	return nil
}

func (b *BarrierBuilder) Complete() error { return nil }

package builders

import (
	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/proj"
)

// TreeBuilder renders each Node tagged `layer=tree` as a small four-sided
// pyramid canopy, a minimal stand-in for the full tree-billboard geometry
// a production renderer would use (spec §1 excludes rendering; this
// layer only needs to prove out mesh/element plumbing, spec §2 item 7).
type TreeBuilder struct {
	ctx         *BuilderContext
	transformer *proj.Transformer
}

func NewTreeBuilder(ctx *BuilderContext) ElementBuilder {
	t, _ := proj.NewTransformer(proj.SRID4326, proj.SRID3857)
	return &TreeBuilder{ctx: ctx, transformer: t}
}

func (b *TreeBuilder) VisitNode(node *model.Node) error {
	sty, ok, err := resolveLayer(b.ctx, node, "tree")
	if err != nil || !ok {
		return err
	}

	height := sty.GetValue("height")
	if height == 0 {
		height = 4
	}
	radius := sty.GetValue("crown-radius")
	if radius == 0 {
		radius = 1.2
	}
	colorHex, _ := sty.GetString("color")
	color := parseHexColor(colorHex, 0x2e7d32ff) // canopy green default

	x, y := b.transformer.Transform(node.Coordinate.Lon, node.Coordinate.Lat)
	elevation := b.ctx.EleProvider.Elevation(node.Coordinate)

	base := []Point2D{
		{X: x - radius, Y: y - radius},
		{X: x + radius, Y: y - radius},
		{X: x + radius, Y: y + radius},
		{X: x - radius, Y: y + radius},
	}

	mesh := &Mesh{Name: "tree:" + formatID(node.ID)}
	for _, p := range base {
		mesh.Vertices = append(mesh.Vertices, p.X, elevation, p.Y)
		mesh.Colors = append(mesh.Colors, color)
	}
	apexIndex := uint32(len(base))
	mesh.Vertices = append(mesh.Vertices, x, elevation+height, y)
	mesh.Colors = append(mesh.Colors, color)

	for i := 0; i < len(base); i++ {
		next := (i + 1) % len(base)
		mesh.Triangles = append(mesh.Triangles, int32(i), int32(next), int32(apexIndex))
	}
	mesh.Triangles = append(mesh.Triangles, Triangulate(base, nil)...)

	b.ctx.MeshCallback(mesh)
	return nil
}

func (b *TreeBuilder) VisitWay(*model.Way) error   { return nil }
func (b *TreeBuilder) VisitArea(*model.Area) error { return nil }

func (b *TreeBuilder) VisitRelation(relation *model.Relation) error {
	for _, member := range relation.Elements {
		if err := model.Dispatch(member, b); err != nil {
			return err
		}
	}
	return nil
}

func (b *TreeBuilder) Complete() error { return nil }

package builders

import (
	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/proj"
	"github.com/geoquad/tilebuilder/internal/quadkey"
)

// TerrainBuilder flattens any Area or closed Way tagged `layer=terrain`
// into a single triangulated mesh at ground elevation. It is one of the
// "remaining element-builder shells" spec §2 budgets lightly relative to
// GeoStore/BuildingBuilder/ShapeParser — terrain here has no draping or
// multi-resolution blending, just a flat tessellated patch per element;
// a Relation is handled member-by-member rather than merged into one
// mesh with holes (BuildingBuilder is where hole handling is load-bearing).
type TerrainBuilder struct {
	ctx         *BuilderContext
	transformer *proj.Transformer
}

// NewTerrainBuilder is an ElementBuilder Factory.
func NewTerrainBuilder(ctx *BuilderContext) ElementBuilder {
	t, _ := proj.NewTransformer(proj.SRID4326, proj.SRID3857)
	return &TerrainBuilder{ctx: ctx, transformer: t}
}

func (b *TerrainBuilder) VisitNode(*model.Node) error { return nil }

func (b *TerrainBuilder) VisitWay(way *model.Way) error {
	if !way.Closed {
		return nil
	}
	sty, ok, err := resolveLayer(b.ctx, way, "terrain")
	if err != nil || !ok {
		return err
	}
	return b.build(way.ID, way.Coordinates, sty)
}

func (b *TerrainBuilder) VisitArea(area *model.Area) error {
	sty, ok, err := resolveLayer(b.ctx, area, "terrain")
	if err != nil || !ok {
		return err
	}
	return b.build(area.ID, area.Coordinates, sty)
}

func (b *TerrainBuilder) VisitRelation(relation *model.Relation) error {
	for _, member := range relation.Elements {
		if err := model.Dispatch(member, b); err != nil {
			return err
		}
	}
	return nil
}

func (b *TerrainBuilder) Complete() error { return nil }

func (b *TerrainBuilder) build(id int64, coords []quadkey.GeoCoordinate, sty interface {
	GetString(string) (string, bool)
	GetValue(string) float64
}) error {
	if len(coords) < 3 {
		return nil
	}

	points := make([]Point2D, len(coords))
	for i, c := range coords {
		x, y := b.transformer.Transform(c.Lon, c.Lat)
		points[i] = Point2D{X: x, Y: y}
	}

	elevation := b.ctx.EleProvider.Elevation(coords[0])
	colorHex, _ := sty.GetString("color")
	color := parseHexColor(colorHex, 0x6b8e23ff) // olive default

	mesh := &Mesh{Name: "terrain:" + formatID(id)}
	for _, p := range points {
		mesh.Vertices = append(mesh.Vertices, p.X, elevation, p.Y)
		mesh.Colors = append(mesh.Colors, color)
	}
	mesh.Triangles = Triangulate(points, nil)

	b.ctx.MeshCallback(mesh)
	return nil
}

package builders

import (
	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/style"
)

// resolveLayer resolves element's style and reports whether it declares
// the given "layer" property — the participation test spec §4.4 step 3
// delegates to each builder ("independently decides... based on the
// style's layer tag").
func resolveLayer(ctx *BuilderContext, element model.Element, layer string) (style.Style, bool, error) {
	lod := int(ctx.QuadKey.LevelOfDetail)
	resolved, err := ctx.StyleProvider.ForElement(element, lod)
	if err != nil {
		return nil, false, err
	}
	got, present := resolved.GetString("layer")
	return resolved, present && got == layer, nil
}

package buildings

import "github.com/geoquad/tilebuilder/internal/builders"

// Strategy renders one roof or facade variant into meshCtx.Mesh, given
// the building's projected footprint and the height/minHeight/color
// resolved for this pass (spec §4.5 steps 6-7). Roof and facade variants
// share this interface since both are "take a footprint, extrude it
// somehow" operations — the only difference is what they extrude into.
type Strategy interface {
	Build(meshCtx *builders.MeshContext, polygon *Polygon, height, minHeight float64, color uint32) error
}

// Factory constructs a Strategy for one build() call. Strategies are
// stateless per-call, so factories are plain constructors rather than
// closures over shared state.
type Factory func() Strategy

// Registry is an immutable name -> Factory lookup table, built once at
// startup (spec §9 "Strategy registries must not be mutated at runtime").
type Registry struct {
	factories map[string]Factory
}

// NewRegistry builds a Registry from a fixed set of name/factory pairs.
// Callers pass the full set up front; there is no Register method, so a
// Registry can never be mutated after construction.
func NewRegistry(entries map[string]Factory) *Registry {
	factories := make(map[string]Factory, len(entries))
	for name, f := range entries {
		factories[name] = f
	}
	return &Registry{factories: factories}
}

// Get looks up the factory for name.
func (r *Registry) Get(name string) (Factory, bool) {
	f, ok := r.factories[name]
	return f, ok
}

// NewRoofRegistry returns the standard set of roof strategies (spec
// §4.5: none, flat, dome, pyramidal, mansard).
func NewRoofRegistry() *Registry {
	return NewRegistry(map[string]Factory{
		"none":      func() Strategy { return noneRoof{} },
		"flat":      func() Strategy { return flatRoof{} },
		"dome":      func() Strategy { return domeRoof{} },
		"pyramidal": func() Strategy { return pyramidalRoof{} },
		"mansard":   func() Strategy { return mansardRoof{} },
	})
}

// NewFacadeRegistry returns the standard set of facade strategies (spec
// §4.5: flat, cylinder, sphere).
func NewFacadeRegistry() *Registry {
	return NewRegistry(map[string]Factory{
		"flat":     func() Strategy { return flatFacade{} },
		"cylinder": func() Strategy { return cylinderFacade{} },
		"sphere":   func() Strategy { return sphereFacade{} },
	})
}

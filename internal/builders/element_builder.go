package builders

import "github.com/geoquad/tilebuilder/internal/model"

// ElementBuilder is one registered "layer" (terrain, building, tree,
// barrier): it receives every element in a tile via the embedded
// model.Visitor and flushes any accumulated mesh state on Complete.
type ElementBuilder interface {
	model.Visitor
	// Complete is called once after every element has been dispatched,
	// in builder-registration order (spec §4.4 step 4). Builders that
	// flush per-element (like BuildingBuilder) typically no-op here.
	Complete() error
}

// Factory constructs an ElementBuilder bound to one tile's BuilderContext.
// Registries of these must stay immutable after construction (spec §9
// "Strategy registries" — no package-level mutable globals).
type Factory func(*BuilderContext) ElementBuilder

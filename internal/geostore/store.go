// Package geostore implements the ElementStore contract from spec §4.1
// (InMemory and Postgres-backed Persistent variants) and the GeoStore
// facade that routes add/search operations across named stores.
package geostore

import (
	"context"

	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/quadkey"
)

// ElementStore indexes elements so they can be retrieved by quadkey.
// Implementations must satisfy spec §4.1's spatial completeness
// invariant: an element added under LoD range [a,b] is retrievable for
// any quadkey at LoD l in [a,b] whose bbox intersects the element's bbox.
type ElementStore interface {
	// Add indexes element under every quadkey in lodRange whose bbox
	// intersects the element's bbox.
	Add(ctx context.Context, element model.Element, lodRange quadkey.LodRange) error
	// Search returns every element indexed under qk.
	Search(ctx context.Context, qk quadkey.QuadKey) ([]model.Element, error)
	// HasData reports whether any element is indexed under qk.
	HasData(ctx context.Context, qk quadkey.QuadKey) (bool, error)
}

// Package style defines the Style/StyleProvider contract (spec §3, §4.3)
// and the cache and reference implementation built around it. The
// production MapCSS-like parser remains an external collaborator per
// spec §1 — only its contract is implemented here.
package style

import "github.com/geoquad/tilebuilder/internal/model"

// Style is the result of evaluating a stylesheet against an element at a
// given level of detail.
type Style interface {
	// GetString returns the declared string property for key, if any.
	GetString(key string) (string, bool)
	// GetValue returns the declared numeric property for key, or 0 if
	// the property was never declared.
	GetValue(key string) float64
}

// Provider resolves a Style for an element at a level of detail. This is
// the seam spec §1 calls out as external: a MapCSS parser elsewhere in the
// real system produces one of these; this module only depends on the
// interface.
type Provider interface {
	ForElement(element model.Element, levelOfDetail int) (Style, error)
}

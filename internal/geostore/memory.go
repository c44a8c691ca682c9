package geostore

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/quadkey"
)

// InMemory is the default ElementStore: a map from quadkey string to the
// elements indexed under it, guarded by a single RWMutex (teacher's
// internal/nodeindex leans on mmap for scale; this store trades that for
// the simplicity spec §4.1 asks of the in-memory variant).
type InMemory struct {
	mu   sync.RWMutex
	data map[string][]model.Element

	ElementsIndexed atomic.Int64
}

// NewInMemory creates an empty in-memory element store.
func NewInMemory() *InMemory {
	return &InMemory{data: make(map[string][]model.Element)}
}

// Add indexes element under every quadkey at every LoD in lodRange whose
// bbox intersects the element's bbox (spec §4.1 spatial fan-out). An
// element with an empty/invalid bbox (e.g. a Relation with no geometric
// members) is silently dropped, matching the builder's empty-mesh guard.
func (s *InMemory) Add(_ context.Context, element model.Element, lodRange quadkey.LodRange) error {
	if !lodRange.IsValid() {
		return nil
	}
	box := model.BoundingBox(element)
	if !box.IsValid() {
		return nil
	}

	for lod := lodRange.Min; lod <= lodRange.Max; lod++ {
		keys := quadkey.BoundingBoxToQuadKeys(box, lod)
		s.mu.Lock()
		for _, qk := range keys {
			k := qk.Key()
			s.data[k] = append(s.data[k], element)
		}
		s.mu.Unlock()
	}
	s.ElementsIndexed.Add(1)
	return nil
}

// Search returns a copy of the slice of elements indexed under qk.
func (s *InMemory) Search(_ context.Context, qk quadkey.QuadKey) ([]model.Element, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := s.data[qk.Key()]
	if len(found) == 0 {
		return nil, nil
	}
	out := make([]model.Element, len(found))
	copy(out, found)
	return out, nil
}

// HasData reports whether any element is indexed under qk.
func (s *InMemory) HasData(_ context.Context, qk quadkey.QuadKey) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data[qk.Key()]) > 0, nil
}

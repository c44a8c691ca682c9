// Package model defines the tagged-sum-type element model the whole
// pipeline operates on, plus its tag representation.
package model

import "github.com/geoquad/tilebuilder/internal/stringtable"

// StringID is a stable numeric handle into a stringtable.Table.
type StringID = stringtable.StringID

// Tag is a single key/value pair referencing interned strings.
type Tag struct {
	Key   StringID
	Value StringID
}

// Tags is an ordered, deduplicated-by-key collection of Tag.
type Tags []Tag

// NewTags interns a map of raw string tags against table and returns them
// as an ordered Tags collection in keysInOrder's order. Map iteration
// order is not stable, so callers that need deterministic output (spec
// Testable Property 5, build determinism) pass keys in a stable order:
// OSM XML ingestion sorts them (internal/osmxml) and shapefile ingestion
// uses the DBF field order (internal/shapefile).
func NewTags(table *stringtable.Table, raw map[string]string, keysInOrder []string) Tags {
	tags := make(Tags, 0, len(keysInOrder))
	seen := make(map[string]bool, len(keysInOrder))
	for _, k := range keysInOrder {
		if seen[k] {
			continue
		}
		v, ok := raw[k]
		if !ok {
			continue
		}
		seen[k] = true
		tags = append(tags, Tag{Key: table.GetID(k), Value: table.GetID(v)})
	}
	return tags
}

// Map resolves every tag back to strings using table, for style matching
// implementations that want a plain map[string]string.
func (t Tags) Map(table *stringtable.Table) map[string]string {
	m := make(map[string]string, len(t))
	for _, tag := range t {
		m[table.String(tag.Key)] = table.String(tag.Value)
	}
	return m
}

// Get returns the value of the first tag with the given key, interned
// against table, and whether it was found.
func (t Tags) Get(table *stringtable.Table, key string) (string, bool) {
	id := table.GetID(key)
	for _, tag := range t {
		if tag.Key == id {
			return table.String(tag.Value), true
		}
	}
	return "", false
}

package style

import (
	"fmt"
	"os"
	"strconv"

	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/stringtable"
	"gopkg.in/yaml.v3"
)

// declarativeConfig is a YAML-declared stand-in for a real MapCSS
// stylesheet, adapted from internal/style.FilterConfig's include/exclude
// tag matching (the teacher's OSM tag filter) into a small rule list that
// can also assign the string/numeric properties spec.Style needs
// (height, roof-type, ...), not just pass/fail a filter.
type declarativeConfig struct {
	Rules []Rule `yaml:"rules"`
}

// Rule applies Properties to any element whose tags satisfy every entry
// in Match. An empty value list for a key matches any value for that key
// (teacher's FilterConfig.Include semantics); rules are applied in file
// order and later matches overwrite earlier property values, so a
// catch-all rule (empty Match) acts as a default declared first.
type Rule struct {
	Match      map[string][]string `yaml:"match"`
	Properties map[string]string   `yaml:"properties"`
}

func ruleMatches(match map[string][]string, tags map[string]string) bool {
	for key, allowed := range match {
		val, ok := tags[key]
		if !ok {
			return false
		}
		if len(allowed) == 0 {
			continue
		}
		matched := false
		for _, a := range allowed {
			if a == "*" || a == val {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// DeclarativeLoader loads declarativeConfig YAML files as Providers. It
// is the Loader this module's own tests and the Cache use in place of a
// full MapCSS parser, which spec §1 treats as an external collaborator.
type DeclarativeLoader struct {
	Table *stringtable.Table
}

func (l *DeclarativeLoader) Load(path, _ string) (Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg declarativeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse declarative style %s: %w", path, err)
	}
	return &DeclarativeProvider{table: l.Table, cfg: cfg}, nil
}

// DeclarativeProvider implements Provider by evaluating declarativeConfig
// rules against an element's resolved tags.
type DeclarativeProvider struct {
	table *stringtable.Table
	cfg   declarativeConfig
}

// NewDeclarativeProvider builds a DeclarativeProvider directly from an
// in-memory rule set, for tests that don't want to round-trip through a
// YAML file.
func NewDeclarativeProvider(table *stringtable.Table, rules []Rule) *DeclarativeProvider {
	return &DeclarativeProvider{table: table, cfg: declarativeConfig{Rules: rules}}
}

func (p *DeclarativeProvider) ForElement(element model.Element, _ int) (Style, error) {
	tags := element.ElementTags().Map(p.table)
	props := make(map[string]string)
	for _, rule := range p.cfg.Rules {
		if ruleMatches(rule.Match, tags) {
			for k, v := range rule.Properties {
				props[k] = v
			}
		}
	}
	return declarativeStyle{props: props}, nil
}

type declarativeStyle struct {
	props map[string]string
}

func (s declarativeStyle) GetString(key string) (string, bool) {
	v, ok := s.props[key]
	return v, ok
}

func (s declarativeStyle) GetValue(key string) float64 {
	v, ok := s.props[key]
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

package style

import (
	"testing"

	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/stringtable"
)

func TestDeclarativeProviderMatching(t *testing.T) {
	table := stringtable.New()
	rules := []Rule{
		{
			Match:      map[string][]string{"building": {"true"}},
			Properties: map[string]string{"height": "12", "roof-type": "flat"},
		},
	}
	provider := NewDeclarativeProvider(table, rules)

	tags := model.NewTags(table, map[string]string{"building": "true"}, []string{"building"})
	area := &model.Area{ID: 1, TagList: tags}

	s, err := provider.ForElement(area, 16)
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := s.GetString("roof-type"); !ok || got != "flat" {
		t.Fatalf("expected roof-type=flat, got %q ok=%v", got, ok)
	}
	if got := s.GetValue("height"); got != 12 {
		t.Fatalf("expected height=12, got %v", got)
	}
	if _, ok := s.GetString("missing"); ok {
		t.Fatal("expected missing property to report not-found")
	}

	nonBuildingTags := model.NewTags(table, map[string]string{"natural": "water"}, []string{"natural"})
	other := &model.Area{ID: 2, TagList: nonBuildingTags}
	s2, err := provider.ForElement(other, 16)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s2.GetString("roof-type"); ok {
		t.Fatal("non-building area should not pick up building rule properties")
	}
}

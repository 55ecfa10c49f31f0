package registration

import (
	"fmt"
	"sort"
	"strings"
)

// Category is the unit a child registers into. Its value is the lowercase
// identifier submitted by the form and stored on the record.
type Category string

const (
	CategoryScout Category = "scout"
	CategoryGuide Category = "guide"
	CategoryCub   Category = "louveteau"
)

// CategoryRule holds the per-category configuration: the inclusive age
// bracket and the label printed on documents.
type CategoryRule struct {
	DisplayName string
	MinAge      int
	MaxAge      int
}

func (r CategoryRule) Allows(age int) bool {
	return age >= r.MinAge && age <= r.MaxAge
}

type CategoryTable map[Category]CategoryRule

// DefaultCategories is the canonical table used when no configuration
// overrides it.
func DefaultCategories() CategoryTable {
	return CategoryTable{
		CategoryScout: {DisplayName: "Scouts", MinAge: 11, MaxAge: 17},
		CategoryGuide: {DisplayName: "Guides", MinAge: 11, MaxAge: 17},
		CategoryCub:   {DisplayName: "Louveteaux", MinAge: 8, MaxAge: 11},
	}
}

// NewCategoryTable builds a table from configuration entries keyed by
// category identifier. Keys are normalized to lowercase.
func NewCategoryTable(rules map[string]CategoryRule) (CategoryTable, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("category table is empty")
	}

	table := make(CategoryTable, len(rules))
	for key, rule := range rules {
		name := ParseCategory(key)
		if name == "" {
			return nil, fmt.Errorf("category with empty name")
		}
		if rule.MinAge < 0 || rule.MinAge > rule.MaxAge {
			return nil, fmt.Errorf("category %q: invalid age range %d-%d", name, rule.MinAge, rule.MaxAge)
		}
		if rule.DisplayName == "" {
			rule.DisplayName = string(name)
		}
		table[name] = rule
	}
	return table, nil
}

// ParseCategory normalizes a submitted category value.
func ParseCategory(raw string) Category {
	return Category(strings.ToLower(strings.TrimSpace(raw)))
}

func (t CategoryTable) Lookup(c Category) (CategoryRule, bool) {
	rule, ok := t[c]
	return rule, ok
}

func (t CategoryTable) Names() []Category {
	names := make([]Category, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Package classify buckets records into a fixed ordered set of report
// categories based on their labels.
package classify

import (
	"strings"

	"github.com/opsdigest/opsdigest/internal/domain"
)

// CategoryOthers is the terminal fallback bucket. It must not carry
// aliases.
const CategoryOthers = "others"

// Category is one canonical report section.
type Category struct {
	Key         string
	DisplayName string
	Aliases     []string
}

// Taxonomy is an ordered set of categories. Iteration order is the
// rendering order; new categories and aliases are data, not code.
type Taxonomy struct {
	Categories []Category
}

// DefaultTaxonomy returns the attention report taxonomy. The raw label
// strings cover the GitHub standard labels plus the variants used by
// heterogeneous upstream repositories (CPython-style "type-bug" etc.).
func DefaultTaxonomy() *Taxonomy {
	return &Taxonomy{Categories: []Category{
		{Key: "bug", DisplayName: "Bugs", Aliases: []string{"type-bug", "type-crash", "type: bug"}},
		{Key: "incident", DisplayName: "Incidents", Aliases: []string{"type: incident"}},
		{Key: "important", DisplayName: "Important"},
		{Key: "stale", DisplayName: "Stale"},
		{Key: CategoryOthers, DisplayName: "Others"},
	}}
}

// RawLabels returns every label string the taxonomy recognizes, in
// declaration order. Used to constrain the upstream search.
func (t *Taxonomy) RawLabels() []string {
	var labels []string
	for _, category := range t.Categories {
		if category.Key == CategoryOthers {
			continue
		}
		labels = append(labels, category.Key)
		labels = append(labels, category.Aliases...)
	}
	return labels
}

// DisplayName returns the rendering label for a category key, falling
// back to the key itself.
func (t *Taxonomy) DisplayName(key string) string {
	for _, category := range t.Categories {
		if category.Key == key {
			return category.DisplayName
		}
	}
	return key
}

// Keys returns the category keys in taxonomy order.
func (t *Taxonomy) Keys() []string {
	keys := make([]string, len(t.Categories))
	for i, category := range t.Categories {
		keys[i] = category.Key
	}
	return keys
}

// Classify maps a record's labels onto a category key. Matching is
// case-insensitive and iterates the taxonomy in declared order, so a
// record carrying labels from several categories lands in whichever
// category is declared first. Records matching nothing classify as
// "others".
func (t *Taxonomy) Classify(record *domain.ActivityRecord) string {
	for _, category := range t.Categories {
		if category.Key == CategoryOthers {
			continue
		}
		for _, label := range record.Labels {
			name := strings.ToLower(label)
			if name == strings.ToLower(category.Key) {
				return category.Key
			}
			for _, alias := range category.Aliases {
				if name == strings.ToLower(alias) {
					return category.Key
				}
			}
		}
	}
	return CategoryOthers
}

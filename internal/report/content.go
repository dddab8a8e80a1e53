package report

import (
	"strings"

	"github.com/opsdigest/opsdigest/internal/classify"
)

// Section is one named report section.
type Section struct {
	Key     string
	Display string
}

// Content collects lines into ordered named sections. Section order
// follows the declared section list, not insertion order, and empty
// sections are omitted from rendering.
type Content struct {
	sections []Section
	lines    map[string][]string
}

// NewContent creates content with a fixed section order.
func NewContent(sections []Section) *Content {
	return &Content{
		sections: sections,
		lines:    make(map[string][]string),
	}
}

// SectionsFromTaxonomy derives the section list from a classification
// taxonomy.
func SectionsFromTaxonomy(taxonomy *classify.Taxonomy) []Section {
	sections := make([]Section, 0, len(taxonomy.Categories))
	for _, category := range taxonomy.Categories {
		sections = append(sections, Section{Key: category.Key, Display: category.DisplayName})
	}
	return sections
}

// Add appends a line to a section.
func (c *Content) Add(key, line string) {
	c.lines[key] = append(c.lines[key], line)
}

// RenderSection renders one section, reporting whether it has content.
func (c *Content) RenderSection(key string) (string, bool) {
	lines, ok := c.lines[key]
	if !ok || len(lines) == 0 {
		return "", false
	}
	display := key
	for _, section := range c.sections {
		if section.Key == key {
			display = section.Display
			break
		}
	}
	return "\n## " + display + "\n" + strings.Join(lines, "\n"), true
}

// Render renders all non-empty sections in declared order.
func (c *Content) Render() string {
	var rendered []string
	for _, section := range c.sections {
		if markdown, ok := c.RenderSection(section.Key); ok {
			rendered = append(rendered, markdown)
		}
	}
	return strings.Join(rendered, "\n")
}

// SanitizeTitle strips characters that are unfortunate in Markdown link
// titles.
func SanitizeTitle(title string) string {
	title = strings.ReplaceAll(title, "[", "")
	return strings.ReplaceAll(title, "]", "")
}

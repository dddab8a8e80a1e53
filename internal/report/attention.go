package report

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/opsdigest/opsdigest/internal/classify"
	"github.com/opsdigest/opsdigest/internal/source/github"
	"github.com/opsdigest/opsdigest/internal/timewindow"
)

// AttentionOptions scopes an attention report.
type AttentionOptions struct {
	Organization string
	When         string
	Window       timewindow.TimeWindow
}

// AttentionReport lists items that deserve attention, bugs first. The
// search is constrained to the taxonomy's raw labels; results are
// bucketed into the taxonomy's sections.
type AttentionReport struct {
	client   *github.Client
	taxonomy *classify.Taxonomy
	opts     AttentionOptions
}

// NewAttentionReport creates an attention report generator using the
// default taxonomy.
func NewAttentionReport(client *github.Client, opts AttentionOptions) *AttentionReport {
	return &AttentionReport{
		client:   client,
		taxonomy: classify.DefaultTaxonomy(),
		opts:     opts,
	}
}

// Generate produces the report in Markdown.
func (r *AttentionReport) Generate(ctx context.Context) (string, error) {
	spec := github.SearchSpec{
		Organization: r.opts.Organization,
		Updated:      r.opts.Window.GitHubFormat(),
		Labels:       r.taxonomy.RawLabels(),
	}

	records, err := r.client.SearchAll(ctx, spec)
	if err != nil {
		return "", err
	}
	// Issue and pull request results interleave chronologically.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	content := NewContent(SectionsFromTaxonomy(r.taxonomy))
	seen := make(map[string]bool)
	for _, record := range records {
		// Overlapping issue and pull request queries can return the
		// same record twice; the first placement wins.
		if seen[record.URL] {
			continue
		}
		seen[record.URL] = true

		record.Category = r.taxonomy.Classify(record)
		title := SanitizeTitle(record.Repository + ": " + record.Title)
		link := fmt.Sprintf("[%s](%s)", title, record.URL)
		line := "- " + link
		if record.State == "closed" {
			line = "- ~" + link + "~"
		}
		content.Add(record.Category, line)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Attention report %s\n\n", r.opts.When)
	b.WriteString("A report about important items that deserve your attention, bugs first.\n")
	fmt.Fprintf(&b, "Time range: %s\n", r.opts.Window.GitHubFormat())
	b.WriteString(content.Render())
	return b.String(), nil
}

package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/opsdigest/opsdigest/internal/domain"
	apperrors "github.com/opsdigest/opsdigest/internal/errors"
	"github.com/opsdigest/opsdigest/internal/rank"
	"github.com/opsdigest/opsdigest/internal/source/github"
	"github.com/opsdigest/opsdigest/internal/timewindow"
)

// ActivityOptions scopes an activity report.
type ActivityOptions struct {
	Organization string
	Author       string
	When         string // raw user expression, shown in the header
	Window       timewindow.TimeWindow
}

// ActivityReport summarizes activity across a whole organization:
// which repositories saw movement, and the most significant pull
// requests within the window.
type ActivityReport struct {
	client   *github.Client
	selector *rank.Selector
	opts     ActivityOptions
}

// NewActivityReport creates an activity report generator.
func NewActivityReport(client *github.Client, opts ActivityOptions) *ActivityReport {
	return &ActivityReport{
		client:   client,
		selector: rank.NewSelector(),
		opts:     opts,
	}
}

func (r *ActivityReport) searchSpec() github.SearchSpec {
	return github.SearchSpec{
		Organization: r.opts.Organization,
		Author:       r.opts.Author,
		Updated:      r.opts.Window.GitHubFormat(),
	}
}

// Generate produces the report in Markdown.
func (r *ActivityReport) Generate(ctx context.Context) (string, error) {
	spec := r.searchSpec()

	records, err := r.client.SearchAll(ctx, spec)
	if err != nil {
		return "", err
	}
	names := repositoryNames(records)

	significant, err := r.significantPullRequests(ctx, records)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	timerange := ""
	if r.opts.When != "" {
		timerange = "for " + r.opts.When
	}
	fmt.Fprintf(&b, "# Activity report %s\n", timerange)
	b.WriteString(r.overview(names))
	b.WriteString("\n\n*Top changes:*\n")
	for _, record := range significant {
		fmt.Fprintf(&b, "  - %s: [%s](%s)\n",
			record.RepositoryName(), SanitizeTitle(record.Title), record.URL)
	}
	return b.String(), nil
}

// significantPullRequests fetches detail records for the pull requests
// in scope and selects the significant subset. Records missing a
// required field are dropped with a warning, never aborting the report.
func (r *ActivityReport) significantPullRequests(ctx context.Context, records []*domain.ActivityRecord) ([]*domain.ActivityRecord, error) {
	var details []*domain.ActivityRecord
	for _, record := range records {
		if !record.IsPullRequest {
			continue
		}
		detail, err := r.client.PullDetail(ctx, record)
		if err != nil {
			if apperrors.IsMissingField(err) {
				slog.Warn("dropping malformed pull request", "url", record.URL, "error", err)
				continue
			}
			return nil, err
		}
		details = append(details, detail)
	}
	return r.selector.Select(details), nil
}

// overview renders the per-week preamble with links into the HTML
// search results.
func (r *ActivityReport) overview(names []string) string {
	spec := r.searchSpec()
	linkIssues := fmt.Sprintf("[Issues](%s)", github.SearchURL(spec, github.KindIssue, github.TargetHTML))
	linkPulls := fmt.Sprintf("[Pull requests](%s)", github.SearchURL(spec, github.KindPullRequest, github.TargetHTML))
	lines := []string{
		"*Progress:*",
		"  - About: Bugfixes, Documentation, Guidance, Planning, Support",
		"  - Activity: " + strings.Join(names, ", "),
		"  - Details: " + linkIssues + ", " + linkPulls,
		"*Plans:* Dito.",
		"*Problems:* n/a",
	}
	return strings.Join(lines, "\n")
}

// repositoryNames returns the sorted unique repository names touched by
// the given records.
func repositoryNames(records []*domain.ActivityRecord) []string {
	seen := make(map[string]bool)
	var names []string
	for _, record := range records {
		name := record.RepositoryName()
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

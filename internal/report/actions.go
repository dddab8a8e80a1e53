package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/opsdigest/opsdigest/internal/ci"
	"github.com/opsdigest/opsdigest/internal/domain"
	"github.com/opsdigest/opsdigest/internal/source/github"
)

// DeltaHours is the CI report lookback.
const DeltaHours = 24

var eventSections = []Section{
	{Key: string(domain.RunEventSchedule), Display: "Schedule"},
	{Key: string(domain.RunEventPullRequest), Display: "Pull requests"},
	{Key: string(domain.RunEventDynamic), Display: "Dynamic"},
}

// CIOptions scopes a CI failures report.
type CIOptions struct {
	Repositories []string
}

// CIReport lists workflow runs that failed recently, with transient
// failures suppressed by correlating against later successes.
type CIReport struct {
	client     *github.Client
	correlator *ci.Correlator
	opts       CIOptions
	now        func() time.Time
}

// NewCIReport creates a CI failures report generator.
func NewCIReport(client *github.Client, opts CIOptions) *CIReport {
	return &CIReport{
		client:     client,
		correlator: ci.NewCorrelator(),
		opts:       opts,
		now:        time.Now,
	}
}

// createdFilter computes the lookback start in the runs API filter
// syntax. The timestamp truncates after the hour so repeated
// invocations within the hour share cached responses.
func (r *CIReport) createdFilter() string {
	start := r.now().Add(-DeltaHours * time.Hour)
	return ">" + start.Format("2006-01-02T15")
}

// Generate produces the report in Markdown. A single repository's fetch
// failure is logged and skipped; the report renders whatever sections
// succeeded.
func (r *CIReport) Generate(ctx context.Context) (string, error) {
	created := r.createdFilter()

	failed, failures := r.client.ListRunsMulti(ctx, r.opts.Repositories,
		github.RunsFilter{Status: "failure", Created: created})
	logRepoErrors(failures)

	succeeded, failures := r.client.ListRunsMulti(ctx, r.opts.Repositories,
		github.RunsFilter{Event: "pull_request", Status: "success", Created: created})
	logRepoErrors(failures)

	content := NewContent(eventSections)
	for _, run := range r.correlator.Correlate(failed, succeeded) {
		title := SanitizeTitle(run.Repository + ": " + run.Name)
		content.Add(string(run.Event), fmt.Sprintf("- [%s](%s)", title, run.URL))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# CI failures report %s\n", r.now().Format("2006-01-02"))
	fmt.Fprintf(&b, "A report about workflow runs that failed recently (now-%dh).\n", DeltaHours)
	b.WriteString(content.Render())
	return b.String(), nil
}

func logRepoErrors(failures []github.RepoError) {
	for _, failure := range failures {
		slog.Warn("skipping repository after fetch failure",
			"repository", failure.Repository, "error", failure.Err)
	}
}

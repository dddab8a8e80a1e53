package report

import (
	"context"
	"strings"

	"github.com/opsdigest/opsdigest/internal/source/github"
	"github.com/opsdigest/opsdigest/internal/timewindow"
)

// Item is a single unit of daily recurring report information.
type Item struct {
	Type     string `yaml:"type" json:"type"`
	Day      string `yaml:"day" json:"day"`
	Markdown string `yaml:"markdown" json:"markdown"`
}

// Key returns the item's conversation metadata key.
func (i Item) Key() string {
	return i.Type + "_" + i.Day
}

// Daily produces the recurring report for one day.
type Daily struct {
	Day          string
	Organization string
	Items        []Item
}

// NewDaily creates a daily report. An empty day means today.
func NewDaily(day, organization string, resolver *timewindow.Resolver) *Daily {
	if day == "" {
		day = resolver.Today()
	}
	return &Daily{Day: day, Organization: organization}
}

// Process generates the report items across the covered domains.
func (d *Daily) Process(ctx context.Context, client *github.Client, resolver *timewindow.Resolver) error {
	return d.githubAttention(ctx, client, resolver)
}

// githubAttention generates the day's attention digest.
func (d *Daily) githubAttention(ctx context.Context, client *github.Client, resolver *timewindow.Resolver) error {
	when := d.Day + ".." + d.Day
	window, err := resolver.Resolve(when)
	if err != nil {
		return err
	}
	markdown, err := NewAttentionReport(client, AttentionOptions{
		Organization: d.Organization,
		When:         when,
		Window:       window,
	}).Generate(ctx)
	if err != nil {
		return err
	}
	d.Items = append(d.Items, Item{Type: "github-attention", Day: d.Day, Markdown: markdown})
	return nil
}

// Markdown joins all item bodies.
func (d *Daily) Markdown() string {
	var parts []string
	for _, item := range d.Items {
		parts = append(parts, item.Markdown)
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// Payload returns the structural form for yaml/json rendering.
func (d *Daily) Payload() Payload {
	return Payload{
		Meta: map[string]string{"day": d.Day},
		Data: d.Items,
	}
}

// Weekly produces the recurring reports for each day of one ISO week,
// skipping days in the future.
type Weekly struct {
	Week         string
	Organization string
	Dailies      []*Daily
}

// NewWeekly creates a weekly report. An empty week means the current
// calendar week.
func NewWeekly(week, organization string, resolver *timewindow.Resolver) *Weekly {
	if week == "" {
		week = resolver.CurrentWeek()
	}
	return &Weekly{Week: week, Organization: organization}
}

// Process creates all daily reports of the week.
func (w *Weekly) Process(ctx context.Context, client *github.Client, resolver *timewindow.Resolver) error {
	days, err := resolver.WeekDays(w.Week, true)
	if err != nil {
		return err
	}
	for _, day := range days {
		daily := NewDaily(day, w.Organization, resolver)
		if err := daily.Process(ctx, client, resolver); err != nil {
			return err
		}
		w.Dailies = append(w.Dailies, daily)
	}
	return nil
}

// Markdown joins all daily bodies.
func (w *Weekly) Markdown() string {
	var parts []string
	for _, daily := range w.Dailies {
		parts = append(parts, trimBlank(daily.Markdown()))
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// Payload returns the structural form for yaml/json rendering.
func (w *Weekly) Payload() Payload {
	data := make([]Payload, 0, len(w.Dailies))
	for _, daily := range w.Dailies {
		data = append(data, daily.Payload())
	}
	return Payload{
		Meta: map[string]string{"week": w.Week},
		Data: data,
	}
}

package alerts

import (
	"testing"
	"time"

	"github.com/opsgenie/opsgenie-go-sdk-v2/alert"
	"github.com/stretchr/testify/assert"

	"github.com/opsdigest/opsdigest/internal/timewindow"
)

func TestQueryFromWindow(t *testing.T) {
	window := timewindow.TimeWindow{
		Start: time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 2, 16, 23, 59, 59, 0, time.UTC),
	}

	assert.Equal(t,
		`createdAt >= "10-02-2025T00:00:00" and createdAt <= "16-02-2025T23:59:59"`,
		QueryFromWindow(window))
}

func TestQueryFromOpenWindow(t *testing.T) {
	window := timewindow.TimeWindow{
		Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, `createdAt >= "01-03-2025T00:00:00"`, QueryFromWindow(window))
}

func TestReportMarkdownEmpty(t *testing.T) {
	report := &Report{Query: "createdAt >= x"}
	markdown := report.Markdown()

	assert.Contains(t, markdown, "# Alerts report")
	assert.Contains(t, markdown, "No alerts in range.")
}

func TestReportMarkdown(t *testing.T) {
	report := &Report{
		Query: "q",
		Alerts: []alert.Alert{
			{
				Message:   "db | primary down",
				Priority:  alert.P1,
				Status:    "open",
				Count:     3,
				CreatedAt: time.Date(2025, 2, 26, 9, 30, 0, 0, time.UTC),
			},
			{
				Message:   "disk filling",
				Priority:  alert.P3,
				Status:    "closed",
				Count:     1,
				CreatedAt: time.Date(2025, 2, 26, 11, 0, 0, 0, time.UTC),
			},
		},
	}

	markdown := report.Markdown()

	assert.Contains(t, markdown, "| 2025-02-26 09:30 | P1 | open | 3 |")
	// Pipes inside messages must not break the table.
	assert.Contains(t, markdown, `db \| primary down`)
	assert.Contains(t, markdown, "Total: 2, P1: 1, P3: 1, open: 1, closed: 1")
}

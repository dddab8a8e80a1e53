// Package alerts produces the Opsgenie alerts digest.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/opsgenie/opsgenie-go-sdk-v2/alert"
	"github.com/opsgenie/opsgenie-go-sdk-v2/client"

	apperrors "github.com/opsdigest/opsdigest/internal/errors"
	"github.com/opsdigest/opsdigest/internal/timewindow"
)

// opsgenieTimeFormat is the datetime layout the alert query language
// expects.
const opsgenieTimeFormat = "02-01-2006T15:04:05"

const pageSize = 100

// Client fetches alert items from the Opsgenie API.
type Client struct {
	api *alert.Client
}

// NewClient creates an Opsgenie alerts client.
func NewClient(apiKey string) (*Client, error) {
	api, err := alert.NewClient(&client.Config{ApiKey: apiKey})
	if err != nil {
		return nil, apperrors.NewUpstreamAuthError("unable to configure Opsgenie client", err)
	}
	return &Client{api: api}, nil
}

// QueryFromWindow renders a window into the alert query expression.
// Serialization is deterministic per window.
func QueryFromWindow(window timewindow.TimeWindow) string {
	expression := fmt.Sprintf("createdAt >= %q", window.Start.Format(opsgenieTimeFormat))
	if !window.Open() {
		expression += fmt.Sprintf(" and createdAt <= %q", window.End.Format(opsgenieTimeFormat))
	}
	return expression
}

// Fetch lists all alerts matching the query, paginating as needed.
// Results arrive sorted ascending by creation time.
func (c *Client) Fetch(ctx context.Context, query string) ([]alert.Alert, error) {
	var alerts []alert.Alert
	offset := 0
	for {
		response, err := c.api.List(ctx, &alert.ListAlertRequest{
			Query:  query,
			Limit:  pageSize,
			Offset: offset,
			Sort:   alert.CreatedAt,
			Order:  alert.Asc,
		})
		if err != nil {
			return nil, mapError(err)
		}
		if len(response.Alerts) == 0 {
			break
		}
		alerts = append(alerts, response.Alerts...)
		if len(response.Alerts) < pageSize {
			break
		}
		offset += pageSize
	}
	return alerts, nil
}

// Report renders fetched alerts as a digest.
type Report struct {
	Query  string
	Alerts []alert.Alert
}

// Markdown renders the digest as a Markdown table with summary counts.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# Alerts report\n\n")
	fmt.Fprintf(&b, "Query: `%s`\n\n", r.Query)
	if len(r.Alerts) == 0 {
		b.WriteString("No alerts in range.\n")
		return b.String()
	}
	b.WriteString("| Created | Priority | Status | Count | Message |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, item := range r.Alerts {
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %s |\n",
			item.CreatedAt.Format("2006-01-02 15:04"),
			item.Priority, item.Status, item.Count,
			strings.ReplaceAll(item.Message, "|", "\\|"))
	}
	b.WriteString("\n" + r.summary())
	return b.String()
}

// RenderTable writes the digest as a terminal table.
func (r *Report) RenderTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Created", "Priority", "Status", "Count", "Message"})
	for _, item := range r.Alerts {
		table.Append([]string{
			item.CreatedAt.Format("2006-01-02 15:04"),
			string(item.Priority),
			item.Status,
			fmt.Sprintf("%d", item.Count),
			item.Message,
		})
	}
	table.Render()
	fmt.Fprintln(w)
	fmt.Fprint(w, r.summary())
}

// summary counts alerts by priority and status.
func (r *Report) summary() string {
	byPriority := make(map[string]int)
	byStatus := make(map[string]int)
	for _, item := range r.Alerts {
		byPriority[string(item.Priority)]++
		byStatus[item.Status]++
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Total: %d", len(r.Alerts))
	for _, priority := range []string{"P1", "P2", "P3", "P4", "P5"} {
		if count := byPriority[priority]; count > 0 {
			fmt.Fprintf(&b, ", %s: %d", priority, count)
		}
	}
	for _, status := range []string{"open", "closed"} {
		if count := byStatus[status]; count > 0 {
			fmt.Fprintf(&b, ", %s: %d", status, count)
		}
	}
	b.WriteString("\n")
	return b.String()
}

// mapError classifies Opsgenie API failures into the application error
// kinds.
func mapError(err error) error {
	var apiErr *client.ApiError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return apperrors.NewUpstreamAuthError("Opsgenie rejected credentials", err)
		case http.StatusTooManyRequests:
			return apperrors.NewRateLimitedError("Opsgenie rate limit hit", err)
		}
	}
	return apperrors.NewUpstreamUnavailableError("Opsgenie request failed", err)
}

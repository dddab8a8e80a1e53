package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opsdigest/opsdigest/internal/alerts"
	apperrors "github.com/opsdigest/opsdigest/internal/errors"
	"github.com/opsdigest/opsdigest/internal/report"
	"github.com/opsdigest/opsdigest/internal/timewindow"
)

var (
	reportDay    string
	reportWeek   string
	alertsFormat string
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Report activity across an organization",
	RunE: func(cmd *cobra.Command, args []string) error {
		if organization == "" {
			return apperrors.NewUsageError("please specify --organization")
		}
		if err := report.ValidateFormat(outputFormat); err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		resolver := timewindow.NewResolver()
		window, err := resolveWindow(resolver)
		if err != nil {
			return err
		}

		generator := report.NewActivityReport(newGitHubClient(cfg), report.ActivityOptions{
			Organization: organization,
			Author:       author,
			When:         whenExpression(),
			Window:       window,
		})
		markdown, err := generator.Generate(context.Background())
		if err != nil {
			return err
		}
		return emit(markdown, report.Payload{
			Meta: map[string]string{"organization": organization, "when": whenExpression()},
			Data: markdown,
		})
	},
}

var attentionCmd = &cobra.Command{
	Use:   "attention",
	Short: "Report items that need attention, bugs and incidents first",
	RunE: func(cmd *cobra.Command, args []string) error {
		if organization == "" {
			return apperrors.NewUsageError("please specify --organization")
		}
		if err := report.ValidateFormat(outputFormat); err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		resolver := timewindow.NewResolver()
		window, err := resolveWindow(resolver)
		if err != nil {
			return err
		}

		generator := report.NewAttentionReport(newGitHubClient(cfg), report.AttentionOptions{
			Organization: organization,
			When:         whenExpression(),
			Window:       window,
		})
		markdown, err := generator.Generate(context.Background())
		if err != nil {
			return err
		}
		return emit(markdown, report.Payload{
			Meta: map[string]string{"organization": organization, "when": whenExpression()},
			Data: markdown,
		})
	},
}

var ciCmd = &cobra.Command{
	Use:     "ci",
	Aliases: []string{"actions"},
	Short:   "Report recent CI failures, with fixed-since-then runs suppressed",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := report.ValidateFormat(outputFormat); err != nil {
			return err
		}
		repositories, err := repositoryList()
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		generator := report.NewCIReport(newGitHubClient(cfg), report.CIOptions{
			Repositories: repositories,
		})
		markdown, err := generator.Generate(context.Background())
		if err != nil {
			return err
		}
		return emit(markdown, report.Payload{
			Meta: map[string]string{"repositories": fmt.Sprint(len(repositories))},
			Data: markdown,
		})
	},
}

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Report Opsgenie alerts within a time window",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.RequireOpsgenie(); err != nil {
			return err
		}
		resolver := timewindow.NewResolver()
		window, err := resolveWindow(resolver)
		if err != nil {
			return err
		}

		client, err := alerts.NewClient(cfg.OpsgenieAPIKey)
		if err != nil {
			return err
		}
		query := alerts.QueryFromWindow(window)
		items, err := client.Fetch(context.Background(), query)
		if err != nil {
			return err
		}
		result := &alerts.Report{Query: query, Alerts: items}
		switch alertsFormat {
		case "table":
			result.RenderTable(os.Stdout)
		case "markdown", "":
			fmt.Println(result.Markdown())
		default:
			return apperrors.NewUnknownFormatError(alertsFormat)
		}
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Composite daily and weekly reports",
}

var reportDailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Composite report for one day",
	RunE: func(cmd *cobra.Command, args []string) error {
		if organization == "" {
			return apperrors.NewUsageError("please specify --organization")
		}
		if err := report.ValidateFormat(outputFormat); err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		resolver := timewindow.NewResolver()

		daily := report.NewDaily(reportDay, organization, resolver)
		if err := daily.Process(context.Background(), newGitHubClient(cfg), resolver); err != nil {
			return err
		}
		return emit(daily.Markdown(), daily.Payload())
	},
}

var reportWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Composite report for one ISO week",
	RunE: func(cmd *cobra.Command, args []string) error {
		if organization == "" {
			return apperrors.NewUsageError("please specify --organization")
		}
		if err := report.ValidateFormat(outputFormat); err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		resolver := timewindow.NewResolver()

		weekly := report.NewWeekly(reportWeek, organization, resolver)
		if err := weekly.Process(context.Background(), newGitHubClient(cfg), resolver); err != nil {
			return err
		}
		return emit(weekly.Markdown(), weekly.Payload())
	},
}

// emit renders the report in the selected output format to stdout.
func emit(markdown string, payload report.Payload) error {
	out, err := report.Render(markdown, payload, outputFormat)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, out)
	return nil
}

func init() {
	for _, cmd := range []*cobra.Command{activityCmd, attentionCmd} {
		cmd.Flags().StringVar(&organization, "organization", "", "GitHub organization to report on")
		cmd.Flags().StringVar(&when, "when", "", "time expression scoping the report")
		cmd.Flags().StringVar(&timerange, "timerange", "", "alias for --when")
		cmd.Flags().StringVar(&outputFormat, "format", report.FormatMarkdown, "output format (markdown, mrkdwn, yaml, json)")
	}
	activityCmd.Flags().StringVar(&author, "author", "", "limit to one author")

	ciCmd.Flags().StringVar(&repository, "repository", "", "single repository (org/name)")
	ciCmd.Flags().StringVar(&reposFile, "repositories-file", "", "file with one repository per line")
	ciCmd.Flags().StringVar(&outputFormat, "format", report.FormatMarkdown, "output format (markdown, mrkdwn, yaml, json)")

	alertsCmd.Flags().StringVar(&when, "when", "", "time expression scoping the report")
	alertsCmd.Flags().StringVar(&timerange, "timerange", "", "alias for --when")
	alertsCmd.Flags().StringVar(&alertsFormat, "format", "markdown", "output format (markdown, table)")

	reportDailyCmd.Flags().StringVar(&reportDay, "day", "", "day to report on (default today)")
	reportWeeklyCmd.Flags().StringVar(&reportWeek, "week", "", "ISO week, e.g. 2025W07 (default current)")
	for _, cmd := range []*cobra.Command{reportDailyCmd, reportWeeklyCmd} {
		cmd.Flags().StringVar(&organization, "organization", "", "GitHub organization to report on")
		cmd.Flags().StringVar(&outputFormat, "format", report.FormatMarkdown, "output format (markdown, mrkdwn, yaml, json)")
	}
	reportCmd.AddCommand(reportDailyCmd)
	reportCmd.AddCommand(reportWeeklyCmd)
}

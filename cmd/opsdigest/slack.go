package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/opsdigest/opsdigest/internal/errors"
	"github.com/opsdigest/opsdigest/internal/notify"
	"github.com/opsdigest/opsdigest/internal/slack"
	"github.com/opsdigest/opsdigest/internal/timewindow"
)

var (
	notifyWeek string
	zapWhen    string
	slackReply string
	exportDir  string
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Publish digests to Slack",
}

var notifyWeeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Publish or refresh the weekly digest thread",
	Long: `Publishes the weekly digest into a Slack conversation. The digest is
a root message with one threaded reply per report item; repeated runs
update the existing messages in place instead of posting duplicates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if organization == "" {
			return apperrors.NewUsageError("please specify --organization")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.RequireSlack(); err != nil {
			return err
		}

		conversation, err := slack.NewConversation(cfg.SlackToken, cfg.SlackChannel)
		if err != nil {
			return err
		}
		zapper := slack.NewZapper(zapWhen, conversation.DeleteSent)
		if err := zapper.Check(); err != nil {
			return err
		}

		resolver := timewindow.NewResolver()
		publisher := notify.NewWeeklyPublisher(
			conversation, newGitHubClient(cfg), resolver, notifyWeek, organization)
		if err := publisher.Refresh(context.Background()); err != nil {
			return err
		}
		return zapper.Process()
	},
}

var slackCmd = &cobra.Command{
	Use:   "slack",
	Short: "Slack conversation utilities",
}

var slackExportCmd = &cobra.Command{
	Use:   "export <thread-link>",
	Short: "Export a Slack thread to a Markdown file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.RequireSlack(); err != nil {
			return err
		}

		exporter := slack.NewThreadExporter(cfg.SlackToken)
		path, err := exporter.Export(args[0], exportDir)
		if err != nil {
			return err
		}
		slog.Info("thread exported", "path", path)
		return nil
	},
}

var slackSendCmd = &cobra.Command{
	Use:   "send [body]",
	Short: "Send a message, reading the body from stdin when omitted",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.RequireSlack(); err != nil {
			return err
		}

		var body string
		if len(args) == 1 {
			body = args[0]
		} else {
			raw, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}
			body = string(raw)
		}
		if body == "" {
			return apperrors.NewUsageError("nothing to send")
		}

		conversation, err := slack.NewConversation(cfg.SlackToken, cfg.SlackChannel)
		if err != nil {
			return err
		}
		ts, err := conversation.Send(body, slack.MessageFromAny(slackReply), "", nil)
		if err != nil {
			return err
		}
		fmt.Println(ts)
		return nil
	},
}

var slackDeleteCmd = &cobra.Command{
	Use:   "delete <timestamp-or-link>",
	Short: "Delete a message by timestamp or archive link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.RequireSlack(); err != nil {
			return err
		}

		// An archive link names its own channel; a bare timestamp
		// uses the configured one.
		channel := cfg.SlackChannel
		if strings.HasPrefix(args[0], "http") {
			channel = slack.ChannelFromAny(args[0])
		}
		conversation, err := slack.NewConversation(cfg.SlackToken, channel)
		if err != nil {
			return err
		}
		return conversation.Delete(slack.MessageFromAny(args[0]))
	},
}

func init() {
	notifyWeeklyCmd.Flags().StringVar(&organization, "organization", "", "GitHub organization to report on")
	notifyWeeklyCmd.Flags().StringVar(&notifyWeek, "week", "", "ISO week, e.g. 2025W07 (default current)")
	notifyWeeklyCmd.Flags().StringVar(&zapWhen, "zap", "", "delete sent messages after a delay or keypress, e.g. 30s or key")
	notifyCmd.AddCommand(notifyWeeklyCmd)

	slackExportCmd.Flags().StringVar(&exportDir, "output-dir", ".", "directory receiving the export")
	slackSendCmd.Flags().StringVar(&slackReply, "reply-to", "", "post as a reply in this thread")
	slackCmd.AddCommand(slackExportCmd)
	slackCmd.AddCommand(slackSendCmd)
	slackCmd.AddCommand(slackDeleteCmd)
}

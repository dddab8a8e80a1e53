// Package notify publishes recurring reports into a Slack thread,
// creating or updating messages keyed by structured metadata so
// repeated runs never duplicate them.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	slackapi "github.com/slack-go/slack"

	"github.com/opsdigest/opsdigest/internal/domain"
	"github.com/opsdigest/opsdigest/internal/errors"
	"github.com/opsdigest/opsdigest/internal/report"
	"github.com/opsdigest/opsdigest/internal/slack"
	"github.com/opsdigest/opsdigest/internal/source/github"
	"github.com/opsdigest/opsdigest/internal/timewindow"
)

const (
	rootEvent     = "digest_root_created"
	preambleEvent = "digest_preamble_created"
	itemEvent     = "digest_item_created"
	author        = "digest-bot"
)

// Version is the producer version stamped into the preamble.
const Version = "0.1.0"

// WeeklyPublisher converges the daily reports of one calendar week into
// a single Slack thread: one root message per week, one reply per item.
type WeeklyPublisher struct {
	Week         string
	Organization string

	conversation *slack.Conversation
	client       *github.Client
	resolver     *timewindow.Resolver

	// Message id of the root message, known after seeding.
	rootID string
}

// NewWeeklyPublisher creates a publisher. An empty week means the
// current calendar week.
func NewWeeklyPublisher(conversation *slack.Conversation, client *github.Client, resolver *timewindow.Resolver, week, organization string) *WeeklyPublisher {
	if week == "" {
		week = resolver.CurrentWeek()
	}
	return &WeeklyPublisher{
		Week:         week,
		Organization: organization,
		conversation: conversation,
		client:       client,
		resolver:     resolver,
	}
}

// Refresh seeds the week's thread and renders all items into it.
func (p *WeeklyPublisher) Refresh(ctx context.Context) error {
	if err := p.seed(); err != nil {
		return err
	}
	return p.render(ctx)
}

// seed creates or updates the root message and the preamble reply.
func (p *WeeklyPublisher) seed() error {
	slog.Info("creating or updating conversation", "week", p.Week)

	root := domain.Document{
		Markdown: p.rootMarkdown(),
		Metadata: map[string]string{"author": author, "type": "root", "week": p.Week},
	}
	id, err := p.upsertDocument(root, map[string]string{"type": "root", "week": p.Week}, "", rootEvent)
	if err != nil {
		return err
	}
	p.rootID = id
	if p.rootID == "" {
		return errors.NewRootMessageMissingError(p.Week)
	}

	preamble := report.Item{Type: "preamble", Day: p.Week, Markdown: p.preambleMarkdown()}
	return p.upsertItem(preamble, "preamble", preambleEvent)
}

// render generates the weekly report and upserts one reply per item.
func (p *WeeklyPublisher) render(ctx context.Context) error {
	weekly := report.NewWeekly(p.Week, p.Organization, p.resolver)
	if err := weekly.Process(ctx, p.client, p.resolver); err != nil {
		return err
	}
	for _, daily := range weekly.Dailies {
		for _, item := range daily.Items {
			if err := p.upsertItem(item, "item", itemEvent); err != nil {
				return err
			}
		}
	}
	return nil
}

// upsertItem creates or updates the reply representing one report item.
// At most one live reply exists per key; absence of the root message is
// a broken invariant, not a transient condition.
func (p *WeeklyPublisher) upsertItem(item report.Item, msgType, event string) error {
	key := item.Key()
	if p.rootID == "" {
		return errors.NewRootMessageMissingError(key)
	}
	slog.Info("creating or updating reply", "key", key)

	doc := domain.Document{
		Markdown: item.Markdown,
		Metadata: map[string]string{
			"key":    key,
			"type":   msgType,
			"author": author,
			"week":   p.Week,
			"day":    item.Day,
		},
	}
	_, err := p.upsertDocument(doc, map[string]string{"type": msgType, "key": key}, p.rootID, event)
	return err
}

// upsertDocument converges one document onto one message. The sequence
// is an explicit two-step state machine: search by exact metadata
// equality, then update in place or create, never both. An empty
// replyTo targets the top level of the channel.
func (p *WeeklyPublisher) upsertDocument(doc domain.Document, match map[string]string, replyTo, event string) (string, error) {
	var (
		messages []slackapi.Message
		err      error
	)
	if replyTo == "" {
		messages, err = p.conversation.Messages(0)
	} else {
		messages, err = p.conversation.Replies(replyTo, 0)
	}
	if err != nil {
		return "", err
	}

	body := report.ToMrkdwn(doc.Markdown)
	if message := slack.FindMessageByMetadata(messages, match); message != nil {
		return p.conversation.Update(message.Timestamp, body, event, doc.Metadata)
	}
	return p.conversation.Send(body, replyTo, event, doc.Metadata)
}

// rootMarkdown is the body for the root message.
func (p *WeeklyPublisher) rootMarkdown() string {
	return fmt.Sprintf("# digest-bot %s", p.Week)
}

// preambleMarkdown is the body for the preamble message.
func (p *WeeklyPublisher) preambleMarkdown() string {
	timestamp := time.Now().Truncate(time.Second).Format("2006-01-02T15:04:05")
	rootLink := ""
	if p.rootID != "" {
		if permalink, err := p.conversation.Permalink(p.rootID); err == nil {
			rootLink = fmt.Sprintf("  [link](%s)", permalink)
		}
	}
	lines := []string{
		fmt.Sprintf("**Week:** %s", p.Week),
		fmt.Sprintf("**Updated:** %s", timestamp),
		fmt.Sprintf("**Root message:** %s%s", p.rootID, rootLink),
		fmt.Sprintf("**Producer:** opsdigest v%s", Version),
	}
	return strings.Join(lines, "\n")
}

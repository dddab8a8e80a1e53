package slack

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/slack-go/slack"

	apperrors "github.com/opsdigest/opsdigest/internal/errors"
)

const defaultListLimit = 20

// Conversation wraps one Slack channel as a message store addressable
// by structured metadata. The store is append-only and shared with
// other writers, so message matching always uses exact metadata
// equality, never text content.
type Conversation struct {
	api       *slack.Client
	ChannelID string

	// Message ids sent during this invocation, for zapping.
	SentIDs []string
}

// NewConversation creates a conversation bound to a channel given by
// id, name, or archive URL.
func NewConversation(token, channel string) (*Conversation, error) {
	api := slack.New(token)
	conversation := &Conversation{api: api}
	channelID, err := conversation.resolveChannel(ChannelFromAny(channel))
	if err != nil {
		return nil, err
	}
	conversation.ChannelID = channelID
	return conversation, nil
}

// resolveChannel finds a channel id by id or name.
func (c *Conversation) resolveChannel(what string) (string, error) {
	params := &slack.GetConversationsParameters{Limit: 999}
	for {
		channels, cursor, err := c.api.GetConversations(params)
		if err != nil {
			return "", mapError("list channels", err)
		}
		for _, channel := range channels {
			if channel.ID == what || channel.Name == what {
				return channel.ID, nil
			}
		}
		if cursor == "" {
			return "", apperrors.NewUpstreamUnavailableError(
				fmt.Sprintf("unable to find channel: %s", what), nil)
		}
		params.Cursor = cursor
	}
}

// Messages enumerates the most recent top-level messages.
func (c *Conversation) Messages(limit int) ([]slack.Message, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	history, err := c.api.GetConversationHistory(&slack.GetConversationHistoryParameters{
		ChannelID:          c.ChannelID,
		Limit:              limit,
		Inclusive:          true,
		IncludeAllMetadata: true,
	})
	if err != nil {
		return nil, mapError("list messages", err)
	}
	return history.Messages, nil
}

// Replies enumerates the replies under a thread root.
func (c *Conversation) Replies(threadTS string, limit int) ([]slack.Message, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	messages, _, _, err := c.api.GetConversationReplies(&slack.GetConversationRepliesParameters{
		ChannelID:          c.ChannelID,
		Timestamp:          threadTS,
		Limit:              limit,
		Inclusive:          true,
		IncludeAllMetadata: true,
	})
	if err != nil {
		return nil, mapError("list replies", err)
	}
	return messages, nil
}

// FindMessageByMetadata returns the first message whose metadata
// payload carries every wanted key/value pair exactly, or nil.
func FindMessageByMetadata(messages []slack.Message, want map[string]string) *slack.Message {
	for i := range messages {
		payload := messages[i].Metadata.EventPayload
		if len(payload) == 0 {
			continue
		}
		found := true
		for key, value := range want {
			got, ok := payload[key].(string)
			if !ok || got != value {
				found = false
				break
			}
		}
		if found {
			return &messages[i]
		}
	}
	return nil
}

// Send submits a new message, optionally as a thread reply, and returns
// its id.
func (c *Conversation) Send(body, replyTo, event string, metadata map[string]string) (string, error) {
	options := []slack.MsgOption{slack.MsgOptionText(body, false)}
	if replyTo != "" {
		options = append(options, slack.MsgOptionTS(MessageFromAny(replyTo)))
	}
	if event != "" && metadata != nil {
		options = append(options, slack.MsgOptionMetadata(buildMetadata(event, metadata)))
	}
	_, timestamp, err := c.api.PostMessage(c.ChannelID, options...)
	if err != nil {
		return "", mapError("send message", err)
	}
	slog.Info("sent message", "ts", timestamp)
	c.SentIDs = append(c.SentIDs, timestamp)
	return timestamp, nil
}

// Update replaces the body and metadata of an existing message. The
// message id stays unchanged.
func (c *Conversation) Update(ts, body, event string, metadata map[string]string) (string, error) {
	id := MessageFromAny(ts)
	if id == "" {
		return "", fmt.Errorf("unable to decode message id: %q", ts)
	}
	options := []slack.MsgOption{slack.MsgOptionText(body, false)}
	if event != "" && metadata != nil {
		options = append(options, slack.MsgOptionMetadata(buildMetadata(event, metadata)))
	}
	_, timestamp, _, err := c.api.UpdateMessage(c.ChannelID, id, options...)
	if err != nil {
		return "", mapError("update message", err)
	}
	slog.Info("updated message", "ts", timestamp)
	return timestamp, nil
}

// Delete removes a message.
func (c *Conversation) Delete(ts string) error {
	id := MessageFromAny(ts)
	if _, _, err := c.api.DeleteMessage(c.ChannelID, id); err != nil {
		return mapError("delete message", err)
	}
	slog.Info("deleted message", "ts", id)
	return nil
}

// DeleteSent removes every message sent during this invocation.
func (c *Conversation) DeleteSent() error {
	for _, id := range c.SentIDs {
		if err := c.Delete(id); err != nil {
			return err
		}
	}
	c.SentIDs = nil
	return nil
}

// Permalink returns the public link to a message.
func (c *Conversation) Permalink(ts string) (string, error) {
	link, err := c.api.GetPermalink(&slack.PermalinkParameters{
		Channel: c.ChannelID,
		Ts:      MessageFromAny(ts),
	})
	if err != nil {
		return "", mapError("resolve permalink", err)
	}
	return link, nil
}

func buildMetadata(event string, payload map[string]string) slack.SlackMetadata {
	converted := make(map[string]interface{}, len(payload))
	for key, value := range payload {
		converted[key] = value
	}
	return slack.SlackMetadata{
		EventType:    event,
		EventPayload: converted,
	}
}

// mapError classifies Slack API failures into the application error
// kinds.
func mapError(what string, err error) error {
	message := err.Error()
	switch {
	case strings.Contains(message, "invalid_auth"),
		strings.Contains(message, "not_authed"),
		strings.Contains(message, "token_revoked"):
		return apperrors.NewUpstreamAuthError("Slack rejected credentials: "+what, err)
	case strings.Contains(message, "rate_limited"),
		strings.Contains(message, "ratelimited"):
		return apperrors.NewRateLimitedError("Slack rate limit hit: "+what, err)
	default:
		return apperrors.NewUpstreamUnavailableError("Slack request failed: "+what, err)
	}
}

package slack

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/slack-go/slack"
)

var mentionPattern = regexp.MustCompile(`<@([A-Z0-9]+)>`)

// ThreadExporter dumps a Slack thread into a Markdown file.
type ThreadExporter struct {
	api       *slack.Client
	userCache map[string]string
}

// NewThreadExporter creates a thread exporter.
func NewThreadExporter(token string) *ThreadExporter {
	return &ThreadExporter{
		api:       slack.New(token),
		userCache: make(map[string]string),
	}
}

// Export writes the thread behind an archive URL to a Markdown file in
// outputDir and returns the file path.
func (e *ThreadExporter) Export(link, outputDir string) (string, error) {
	decoded, err := ParseArchiveURL(link)
	if err != nil || decoded.ChannelID == "" || decoded.Timestamp == "" {
		return "", fmt.Errorf("unable to decode thread link: %q", link)
	}
	threadTS := decoded.Timestamp
	if decoded.ThreadTS != "" {
		threadTS = decoded.ThreadTS
	}

	channelName := decoded.ChannelID
	if info, err := e.api.GetConversationInfo(&slack.GetConversationInfoInput{
		ChannelID: decoded.ChannelID,
	}); err == nil {
		channelName = info.Name
	}

	var messages []slack.Message
	params := &slack.GetConversationRepliesParameters{
		ChannelID: decoded.ChannelID,
		Timestamp: threadTS,
		Limit:     200,
		Inclusive: true,
	}
	for {
		page, hasMore, cursor, err := e.api.GetConversationReplies(params)
		if err != nil {
			return "", mapError("list thread replies", err)
		}
		messages = append(messages, page...)
		if !hasMore {
			break
		}
		params.Cursor = cursor
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, fmt.Sprintf("%s-%s.md", channelName, strings.ReplaceAll(threadTS, ".", "")))

	var b strings.Builder
	fmt.Fprintf(&b, "# Thread in #%s\n", channelName)
	for _, message := range messages {
		author := e.resolveUser(message.User)
		fmt.Fprintf(&b, "\n## %s (%s)\n\n%s\n",
			author, formatTimestamp(message.Timestamp), e.replaceMentions(message.Text))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	slog.Info("exported thread", "path", path, "messages", len(messages))
	return path, nil
}

// resolveUser translates a user id into "@name", caching lookups.
func (e *ThreadExporter) resolveUser(userID string) string {
	if userID == "" {
		return "@unknown"
	}
	if name, ok := e.userCache[userID]; ok {
		return name
	}
	user, err := e.api.GetUserInfo(userID)
	if err != nil {
		slog.Warn("unable to resolve user", "user", userID, "error", err)
		return "<@" + userID + ">"
	}
	name := "@" + user.Name
	e.userCache[userID] = name
	return name
}

// replaceMentions rewrites <@USERID> mentions as bold usernames.
func (e *ThreadExporter) replaceMentions(text string) string {
	return mentionPattern.ReplaceAllStringFunc(text, func(mention string) string {
		userID := mentionPattern.FindStringSubmatch(mention)[1]
		return "**" + e.resolveUser(userID) + "**"
	})
}

func formatTimestamp(ts string) string {
	parts := strings.SplitN(ts, ".", 2)
	seconds, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return ts
	}
	return time.Unix(seconds, 0).UTC().Format(time.RFC3339)
}

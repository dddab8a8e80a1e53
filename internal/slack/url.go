package slack

import (
	"net/url"
	"strings"
)

// ArchiveURL decodes a Slack archive URL.
//
//	https://acme.slack.com/archives/C08EF2NGZGB
//	https://acme.slack.com/archives/C08EF2NGZGB/p1740478361323219?thread_ts=1740421750.904349&cid=C08EF2NGZGB
type ArchiveURL struct {
	ChannelID string
	Timestamp string
	ThreadTS  string
}

// ParseArchiveURL decodes channel and message ids from an archive URL.
func ParseArchiveURL(rawURL string) (*ArchiveURL, error) {
	uri, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	segments := strings.Split(strings.Trim(uri.Path, "/"), "/")
	decoded := &ArchiveURL{ThreadTS: uri.Query().Get("thread_ts")}
	if len(segments) >= 2 {
		decoded.ChannelID = segments[1]
	}
	if len(segments) >= 3 {
		decoded.Timestamp = decodeMessageID(segments[2])
	}
	return decoded, nil
}

// decodeMessageID converts the URL form "p1740478361323219" into the
// API form "1740478361.323219".
func decodeMessageID(segment string) string {
	id := strings.TrimPrefix(segment, "p")
	if len(id) <= 6 {
		return id
	}
	return id[:len(id)-6] + "." + id[len(id)-6:]
}

// ChannelFromAny accepts a channel id, a "#name", or an archive URL.
func ChannelFromAny(value string) string {
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		if decoded, err := ParseArchiveURL(value); err == nil {
			return decoded.ChannelID
		}
		return value
	}
	return strings.TrimPrefix(value, "#")
}

// MessageFromAny accepts a message timestamp or an archive URL.
func MessageFromAny(value string) string {
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		if decoded, err := ParseArchiveURL(value); err == nil {
			return decoded.Timestamp
		}
	}
	return value
}

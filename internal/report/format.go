package report

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/opsdigest/opsdigest/internal/errors"
)

// Output formats.
const (
	FormatMarkdown = "markdown"
	FormatMrkdwn   = "mrkdwn"
	FormatYAML     = "yaml"
	FormatJSON     = "json"
)

// Payload is the structural form of a report, used for the YAML and
// JSON audit dumps.
type Payload struct {
	Meta map[string]string `yaml:"meta" json:"meta"`
	Data any               `yaml:"data" json:"data"`
}

// Render produces the report in the requested format. Markdown is the
// native form; mrkdwn is a pure text-substitution conversion; yaml and
// json dump the structural payload.
func Render(markdown string, payload Payload, format string) (string, error) {
	switch format {
	case FormatMarkdown, "":
		return markdown, nil
	case FormatMrkdwn:
		return ToMrkdwn(markdown), nil
	case FormatYAML:
		out, err := yaml.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("failed to render yaml: %w", err)
		}
		return string(out), nil
	case FormatJSON:
		out, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to render json: %w", err)
		}
		return string(out), nil
	default:
		return "", apperrors.NewUnknownFormatError(format)
	}
}

var (
	headingPattern = regexp.MustCompile(`(?m)^#{1,6} (.+)$`)
	boldPattern    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	strikePattern  = regexp.MustCompile(`~~([^~]+)~~`)
	bulletPattern  = regexp.MustCompile(`(?m)^(\s*)- `)
)

// ToMrkdwn converts Markdown into the Slack mrkdwn dialect. Only
// heading, bold, strikethrough and list-bullet markers are remapped;
// plain prose passes through unchanged, so converting prose twice is a
// no-op.
func ToMrkdwn(markdown string) string {
	out := headingPattern.ReplaceAllString(markdown, "*$1*")
	out = boldPattern.ReplaceAllString(out, "*$1*")
	out = strikePattern.ReplaceAllString(out, "~$1~")
	out = bulletPattern.ReplaceAllString(out, "$1• ")
	return out
}

// ValidateFormat rejects formats Render does not support.
func ValidateFormat(format string) error {
	switch format {
	case FormatMarkdown, FormatMrkdwn, FormatYAML, FormatJSON, "":
		return nil
	default:
		return apperrors.NewUnknownFormatError(format)
	}
}

// trimBlank removes leading and trailing blank lines.
func trimBlank(s string) string {
	return strings.Trim(s, "\n")
}

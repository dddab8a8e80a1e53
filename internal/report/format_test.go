package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMrkdwn(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"heading", "# Title", "*Title*"},
		{"deep heading", "### Sub", "*Sub*"},
		{"bold", "some **emphasis** here", "some *emphasis* here"},
		{"strikethrough", "was ~~removed~~", "was ~removed~"},
		{"bullet", "- item", "• item"},
		{"nested bullet", "  - item", "  • item"},
		{"mixed document", "# Report\n\n- **first**\n- ~~gone~~", "*Report*\n\n• *first*\n• ~gone~"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToMrkdwn(tt.in))
		})
	}
}

func TestToMrkdwnProseIsStable(t *testing.T) {
	prose := "A plain paragraph with a [link](https://example.org) and *single stars*.\n"
	assert.Equal(t, prose, ToMrkdwn(prose))
	assert.Equal(t, ToMrkdwn(prose), ToMrkdwn(ToMrkdwn(prose)))
}

func TestRenderMarkdownPassthrough(t *testing.T) {
	got, err := Render("# Hello", Payload{}, FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "# Hello", got)

	got, err = Render("# Hello", Payload{}, "")
	require.NoError(t, err)
	assert.Equal(t, "# Hello", got)
}

func TestRenderJSON(t *testing.T) {
	payload := Payload{
		Meta: map[string]string{"day": "2025-02-26"},
		Data: []string{"one", "two"},
	}

	got, err := Render("ignored", payload, FormatJSON)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(got), &decoded))
	assert.Equal(t, "2025-02-26", decoded["meta"].(map[string]any)["day"])
}

func TestRenderYAML(t *testing.T) {
	payload := Payload{
		Meta: map[string]string{"week": "2025W09"},
		Data: "body",
	}

	got, err := Render("ignored", payload, FormatYAML)
	require.NoError(t, err)
	assert.Contains(t, got, "week: 2025W09")
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := Render("x", Payload{}, "pdf")
	assert.Error(t, err)
}

func TestValidateFormat(t *testing.T) {
	for _, format := range []string{FormatMarkdown, FormatMrkdwn, FormatYAML, FormatJSON, ""} {
		assert.NoError(t, ValidateFormat(format), format)
	}
	assert.Error(t, ValidateFormat("pdf"))
}

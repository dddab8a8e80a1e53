package github

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name string
		spec SearchSpec
		kind Kind
		want string
	}{
		{
			name: "minimal",
			spec: SearchSpec{Organization: "acme"},
			kind: KindIssue,
			want: "org:acme is:issue",
		},
		{
			name: "full pull request search",
			spec: SearchSpec{
				Organization: "acme",
				Author:       "jdoe",
				Updated:      "2025-02-10..2025-02-16",
				State:        "open",
			},
			kind: KindPullRequest,
			want: "org:acme updated:2025-02-10..2025-02-16 author:jdoe state:open is:pr",
		},
		{
			name: "labels quoted when spaced",
			spec: SearchSpec{
				Organization: "acme",
				Labels:       []string{"bug", "type: incident"},
			},
			kind: KindIssue,
			want: `org:acme label:bug,"type: incident" is:issue`,
		},
		{
			name: "open window",
			spec: SearchSpec{Organization: "acme", Updated: ">=2025-03-01"},
			kind: KindIssue,
			want: "org:acme updated:>=2025-03-01 is:issue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildQuery(tt.spec, tt.kind))
		})
	}
}

func TestBuildQueryJoinsLabelsIntoOneQualifier(t *testing.T) {
	spec := SearchSpec{
		Organization: "acme",
		Labels:       []string{"bug", "important", "incident", "stale"},
	}

	query := BuildQuery(spec, KindIssue)

	// A label list must match items carrying any of the labels, so all
	// values share a single label: qualifier.
	assert.Equal(t, "org:acme label:bug,important,incident,stale is:issue", query)
	assert.Equal(t, 1, strings.Count(query, "label:"))
}

func TestBuildQueryDeterministic(t *testing.T) {
	spec := SearchSpec{
		Organization: "acme",
		Author:       "jdoe",
		Labels:       []string{"bug", "stale"},
		Updated:      "2025-02-10..2025-02-16",
	}
	first := BuildQuery(spec, KindIssue)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, BuildQuery(spec, KindIssue))
	}
}

func TestSearchURL(t *testing.T) {
	spec := SearchSpec{Organization: "acme", Updated: ">=2025-03-01"}

	api := SearchURL(spec, KindIssue, TargetAPI)
	assert.True(t, strings.HasPrefix(api, "https://api.github.com/search/issues?"))

	html := SearchURL(spec, KindPullRequest, TargetHTML)
	assert.True(t, strings.HasPrefix(html, "https://github.com/search?"))

	// The query part round-trips through URL escaping.
	parsed, err := url.Parse(api)
	require.NoError(t, err)
	assert.Equal(t, "org:acme updated:>=2025-03-01 is:issue", parsed.Query().Get("q"))
}

func TestQuoteLabel(t *testing.T) {
	assert.Equal(t, "bug", quoteLabel("bug"))
	assert.Equal(t, `"type: bug"`, quoteLabel("type: bug"))
}

func TestRepositoryName(t *testing.T) {
	tests := []struct {
		url      string
		withOrg  bool
		expected string
	}{
		{"https://github.com/acme/widget/pull/42", false, "widget"},
		{"https://github.com/acme/widget/pull/42", true, "acme/widget"},
		{"https://api.github.com/repos/acme/widget/issues/7", false, "widget"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, RepositoryName(tt.url, tt.withOrg), tt.url)
	}
}

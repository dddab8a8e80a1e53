package github

import (
	"net/url"
	"strings"
)

// Kind selects the record kind a search targets.
type Kind string

const (
	KindIssue       Kind = "issue"
	KindPullRequest Kind = "pr"
)

// Target selects which URL flavor a search renders to.
type Target string

const (
	TargetAPI  Target = "api"
	TargetHTML Target = "html"
)

const (
	apiTemplate  = "https://api.github.com/search/issues?per_page=100&sort=created&order=asc&q="
	htmlTemplate = "https://github.com/search?per_page=100&s=created&o=asc&q="
)

// SearchSpec is the plain configuration for a record search. The four
// URL variants (issue/pr crossed with API/HTML) all derive from one spec
// through pure functions, so each is independently testable.
type SearchSpec struct {
	Organization string
	Author       string
	Labels       []string
	State        string
	Updated      string // window in GitHub filter syntax
}

// BuildQuery renders the spec into a GitHub search expression for the
// given kind. Constraint order is fixed so identical specs always
// produce identical query strings, which the response cache relies on.
func BuildQuery(spec SearchSpec, kind Kind) string {
	var constraints []string
	add := func(field, value string) {
		if value != "" {
			constraints = append(constraints, field+":"+value)
		}
	}
	add("org", spec.Organization)
	add("updated", spec.Updated)
	add("author", spec.Author)
	if len(spec.Labels) > 0 {
		quoted := make([]string, len(spec.Labels))
		for i, label := range spec.Labels {
			quoted[i] = quoteLabel(label)
		}
		// One comma-joined qualifier matches any of the labels;
		// separate label: qualifiers would require all of them.
		add("label", strings.Join(quoted, ","))
	}
	add("state", spec.State)
	constraints = append(constraints, "is:"+string(kind))
	return strings.Join(constraints, " ")
}

// SearchURL renders the spec into a search URL for the given kind and
// target.
func SearchURL(spec SearchSpec, kind Kind, target Target) string {
	query := url.QueryEscape(BuildQuery(spec, kind))
	if target == TargetHTML {
		return htmlTemplate + query
	}
	return apiTemplate + query
}

// quoteLabel wraps label values containing spaces in double quotes, as
// the GitHub search syntax requires.
func quoteLabel(label string) string {
	if strings.Contains(label, " ") {
		return `"` + label + `"`
	}
	return label
}

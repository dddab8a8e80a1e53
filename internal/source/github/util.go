package github

import (
	"net/url"
	"strings"
)

// RepositoryName computes a repository name from a full GitHub URL.
//
//	https://github.com/acme/widget
//	https://github.com/acme/widget/issues/19
//	https://api.github.com/repos/acme/widget
func RepositoryName(rawURL string, withOrg bool) string {
	if strings.Contains(rawURL, "api.github.com") {
		rawURL = strings.Replace(rawURL, "/repos", "", 1)
	}
	uri, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(uri.Path, "/")
	if len(parts) < 3 {
		return ""
	}
	if withOrg {
		return parts[1] + "/" + parts[2]
	}
	return parts[2]
}

// splitRepository splits "org/repo" into its parts.
func splitRepository(repository string) (owner, repo string) {
	parts := strings.SplitN(repository, "/", 2)
	if len(parts) != 2 {
		return repository, ""
	}
	return parts[0], parts[1]
}

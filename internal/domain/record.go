package domain

import "time"

// RecordState represents the lifecycle state of an issue or pull request
type RecordState string

const (
	RecordStateOpen   RecordState = "open"
	RecordStateClosed RecordState = "closed"
)

// ActivityRecord represents an issue or pull request fetched from the
// source API. Records live for a single report pass and are never
// persisted. Category is the one field assigned after construction,
// by the label classifier.
type ActivityRecord struct {
	ID         int64
	Number     int
	URL        string // HTML URL, also the record identity for dedup
	APIURL     string
	Title      string
	Repository string // "org/repo"
	CreatedAt  time.Time
	State      RecordState
	Labels     []string
	Category   string

	// Weight attributes. Issues only carry Comments; pull requests
	// additionally carry review comments and change sizes fetched from
	// the detail endpoint.
	IsPullRequest  bool
	Comments       int
	ReviewComments int
	Additions      int
	Deletions      int
	ChangedFiles   int
}

// CodeSize returns the code size delta of a pull request.
func (r *ActivityRecord) CodeSize() int {
	return r.Additions - r.Deletions
}

// CommentsTotal returns the total amount of discussion on the record.
func (r *ActivityRecord) CommentsTotal() int {
	return r.Comments + r.ReviewComments
}

// RepositoryName returns the repository name without the organization part.
func (r *ActivityRecord) RepositoryName() string {
	for i := len(r.Repository) - 1; i >= 0; i-- {
		if r.Repository[i] == '/' {
			return r.Repository[i+1:]
		}
	}
	return r.Repository
}

package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"

	"github.com/opsdigest/opsdigest/internal/cache"
	"github.com/opsdigest/opsdigest/internal/domain"
	apperrors "github.com/opsdigest/opsdigest/internal/errors"
)

const requestTimeout = 30 * time.Second

// Client fetches issues, pull requests and workflow runs from GitHub.
// It is constructed once at process start with an injected credential
// and cache store, and passed by reference to every component that
// queries the source.
type Client struct {
	gh          *github.Client
	rateLimiter RateLimiter
}

// NewClient creates a GitHub client. The cache store may be nil, in
// which case responses are not cached.
func NewClient(token string, store cache.Store) *Client {
	var base http.RoundTripper = http.DefaultTransport
	if token != "" {
		base = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   base,
		}
	}
	httpClient := &http.Client{
		Transport: cache.NewTransport(base, store, cache.DefaultTTL),
		Timeout:   requestTimeout,
	}
	return &Client{
		gh:          github.NewClient(httpClient),
		rateLimiter: NewRateLimiter(),
	}
}

// SearchRecords runs a paginated search for one record kind. Results
// arrive sorted ascending by creation time.
func (c *Client) SearchRecords(ctx context.Context, spec SearchSpec, kind Kind) ([]*domain.ActivityRecord, error) {
	query := BuildQuery(spec, kind)
	opts := &github.SearchOptions{
		Sort:        "created",
		Order:       "asc",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var records []*domain.ActivityRecord
	for {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
		result, resp, err := c.gh.Search.Issues(ctx, query, opts)
		if err != nil {
			return nil, mapError(resp, err, fmt.Sprintf("search %s records", kind))
		}
		c.updateRateLimitFromResponse(resp)

		for _, issue := range result.Issues {
			records = append(records, recordFromIssue(issue))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return records, nil
}

// SearchAll combines issue and pull request results for one spec.
func (c *Client) SearchAll(ctx context.Context, spec SearchSpec) ([]*domain.ActivityRecord, error) {
	issues, err := c.SearchRecords(ctx, spec, KindIssue)
	if err != nil {
		return nil, err
	}
	pulls, err := c.SearchRecords(ctx, spec, KindPullRequest)
	if err != nil {
		return nil, err
	}
	return append(issues, pulls...), nil
}

// PullDetail fetches the full-fidelity pull request record behind a
// search result, filling in the weight attributes the search summary
// lacks. A detail response without a base repository name yields a
// MISSING_FIELD error so the caller can drop the record and continue.
func (c *Client) PullDetail(ctx context.Context, record *domain.ActivityRecord) (*domain.ActivityRecord, error) {
	owner, repo := splitRepository(record.Repository)
	if owner == "" || repo == "" {
		return nil, apperrors.NewMissingFieldError("repository")
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}
	pr, resp, err := c.gh.PullRequests.Get(ctx, owner, repo, record.Number)
	if err != nil {
		return nil, mapError(resp, err, fmt.Sprintf("fetch pull request %s#%d", record.Repository, record.Number))
	}
	c.updateRateLimitFromResponse(resp)

	// Second decode stage: the one nested field the ranking output
	// depends on must be present explicitly.
	if pr.Base == nil || pr.Base.Repo == nil || pr.Base.Repo.GetName() == "" {
		return nil, apperrors.NewMissingFieldError("base.repo.name")
	}

	detail := *record
	detail.IsPullRequest = true
	detail.Comments = pr.GetComments()
	detail.ReviewComments = pr.GetReviewComments()
	detail.Additions = pr.GetAdditions()
	detail.Deletions = pr.GetDeletions()
	detail.ChangedFiles = pr.GetChangedFiles()
	detail.Repository = pr.Base.Repo.GetOwner().GetLogin() + "/" + pr.Base.Repo.GetName()
	return &detail, nil
}

// RunsFilter narrows a workflow run listing.
type RunsFilter struct {
	Event   string
	Status  string
	Created string
}

// ListRuns lists workflow runs of one repository. Repositories without
// Actions enabled (HTTP 404) yield an empty result, not an error.
func (c *Client) ListRuns(ctx context.Context, repository string, filter RunsFilter) ([]domain.RunOutcome, error) {
	owner, repo := splitRepository(repository)
	opts := &github.ListWorkflowRunsOptions{
		Event:       filter.Event,
		Status:      filter.Status,
		Created:     filter.Created,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var outcomes []domain.RunOutcome
	for {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
		runs, resp, err := c.gh.Actions.ListRepositoryWorkflowRuns(ctx, owner, repo, opts)
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusNotFound {
				return outcomes, nil
			}
			return nil, mapError(resp, err, fmt.Sprintf("list workflow runs for %s", repository))
		}
		c.updateRateLimitFromResponse(resp)

		for _, run := range runs.WorkflowRuns {
			outcomes = append(outcomes, domain.RunOutcome{
				ID:         run.GetID(),
				Event:      domain.RunEvent(run.GetEvent()),
				Status:     run.GetStatus(),
				Conclusion: run.GetConclusion(),
				Repository: repository,
				Name:       run.GetDisplayTitle(),
				URL:        run.GetHTMLURL(),
				StartedAt:  run.GetRunStartedAt().Time,
				HeadBranch: run.GetHeadBranch(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return outcomes, nil
}

// RepoError pairs a repository with the error its fetch produced.
type RepoError struct {
	Repository string
	Err        error
}

// ListRunsMulti fetches workflow runs for several repositories
// concurrently. Results are merged in repository input order, then by
// start time, so the final ordering is independent of completion order.
// A single repository's failure does not abort the others; failures are
// returned alongside the partial result.
func (c *Client) ListRunsMulti(ctx context.Context, repositories []string, filter RunsFilter) ([]domain.RunOutcome, []RepoError) {
	type slot struct {
		outcomes []domain.RunOutcome
		err      error
	}
	slots := make([]slot, len(repositories))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 5)
	for i, repository := range repositories {
		wg.Add(1)
		go func(i int, repository string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()
			outcomes, err := c.ListRuns(ctx, repository, filter)
			slots[i] = slot{outcomes: outcomes, err: err}
		}(i, repository)
	}
	wg.Wait()

	var (
		outcomes []domain.RunOutcome
		failures []RepoError
	)
	for i, s := range slots {
		if s.err != nil {
			failures = append(failures, RepoError{Repository: repositories[i], Err: s.err})
			continue
		}
		outcomes = append(outcomes, s.outcomes...)
	}
	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].StartedAt.Before(outcomes[j].StartedAt)
	})
	return outcomes, failures
}

func (c *Client) updateRateLimitFromResponse(resp *github.Response) {
	if resp == nil || resp.Rate.Reset.IsZero() {
		return
	}
	// Cached responses replay their original rate limit headers. A
	// reset instant already in the past carries no information and
	// must not push the limiter into a spurious reset wait.
	if resp.Rate.Reset.Time.Before(time.Now()) {
		return
	}
	c.rateLimiter.UpdateLimit(resp.Rate.Remaining, resp.Rate.Reset.Time)
}

// mapError classifies upstream failures into the application error kinds.
func mapError(resp *github.Response, err error, what string) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return apperrors.NewRateLimitedError("GitHub rate limit exhausted: "+what, err)
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return apperrors.NewRateLimitedError("GitHub secondary rate limit hit: "+what, err)
	}
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return apperrors.NewUpstreamAuthError("GitHub rejected credentials: "+what, err)
		}
	}
	return apperrors.NewUpstreamUnavailableError("GitHub request failed: "+what, err)
}

func recordFromIssue(issue *github.Issue) *domain.ActivityRecord {
	labels := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}
	return &domain.ActivityRecord{
		ID:            issue.GetID(),
		Number:        issue.GetNumber(),
		URL:           issue.GetHTMLURL(),
		APIURL:        issue.GetURL(),
		Title:         issue.GetTitle(),
		Repository:    RepositoryName(issue.GetRepositoryURL(), true),
		CreatedAt:     issue.GetCreatedAt().Time,
		State:         domain.RecordState(issue.GetState()),
		Labels:        labels,
		IsPullRequest: issue.IsPullRequest(),
		Comments:      issue.GetComments(),
	}
}

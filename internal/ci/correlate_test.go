package ci

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdigest/opsdigest/internal/domain"
)

func failedRun(id int64, event domain.RunEvent, repo, branch, name string) domain.RunOutcome {
	return domain.RunOutcome{
		ID: id, Event: event, Status: "failure", Conclusion: "failure",
		Repository: repo, HeadBranch: branch, Name: name,
	}
}

func greenRun(repo, branch, name string) domain.RunOutcome {
	return domain.RunOutcome{
		Event: domain.RunEventPullRequest, Status: "success", Conclusion: "success",
		Repository: repo, HeadBranch: branch, Name: name,
	}
}

func TestCorrelateEmpty(t *testing.T) {
	assert.Empty(t, NewCorrelator().Correlate(nil, nil))
}

func TestCorrelateSuppressesFixedPullRequestFailures(t *testing.T) {
	failed := []domain.RunOutcome{
		failedRun(1, domain.RunEventPullRequest, "acme/api", "feature-x", "Tests"),
	}
	succeeded := []domain.RunOutcome{
		greenRun("acme/api", "feature-x", "Tests"),
	}

	assert.Empty(t, NewCorrelator().Correlate(failed, succeeded))
}

func TestCorrelateNeverSuppressesScheduledFailures(t *testing.T) {
	failed := []domain.RunOutcome{
		failedRun(1, domain.RunEventSchedule, "acme/api", "main", "Nightly"),
	}
	succeeded := []domain.RunOutcome{
		greenRun("acme/api", "main", "Nightly"),
	}

	got := NewCorrelator().Correlate(failed, succeeded)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestCorrelateStrictPolicyRequiresSameName(t *testing.T) {
	failed := []domain.RunOutcome{
		failedRun(1, domain.RunEventPullRequest, "acme/api", "feature-x", "Tests"),
	}
	succeeded := []domain.RunOutcome{
		greenRun("acme/api", "feature-x", "Lint"),
	}

	got := NewCorrelator().Correlate(failed, succeeded)
	require.Len(t, got, 1)
	assert.Equal(t, "Tests", got[0].Name)
}

func TestCorrelateBranchPolicySuppressesAcrossNames(t *testing.T) {
	failed := []domain.RunOutcome{
		failedRun(1, domain.RunEventPullRequest, "acme/api", "feature-x", "Tests"),
	}
	succeeded := []domain.RunOutcome{
		greenRun("acme/api", "feature-x", "Lint"),
	}

	correlator := &Correlator{Policy: MatchBranch}
	assert.Empty(t, correlator.Correlate(failed, succeeded))
}

func TestCorrelateIgnoresOtherBranchesAndRepos(t *testing.T) {
	failed := []domain.RunOutcome{
		failedRun(1, domain.RunEventPullRequest, "acme/api", "feature-x", "Tests"),
		failedRun(2, domain.RunEventPullRequest, "acme/web", "feature-x", "Tests"),
	}
	succeeded := []domain.RunOutcome{
		greenRun("acme/api", "feature-y", "Tests"),
		greenRun("acme/other", "feature-x", "Tests"),
	}

	got := NewCorrelator().Correlate(failed, succeeded)
	assert.Len(t, got, 2)
}

func TestCorrelateDeduplicatesRepeatedFailures(t *testing.T) {
	failed := []domain.RunOutcome{
		failedRun(1, domain.RunEventSchedule, "acme/api", "main", "Nightly"),
		failedRun(2, domain.RunEventSchedule, "acme/api", "main", "Nightly"),
		failedRun(3, domain.RunEventSchedule, "acme/api", "main", "Backup"),
	}

	got := NewCorrelator().Correlate(failed, nil)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
}

func TestCorrelatePreservesInputOrder(t *testing.T) {
	failed := []domain.RunOutcome{
		failedRun(3, domain.RunEventSchedule, "acme/api", "main", "C"),
		failedRun(1, domain.RunEventSchedule, "acme/api", "main", "A"),
		failedRun(2, domain.RunEventSchedule, "acme/api", "main", "B"),
	}

	got := NewCorrelator().Correlate(failed, nil)
	require.Len(t, got, 3)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)
	assert.Equal(t, int64(2), got[2].ID)
}

func TestCorrelateIgnoresNonSuccessConclusions(t *testing.T) {
	failed := []domain.RunOutcome{
		failedRun(1, domain.RunEventPullRequest, "acme/api", "feature-x", "Tests"),
	}
	succeeded := []domain.RunOutcome{
		{
			Event: domain.RunEventPullRequest, Status: "success", Conclusion: "neutral",
			Repository: "acme/api", HeadBranch: "feature-x", Name: "Tests",
		},
	}

	got := NewCorrelator().Correlate(failed, succeeded)
	assert.Len(t, got, 1)
}

// Package ci reduces CI failure noise: failures already fixed by a
// later green run are suppressed, and repeated failures of the same job
// collapse into one.
package ci

import "github.com/opsdigest/opsdigest/internal/domain"

// MatchPolicy selects the suppression granularity. The source history
// is ambiguous about the right one, so it stays configurable.
type MatchPolicy int

const (
	// MatchBranchAndName suppresses a failure only when a succeeding
	// run shares repository, branch and job name and concluded with
	// "success". This is the default.
	MatchBranchAndName MatchPolicy = iota

	// MatchBranch suppresses a failure when any succeeding run shares
	// repository and branch.
	MatchBranch
)

// Correlator filters failed workflow runs against later successes.
type Correlator struct {
	Policy MatchPolicy
}

// NewCorrelator creates a correlator with the strict default policy.
func NewCorrelator() *Correlator {
	return &Correlator{Policy: MatchBranchAndName}
}

// Correlate returns the failures worth surfacing, preserving input
// order. Only pull-request failures benefit from the "fixed since"
// suppression: scheduled, push and dynamic runs have no retry branch to
// go green on. Surfaced failures are deduplicated by
// (repository, branch, name), keeping the first.
func (c *Correlator) Correlate(failed, succeeded []domain.RunOutcome) []domain.RunOutcome {
	type runKey struct {
		repository string
		branch     string
		name       string
	}

	surfaced := make([]domain.RunOutcome, 0, len(failed))
	seen := make(map[runKey]bool, len(failed))
	for _, run := range failed {
		if run.Event == domain.RunEventPullRequest && c.fixedSince(run, succeeded) {
			continue
		}
		key := runKey{repository: run.Repository, branch: run.HeadBranch, name: run.Name}
		if seen[key] {
			continue
		}
		seen[key] = true
		surfaced = append(surfaced, run)
	}
	return surfaced
}

// fixedSince reports whether a succeeding run covers the failed one
// under the configured policy.
func (c *Correlator) fixedSince(run domain.RunOutcome, succeeded []domain.RunOutcome) bool {
	for _, success := range succeeded {
		if success.Repository != run.Repository || success.HeadBranch != run.HeadBranch {
			continue
		}
		switch c.Policy {
		case MatchBranch:
			if success.Conclusion == "success" {
				return true
			}
		case MatchBranchAndName:
			if success.Name == run.Name && success.Conclusion == "success" {
				return true
			}
		}
	}
	return false
}

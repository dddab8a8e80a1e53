package domain

import "time"

// RunEvent represents the trigger of a workflow run
type RunEvent string

const (
	RunEventSchedule    RunEvent = "schedule"
	RunEventPullRequest RunEvent = "pull_request"
	RunEventPush        RunEvent = "push"
	RunEventDynamic     RunEvent = "dynamic"
)

// RunOutcome represents the outcome of a CI workflow run. Outcomes exist
// only within one report pass and are immutable.
type RunOutcome struct {
	ID         int64
	Event      RunEvent
	Status     string
	Conclusion string
	Repository string // "org/repo"
	Name       string // display title of the run
	URL        string
	StartedAt  time.Time
	HeadBranch string
}

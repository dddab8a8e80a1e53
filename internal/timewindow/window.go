package timewindow

import "time"

// TimeWindow represents a concrete [start, end) instant pair. A zero End
// means the window is open-ended.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Open reports whether the window has no end instant.
func (w TimeWindow) Open() bool {
	return w.End.IsZero()
}

// GitHubFormat renders the window into the GitHub search filter syntax.
// The same window always serializes identically, which matters because
// the HTTP layer caches responses keyed by the exact query string.
func (w TimeWindow) GitHubFormat() string {
	if w.Open() {
		return ">=" + w.Start.Format(dayFormat)
	}
	return w.Start.Format(dayFormat) + ".." + w.End.Format(dayFormat)
}

const dayFormat = "2006-01-02"

package timewindow

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/araddon/dateparse"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	apperrors "github.com/opsdigest/opsdigest/internal/errors"
)

var (
	isoWeekPattern  = regexp.MustCompile(`^(\d{4})W(\d{2})$`)
	durationPattern = regexp.MustCompile(`^([+-]?)(\d+)([smhdw])$`)
)

// Resolver translates user time expressions into concrete windows.
// Resolutions are cached per expression, so every query within one
// report pass sees the same window.
type Resolver struct {
	mu    sync.Mutex
	cache map[string]TimeWindow

	parser *when.Parser
	now    func() time.Time
}

// NewResolver creates a new resolver using the wall clock.
func NewResolver() *Resolver {
	return NewResolverAt(time.Now)
}

// NewResolverAt creates a resolver with an injected clock.
func NewResolverAt(now func() time.Time) *Resolver {
	parser := when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)
	return &Resolver{
		cache:  make(map[string]TimeWindow),
		parser: parser,
		now:    now,
	}
}

// Resolve parses a user time expression into a window. An empty
// expression yields the single-instant "today" window. Supported forms
// are explicit ranges ("2025-03-01..2025-03-07"), ISO weeks ("2025W07"),
// compact durations ("-7d", "24h") and natural language ("yesterday",
// "last week").
func (r *Resolver) Resolve(expression string) (TimeWindow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if window, ok := r.cache[expression]; ok {
		return window, nil
	}
	window, err := r.resolve(expression)
	if err != nil {
		return TimeWindow{}, err
	}
	r.cache[expression] = window
	return window, nil
}

func (r *Resolver) resolve(expression string) (TimeWindow, error) {
	expression = strings.TrimSpace(expression)

	if expression == "" {
		now := r.now()
		return TimeWindow{Start: now, End: now}, nil
	}

	if strings.Contains(expression, "..") {
		return r.resolveRange(expression)
	}

	if m := isoWeekPattern.FindStringSubmatch(expression); m != nil {
		return resolveISOWeek(m[1], m[2])
	}

	if m := durationPattern.FindStringSubmatch(expression); m != nil {
		return r.resolveDuration(m[1], m[2], m[3])
	}

	if window, ok := r.resolveNamedRange(strings.ToLower(expression)); ok {
		return window, nil
	}

	result, err := r.parser.Parse(expression, r.now())
	if err != nil || result == nil {
		return TimeWindow{}, apperrors.NewInvalidTimeExpressionError(expression, err)
	}
	return dayWindow(result.Time), nil
}

func (r *Resolver) resolveRange(expression string) (TimeWindow, error) {
	parts := strings.SplitN(expression, "..", 2)
	start, err := dateparse.ParseAny(strings.TrimSpace(parts[0]))
	if err != nil {
		return TimeWindow{}, apperrors.NewInvalidTimeExpressionError(expression, err)
	}
	right := strings.TrimSpace(parts[1])
	if right == "" {
		return TimeWindow{Start: start}, nil
	}
	end, err := dateparse.ParseAny(right)
	if err != nil {
		return TimeWindow{}, apperrors.NewInvalidTimeExpressionError(expression, err)
	}
	if end.Before(start) {
		return TimeWindow{}, apperrors.NewInvalidTimeExpressionError(
			expression, fmt.Errorf("end %v precedes start %v", end, start))
	}
	return TimeWindow{Start: start, End: end}, nil
}

func (r *Resolver) resolveDuration(sign, amount, unit string) (TimeWindow, error) {
	value, err := strconv.Atoi(amount)
	if err != nil {
		return TimeWindow{}, apperrors.NewInvalidTimeExpressionError(sign+amount+unit, err)
	}
	var d time.Duration
	switch unit {
	case "s":
		d = time.Duration(value) * time.Second
	case "m":
		d = time.Duration(value) * time.Minute
	case "h":
		d = time.Duration(value) * time.Hour
	case "d":
		d = time.Duration(value) * 24 * time.Hour
	case "w":
		d = time.Duration(value) * 7 * 24 * time.Hour
	}
	now := r.now()
	if sign == "+" {
		return TimeWindow{Start: now, End: now.Add(d)}, nil
	}
	// Unsigned and negative durations both mean a lookback.
	return TimeWindow{Start: now.Add(-d), End: now}, nil
}

// resolveISOWeek locates the Monday of the given ISO week and spans
// through its Sunday, with end-of-day slack so the last day is fully
// included regardless of timezone rounding. It is a pure function of the
// expression, never of the current time.
func resolveISOWeek(yearStr, weekStr string) (TimeWindow, error) {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return TimeWindow{}, apperrors.NewInvalidTimeExpressionError(yearStr+"W"+weekStr, err)
	}
	week, err := strconv.Atoi(weekStr)
	if err != nil || week < 1 || week > 53 {
		return TimeWindow{}, apperrors.NewInvalidTimeExpressionError(
			yearStr+"W"+weekStr, fmt.Errorf("week number out of range: %s", weekStr))
	}

	// January 4th is always inside ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := jan4.AddDate(0, 0, 1-weekday).AddDate(0, 0, (week-1)*7)
	end := monday.AddDate(0, 0, 6).Add(24*time.Hour - time.Second)
	return TimeWindow{Start: monday, End: end}, nil
}

// resolveNamedRange handles the week and month range phrases a
// point-in-time parser cannot express as an interval.
func (r *Resolver) resolveNamedRange(expression string) (TimeWindow, bool) {
	now := r.now()
	monthAnchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	switch expression {
	case "this week":
		return weekWindow(now), true
	case "last week":
		return weekWindow(now.AddDate(0, 0, -7)), true
	case "next week":
		return weekWindow(now.AddDate(0, 0, 7)), true
	case "this month":
		return monthWindow(monthAnchor), true
	case "last month":
		return monthWindow(monthAnchor.AddDate(0, -1, 0)), true
	case "next month":
		return monthWindow(monthAnchor.AddDate(0, 1, 0)), true
	}
	return TimeWindow{}, false
}

// weekWindow spans the ISO week containing t, Monday through Sunday
// with end-of-day slack.
func weekWindow(t time.Time) TimeWindow {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	monday := day.AddDate(0, 0, 1-weekday)
	return TimeWindow{Start: monday, End: monday.AddDate(0, 0, 6).Add(24*time.Hour - time.Second)}
}

// monthWindow spans the calendar month starting at first, which must be
// the first day of a month.
func monthWindow(first time.Time) TimeWindow {
	return TimeWindow{Start: first, End: first.AddDate(0, 1, 0).Add(-time.Second)}
}

// dayWindow spans the calendar day containing t.
func dayWindow(t time.Time) TimeWindow {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return TimeWindow{Start: start, End: start.Add(24*time.Hour - time.Second)}
}

// WeekDays enumerates the days of an ISO week as "YYYY-MM-DD" strings.
// With skipFuture set, enumeration stops after today.
func (r *Resolver) WeekDays(week string, skipFuture bool) ([]string, error) {
	window, err := r.Resolve(week)
	if err != nil {
		return nil, err
	}
	today := r.now()
	var days []string
	for cursor := window.Start; cursor.Before(window.End); cursor = cursor.AddDate(0, 0, 1) {
		days = append(days, cursor.Format(dayFormat))
		if skipFuture && cursor.AddDate(0, 0, 1).After(today) {
			break
		}
	}
	return days, nil
}

// CurrentWeek formats the current ISO week as "YYYYWww".
func (r *Resolver) CurrentWeek() string {
	year, week := r.now().ISOWeek()
	return fmt.Sprintf("%dW%02d", year, week)
}

// Today formats the current day as "YYYY-MM-DD".
func (r *Resolver) Today() string {
	return r.now().Format(dayFormat)
}

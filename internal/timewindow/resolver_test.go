package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/opsdigest/opsdigest/internal/errors"
)

func fixedClock(value string) func() time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func TestResolveEmpty(t *testing.T) {
	resolver := NewResolverAt(fixedClock("2025-02-26T10:30:00Z"))

	window, err := resolver.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, window.Start, window.End)
	assert.Equal(t, "2025-02-26", window.Start.Format("2006-01-02"))
}

func TestResolveISOWeek(t *testing.T) {
	resolver := NewResolver()

	tests := []struct {
		expression string
		wantStart  string
		wantEnd    string
	}{
		{"2025W07", "2025-02-10", "2025-02-16"},
		{"2025W09", "2025-02-24", "2025-03-02"},
		{"2025W01", "2024-12-30", "2025-01-05"},
		{"2024W01", "2024-01-01", "2024-01-07"},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			window, err := resolver.Resolve(tt.expression)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, window.Start.Format("2006-01-02"))
			assert.Equal(t, tt.wantEnd, window.End.Format("2006-01-02"))
			assert.Equal(t, time.Monday, window.Start.Weekday())
			assert.Equal(t, time.Sunday, window.End.Weekday())
		})
	}
}

func TestResolveISOWeekIgnoresClock(t *testing.T) {
	early := NewResolverAt(fixedClock("2021-01-01T00:00:00Z"))
	late := NewResolverAt(fixedClock("2030-12-31T23:59:59Z"))

	a, err := early.Resolve("2025W07")
	require.NoError(t, err)
	b, err := late.Resolve("2025W07")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestResolveRange(t *testing.T) {
	resolver := NewResolver()

	window, err := resolver.Resolve("2025-03-01..2025-03-07")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", window.Start.Format("2006-01-02"))
	assert.Equal(t, "2025-03-07", window.End.Format("2006-01-02"))
	assert.False(t, window.Open())
}

func TestResolveOpenRange(t *testing.T) {
	resolver := NewResolver()

	window, err := resolver.Resolve("2025-03-01..")
	require.NoError(t, err)
	assert.True(t, window.Open())
	assert.Equal(t, ">=2025-03-01", window.GitHubFormat())
}

func TestResolveReversedRange(t *testing.T) {
	resolver := NewResolver()

	_, err := resolver.Resolve("2025-03-07..2025-03-01")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidTimeExpression(err))
}

func TestResolveDuration(t *testing.T) {
	resolver := NewResolverAt(fixedClock("2025-02-26T12:00:00Z"))

	tests := []struct {
		expression string
		wantStart  string
		wantEnd    string
	}{
		{"-7d", "2025-02-19T12:00:00Z", "2025-02-26T12:00:00Z"},
		{"24h", "2025-02-25T12:00:00Z", "2025-02-26T12:00:00Z"},
		{"-2w", "2025-02-12T12:00:00Z", "2025-02-26T12:00:00Z"},
		{"+3d", "2025-02-26T12:00:00Z", "2025-03-01T12:00:00Z"},
		{"-90m", "2025-02-26T10:30:00Z", "2025-02-26T12:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			window, err := resolver.Resolve(tt.expression)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, window.Start.UTC().Format(time.RFC3339))
			assert.Equal(t, tt.wantEnd, window.End.UTC().Format(time.RFC3339))
		})
	}
}

func TestResolveNamedRanges(t *testing.T) {
	// 2025-02-26 is the Wednesday of ISO week 2025W09.
	resolver := NewResolverAt(fixedClock("2025-02-26T12:00:00Z"))

	tests := []struct {
		expression string
		wantStart  string
		wantEnd    string
	}{
		{"last week", "2025-02-17", "2025-02-23"},
		{"this week", "2025-02-24", "2025-03-02"},
		{"next week", "2025-03-03", "2025-03-09"},
		{"last month", "2025-01-01", "2025-01-31"},
		{"this month", "2025-02-01", "2025-02-28"},
		{"next month", "2025-03-01", "2025-03-31"},
		{"Last Week", "2025-02-17", "2025-02-23"},
	}

	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			window, err := resolver.Resolve(tt.expression)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, window.Start.Format("2006-01-02"))
			assert.Equal(t, tt.wantEnd, window.End.Format("2006-01-02"))
		})
	}
}

func TestResolveNamedWeekSpansMondayToSunday(t *testing.T) {
	// A Sunday clock: "this week" still starts on the preceding Monday.
	resolver := NewResolverAt(fixedClock("2025-03-02T08:00:00Z"))

	window, err := resolver.Resolve("this week")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-24", window.Start.Format("2006-01-02"))
	assert.Equal(t, "2025-03-02", window.End.Format("2006-01-02"))
	assert.Equal(t, time.Monday, window.Start.Weekday())
}

func TestResolveNamedMonthEndOfMonthClock(t *testing.T) {
	// A month-end clock: "last month" must not skid across short months.
	resolver := NewResolverAt(fixedClock("2025-03-31T12:00:00Z"))

	window, err := resolver.Resolve("last month")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-01", window.Start.Format("2006-01-02"))
	assert.Equal(t, "2025-02-28", window.End.Format("2006-01-02"))
}

func TestResolveNaturalLanguage(t *testing.T) {
	resolver := NewResolverAt(fixedClock("2025-02-26T12:00:00Z"))

	window, err := resolver.Resolve("yesterday")
	require.NoError(t, err)
	assert.Equal(t, "2025-02-25", window.Start.Format("2006-01-02"))
	assert.Equal(t, "2025-02-25", window.End.Format("2006-01-02"))
}

func TestResolveInvalid(t *testing.T) {
	resolver := NewResolver()

	for _, expression := range []string{"not a date at all xyzzy", "2025W99", "..garbage.."} {
		_, err := resolver.Resolve(expression)
		assert.Error(t, err, expression)
		assert.True(t, apperrors.IsInvalidTimeExpression(err), expression)
	}
}

func TestResolveCachesPerExpression(t *testing.T) {
	calls := 0
	resolver := NewResolverAt(func() time.Time {
		calls++
		return time.Date(2025, 2, 26, 12, 0, 0, 0, time.UTC).Add(time.Duration(calls) * time.Hour)
	})

	first, err := resolver.Resolve("-1d")
	require.NoError(t, err)
	second, err := resolver.Resolve("-1d")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestWeekDays(t *testing.T) {
	resolver := NewResolverAt(fixedClock("2030-01-01T00:00:00Z"))

	days, err := resolver.WeekDays("2025W09", false)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"2025-02-24", "2025-02-25", "2025-02-26",
		"2025-02-27", "2025-02-28", "2025-03-01", "2025-03-02",
	}, days)
}

func TestWeekDaysSkipsFuture(t *testing.T) {
	resolver := NewResolverAt(fixedClock("2025-02-26T12:00:00Z"))

	days, err := resolver.WeekDays("2025W09", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-02-24", "2025-02-25", "2025-02-26"}, days)
}

func TestCurrentWeek(t *testing.T) {
	resolver := NewResolverAt(fixedClock("2025-02-26T12:00:00Z"))
	assert.Equal(t, "2025W09", resolver.CurrentWeek())
}

func TestToday(t *testing.T) {
	resolver := NewResolverAt(fixedClock("2025-02-26T12:00:00Z"))
	assert.Equal(t, "2025-02-26", resolver.Today())
}

func TestGitHubFormat(t *testing.T) {
	closed := TimeWindow{
		Start: time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 2, 16, 23, 59, 59, 0, time.UTC),
	}
	assert.Equal(t, "2025-02-10..2025-02-16", closed.GitHubFormat())

	open := TimeWindow{Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, ">=2025-03-01", open.GitHubFormat())
}

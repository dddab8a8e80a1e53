package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/opsdigest/opsdigest/internal/timewindow"
)

func TestNewWeeklyPublisherDefaultsToCurrentWeek(t *testing.T) {
	at := time.Date(2025, 2, 26, 12, 0, 0, 0, time.UTC)
	resolver := timewindow.NewResolverAt(func() time.Time { return at })

	publisher := NewWeeklyPublisher(nil, nil, resolver, "", "acme")
	assert.Equal(t, "2025W09", publisher.Week)

	publisher = NewWeeklyPublisher(nil, nil, resolver, "2025W07", "acme")
	assert.Equal(t, "2025W07", publisher.Week)
}

func TestRootMarkdown(t *testing.T) {
	publisher := &WeeklyPublisher{Week: "2025W09"}
	assert.Equal(t, "# digest-bot 2025W09", publisher.rootMarkdown())
}

func TestPreambleMarkdown(t *testing.T) {
	publisher := &WeeklyPublisher{Week: "2025W09"}

	body := publisher.preambleMarkdown()
	assert.Contains(t, body, "**Week:** 2025W09")
	assert.Contains(t, body, "**Producer:** opsdigest v"+Version)
}

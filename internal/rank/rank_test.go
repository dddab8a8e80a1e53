package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdigest/opsdigest/internal/domain"
)

func TestLimit(t *testing.T) {
	selector := NewSelector()

	tests := []struct {
		n    int
		want int
	}{
		{0, 1},
		{1, 1},
		{9, 1},
		{10, 2},
		{19, 2},
		{25, 3},
		{100, 11},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, selector.Limit(tt.n), "n=%d", tt.n)
	}
}

func TestLimitInvalidShareFallsBack(t *testing.T) {
	selector := &Selector{ShareNumerator: 0, ShareDenominator: 0}
	assert.Equal(t, 2, selector.Limit(10))
}

func TestSelectEmpty(t *testing.T) {
	selector := NewSelector()
	assert.Empty(t, selector.Select(nil))
	assert.Empty(t, selector.Select([]*domain.ActivityRecord{}))
}

func TestSelectMergesRankingsWithoutDuplicates(t *testing.T) {
	big := &domain.ActivityRecord{ID: 1, Title: "big change", Additions: 900, Deletions: 100, ChangedFiles: 12, Comments: 0}
	hot := &domain.ActivityRecord{ID: 2, Title: "hot discussion", Additions: 10, Deletions: 5, ChangedFiles: 1, Comments: 40}
	dull := &domain.ActivityRecord{ID: 3, Title: "small and quiet", Additions: 2, Deletions: 1, ChangedFiles: 1, Comments: 0}

	got := NewSelector().Select([]*domain.ActivityRecord{dull, hot, big})

	// Three candidates: limit is 1 per ranking, so the biggest change
	// and the most discussed item, in that order.
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
}

func TestSelectSameRecordTopsBothRankings(t *testing.T) {
	star := &domain.ActivityRecord{ID: 7, Additions: 500, ChangedFiles: 9, Comments: 30}
	rest := &domain.ActivityRecord{ID: 8, Additions: 1, ChangedFiles: 1, Comments: 1}

	got := NewSelector().Select([]*domain.ActivityRecord{rest, star})

	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].ID)
}

func TestSelectBounded(t *testing.T) {
	var records []*domain.ActivityRecord
	for i := 0; i < 100; i++ {
		records = append(records, &domain.ActivityRecord{
			ID:        int64(i),
			Additions: i * 3,
			Comments:  100 - i,
		})
	}

	got := NewSelector().Select(records)
	limit := NewSelector().Limit(len(records))
	assert.LessOrEqual(t, len(got), 2*limit)
	assert.NotEmpty(t, got)
}

func TestSelectDeterministic(t *testing.T) {
	records := []*domain.ActivityRecord{
		{ID: 1, Additions: 10, Comments: 3},
		{ID: 2, Additions: 10, Comments: 3},
		{ID: 3, Additions: 4, Comments: 8},
		{ID: 4, Additions: 4, Comments: 8},
	}

	first := NewSelector().Select(records)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, NewSelector().Select(records))
	}
}

func TestSelectDoesNotMutateInput(t *testing.T) {
	records := []*domain.ActivityRecord{
		{ID: 1, Additions: 1},
		{ID: 2, Additions: 100},
		{ID: 3, Additions: 10},
	}

	NewSelector().Select(records)

	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, int64(2), records[1].ID)
	assert.Equal(t, int64(3), records[2].ID)
}

func TestSelectTiesKeepInputOrder(t *testing.T) {
	a := &domain.ActivityRecord{ID: 1, Additions: 50, ChangedFiles: 2, Comments: 5}
	b := &domain.ActivityRecord{ID: 2, Additions: 50, ChangedFiles: 2, Comments: 5}

	got := NewSelector().Select([]*domain.ActivityRecord{a, b})

	require.NotEmpty(t, got)
	assert.Equal(t, int64(1), got[0].ID)
}

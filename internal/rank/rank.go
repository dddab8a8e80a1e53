// Package rank selects the bounded "significant items" subset of a
// record list: the biggest changes and the most discussed items, merged
// without duplicates.
package rank

import (
	"sort"

	"github.com/opsdigest/opsdigest/internal/domain"
)

// Selector holds the sampling ratio. The default share is an editorial
// constant: two fifths, halved again, so digests stay short.
type Selector struct {
	ShareNumerator   int
	ShareDenominator int
}

// NewSelector creates a selector with the default 2/5 share.
func NewSelector() *Selector {
	return &Selector{ShareNumerator: 2, ShareDenominator: 5}
}

// Limit computes the per-ranking cap for n candidates, minimum 1.
func (s *Selector) Limit(n int) int {
	num, den := s.ShareNumerator, s.ShareDenominator
	if num <= 0 || den <= 0 {
		num, den = 2, 5
	}
	return n*num/den/2/2 + 1
}

// Select returns the significant subset of records. Two descending
// rankings are taken: by change size first, and by discussion first.
// The result is the top of the first ranking followed by entries of the
// second that are not already present, identity by record id. Sorting is
// stable, so ties keep input order and repeated calls on the same input
// yield identical output.
func (s *Selector) Select(records []*domain.ActivityRecord) []*domain.ActivityRecord {
	if len(records) == 0 {
		return nil
	}
	limit := s.Limit(len(records))

	bySize := sortedCopy(records, func(a, b *domain.ActivityRecord) bool {
		return lexicographicGreater(
			[3]int{a.CodeSize(), a.ChangedFiles, a.CommentsTotal()},
			[3]int{b.CodeSize(), b.ChangedFiles, b.CommentsTotal()},
		)
	})
	byComments := sortedCopy(records, func(a, b *domain.ActivityRecord) bool {
		return lexicographicGreater(
			[3]int{a.CommentsTotal(), a.ChangedFiles, a.CodeSize()},
			[3]int{b.CommentsTotal(), b.ChangedFiles, b.CodeSize()},
		)
	})

	selected := make([]*domain.ActivityRecord, 0, 2*limit)
	seen := make(map[int64]bool, 2*limit)
	take := func(ranked []*domain.ActivityRecord) {
		for i := 0; i < limit && i < len(ranked); i++ {
			record := ranked[i]
			if seen[record.ID] {
				continue
			}
			seen[record.ID] = true
			selected = append(selected, record)
		}
	}
	take(bySize)
	take(byComments)
	return selected
}

func sortedCopy(records []*domain.ActivityRecord, greater func(a, b *domain.ActivityRecord) bool) []*domain.ActivityRecord {
	ranked := make([]*domain.ActivityRecord, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return greater(ranked[i], ranked[j])
	})
	return ranked
}

func lexicographicGreater(a, b [3]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}

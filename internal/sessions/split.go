package sessions

import (
	"cmp"
	"slices"

	"github.com/vincentbai/browsetrace-sessions/internal/models"
)

// SessionGap is the largest gap in seconds between two consecutive events of
// the same session. A gap of exactly SessionGap stays in the session.
const SessionGap int64 = 600

// SortByTimestamp returns a copy of events stably sorted by ts. Events with
// equal timestamps keep their input order.
func SortByTimestamp(events []models.Event) []models.Event {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b models.Event) int {
		return cmp.Compare(a.TS, b.TS)
	})
	return sorted
}

// Split cuts a time-sorted run of one user's events into session runs. The gap
// is measured between each event and its immediate predecessor, so a new run
// starts whenever that difference is strictly greater than gap.
//
// The returned runs share the backing array of sorted.
func Split(sorted []models.Event, gap int64) [][]models.Event {
	if len(sorted) == 0 {
		return nil
	}

	var runs [][]models.Event
	start := 0
	for i := 1; i < len(sorted); i++ {
		if sorted[i].TS-sorted[i-1].TS > gap {
			runs = append(runs, sorted[start:i:i])
			start = i
		}
	}
	return append(runs, sorted[start:len(sorted):len(sorted)])
}

package sessions

import (
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/vincentbai/browsetrace-sessions/internal/models"
)

// MergeConcurrent returns the same result as Merge but builds each user's
// sessions on a pool of at most workers goroutines. Every user group is
// processed in isolation and results are only combined for the final sort.
// workers <= 0 uses GOMAXPROCS.
func MergeConcurrent(events []models.Event, workers int) []models.Session {
	if len(events) == 0 {
		return []models.Session{}
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	groups := GroupByUser(events)
	perUser := make([][]models.Session, len(groups))

	var g errgroup.Group
	g.SetLimit(workers)
	i := 0
	for _, userEvents := range groups {
		slot := i
		g.Go(func() error {
			perUser[slot] = userSessions(userEvents)
			return nil
		})
		i++
	}
	_ = g.Wait() // workers never fail

	sessions := slices.Concat(perUser...)
	SortSessions(sessions)
	return sessions
}

// MergeWorkers runs Merge when workers is 1 and MergeConcurrent otherwise.
func MergeWorkers(events []models.Event, workers int) []models.Session {
	if workers == 1 {
		return Merge(events)
	}
	return MergeConcurrent(events, workers)
}

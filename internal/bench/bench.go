// Package bench times repeated session merges over one dataset.
package bench

import (
	"fmt"
	"time"

	"github.com/vincentbai/browsetrace-sessions/internal/models"
	"github.com/vincentbai/browsetrace-sessions/internal/sessions"
)

type Options struct {
	Warmup  int
	Runs    int
	Workers int // 1 runs sessions.Merge, anything else sessions.MergeConcurrent
}

func DefaultOptions() Options {
	return Options{Warmup: 1, Runs: 5, Workers: 1}
}

type Result struct {
	Events   int
	Sessions int
	Runs     int
	Min      time.Duration
	Max      time.Duration
	Avg      time.Duration
}

// Throughput returns events processed per second at the average run time.
func (r Result) Throughput() float64 {
	if r.Avg <= 0 {
		return 0
	}
	return float64(r.Events) / r.Avg.Seconds()
}

// Run merges events opts.Warmup times untimed and opts.Runs times timed.
func Run(events []models.Event, opts Options) (Result, error) {
	if opts.Runs <= 0 {
		return Result{}, fmt.Errorf("runs must be positive, got %d", opts.Runs)
	}
	for range opts.Warmup {
		sessions.MergeWorkers(events, opts.Workers)
	}

	result := Result{Events: len(events), Runs: opts.Runs}
	var total time.Duration
	for i := range opts.Runs {
		start := time.Now()
		out := sessions.MergeWorkers(events, opts.Workers)
		elapsed := time.Since(start)

		result.Sessions = len(out)
		total += elapsed
		if i == 0 || elapsed < result.Min {
			result.Min = elapsed
		}
		if elapsed > result.Max {
			result.Max = elapsed
		}
	}
	result.Avg = total / time.Duration(opts.Runs)
	return result, nil
}

// Check is the outcome of Verify.
type Check struct {
	Sorted        bool // start_ts ascending
	WellFormed    bool // start_ts <= end_ts, types and meta present
	UniqueUsers   int
	TotalSessions int
}

// OK reports whether every check passed.
func (c Check) OK() bool {
	return c.Sorted && c.WellFormed
}

// Verify spot-checks merged sessions.
func Verify(out []models.Session) Check {
	check := Check{Sorted: true, WellFormed: true, TotalSessions: len(out)}
	users := make(map[string]struct{})
	for i, session := range out {
		users[session.UserID] = struct{}{}
		if i > 0 && out[i-1].StartTS > session.StartTS {
			check.Sorted = false
		}
		if session.StartTS > session.EndTS || session.Types == nil || session.Meta == nil {
			check.WellFormed = false
		}
	}
	check.UniqueUsers = len(users)
	return check
}

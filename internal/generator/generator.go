// Package generator produces synthetic browsing events for demos and benchmarks.
package generator

import (
	"fmt"
	"math/rand/v2"

	"github.com/vincentbai/browsetrace-sessions/internal/models"
)

// DefaultBaseTS is 2023-11-14T22:13:20Z.
const DefaultBaseTS int64 = 1700000000

var (
	eventTypes = []string{"view", "click", "scroll", "hover", "submit", "login", "logout"}
	pages      = []string{"/", "/home", "/about", "/products", "/cart", "/checkout", "/profile"}
	refs       = []any{"google", "facebook", "twitter", "email", "direct", nil}
)

type Options struct {
	Users         int
	EventsPerUser int // average; each user gets between half and one and a half times this
	Seed          uint64
	BaseTS        int64
}

// DefaultOptions matches the dataset the benchmark uses when no flags are given.
func DefaultOptions() Options {
	return Options{
		Users:         50,
		EventsPerUser: 200,
		Seed:          42,
		BaseTS:        DefaultBaseTS,
	}
}

// Generate returns a shuffled list of events. The same options always yield
// the same events.
func Generate(opts Options) []models.Event {
	if opts.BaseTS == 0 {
		opts.BaseTS = DefaultBaseTS
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))

	var events []models.Event
	for userNumber := range opts.Users {
		userID := fmt.Sprintf("user_%04d", userNumber)
		count := between(rng, opts.EventsPerUser/2, opts.EventsPerUser+opts.EventsPerUser/2)
		ts := opts.BaseTS + int64(between(rng, 0, 86400))

		for range count {
			// Mostly in-session gaps, sometimes a break long enough to start a new session.
			if rng.Float64() < 0.7 {
				ts += int64(between(rng, 10, 500))
			} else {
				ts += int64(between(rng, 700, 7200))
			}

			meta := map[string]any{
				"page": pages[rng.IntN(len(pages))],
				"data": map[string]any{
					"scroll_depth": between(rng, 0, 100),
					"viewport":     map[string]any{"width": 1920, "height": 1080},
				},
			}
			if rng.Float64() < 0.3 {
				meta["ref"] = refs[rng.IntN(len(refs))]
			}

			events = append(events, models.Event{
				UserID: userID,
				TS:     ts,
				Type:   eventTypes[rng.IntN(len(eventTypes))],
				Meta:   meta,
			})
		}
	}

	rng.Shuffle(len(events), func(i, j int) {
		events[i], events[j] = events[j], events[i]
	})
	return events
}

// between returns a uniform integer in [low, high].
func between(rng *rand.Rand, low, high int) int {
	if high <= low {
		return low
	}
	return low + rng.IntN(high-low+1)
}

package sessions

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vincentbai/browsetrace-sessions/internal/generator"
	"github.com/vincentbai/browsetrace-sessions/internal/models"
)

func cloneEvents(events []models.Event) []models.Event {
	out := make([]models.Event, len(events))
	for i, event := range events {
		out[i] = event
		if event.Meta != nil {
			out[i].Meta = CopyMeta(event.Meta)
		}
	}
	return out
}

func TestMergeEmptyInput(t *testing.T) {
	assert.Empty(t, Merge(nil))
	assert.NotNil(t, Merge(nil))
	assert.Empty(t, Merge([]models.Event{}))
}

func TestMergeSplitsUnsortedInput(t *testing.T) {
	events := []models.Event{
		{UserID: "u1", TS: 1500, Type: "click", Meta: map[string]any{"page": "/"}},
		{UserID: "u1", TS: 1000, Type: "view", Meta: map[string]any{"page": "/home"}},
		{UserID: "u1", TS: 2200, Type: "scroll", Meta: map[string]any{"ref": "google"}},
	}

	got := Merge(events)

	require.Len(t, got, 2)
	assert.Equal(t, models.Session{
		UserID:  "u1",
		StartTS: 1000,
		EndTS:   1500,
		Types:   []string{"view", "click"},
		Meta:    map[string]any{"page": "/home"},
	}, got[0])
	assert.Equal(t, models.Session{
		UserID:  "u1",
		StartTS: 2200,
		EndTS:   2200,
		Types:   []string{"scroll"},
		Meta:    map[string]any{"ref": "google"},
	}, got[1])
}

func TestMergeGapThreshold(t *testing.T) {
	tests := []struct {
		name     string
		second   int64
		sessions int
	}{
		{name: "gap of 600 stays together", second: 1600, sessions: 1},
		{name: "gap of 601 splits", second: 1601, sessions: 2},
		{name: "duplicate timestamp stays together", second: 1000, sessions: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := []models.Event{
				{UserID: "u1", TS: 1000, Type: "a"},
				{UserID: "u1", TS: tt.second, Type: "b"},
			}
			assert.Len(t, Merge(events), tt.sessions)
		})
	}
}

func TestMergeUsesConsecutiveGap(t *testing.T) {
	// Each step is within the gap even though the run spans far more than 600s.
	var events []models.Event
	for i := range 10 {
		events = append(events, models.Event{UserID: "u1", TS: int64(1000 + i*500), Type: "tick"})
	}

	got := Merge(events)

	require.Len(t, got, 1)
	assert.Equal(t, int64(1000), got[0].StartTS)
	assert.Equal(t, int64(5500), got[0].EndTS)
	assert.Equal(t, []string{"tick"}, got[0].Types)
}

func TestMergeOrdersUsersByStart(t *testing.T) {
	events := []models.Event{
		{UserID: "alice", TS: 2000, Type: "login", Meta: map[string]any{}},
		{UserID: "bob", TS: 1000, Type: "view", Meta: map[string]any{}},
		{UserID: "alice", TS: 2100, Type: "click", Meta: map[string]any{}},
	}

	got := Merge(events)

	require.Len(t, got, 2)
	assert.Equal(t, "bob", got[0].UserID)
	assert.Equal(t, "alice", got[1].UserID)
	assert.Equal(t, []string{"login", "click"}, got[1].Types)
	assert.Equal(t, int64(2100), got[1].EndTS)
}

func TestMergeDeepMeta(t *testing.T) {
	events := []models.Event{
		{UserID: "u1", TS: 1100, Type: "b", Meta: map[string]any{"page": "/second", "data": map[string]any{"y": 2}}},
		{UserID: "u1", TS: 1000, Type: "a", Meta: map[string]any{"page": "/first", "data": map[string]any{"x": 1}}},
	}

	got := Merge(events)

	require.Len(t, got, 1)
	assert.Equal(t, map[string]any{
		"page": "/first",
		"data": map[string]any{"x": 1, "y": 2},
	}, got[0].Meta)
}

func TestMergeMissingOptionalFields(t *testing.T) {
	events := []models.Event{
		{TS: 10},
		{TS: 20, Type: "click"},
		{TS: 30},
		{UserID: "u1", TS: 5},
	}

	got := Merge(events)

	require.Len(t, got, 2)
	assert.Equal(t, "u1", got[0].UserID)
	assert.Equal(t, []string{""}, got[0].Types)
	assert.Equal(t, map[string]any{}, got[0].Meta)

	assert.Equal(t, "", got[1].UserID)
	assert.Equal(t, []string{"", "click"}, got[1].Types)
	assert.NotNil(t, got[1].Meta)
}

func TestMergeTiesKeepInputOrder(t *testing.T) {
	events := []models.Event{
		{UserID: "u1", TS: 100, Type: "second", Meta: map[string]any{"k": "first-in-input"}},
		{UserID: "u1", TS: 100, Type: "first", Meta: map[string]any{"k": "second-in-input"}},
	}

	got := Merge(events)

	require.Len(t, got, 1)
	assert.Equal(t, []string{"second", "first"}, got[0].Types)
	assert.Equal(t, "first-in-input", got[0].Meta["k"])
}

func TestMergeSameStartAcrossUsers(t *testing.T) {
	events := []models.Event{
		{UserID: "zed", TS: 100},
		{UserID: "amy", TS: 100},
		{UserID: "mia", TS: 100},
	}

	got := Merge(events)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"amy", "mia", "zed"}, []string{got[0].UserID, got[1].UserID, got[2].UserID})
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	events := generator.Generate(generator.Options{Users: 5, EventsPerUser: 40, Seed: 7})
	snapshot := cloneEvents(events)

	got := Merge(events)
	require.Equal(t, snapshot, events)

	// Writing through the output must not reach the input either.
	for _, session := range got {
		session.Meta["page"] = "mutated"
		if data, ok := session.Meta["data"].(map[string]any); ok {
			data["scroll_depth"] = -1
			if viewport, ok := data["viewport"].(map[string]any); ok {
				viewport["width"] = 0
			}
		}
	}
	assert.Equal(t, snapshot, events)
}

func TestMergeDoesNotShareTypedMeta(t *testing.T) {
	events := []models.Event{
		{UserID: "u1", TS: 1000, Meta: map[string]any{"vp": map[string]string{"w": "1"}, "tags": []string{"a"}}},
		{UserID: "u1", TS: 1100, Meta: map[string]any{"vp": map[string]string{"h": "2"}}},
	}

	got := Merge(events)
	require.Len(t, got, 1)
	assert.Equal(t, map[string]any{"w": "1", "h": "2"}, got[0].Meta["vp"])

	got[0].Meta["vp"].(map[string]any)["w"] = "MUTATED"
	got[0].Meta["tags"].([]any)[0] = "MUTATED"

	assert.Equal(t, map[string]string{"w": "1"}, events[0].Meta["vp"])
	assert.Equal(t, []string{"a"}, events[0].Meta["tags"])
	assert.Equal(t, map[string]string{"h": "2"}, events[1].Meta["vp"])
}

func TestMergeIgnoresInputOrder(t *testing.T) {
	events := generator.Generate(generator.Options{Users: 20, EventsPerUser: 50, Seed: 42})
	want := Merge(events)

	rng := rand.New(rand.NewPCG(1, 2))
	for range 5 {
		shuffled := cloneEvents(events)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		assert.Equal(t, want, Merge(shuffled))
	}
}

func TestMergeProperties(t *testing.T) {
	events := generator.Generate(generator.Options{Users: 30, EventsPerUser: 100, Seed: 3})
	got := Merge(events)
	require.NotEmpty(t, got)

	for i := 0; i+1 < len(got); i++ {
		assert.LessOrEqual(t, got[i].StartTS, got[i+1].StartTS, "sessions must be ordered by start_ts")
	}

	byUser := GroupByUser(events)
	total := 0
	for _, session := range got {
		assert.LessOrEqual(t, session.StartTS, session.EndTS)

		seen := make(map[string]bool)
		for _, typ := range session.Types {
			assert.False(t, seen[typ], "duplicate type %q", typ)
			seen[typ] = true
		}

		var members []models.Event
		for _, event := range SortByTimestamp(byUser[session.UserID]) {
			if event.TS >= session.StartTS && event.TS <= session.EndTS {
				members = append(members, event)
			}
		}
		require.NotEmpty(t, members)
		for i := 1; i < len(members); i++ {
			assert.LessOrEqual(t, members[i].TS-members[i-1].TS, SessionGap)
		}
		assert.Equal(t, CollectTypes(members), session.Types)
		total += len(members)
	}
	assert.Equal(t, len(events), total, "every event belongs to exactly one session")
}

func TestNewSessionPanicsOnEmptyRun(t *testing.T) {
	assert.Panics(t, func() { NewSession(nil) })
}

func TestMergeConcurrentMatchesMerge(t *testing.T) {
	events := generator.Generate(generator.Options{Users: 40, EventsPerUser: 60, Seed: 11})
	want := Merge(events)

	for _, workers := range []int{0, 1, 4, 64} {
		assert.Equal(t, want, MergeConcurrent(events, workers), "workers=%d", workers)
		assert.Equal(t, want, MergeWorkers(events, workers), "workers=%d", workers)
	}
	assert.Empty(t, MergeConcurrent(nil, 4))
}

func BenchmarkMerge(b *testing.B) {
	events := generator.Generate(generator.Options{Users: 50, EventsPerUser: 200, Seed: 42})
	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		Merge(events)
	}
}

func BenchmarkMergeConcurrent(b *testing.B) {
	events := generator.Generate(generator.Options{Users: 50, EventsPerUser: 200, Seed: 42})
	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		MergeConcurrent(events, 0)
	}
}

package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsDeterministic(t *testing.T) {
	opts := Options{Users: 5, EventsPerUser: 20, Seed: 9}

	assert.Equal(t, Generate(opts), Generate(opts))

	other := opts
	other.Seed = 10
	assert.NotEqual(t, Generate(opts), Generate(other))
}

func TestGenerateShape(t *testing.T) {
	opts := Options{Users: 10, EventsPerUser: 40, Seed: 1}
	events := Generate(opts)

	perUser := make(map[string]int)
	for _, event := range events {
		perUser[event.UserID]++

		assert.GreaterOrEqual(t, event.TS, DefaultBaseTS)
		assert.Contains(t, eventTypes, event.Type)
		require.Contains(t, event.Meta, "page")
		data, ok := event.Meta["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, map[string]any{"width": 1920, "height": 1080}, data["viewport"])
		if ref, ok := event.Meta["ref"]; ok {
			assert.Contains(t, refs, ref)
		}
	}

	assert.Len(t, perUser, opts.Users)
	for userID, count := range perUser {
		assert.GreaterOrEqual(t, count, 20, userID)
		assert.LessOrEqual(t, count, 60, userID)
	}
	assert.Contains(t, perUser, "user_0000")
}

func TestGenerateNoUsers(t *testing.T) {
	assert.Empty(t, Generate(Options{}))
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 50, opts.Users)
	assert.Equal(t, 200, opts.EventsPerUser)
	assert.Equal(t, uint64(42), opts.Seed)
}

package cli

import (
	"fmt"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/vincentbai/browsetrace-sessions/internal/eventio"
	"github.com/vincentbai/browsetrace-sessions/internal/models"
	"github.com/vincentbai/browsetrace-sessions/internal/sessions"
)

type scenario struct {
	name   string
	events []models.Event
	want   []models.Session
}

// demoScenarios are small hand-checked inputs with their expected sessions.
func demoScenarios() []scenario {
	return []scenario{
		{
			name: "Basic session merging",
			events: []models.Event{
				{UserID: "u1", TS: 1500, Type: "click", Meta: map[string]any{"page": "/"}},
				{UserID: "u1", TS: 1000, Type: "view", Meta: map[string]any{"page": "/home"}},
				{UserID: "u1", TS: 2200, Type: "scroll", Meta: map[string]any{"ref": "google"}},
			},
			want: []models.Session{
				{UserID: "u1", StartTS: 1000, EndTS: 1500, Types: []string{"view", "click"}, Meta: map[string]any{"page": "/home"}},
				{UserID: "u1", StartTS: 2200, EndTS: 2200, Types: []string{"scroll"}, Meta: map[string]any{"ref": "google"}},
			},
		},
		{
			name: "Multiple users",
			events: []models.Event{
				{UserID: "alice", TS: 2000, Type: "login", Meta: map[string]any{}},
				{UserID: "bob", TS: 1000, Type: "view", Meta: map[string]any{}},
				{UserID: "alice", TS: 2100, Type: "click", Meta: map[string]any{}},
			},
			want: []models.Session{
				{UserID: "bob", StartTS: 1000, EndTS: 1000, Types: []string{"view"}, Meta: map[string]any{}},
				{UserID: "alice", StartTS: 2000, EndTS: 2100, Types: []string{"login", "click"}, Meta: map[string]any{}},
			},
		},
		{
			name: "Deep meta merge (earliest wins)",
			events: []models.Event{
				{UserID: "u1", TS: 1000, Type: "a", Meta: map[string]any{"page": "/first", "data": map[string]any{"x": 1}}},
				{UserID: "u1", TS: 1100, Type: "b", Meta: map[string]any{"page": "/second", "data": map[string]any{"y": 2}}},
			},
			want: []models.Session{
				{UserID: "u1", StartTS: 1000, EndTS: 1100, Types: []string{"a", "b"}, Meta: map[string]any{"page": "/first", "data": map[string]any{"x": 1, "y": 2}}},
			},
		},
		{
			name: "Gap of 600s stays in one session",
			events: []models.Event{
				{UserID: "u1", TS: 1000, Type: "a"},
				{UserID: "u1", TS: 1600, Type: "b"},
			},
			want: []models.Session{
				{UserID: "u1", StartTS: 1000, EndTS: 1600, Types: []string{"a", "b"}, Meta: map[string]any{}},
			},
		},
		{
			name: "Gap of 601s starts a new session",
			events: []models.Event{
				{UserID: "u1", TS: 1000, Type: "a"},
				{UserID: "u1", TS: 1601, Type: "b"},
			},
			want: []models.Session{
				{UserID: "u1", StartTS: 1000, EndTS: 1000, Types: []string{"a"}, Meta: map[string]any{}},
				{UserID: "u1", StartTS: 1601, EndTS: 1601, Types: []string{"b"}, Meta: map[string]any{}},
			},
		},
		{
			name:   "Empty input",
			events: []models.Event{},
			want:   []models.Session{},
		},
	}
}

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run hand-checked scenarios and print their sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for i, sc := range demoScenarios() {
				got := sessions.Merge(sc.events)

				cmd.Printf("\nTEST %d: %s\n", i+1, sc.name)
				if err := eventio.WriteJSON(cmd.OutOrStdout(), got, true); err != nil {
					return err
				}
				if reflect.DeepEqual(got, sc.want) {
					cmd.Println("PASSED")
					continue
				}
				failed++
				a.cmdLog.Error().Str("scenario", sc.name).Msg("unexpected sessions")
				cmd.Println("FAILED")
			}

			if failed > 0 {
				return fmt.Errorf("%d demo scenario(s) failed", failed)
			}
			cmd.Println("\nAll scenarios passed.")
			return nil
		},
	}
}

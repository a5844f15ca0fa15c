package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vincentbai/browsetrace-sessions/internal/database"
	"github.com/vincentbai/browsetrace-sessions/internal/eventio"
	"github.com/vincentbai/browsetrace-sessions/internal/models"
	"github.com/vincentbai/browsetrace-sessions/internal/sessions"
)

type mergeOptions struct {
	input   string
	dbPath  string
	fromDB  bool
	output  string
	format  string
	indent  bool
	workers int
}

func newMergeCmd(a *app) *cobra.Command {
	opts := &mergeOptions{}

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge events into sessions",
		Long: `Read events from a JSON file or the BrowserTrace SQLite store, group them
into sessions and write the sessions ordered by start time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMerge(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "JSON events file (array or {\"events\": [...]})")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "SQLite events database")
	cmd.Flags().BoolVar(&opts.fromDB, "from-db", false, "read from the configured database (BROWSETRACE_DB_PATH)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write sessions to this file instead of stdout")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "json", "output format (json, yaml)")
	cmd.Flags().BoolVar(&opts.indent, "indent", true, "indent JSON output")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", -1, "parallel user workers; 1 is sequential, 0 uses all CPUs (default from BROWSETRACE_WORKERS)")
	cmd.MarkFlagsMutuallyExclusive("input", "db", "from-db")

	return cmd
}

func (a *app) runMerge(cmd *cobra.Command, opts *mergeOptions) error {
	if opts.format != "json" && opts.format != "yaml" {
		return fmt.Errorf("unknown output format %q", opts.format)
	}
	dbPath := opts.dbPath
	if opts.fromDB {
		dbPath = a.cfg.DBPath
	}

	events, err := a.loadEvents(cmd.Context(), opts.input, dbPath)
	if err != nil {
		return err
	}

	workers := a.workers(opts.workers)
	start := time.Now()
	out := sessions.MergeWorkers(events, workers)
	a.cmdLog.Info().
		Int("events", len(events)).
		Int("sessions", len(out)).
		Int("workers", workers).
		Dur("elapsed", time.Since(start)).
		Msg("merged events into sessions")

	if opts.output == "" {
		return writeSessions(cmd.OutOrStdout(), out, opts)
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writeSessions(f, out, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

func writeSessions(w io.Writer, out []models.Session, opts *mergeOptions) error {
	if opts.format == "yaml" {
		return eventio.WriteYAML(w, out)
	}
	return eventio.WriteJSON(w, out, opts.indent)
}

// loadEvents reads events from exactly one of a JSON file or a SQLite store.
func (a *app) loadEvents(ctx context.Context, input, dbPath string) ([]models.Event, error) {
	switch {
	case input != "":
		a.cmdLog.Debug().Str("input", input).Msg("loading events file")
		return eventio.LoadFile(input)
	case dbPath != "":
		a.cmdLog.Debug().Str("db", dbPath).Msg("loading events from database")
		db, err := database.NewDatabase(dbPath)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.LoadEvents(ctx)
	default:
		return nil, errors.New("one of --input, --db or --from-db is required")
	}
}

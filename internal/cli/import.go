package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vincentbai/browsetrace-sessions/internal/database"
	"github.com/vincentbai/browsetrace-sessions/internal/eventio"
)

func newImportCmd(a *app) *cobra.Command {
	var input, dbPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a JSON events file into the SQLite store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = a.cfg.DBPath
			}

			events, err := eventio.LoadFile(input)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
			db, err := database.NewDatabase(dbPath, database.WithEventTypes(a.cfg.EventTypes...))
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.InsertEvents(events); err != nil {
				a.cmdLog.Error().Err(err).Str("db", dbPath).Msg("import failed")
				return err
			}
			total, err := db.CountEvents(cmd.Context())
			if err != nil {
				return err
			}

			a.cmdLog.Info().Int("imported", len(events)).Int("total", total).Str("db", dbPath).Msg("events imported")
			cmd.Printf("Imported %d events into %s (%d stored)\n", len(events), dbPath, total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "JSON events file")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite events database (default BROWSETRACE_DB_PATH)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

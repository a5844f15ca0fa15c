package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vincentbai/browsetrace-sessions/internal/eventio"
	"github.com/vincentbai/browsetrace-sessions/internal/generator"
)

func newGenerateCmd(a *app) *cobra.Command {
	opts := generator.DefaultOptions()
	var output string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic events dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Printf("Generating %d users × ~%d events each...\n", opts.Users, opts.EventsPerUser)

			start := time.Now()
			events := generator.Generate(opts)
			elapsed := time.Since(start)

			if err := eventio.SaveFile(output, events, false); err != nil {
				return err
			}
			info, err := os.Stat(output)
			if err != nil {
				return fmt.Errorf("failed to stat output file: %w", err)
			}

			a.cmdLog.Debug().Int("events", len(events)).Str("output", output).Msg("dataset written")
			cmd.Printf("Generated %s events\n", humanize.Comma(int64(len(events))))
			cmd.Printf("   Users: %d\n", opts.Users)
			cmd.Printf("   Generation time: %s\n", elapsed.Round(time.Millisecond))
			cmd.Printf("   Output: %s (%s)\n", output, humanize.Bytes(uint64(info.Size())))
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Users, "users", opts.Users, "number of users")
	cmd.Flags().IntVar(&opts.EventsPerUser, "events", opts.EventsPerUser, "events per user (average)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "random seed")
	cmd.Flags().StringVarP(&output, "output", "o", "test_data.json", "output file")

	return cmd
}

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vincentbai/browsetrace-sessions/internal/bench"
	"github.com/vincentbai/browsetrace-sessions/internal/eventio"
	"github.com/vincentbai/browsetrace-sessions/internal/generator"
	"github.com/vincentbai/browsetrace-sessions/internal/models"
	"github.com/vincentbai/browsetrace-sessions/internal/sessions"
)

type benchOptions struct {
	generate bool
	input    string
	data     generator.Options
	run      bench.Options
}

func newBenchCmd(a *app) *cobra.Command {
	opts := &benchOptions{
		data: generator.DefaultOptions(),
		run:  bench.DefaultOptions(),
	}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark session merging on a large dataset",
		Long: `Benchmark session merging. The dataset is read from --input, or generated
and saved there first when it does not exist or --generate is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBench(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.generate, "generate", false, "generate fresh data")
	cmd.Flags().StringVarP(&opts.input, "input", "i", "test_data.json", "input file")
	cmd.Flags().IntVar(&opts.data.Users, "users", opts.data.Users, "number of users when generating")
	cmd.Flags().IntVar(&opts.data.EventsPerUser, "events", opts.data.EventsPerUser, "events per user when generating")
	cmd.Flags().Uint64Var(&opts.data.Seed, "seed", opts.data.Seed, "random seed when generating")
	cmd.Flags().IntVar(&opts.run.Runs, "runs", opts.run.Runs, "number of timed runs")
	cmd.Flags().IntVar(&opts.run.Warmup, "warmup", opts.run.Warmup, "number of untimed warmup runs")
	cmd.Flags().IntVarP(&opts.run.Workers, "workers", "w", -1, "parallel user workers; 1 is sequential, 0 uses all CPUs (default from BROWSETRACE_WORKERS)")

	return cmd
}

func (a *app) runBench(cmd *cobra.Command, opts *benchOptions) error {
	events, err := a.benchDataset(cmd, opts)
	if err != nil {
		return err
	}

	users := make(map[string]struct{})
	for _, event := range events {
		users[event.UserID] = struct{}{}
	}
	cmd.Printf("   Total events: %s\n", humanize.Comma(int64(len(events))))
	cmd.Printf("   Unique users: %s\n", humanize.Comma(int64(len(users))))

	runOpts := opts.run
	runOpts.Workers = a.workers(runOpts.Workers)
	cmd.Printf("\nBenchmarking (%d runs, %d workers)...\n", runOpts.Runs, runOpts.Workers)

	result, err := bench.Run(events, runOpts)
	if err != nil {
		return err
	}
	a.cmdLog.Info().
		Int("events", result.Events).
		Int("sessions", result.Sessions).
		Dur("avg", result.Avg).
		Msg("benchmark finished")

	cmd.Println("\nRESULTS")
	cmd.Printf("  Input events:    %s\n", humanize.Comma(int64(result.Events)))
	cmd.Printf("  Output sessions: %s\n", humanize.Comma(int64(result.Sessions)))
	cmd.Printf("  Avg time:        %.2f ms\n", milliseconds(result.Avg))
	cmd.Printf("  Min time:        %.2f ms\n", milliseconds(result.Min))
	cmd.Printf("  Max time:        %.2f ms\n", milliseconds(result.Max))
	cmd.Printf("  Throughput:      %s events/sec\n", humanize.Comma(int64(result.Throughput())))

	check := bench.Verify(sessions.MergeWorkers(events, runOpts.Workers))
	cmd.Println("\nSpot check...")
	cmd.Printf("   Sorted by start_ts: %s\n", mark(check.Sorted))
	cmd.Printf("   All fields present: %s\n", mark(check.WellFormed))
	if !check.OK() {
		return errors.New("benchmark spot check failed")
	}
	return nil
}

func (a *app) benchDataset(cmd *cobra.Command, opts *benchOptions) ([]models.Event, error) {
	_, statErr := os.Stat(opts.input)
	if !opts.generate && statErr == nil {
		cmd.Printf("Loading data from %s...\n", opts.input)
		return eventio.LoadFile(opts.input)
	}
	if statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat input file: %w", statErr)
	}

	cmd.Printf("Generating data: %d users × %d events...\n", opts.data.Users, opts.data.EventsPerUser)
	events := generator.Generate(opts.data)
	if err := eventio.SaveFile(opts.input, events, false); err != nil {
		return nil, err
	}
	cmd.Printf("   Saved to %s\n", opts.input)
	return events, nil
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func mark(ok bool) string {
	if ok {
		return "ok"
	}
	return "FAILED"
}

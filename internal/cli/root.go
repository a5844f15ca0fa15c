package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vincentbai/browsetrace-sessions/internal/config"
	"github.com/vincentbai/browsetrace-sessions/internal/logger"
)

const version = "0.2.0"

// app carries state shared by every subcommand of one invocation.
type app struct {
	envFile  string
	logLevel string
	logFile  string
	pretty   bool

	cfg    *config.Config
	log    *logger.Logger
	// cmdLog tags every entry with the running subcommand.
	cmdLog zerolog.Logger
}

// NewRootCmd builds the browsetrace-sessions command tree.
func NewRootCmd() *cobra.Command {
	rootCmd, _ := newRootCmd()
	return rootCmd
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{cmdLog: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "browsetrace-sessions",
		Short: "Group BrowserTrace events into user sessions",
		Long: `browsetrace-sessions groups timestamped user events into sessions.
Consecutive events of a user that are at most 600 seconds apart belong to the
same session; each session lists its event types and a merged meta object in
which the earliest value wins.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", "", "load settings from this .env file (default ./.env if present)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&a.logFile, "log-file", "", "also write logs to this file")
	rootCmd.PersistentFlags().BoolVar(&a.pretty, "pretty", false, "human-readable log output")

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)

	rootCmd.AddCommand(
		newMergeCmd(a),
		newGenerateCmd(a),
		newBenchCmd(a),
		newImportCmd(a),
		newDemoCmd(a),
	)
	return rootCmd, a
}

// Execute runs the command tree against os.Args. Command output goes to
// stdout, logs to stderr.
func Execute() error {
	rootCmd, a := newRootCmd()
	rootCmd.SetOut(os.Stdout)
	return run(rootCmd, a)
}

// run executes rootCmd and closes the log file whether or not the command failed.
func run(rootCmd *cobra.Command, a *app) error {
	defer a.close()
	return rootCmd.Execute()
}

func (a *app) close() {
	if a.log != nil {
		_ = a.log.Close()
	}
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	var envFiles []string
	if a.envFile != "" {
		envFiles = append(envFiles, a.envFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFile != "" {
		cfg.LogFile = a.logFile
	}
	a.cfg = cfg

	a.log, err = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
		Pretty: a.pretty,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	a.cmdLog = a.log.With().Str("command", cmd.Name()).Logger()
	return nil
}

// workers resolves a --workers flag value against the configured default.
func (a *app) workers(flagValue int) int {
	if flagValue >= 0 {
		return flagValue
	}
	return a.cfg.Workers
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/runnasync/internal/config"
	"github.com/claude/runnasync/internal/state"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	configPath string
	verbose    bool

	rootCmd = &cobra.Command{
		Use:   "runnasync",
		Short: "Sync Runna training plans to intervals.icu",
		Long: `runnasync reads the Runna calendar feed, converts each workout
description into the intervals.icu structured workout format, and
uploads the results as planned calendar events. A local journal keeps
repeat runs idempotent.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads .env, then the YAML file, then env overrides.
// Variables already exported stay authoritative; .env only fills gaps.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()
	return config.Load(configPath)
}

// newLogger logs to stderr so tables and JSON stay clean on stdout.
// The mcp command relies on this: stdio transport owns stdout.
func newLogger(cfg *config.Config) *slog.Logger {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openJournal opens the sync journal, degrading to nil (every workout
// re-uploaded, no sync history) when the state directory is unusable.
func openJournal(cfg *config.Config, log *slog.Logger) (*state.DB, func()) {
	dir, err := cfg.StateDir()
	if err == nil {
		var db *state.DB
		db, err = state.Open(dir)
		if err == nil {
			return db, func() { db.Close() }
		}
	}
	log.Warn("sync journal unavailable", "error", err)
	return nil, func() {}
}

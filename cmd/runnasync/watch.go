package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/runnasync/internal/feed"
	"github.com/claude/runnasync/internal/intervals"
	"github.com/claude/runnasync/internal/runna"
	"github.com/claude/runnasync/internal/schedule"
	"github.com/claude/runnasync/internal/syncer"
	"github.com/claude/runnasync/internal/ui"
	"github.com/spf13/cobra"
)

var watchNow bool

func init() {
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Sync on a schedule until interrupted",
		Long: `Watch runs a sync on the cron schedule from sync.schedule (default
"0 6 * * *", daily at 06:00) and keeps going until interrupted. Each run
covers today onward, so newly published plan weeks are picked up as they
appear in the feed.`,
		RunE: runWatch,
	}
	watchCmd.Flags().BoolVar(&watchNow, "now", false, "run one sync immediately before waiting for the schedule")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	if err := cfg.RequireFeed(); err != nil {
		return err
	}
	if err := cfg.RequireIntervals(); err != nil {
		return err
	}

	units, err := runna.ParseDistanceUnit(cfg.Sync.Units)
	if err != nil {
		return err
	}

	db, closeJournal := openJournal(cfg, log)
	defer closeJournal()
	var journal syncer.Journal
	if db != nil {
		journal = db
	}

	client := intervals.NewClient(cfg.Intervals.BaseURL, cfg.Intervals.AthleteID, cfg.Intervals.APIKey)
	s := syncer.New(feed.NewClient(), client, journal, log)

	// Start date is computed per run so an instance left running for
	// weeks does not re-upload long-past workouts.
	job := func() {
		opts := syncer.Options{
			ICSURL:        cfg.Feed.ICSURL,
			StartDate:     time.Now().Format("2006-01-02"),
			Units:         units,
			EasyPaceSecMi: cfg.Sync.EasyPaceSecMi,
		}
		_, stats, err := s.Run(opts)
		if err != nil {
			log.Error("scheduled sync failed", "error", err)
			return
		}
		log.Info("scheduled sync finished",
			"uploaded", stats.Uploaded,
			"unchanged", stats.Unchanged,
			"skipped", stats.Skipped)
	}

	runner, err := schedule.New(cfg.Sync.Schedule, job, log)
	if err != nil {
		return err
	}

	if watchNow {
		job()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(cmd.OutOrStdout(), ui.Dim(fmt.Sprintf("watching on schedule %q, Ctrl-C to stop", cfg.Sync.Schedule)))
	return runner.Run(ctx)
}

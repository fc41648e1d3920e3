package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/claude/runnasync/internal/feed"
	"github.com/claude/runnasync/internal/intervals"
	"github.com/claude/runnasync/internal/runna"
	"github.com/claude/runnasync/internal/syncer"
	"github.com/claude/runnasync/internal/ui"
	"github.com/spf13/cobra"
)

var (
	syncStart    string
	syncEnd      string
	syncAll      bool
	syncLimit    int
	syncDryRun   bool
	syncForce    bool
	syncICSURL   string
	syncShowDesc bool
	syncMiles    bool
	syncKm       bool
	syncEasyPace int
)

func init() {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Upload upcoming Runna workouts to intervals.icu",
		RunE:  runSync,
	}
	syncCmd.Flags().StringVar(&syncStart, "start", "", "start date YYYY-MM-DD (default today)")
	syncCmd.Flags().StringVar(&syncEnd, "end", "", "end date YYYY-MM-DD, inclusive (default none)")
	syncCmd.Flags().BoolVar(&syncAll, "all", false, "include past workouts instead of starting today")
	syncCmd.Flags().IntVarP(&syncLimit, "limit", "l", 0, "sync at most N workouts (0 = no limit)")
	syncCmd.Flags().BoolVarP(&syncDryRun, "dry-run", "n", false, "convert and show, upload nothing")
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "re-upload workouts the journal marks unchanged")
	syncCmd.Flags().StringVar(&syncICSURL, "ics-url", "", "override the configured Runna feed URL")
	syncCmd.Flags().BoolVar(&syncShowDesc, "show-desc", false, "print each converted description")
	syncCmd.Flags().BoolVar(&syncMiles, "miles", false, "render paces and distances in miles")
	syncCmd.Flags().BoolVar(&syncKm, "km", false, "render paces and distances in kilometres")
	syncCmd.Flags().IntVar(&syncEasyPace, "easy-pace", -1, "fallback easy pace in sec/mi, 0 disables (default from config)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	icsURL := syncICSURL
	if icsURL == "" {
		if err := cfg.RequireFeed(); err != nil {
			return err
		}
		icsURL = cfg.Feed.ICSURL
	}

	if syncMiles && syncKm {
		return fmt.Errorf("--miles and --km are mutually exclusive")
	}
	units, err := runna.ParseDistanceUnit(cfg.Sync.Units)
	if err != nil {
		return err
	}
	if syncMiles {
		units = runna.UnitMiles
	}
	if syncKm {
		units = runna.UnitKm
	}

	easyPace := cfg.Sync.EasyPaceSecMi
	if syncEasyPace >= 0 {
		easyPace = syncEasyPace
	}

	start := syncStart
	if start == "" && !syncAll {
		start = time.Now().Format("2006-01-02")
	}
	if err := checkDate("--start", start); err != nil {
		return err
	}
	if err := checkDate("--end", syncEnd); err != nil {
		return err
	}

	db, closeJournal := openJournal(cfg, log)
	defer closeJournal()
	var journal syncer.Journal
	if db != nil {
		journal = db
	}

	var client syncer.Uploader
	if !syncDryRun {
		if err := cfg.RequireIntervals(); err != nil {
			return err
		}
		client = intervals.NewClient(cfg.Intervals.BaseURL, cfg.Intervals.AthleteID, cfg.Intervals.APIKey)
	}

	s := syncer.New(feed.NewClient(), client, journal, log)
	plan, stats, err := s.Run(syncer.Options{
		ICSURL:        icsURL,
		StartDate:     start,
		EndDate:       syncEnd,
		Limit:         syncLimit,
		Units:         units,
		EasyPaceSecMi: easyPace,
		DryRun:        syncDryRun,
		Force:         syncForce,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(plan.Events) == 0 && len(plan.Skipped) == 0 {
		fmt.Fprintln(out, ui.Dim("No workouts in range."))
		return nil
	}

	fmt.Fprintln(out, ui.Title(fmt.Sprintf("Runna workouts (%d)", len(plan.Events))))
	rows := make([][]string, 0, len(plan.Events))
	for _, pe := range plan.Events {
		rows = append(rows, []string{
			eventDate(pe.Event.StartDateLocal),
			pe.Event.Name,
			ui.Duration(pe.Event.MovingTime),
		})
	}
	fmt.Fprintln(out, ui.Table([]string{"Date", "Name", "Duration"}, rows))

	if syncShowDesc {
		for _, pe := range plan.Events {
			body := pe.Event.Description
			for _, w := range pe.Warnings {
				body += "\n" + ui.Warn("warning: "+w.String())
			}
			heading := eventDate(pe.Event.StartDateLocal) + "  " + pe.Event.Name
			fmt.Fprintln(out, ui.Panel(heading, body))
		}
	}

	if len(plan.Skipped) > 0 {
		names := make([]string, 0, len(plan.Skipped))
		for _, sk := range plan.Skipped {
			names = append(names, sk.Date+" "+sk.Name)
		}
		fmt.Fprintln(out, ui.Dim(fmt.Sprintf("skipped %d without parseable steps: %s",
			len(plan.Skipped), strings.Join(names, ", "))))
	}

	if syncDryRun {
		fmt.Fprintln(out, ui.Dim("dry run: nothing uploaded"))
		return nil
	}
	fmt.Fprintln(out, ui.OK(fmt.Sprintf("%d uploaded, %d unchanged, %d skipped",
		stats.Uploaded, stats.Unchanged, stats.Skipped)))
	return nil
}

// checkDate validates an optional YYYY-MM-DD flag value.
func checkDate(flag, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return fmt.Errorf("invalid %s date %q (want YYYY-MM-DD)", flag, value)
	}
	return nil
}

// eventDate strips the local-midnight suffix from an event start.
func eventDate(startDateLocal string) string {
	if i := strings.IndexByte(startDateLocal, 'T'); i > 0 {
		return startDateLocal[:i]
	}
	return startDateLocal
}

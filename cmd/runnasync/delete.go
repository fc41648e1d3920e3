package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/claude/runnasync/internal/intervals"
	"github.com/claude/runnasync/internal/syncer"
	"github.com/claude/runnasync/internal/ui"
	"github.com/spf13/cobra"
)

// deleteHorizonDays bounds open-ended windows; intervals.icu wants an
// explicit newest date.
const deleteHorizonDays = 730

var (
	delStart  string
	delEnd    string
	delFuture bool
	delDryRun bool
	delYes    bool
)

func init() {
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove previously synced workouts from intervals.icu",
		Long: `delete removes planned events this tool uploaded, identified by the
runna- external ID prefix. Events created by hand or by other tools
are never touched.`,
		RunE: runDelete,
	}
	deleteCmd.Flags().StringVar(&delStart, "start", "", "delete from this date YYYY-MM-DD")
	deleteCmd.Flags().StringVar(&delEnd, "end", "", "delete through this date YYYY-MM-DD")
	deleteCmd.Flags().BoolVar(&delFuture, "future", false, "delete from today forward")
	deleteCmd.Flags().BoolVarP(&delDryRun, "dry-run", "n", false, "show matches, delete nothing")
	deleteCmd.Flags().BoolVarP(&delYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	if delStart == "" && delEnd == "" && !delFuture {
		return fmt.Errorf("specify --start, --end or --future to pick a range")
	}
	if err := checkDate("--start", delStart); err != nil {
		return err
	}
	if err := checkDate("--end", delEnd); err != nil {
		return err
	}
	if err := cfg.RequireIntervals(); err != nil {
		return err
	}

	today := time.Now()
	horizon := today.AddDate(0, 0, deleteHorizonDays).Format("2006-01-02")
	oldest, newest := delStart, delEnd
	if delFuture {
		oldest = today.Format("2006-01-02")
	}
	if oldest == "" {
		oldest = "2000-01-01"
	}
	if newest == "" {
		newest = horizon
	}

	client := intervals.NewClient(cfg.Intervals.BaseURL, cfg.Intervals.AthleteID, cfg.Intervals.APIKey)
	events, err := client.ListEvents(oldest, newest)
	if err != nil {
		return err
	}

	var candidates []intervals.RemoteEvent
	for _, ev := range events {
		if strings.HasPrefix(ev.ExternalID, syncer.ExternalIDPrefix) {
			candidates = append(candidates, ev)
		}
	}

	out := cmd.OutOrStdout()
	if len(candidates) == 0 {
		fmt.Fprintln(out, ui.Dim("No synced events between "+oldest+" and "+newest+"."))
		return nil
	}

	rows := make([][]string, 0, len(candidates))
	for _, ev := range candidates {
		rows = append(rows, []string{eventDate(ev.StartDateLocal), ev.Name, strconv.Itoa(ev.ID)})
	}
	fmt.Fprintln(out, ui.Title(fmt.Sprintf("Events to delete (%d)", len(candidates))))
	fmt.Fprintln(out, ui.Table([]string{"Date", "Name", "ID"}, rows))

	if delDryRun {
		fmt.Fprintln(out, ui.Dim("dry run: nothing deleted"))
		return nil
	}

	if !delYes {
		fmt.Fprintf(out, "Delete %d events? [y/N]: ", len(candidates))
		reader := bufio.NewReader(cmd.InOrStdin())
		line, _ := reader.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
		default:
			fmt.Fprintln(out, ui.Dim("aborted"))
			return nil
		}
	}

	journal, closeJournal := openJournal(cfg, log)
	defer closeJournal()

	failures := 0
	for _, ev := range candidates {
		if err := client.DeleteEvent(ev.ID); err != nil {
			log.Warn("delete failed", "id", ev.ID, "name", ev.Name, "error", err)
			failures++
			continue
		}
		if journal != nil {
			if err := journal.DeleteSynced(ev.ExternalID); err != nil {
				log.Warn("journal cleanup failed", "external_id", ev.ExternalID, "error", err)
			}
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d deletions failed", failures, len(candidates))
	}
	fmt.Fprintln(out, ui.OK(fmt.Sprintf("%d events deleted", len(candidates))))
	return nil
}

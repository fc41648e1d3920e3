package main

import (
	"fmt"
	"strconv"

	"github.com/claude/runnasync/internal/intervals"
	"github.com/claude/runnasync/internal/ui"
	"github.com/spf13/cobra"
)

var (
	listStart string
	listEnd   string
)

func init() {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List planned events on the intervals.icu calendar",
		RunE:  runList,
	}
	listCmd.Flags().StringVar(&listStart, "start", "", "start date YYYY-MM-DD")
	listCmd.Flags().StringVar(&listEnd, "end", "", "end date YYYY-MM-DD, inclusive")
	listCmd.MarkFlagRequired("start")
	listCmd.MarkFlagRequired("end")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := checkDate("--start", listStart); err != nil {
		return err
	}
	if err := checkDate("--end", listEnd); err != nil {
		return err
	}
	if err := cfg.RequireIntervals(); err != nil {
		return err
	}

	client := intervals.NewClient(cfg.Intervals.BaseURL, cfg.Intervals.AthleteID, cfg.Intervals.APIKey)
	events, err := client.ListEvents(listStart, listEnd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(events) == 0 {
		fmt.Fprintln(out, ui.Dim("No planned events between "+listStart+" and "+listEnd+"."))
		return nil
	}

	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		rows = append(rows, []string{
			eventDate(ev.StartDateLocal),
			ev.Name,
			ev.Category,
			strconv.Itoa(ev.ID),
			ev.ExternalID,
		})
	}
	fmt.Fprintln(out, ui.Title(fmt.Sprintf("Planned events (%d)", len(events))))
	fmt.Fprintln(out, ui.Table([]string{"Date", "Name", "Category", "ID", "External ID"}, rows))
	return nil
}

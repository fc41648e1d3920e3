package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/claude/runnasync/internal/intervals"
	"github.com/claude/runnasync/internal/runna"
	"github.com/claude/runnasync/internal/ui"
	"github.com/spf13/cobra"
)

var cfgShow bool

func init() {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Set up credentials interactively",
		RunE:  runConfig,
	}
	configCmd.Flags().BoolVar(&cfgShow, "show", false, "print the current configuration and exit")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if cfgShow {
		apiKey := "(not set)"
		if cfg.Intervals.APIKey != "" {
			apiKey = "(set)"
		}
		feedURL := cfg.Feed.ICSURL
		if feedURL == "" {
			feedURL = "(not set)"
		}
		lines := []string{
			"config file:           " + configPath,
			"feed.ics_url:          " + feedURL,
			"intervals.athlete_id:  " + cfg.Intervals.AthleteID,
			"intervals.api_key:     " + apiKey,
			"intervals.base_url:    " + cfg.Intervals.BaseURL,
			"sync.units:            " + cfg.Sync.Units,
			"sync.easy_pace_sec_mi: " + strconv.Itoa(cfg.Sync.EasyPaceSecMi),
			"sync.state_dir:        " + cfg.Sync.StateDir,
			"sync.schedule:         " + cfg.Sync.Schedule,
		}
		fmt.Fprintln(out, ui.Panel("runnasync configuration", strings.Join(lines, "\n")))
		return nil
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	fmt.Fprintln(out, ui.Title("runnasync setup"))
	fmt.Fprintln(out, ui.Dim("Enter keeps the value in brackets."))

	cfg.Feed.ICSURL = promptValue(reader, out, "Runna calendar URL", cfg.Feed.ICSURL)
	cfg.Intervals.AthleteID = promptValue(reader, out, "intervals.icu athlete ID", cfg.Intervals.AthleteID)
	cfg.Intervals.APIKey = promptSecret(reader, out, "intervals.icu API key", cfg.Intervals.APIKey)

	paceStr := promptValue(reader, out, "easy pace sec/mi", strconv.Itoa(cfg.Sync.EasyPaceSecMi))
	pace, err := strconv.Atoi(strings.TrimSpace(paceStr))
	if err != nil || pace < 0 {
		fmt.Fprintln(out, ui.Warn(fmt.Sprintf("invalid pace %q, using %d", paceStr, runna.DefaultEasyPaceSecMi)))
		pace = runna.DefaultEasyPaceSecMi
	}
	cfg.Sync.EasyPaceSecMi = pace

	if err := cfg.Save(configPath); err != nil {
		return err
	}
	fmt.Fprintln(out, ui.OK("wrote "+configPath))

	// Verify the credentials right away so a typo shows up here, not on
	// the first scheduled sync.
	if cfg.Intervals.APIKey != "" && cfg.Intervals.AthleteID != "" {
		client := intervals.NewClient(cfg.Intervals.BaseURL, cfg.Intervals.AthleteID, cfg.Intervals.APIKey)
		athlete, err := client.GetAthlete()
		if err != nil {
			fmt.Fprintln(out, ui.Warn(fmt.Sprintf("could not verify intervals.icu credentials: %v", err)))
			return nil
		}
		fmt.Fprintln(out, ui.OK(fmt.Sprintf("connected to intervals.icu as %s (%s)", athlete.Name, athlete.ID)))
	}
	return nil
}

func promptValue(r *bufio.Reader, w io.Writer, label, current string) string {
	display := current
	if display == "" {
		display = "not set"
	}
	fmt.Fprintf(w, "%s [%s]: ", label, display)
	line, _ := r.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	return line
}

// promptSecret never echoes the current key back.
func promptSecret(r *bufio.Reader, w io.Writer, label, current string) string {
	display := "not set"
	if current != "" {
		display = "set, enter keeps it"
	}
	fmt.Fprintf(w, "%s [%s]: ", label, display)
	line, _ := r.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return current
	}
	return line
}

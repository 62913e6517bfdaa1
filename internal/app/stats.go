package app

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/rewind/internal/analyzer"
	"github.com/blackwell-systems/rewind/internal/output"
)

var (
	statsDate    string
	statsApp     string
	statsHistory bool

	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show per-app usage totals",
		Long: `Show how long each app was used on a given day, with session counts and
each app's share of the day's tracked time.

Use --history to summarize every cataloged app across all recorded days
instead, or --app to look at a single app's history.

Usage frequency is classified as:
  - daily: Used in the last 7 days, about every other day or more
  - weekly: Used in the last 30 days
  - monthly: Used in the last 90 days
  - rarely: Last used more than 90 days ago
  - never: No recorded usage`,
		Example: `  # Today's totals
  rewind stats

  # Totals for a given day
  rewind stats --date 2026-03-14

  # Long-term usage of every app
  rewind stats --history

  # Long-term usage of one app
  rewind stats --app org.mozilla.firefox`,
		RunE: runStats,
	}
)

func init() {
	statsCmd.Flags().StringVar(&statsDate, "date", "", "day to summarize: YYYY-MM-DD, today or yesterday (default: today)")
	statsCmd.Flags().StringVar(&statsApp, "app", "", "show history for a single app package")
	statsCmd.Flags().BoolVar(&statsHistory, "history", false, "summarize all recorded days")

	RootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	if statsApp != "" || statsHistory {
		return runStatsHistory(cmd)
	}

	tl, window, err := loadTimeline(cmd, statsDate, timelineOptions(nil, nil))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n\n", window.Start.Format("Monday, 2 January 2006"))
	fmt.Fprint(out, output.RenderAppTable(analyzer.AppTotals(tl)))
	return nil
}

func runStatsHistory(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	if err := requireAccess(out); err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	a := analyzer.New(st, logger)
	labels := labelsFor(st)

	var pkgs []string
	if statsApp != "" {
		pkgs = []string{statsApp}
	} else {
		for pkg := range labels {
			pkgs = append(pkgs, pkg)
		}
		sort.Strings(pkgs)
	}

	stats, err := a.UsageHistory(pkgs, time.Now())
	if err != nil {
		return err
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Resumes > stats[j].Resumes
	})

	fmt.Fprint(out, output.RenderUsageTable(stats, labels))
	return nil
}

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/rewind/internal/analyzer"
	"github.com/blackwell-systems/rewind/internal/output"
	"github.com/blackwell-systems/rewind/internal/timeline"
)

var (
	timelineDate              string
	timelineFormat            string
	timelineCloseOpen         bool
	timelineRequireForeground bool

	timelineCmd = &cobra.Command{
		Use:   "timeline",
		Short: "Show the app usage sessions of a day",
		Long: `Rebuild the usage sessions of a calendar day from recorded events and
show them in order.

A session starts when an app resumes and ends when a different app resumes.
Pauses do not end sessions, and repeated resumes of the same app extend the
current one. The last app of the day has no end yet, so it is left out
unless --close-open is given, in which case it ends now (or at midnight for
past days).`,
		Example: `  # Today's timeline as colored bars
  rewind timeline

  # A specific day as a table
  rewind timeline --date 2026-03-14 --format table

  # Include the app that is still open
  rewind timeline --close-open`,
		RunE: runTimeline,
	}
)

func init() {
	timelineCmd.Flags().StringVar(&timelineDate, "date", "", "day to show: YYYY-MM-DD, today or yesterday (default: today)")
	timelineCmd.Flags().StringVar(&timelineFormat, "format", "bars", "output format: bars or table")
	timelineCmd.Flags().BoolVar(&timelineCloseOpen, "close-open", false, "end the still-open last session now")
	timelineCmd.Flags().BoolVar(&timelineRequireForeground, "require-foreground", false, "ignore apps with no foreground time that day")

	RootCmd.AddCommand(timelineCmd)
}

// loadTimeline checks access and rebuilds the timeline for the --date day.
// Access is checked before anything is read.
func loadTimeline(cmd *cobra.Command, date string, opts analyzer.Options) (timeline.AppTimeline, timeline.Window, error) {
	if err := requireAccess(cmd.OutOrStdout()); err != nil {
		return timeline.AppTimeline{}, timeline.Window{}, err
	}

	day, err := parseDay(date, time.Now())
	if err != nil {
		return timeline.AppTimeline{}, timeline.Window{}, err
	}

	st, err := openStore()
	if err != nil {
		return timeline.AppTimeline{}, timeline.Window{}, err
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return analyzer.New(st, logger).Timeline(ctx, day, opts)
}

// flagOverrides returns pointers for the boolean timeline flags that were
// set explicitly on cmd, nil otherwise.
func flagOverrides(cmd *cobra.Command, closeOpen, requireForeground *bool) (*bool, *bool) {
	var c, r *bool
	if cmd.Flags().Changed("close-open") {
		c = closeOpen
	}
	if cmd.Flags().Changed("require-foreground") {
		r = requireForeground
	}
	return c, r
}

func runTimeline(cmd *cobra.Command, args []string) error {
	if timelineFormat != "bars" && timelineFormat != "table" {
		return fmt.Errorf("invalid format %q (want bars or table)", timelineFormat)
	}

	opts := timelineOptions(flagOverrides(cmd, &timelineCloseOpen, &timelineRequireForeground))
	tl, window, err := loadTimeline(cmd, timelineDate, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n\n", window.Start.Format("Monday, 2 January 2006"))
	if timelineFormat == "table" {
		fmt.Fprint(out, output.RenderTimelineTable(tl))
		return nil
	}
	fmt.Fprint(out, output.RenderTimelineBars(tl, cfg.Timeline.Width, output.IsColorEnabled()))
	return nil
}

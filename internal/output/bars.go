package output

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/blackwell-systems/rewind/internal/timeline"
)

const (
	clockLayout = "15:04"
	labelWidth  = 18
	// fixedColumns is everything on a bar line except the bar itself:
	// "15:04-15:04  " + label + " " + " " + duration.
	fixedColumns = 13 + labelWidth + 2 + 8
	minBarWidth  = 10
	blockRune    = "█"
)

// newRenderer returns a lipgloss renderer pinned to true color or to plain
// ASCII so output does not depend on the environment it is built in.
func newRenderer(color bool) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	if color {
		r.SetColorProfile(termenv.TrueColor)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

// RenderTimelineBars renders one line per session, in order, with a bar
// whose length is proportional to the session's duration. The longest
// session spans the full bar column; every session gets at least one cell.
// width is the total line width.
func RenderTimelineBars(tl timeline.AppTimeline, width int, color bool) string {
	if tl.Len() == 0 {
		return "No sessions recorded.\n"
	}

	barWidth := max(width-fixedColumns, minBarWidth)
	var longest time.Duration
	for _, s := range tl.Sessions {
		longest = max(longest, s.Duration())
	}

	r := newRenderer(color)
	var sb strings.Builder
	for _, s := range tl.Sessions {
		cells := barCells(s.Duration(), longest, barWidth)
		sb.WriteString(fmt.Sprintf("%s-%s  %-*s %s%s %s\n",
			s.Start.Timestamp.Format(clockLayout),
			s.End.Timestamp.Format(clockLayout),
			labelWidth, truncate(s.Start.App.Label, labelWidth),
			drawBar(r, s.Start.App.Color, cells, color),
			strings.Repeat(" ", barWidth-cells),
			FormatDuration(s.Duration())))
	}
	sb.WriteString(fmt.Sprintf("\nTotal: %s across %d sessions\n",
		FormatDuration(time.Duration(tl.TotalSeconds)*time.Second), tl.Len()))
	return sb.String()
}

// barCells scales d against longest into [1, width] cells.
func barCells(d, longest time.Duration, width int) int {
	if longest <= 0 {
		return 1
	}
	n := int(math.Round(float64(d) / float64(longest) * float64(width)))
	return max(1, min(n, width))
}

// drawBar paints cells with the app color as background, or with block
// characters when color is off.
func drawBar(r *lipgloss.Renderer, hex string, cells int, color bool) string {
	if !color {
		return strings.Repeat(blockRune, cells)
	}
	if hex == "" {
		hex = timeline.DefaultColor
	}
	return r.NewStyle().Background(lipgloss.Color(hex)).Render(strings.Repeat(" ", cells))
}

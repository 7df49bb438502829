package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/imagehub/pkg/pipeline"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

var (
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// stdout receives all user-facing output. Logs go to the CLI logger.
var stdout io.Writer = os.Stdout

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconWarning.Render(iconWarning)+" "+styleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(stdout, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+styleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Fprintln(stdout, "  "+styleDim.Render(iconArrow)+" "+styleValue.Render(path))
}

func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(stdout, "  "+keyStyle.Render(key)+" "+styleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, styleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Run Summary
// =============================================================================

// printRunSummary prints the counters of a finished run followed by every
// skipped resource and every dropped or degraded record.
func printRunSummary(res *pipeline.Result) {
	s := res.Stats
	printSuccess("Wrote %s manifests with %s canvases",
		styleNumber.Render(fmt.Sprint(s.Manifests)), styleNumber.Render(fmt.Sprint(s.Canvases)))
	printKeyValue("run", res.RunID)
	printKeyValue("resources", counts(
		fmt.Sprintf("%d fetched", s.Resources),
		plural(s.Skipped, "skipped"),
		plural(s.Duplicates, "duplicate"),
	))
	printKeyValue("records", counts(
		fmt.Sprintf("%d harvested", s.Records),
		plural(len(res.Dropped), "dropped"),
		plural(len(res.Degraded), "degraded"),
		plural(s.Placeholders, "placeholder"),
	))
	printKeyValue("timing", counts(
		stageTime("fetch", s.FetchTime),
		stageTime("dimensions", s.DimensionsTime),
		stageTime("harvest", s.HarvestTime),
		stageTime("persist", s.PersistTime),
	))

	for _, is := range res.Skipped {
		printWarning("skipped resource %s: %v", is.Ref, is.Err)
	}
	for _, is := range res.Dropped {
		printWarning("dropped %s: %v", is.DataID, is.Err)
	}
	for _, is := range res.Degraded {
		printWarning("degraded %s (%s): %v", is.DataID, is.Stage, is.Err)
	}
}

func plural(n int, label string) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%d %s", n, label)
}

func stageTime(name string, d time.Duration) string {
	return name + " " + d.Round(time.Millisecond).String()
}

// counts joins the non-empty parts with a dimmed separator.
func counts(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, styleDim.Render(" · "))
}

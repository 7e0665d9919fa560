package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/devicelab-dev/loginmodule-e2e/pkg/core"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// Scenarios slower than this are flagged in the progress output.
const slowThreshold = 30 * time.Second

var colorsEnabled = true

func init() {
	// Respect NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		colorsEnabled = false
		return
	}
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		if (fileInfo.Mode() & os.ModeCharDevice) == 0 {
			colorsEnabled = false
		}
	}
}

// color returns the color code if colors are enabled, empty string otherwise
func color(c string) string {
	if colorsEnabled {
		return c
	}
	return ""
}

func onScenarioStart(w io.Writer) func(idx, total int, name string) {
	return func(idx, total int, name string) {
		fmt.Fprintf(w, "\n  %s[%d/%d]%s %s%s%s\n",
			color(colorCyan), idx+1, total, color(colorReset),
			color(colorBold), name, color(colorReset))
	}
}

func onScenarioEnd(w io.Writer) func(idx, total int, res core.ScenarioResult) {
	return func(_, _ int, res core.ScenarioResult) {
		dur := formatDuration(res.Duration)
		switch {
		case res.Status == core.StatusPassed && res.Duration >= slowThreshold:
			fmt.Fprintf(w, "    %s⚠%s passed %s(%s)%s\n", color(colorYellow), color(colorReset), color(colorYellow), dur, color(colorReset))
		case res.Status == core.StatusPassed:
			fmt.Fprintf(w, "    %s✓%s passed (%s)\n", color(colorGreen), color(colorReset), dur)
		default:
			fmt.Fprintf(w, "    %s✗%s %s (%s)\n", color(colorRed), color(colorReset), res.Status, dur)
			if res.Error != "" {
				fmt.Fprintf(w, "      %s╰─%s %s\n", color(colorGray), color(colorReset), res.Error)
			}
			for _, a := range res.Attachments {
				fmt.Fprintf(w, "      %s%s:%s %s\n", color(colorGray), a.Name, color(colorReset), a.Path)
			}
		}
	}
}

func printSummary(w io.Writer, result *core.SuiteResult) {
	tableWidth := 72
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("═", tableWidth))
	fmt.Fprintf(w, "  %-44s %-8s %12s\n", "Scenario", "Status", "Duration")
	fmt.Fprintln(w, strings.Repeat("─", tableWidth))

	for _, sr := range result.Scenarios {
		var status, statusColor string
		switch sr.Status {
		case core.StatusPassed:
			status, statusColor = "✓ PASS", color(colorGreen)
		case core.StatusSkipped:
			status, statusColor = "- SKIP", color(colorCyan)
		case core.StatusErrored:
			status, statusColor = "! ERROR", color(colorRed)
		default:
			status, statusColor = "✗ FAIL", color(colorRed)
		}

		name := sr.Name
		if len(name) > 44 {
			name = name[:41] + "..."
		}
		fmt.Fprintf(w, "  %-44s %s%-8s%s %12s\n", name, statusColor, status, color(colorReset), formatDuration(sr.Duration))
	}

	fmt.Fprintln(w, strings.Repeat("─", tableWidth))
	totalColor := color(colorGreen)
	if result.Failed > 0 {
		totalColor = color(colorRed)
	}
	fmt.Fprintf(w, "  %s%-44s%s %s%-8s%s %12s\n",
		color(colorBold), "TOTAL", color(colorReset),
		totalColor, fmt.Sprintf("%d/%d", result.Passed, result.Total), color(colorReset),
		formatDuration(result.Duration))
	fmt.Fprintln(w, strings.Repeat("═", tableWidth))

	if result.Skipped > 0 {
		fmt.Fprintf(w, "  %s%d skipped%s\n", color(colorCyan), result.Skipped, color(colorReset))
	}
	fmt.Fprintf(w, "  %srun %s%s\n", color(colorGray), result.RunID, color(colorReset))
}

// formatDuration shows milliseconds below one second, seconds below one
// minute and minutes with seconds otherwise.
func formatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	}
	mins := ms / 60000
	secs := (ms % 60000) / 1000
	return fmt.Sprintf("%dm %ds", mins, secs)
}

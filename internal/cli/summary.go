package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/ppiankov/decisync/internal/model"
)

// printSummary writes the colored end-of-run summary
func printSummary(w io.Writer, stats *model.RunStatistics, outputPath string, elapsed time.Duration) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Discovered:        %d\n", stats.Discovered)
	fmt.Fprintf(w, "  Structural:        %s\n", gray(len(stats.SkippedStructural)))
	fmt.Fprintf(w, "  Missing summary:   %s\n", yellow(len(stats.SkippedNoSummary)))
	fmt.Fprintf(w, "  Decisions:         %s\n", green(len(stats.Decisions)))
	fmt.Fprintf(w, "  Errors:            %s\n", red(len(stats.Errors)))
	fmt.Fprintln(w)

	for _, ref := range stats.SkippedNoSummary {
		fmt.Fprintf(w, "  %s %s (%d) has no developer summary\n", yellow("!"), ref.Title, ref.ID)
	}
	for _, e := range stats.Errors {
		fmt.Fprintf(w, "  %s %s\n", red("✗"), e)
	}

	switch {
	case stats.OutputWritten:
		fmt.Fprintf(w, "%s Wrote %s %s\n", green("✓"), outputPath, gray(fmt.Sprintf("(%s, run %s)", elapsed.Round(time.Millisecond), stats.RunID)))
	case len(stats.Errors) > 0:
		fmt.Fprintf(w, "%s %s not updated: %d page(s) failed\n", red("✗"), outputPath, len(stats.Errors))
	}
}

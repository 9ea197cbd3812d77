package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/decisync/internal/model"
)

// StepSummary renders run statistics as a GitHub Actions step summary
func (r *Renderer) StepSummary(stats *model.RunStatistics, outputPath string) string {
	failed := len(stats.Errors) > 0
	icon, label := "✅", "Decisions synced"
	if failed {
		icon, label = "❌", "Errors encountered"
	}

	lines := []string{
		fmt.Sprintf("## %s Sync decisions — %s", icon, label),
		"",
		"| | Count |",
		"|---|---|",
		fmt.Sprintf("| Pages discovered under Decision Log | %d |", stats.Discovered),
		fmt.Sprintf("| Structural pages skipped (no status) | %d |", len(stats.SkippedStructural)),
		fmt.Sprintf("| %s | %d |", r.missingSummaryLabel(), len(stats.SkippedNoSummary)),
		fmt.Sprintf("| Decisions included in output | %d |", len(stats.Decisions)),
		fmt.Sprintf("| Errors | %d |", len(stats.Errors)),
	}
	if n := stats.Count(model.BucketDuplicate); n > 0 {
		lines = append(lines, fmt.Sprintf("| Duplicate discovery results dropped | %d |", n))
	}
	lines = append(lines, "")

	if stats.OutputWritten {
		lines = append(lines, fmt.Sprintf("**Output:** `%s` updated", outputPath), "")
	}

	if failed {
		lines = append(lines, "### ❌ Errors", "")
		for _, e := range stats.Errors {
			lines = append(lines, "- "+e)
		}
		lines = append(lines, "")
	}

	lines = append(lines,
		"<details>",
		"<summary>Decisions included</summary>",
		"",
		"| Title | ID | Classification | Status |",
		"|---|---|---|---|",
	)
	for _, d := range stats.Decisions {
		lines = append(lines, fmt.Sprintf("| %s | %d | %s | %s |", r.link(d.Title, d.ID), d.ID, d.Classification, d.Status))
	}
	lines = append(lines, "</details>", "")

	lines = r.appendRefTable(lines, "Decision pages without AI Summary — Developer", stats.SkippedNoSummary, true)
	lines = r.appendRefTable(lines, "Structural pages skipped", stats.SkippedStructural, false)

	return strings.Join(lines, "\n")
}

func (r *Renderer) missingSummaryLabel() string {
	if r.opts.IncludeMissingSummary {
		return "Decision pages without AI Summary"
	}
	return "Decision pages without AI Summary (skipped)"
}

func (r *Renderer) appendRefTable(lines []string, summary string, refs []model.DocumentRef, linked bool) []string {
	if len(refs) == 0 {
		return lines
	}

	lines = append(lines,
		"<details>",
		"<summary>"+summary+"</summary>",
		"",
		"| Title | ID |",
		"|---|---|",
	)
	for _, ref := range refs {
		title := ref.Title
		if linked {
			title = r.link(ref.Title, ref.ID)
		}
		lines = append(lines, fmt.Sprintf("| %s | %d |", title, ref.ID))
	}
	return append(lines, "</details>", "")
}

func (r *Renderer) link(title string, id int64) string {
	if r.opts.PageURL == nil {
		return title
	}
	return fmt.Sprintf("[%s](%s)", title, r.opts.PageURL(id))
}

// StatsJSON serializes run statistics for external reporting
func StatsJSON(stats *model.RunStatistics) ([]byte, error) {
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal stats: %w", err)
	}
	return append(data, '\n'), nil
}

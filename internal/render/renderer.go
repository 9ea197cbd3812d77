// Package render produces the decision reference document and the run
// summaries handed to reporting collaborators.
package render

import (
	"fmt"
	"strings"

	"github.com/ppiankov/decisync/internal/model"
)

// Options configures the rendered document
type Options struct {
	Title             string
	RegenerateCommand string
	// PageURL links a decision title to its page; nil renders plain titles
	PageURL func(id int64) string
	// IncludeMissingSummary reports that decisions without a summary are
	// rendered rather than skipped
	IncludeMissingSummary bool
}

// Renderer renders decisions into markdown. It is pure and deterministic.
type Renderer struct {
	opts Options
}

// NewRenderer creates a renderer
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// Document renders the grouped decision reference.
// Groups follow model.ClassificationOrder, Unknown comes last, empty groups
// are omitted and records keep their input order within a group.
func (r *Renderer) Document(decisions []model.DecisionRecord) string {
	lines := []string{
		"# " + r.opts.Title,
		"",
		"<!-- AUTO-GENERATED — do not edit by hand.",
		fmt.Sprintf("     Run `%s` to regenerate from Confluence. -->", r.opts.RegenerateCommand),
		"",
		"Contains the actionable constraints extracted from each platform",
		"decision. Read by AI coding assistants to enforce standards.",
		"",
		"---",
		"",
	}

	for _, c := range model.ClassificationOrder {
		lines = r.appendGroup(lines, c, groupOf(decisions, c), true)
	}
	lines = r.appendGroup(lines, model.ClassificationUnknown, unclassified(decisions), false)

	return strings.Join(lines, "\n")
}

func (r *Renderer) appendGroup(lines []string, c model.Classification, group []model.DecisionRecord, linked bool) []string {
	if len(group) == 0 {
		return lines
	}

	lines = append(lines, "## "+c.SectionLabel(), "")
	for _, d := range group {
		lines = append(lines, r.headline(d, linked))
		for _, bullet := range d.Bullets {
			lines = append(lines, "- "+bullet)
		}
		lines = append(lines, "")
	}
	return append(lines, "---", "")
}

func (r *Renderer) headline(d model.DecisionRecord, linked bool) string {
	title := fmt.Sprintf("**%s**", d.Title)
	if linked && r.opts.PageURL != nil {
		title = fmt.Sprintf("**[%s](%s)**", d.Title, r.opts.PageURL(d.ID))
	}
	return fmt.Sprintf("%s (%d) — %s", title, d.ID, d.Status)
}

func groupOf(decisions []model.DecisionRecord, c model.Classification) []model.DecisionRecord {
	var group []model.DecisionRecord
	for _, d := range decisions {
		if d.Classification == c {
			group = append(group, d)
		}
	}
	return group
}

// unclassified collects every record outside the ordered classifications
func unclassified(decisions []model.DecisionRecord) []model.DecisionRecord {
	known := make(map[model.Classification]bool, len(model.ClassificationOrder))
	for _, c := range model.ClassificationOrder {
		known[c] = true
	}

	var group []model.DecisionRecord
	for _, d := range decisions {
		if !known[d.Classification] {
			group = append(group, d)
		}
	}
	return group
}

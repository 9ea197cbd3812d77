package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/decisync/internal/model"
)

var (
	rowPattern  = regexp.MustCompile(`(?is)<tr(?:\s[^>]*)?>(.*?)</tr\s*>`)
	cellPattern = regexp.MustCompile(`(?is)<t[hd](?:\s[^>]*)?>(.*?)</t[hd]\s*>`)
)

const (
	statusLabel         = "Status"
	classificationLabel = "Classification"
)

// FieldExtractor reads label/value rows from two-column tables.
//
// The "At a Glance" table of a decision page puts labels in a data cell
// (<td><p><strong>Status</strong></p></td>) as often as in a header cell,
// so both cell kinds are accepted in either position.
type FieldExtractor struct{}

// NewFieldExtractor creates a new field extractor
func NewFieldExtractor() *FieldExtractor {
	return &FieldExtractor{}
}

// Field returns the value next to the first cell matching label, or "".
// Labels compare case-insensitively; rows with fewer than two cells are skipped.
func (e *FieldExtractor) Field(body, label string) string {
	want := CollapseSpace(label)

	for _, row := range rowPattern.FindAllStringSubmatch(body, -1) {
		cells := cellPattern.FindAllStringSubmatch(row[1], -1)
		if len(cells) < 2 {
			continue
		}
		if strings.EqualFold(normalizeLine(cells[0][1]), want) {
			return strings.TrimSpace(Normalize(cells[1][1]))
		}
	}

	return ""
}

// Status extracts the Status value of the page
func (e *FieldExtractor) Status(body string) string {
	return e.Field(body, statusLabel)
}

// Classification extracts the Classification value of the page,
// defaulting to Unknown when the row is absent or unrecognized
func (e *FieldExtractor) Classification(body string) model.Classification {
	return model.ParseClassification(e.Field(body, classificationLabel))
}

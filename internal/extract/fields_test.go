package extract

import (
	"testing"

	"github.com/ppiankov/decisync/internal/model"
)

const glanceTable = `
<h1>At a Glance</h1>
<table data-layout="default"><tbody>
<tr><td><p><strong>Status</strong></p></td><td><p>Accepted</p></td></tr>
<tr><th><p>Classification</p></th><td><p><span class="status-macro">Architectural</span></p></td></tr>
<tr><td colspan="2"><p>Spanning row</p></td></tr>
<tr><td><p>Owner</p></td><th>Platform &amp; Tooling</th></tr>
</tbody></table>`

func TestFieldExtractor_Field(t *testing.T) {
	e := NewFieldExtractor()

	tests := []struct {
		label string
		want  string
	}{
		{"Status", "Accepted"},
		{"status", "Accepted"},
		{"STATUS", "Accepted"},
		{"Classification", "Architectural"},
		{"Owner", "Platform & Tooling"},
		{"Spanning row", ""},
		{"Missing", ""},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := e.Field(glanceTable, tt.label); got != tt.want {
				t.Errorf("Field(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestFieldExtractor_FirstMatchWins(t *testing.T) {
	body := `<table>
<tr><td>Status</td><td>Draft</td></tr>
<tr><td>Status</td><td>Accepted</td></tr>
</table>`

	if got := NewFieldExtractor().Status(body); got != "Draft" {
		t.Errorf("expected first row to win, got %q", got)
	}
}

func TestFieldExtractor_BlankStatus(t *testing.T) {
	body := `<table><tr><td><p><strong>Status</strong></p></td><td><p></p></td></tr></table>`

	if got := NewFieldExtractor().Status(body); got != "" {
		t.Errorf("expected blank status, got %q", got)
	}
}

func TestFieldExtractor_NoTable(t *testing.T) {
	e := NewFieldExtractor()
	if got := e.Status("<p>Status: Accepted</p>"); got != "" {
		t.Errorf("expected no status outside a table, got %q", got)
	}
	if got := e.Classification(""); got != model.ClassificationUnknown {
		t.Errorf("expected Unknown, got %s", got)
	}
}

func TestFieldExtractor_Classification(t *testing.T) {
	tests := []struct {
		value string
		want  model.Classification
	}{
		{"Standard", model.ClassificationStandard},
		{"<strong>Architectural</strong>", model.ClassificationArchitectural},
		{"Strategic (company-wide)", model.ClassificationStrategic},
		{"Accepted", model.ClassificationUnknown},
		{"", model.ClassificationUnknown},
	}

	e := NewFieldExtractor()
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			body := "<table><tr><td>Classification</td><td>" + tt.value + "</td></tr></table>"
			if got := e.Classification(body); got != tt.want {
				t.Errorf("Classification(%q) = %s, want %s", tt.value, got, tt.want)
			}
		})
	}
}

func TestFieldExtractor_ClassificationNotInferredFromStatus(t *testing.T) {
	body := `<table><tr><td>Status</td><td>Standard</td></tr></table>`

	if got := NewFieldExtractor().Classification(body); got != model.ClassificationUnknown {
		t.Errorf("classification must not come from status, got %s", got)
	}
}

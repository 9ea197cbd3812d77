package model

import "strings"

// DocumentRef identifies a page discovered under the decision log root
type DocumentRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// FetchOutcome is the settled result of fetching one page body.
// Exactly one of Body or Err is meaningful.
type FetchOutcome struct {
	Ref  DocumentRef
	Body string
	Err  error
}

// Classification groups decisions in the rendered document
type Classification string

const (
	ClassificationStandard      Classification = "Standard"
	ClassificationArchitectural Classification = "Architectural"
	ClassificationStrategic     Classification = "Strategic"
	ClassificationUnknown       Classification = "Unknown"
)

// ClassificationOrder is the fixed rendering order of classified groups.
// Unknown is not part of it and is always rendered last.
var ClassificationOrder = []Classification{
	ClassificationStandard,
	ClassificationArchitectural,
	ClassificationStrategic,
}

func (c Classification) String() string {
	return string(c)
}

// SectionLabel returns the human-readable heading for a classification group
func (c Classification) SectionLabel() string {
	switch c {
	case ClassificationStandard:
		return "Standards — How we implement (binding on all code)"
	case ClassificationArchitectural:
		return "Architectural — What we adopt (binding technology choices)"
	case ClassificationStrategic:
		return "Strategic — What and why (principles that constrain all decisions)"
	default:
		return "Proposed / Unclassified"
	}
}

// ParseClassification maps a raw table value onto the closed enum.
// The first keyword contained in raw wins; anything else is Unknown.
func ParseClassification(raw string) Classification {
	lower := strings.ToLower(raw)
	for _, c := range ClassificationOrder {
		if strings.Contains(lower, strings.ToLower(string(c))) {
			return c
		}
	}
	return ClassificationUnknown
}

// DecisionRecord is a page recognized as an actual decision
type DecisionRecord struct {
	ID             int64          `json:"id"`
	Title          string         `json:"title"`
	Status         string         `json:"status"`
	Classification Classification `json:"classification"`
	Bullets        []string       `json:"bullets"`
}


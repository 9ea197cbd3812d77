package extract

import (
	"regexp"
	"strings"
)

var (
	headingPattern     = regexp.MustCompile(`(?is)<h[1-6](?:\s[^>]*)?>(.*?)</h[1-6]\s*>`)
	headingOpenPattern = regexp.MustCompile(`(?i)<h[1-6](?:\s[^>]*)?>`)
	listItemPattern    = regexp.MustCompile(`(?is)<li(?:\s[^>]*)?>(.*?)</li\s*>`)

	// developerSummaryTitle matches the normalized heading text
	developerSummaryTitle = regexp.MustCompile(`(?i)^AI\s+Summary\s*[-\x{2013}\x{2014}]\s*Developer$`)
)

// placeholderPrefix marks template bullets that were never filled in
const placeholderPrefix = "_"

// SectionExtractor pulls list items out of a heading-delimited section
type SectionExtractor struct {
	title *regexp.Regexp
}

// NewSectionExtractor creates an extractor for the "AI Summary — Developer" section
func NewSectionExtractor() *SectionExtractor {
	return &SectionExtractor{title: developerSummaryTitle}
}

// SummaryBullets returns the bullets of the developer summary section.
// A body without the section yields an empty slice.
func (e *SectionExtractor) SummaryBullets(body string) []string {
	section, ok := e.section(body)
	if !ok {
		return []string{}
	}

	bullets := []string{}
	for _, item := range listItemPattern.FindAllStringSubmatch(section, -1) {
		text := normalizeLine(item[1])
		if text == "" || strings.HasPrefix(text, placeholderPrefix) {
			continue
		}
		bullets = append(bullets, text)
	}
	return bullets
}

// section returns the markup between the matching heading and the next heading
func (e *SectionExtractor) section(body string) (string, bool) {
	for _, loc := range headingPattern.FindAllStringSubmatchIndex(body, -1) {
		if !e.title.MatchString(normalizeLine(body[loc[2]:loc[3]])) {
			continue
		}

		rest := body[loc[1]:]
		if next := headingOpenPattern.FindStringIndex(rest); next != nil {
			rest = rest[:next[0]]
		}
		return rest, true
	}
	return "", false
}

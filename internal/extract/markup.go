package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// lineBreakTags become newline boundaries at both open and close
var lineBreakTags = map[string]bool{
	"br": true,
	"p":  true, "div": true,
	"ul": true, "ol": true, "li": true,
	"tr": true, "th": true, "td": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// entityReplacer decodes the entity set used by storage-format bodies.
// It runs in a single pass, so "&amp;lt;" decodes to "&lt;".
var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
	"&mdash;", "—",
	"&ndash;", "–",
)

// Normalize converts a storage-format fragment into plain text.
// Block-level tags become line breaks, every other tag is stripped and the
// known entities are decoded. Whitespace is left as is.
func Normalize(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var buf strings.Builder

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a tokenizer error; both end the fragment
			return buf.String()
		case html.TextToken:
			buf.WriteString(entityReplacer.Replace(string(z.Raw())))
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if lineBreakTags[string(name)] {
				buf.WriteByte('\n')
			}
			// keep tokenizing tags after <script>, <title>, <plaintext> and the like
			z.NextIsNotRawText()
		}
	}
}

// CollapseSpace trims s and collapses whitespace runs to single spaces
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalizeLine is Normalize followed by CollapseSpace
func normalizeLine(fragment string) string {
	return CollapseSpace(Normalize(fragment))
}

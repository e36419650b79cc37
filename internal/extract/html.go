package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/doclens-labs/doclens-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TextExtractor = (*HTML)(nil)

var (
	htmlScriptRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	htmlSpaceRe  = regexp.MustCompile(`[ \t]+`)
)

// HTML strips markup from HTML documents, keeping block boundaries as
// newlines so the chunker can still find them.
type HTML struct{}

// NewHTML creates an HTML extractor.
func NewHTML() *HTML {
	return &HTML{}
}

// Extract removes script/style blocks and tags and unescapes basic entities.
func (e *HTML) Extract(_ context.Context, data []byte, _ string) (string, error) {
	text := htmlScriptRe.ReplaceAllString(string(data), "")

	// Keep paragraph-ish breaks before flattening tags
	for _, block := range []string{"</p>", "</div>", "</li>", "<br>", "<br/>", "<br />", "</h1>", "</h2>", "</h3>"} {
		text = strings.ReplaceAll(text, block, block+"\n")
	}

	text = htmlTagRe.ReplaceAllString(text, " ")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	text = replacer.Replace(text)
	text = htmlSpaceRe.ReplaceAllString(text, " ")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// SupportedTypes returns HTML MIME types.
func (e *HTML) SupportedTypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the format-specific priority, above plain text.
func (e *HTML) Priority() int {
	return 50
}

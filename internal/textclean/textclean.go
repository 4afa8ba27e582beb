package textclean

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"NewsRecommender/internal/ports"
)

var (
	spaceRuns   = regexp.MustCompile(`[ \t]+`)
	newlineRuns = regexp.MustCompile(`\n+`)
)

// Cleaner normalizes raw provider text: HTML tags stripped, entities
// unescaped, whitespace collapsed. Providers routinely ship markup fragments
// inside article bodies.
type Cleaner struct {
	keepNewlines bool
}

var _ ports.Sanitizer = (*Cleaner)(nil)

// New returns a cleaner that flattens text to single-line form.
func New() *Cleaner {
	return &Cleaner{}
}

// Clean runs the full pipeline on one text fragment.
func (c *Cleaner) Clean(text string) string {
	if text == "" {
		return ""
	}

	text = stripHTML(text)
	text = html.UnescapeString(text)
	text = spaceRuns.ReplaceAllString(text, " ")
	text = newlineRuns.ReplaceAllString(text, "\n")
	if !c.keepNewlines {
		text = strings.ReplaceAll(text, "\n", " ")
		text = spaceRuns.ReplaceAllString(text, " ")
	}
	return strings.TrimSpace(text)
}

func stripHTML(text string) string {
	if !strings.ContainsAny(text, "<>") {
		return text
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return text
	}
	return doc.Text()
}

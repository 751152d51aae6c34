package translation

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanComment strips markup and entities from a review comment and collapses
// whitespace. <br/> separates words.
func CleanComment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	if strings.ContainsAny(text, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
		if err == nil {
			doc.Find("br").ReplaceWithHtml(" ")
			text = doc.Text()
		}
	}
	return strings.Join(strings.Fields(text), " ")
}

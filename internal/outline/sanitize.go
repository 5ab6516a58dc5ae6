package outline

import (
	"html"
	"regexp"
)

// Embedded markup is stripped from the fully rendered text, not per node,
// so tags spanning a name and its note still match.
var (
	mentionPattern = regexp.MustCompile(`<mention[^>]*>.*?</mention>`)
	linkPattern    = regexp.MustCompile(`<a[^>]*href="([^"]*)"[^>]*>(.*?)</a>`)
	tagPattern     = regexp.MustCompile(`<[^>]+>`)
)

// CleanMarkup removes Workflowy markup from rendered section text: mention
// tags vanish entirely, hyperlinks become [text](url), leftover tags are
// stripped, and HTML entities are decoded last.
func CleanMarkup(text string) string {
	text = mentionPattern.ReplaceAllString(text, "")
	text = linkPattern.ReplaceAllString(text, "[$2]($1)")
	text = tagPattern.ReplaceAllString(text, "")
	return html.UnescapeString(text)
}

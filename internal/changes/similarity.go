package changes

import (
	"fmt"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Similarity scores how close two signatures are, in [0, 1]. It runs a
// character-level Myers diff with semantic cleanup and divides the number
// of characters both sides share by the length of the longer side. Two
// empty strings score 1.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}

	equal := 0
	for _, d := range diffSignatures(a, b) {
		if d.Type == diffmatchpatch.DiffEqual {
			equal += utf8.RuneCountInString(d.Text)
		}
	}
	return float64(equal) / float64(longest)
}

// Details partitions a diff between two signatures into the text that was
// inserted, removed, and left alone, plus a one-line summary.
type Details struct {
	Additions []string `json:"additions"`
	Deletions []string `json:"deletions"`
	Unchanged []string `json:"unchanged"`
	Summary   string   `json:"summary"`
}

// Describe builds change details for an update pair. Updates whose
// similarity falls below RewriteThreshold are flagged as rewrites rather
// than edits in the summary.
func Describe(previous, current string, similarity float64) Details {
	var details Details
	added, deleted := 0, 0
	for _, d := range diffSignatures(previous, current) {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			details.Additions = append(details.Additions, d.Text)
			added += utf8.RuneCountInString(d.Text)
		case diffmatchpatch.DiffDelete:
			details.Deletions = append(details.Deletions, d.Text)
			deleted += utf8.RuneCountInString(d.Text)
		case diffmatchpatch.DiffEqual:
			details.Unchanged = append(details.Unchanged, d.Text)
		}
	}

	details.Summary = fmt.Sprintf("+%d/-%d chars", added, deleted)
	if similarity < RewriteThreshold {
		details.Summary += ", largely rewritten"
	}
	return details
}

func diffSignatures(a, b string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	return dmp.DiffCleanupSemantic(dmp.DiffMain(a, b, false))
}

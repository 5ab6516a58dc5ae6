package points

import (
	"crypto/md5"
	"encoding/hex"
	"html"
	"strings"

	"golang.org/x/text/cases"
)

// Signature canonicalizes a point's text into its matching key: each part
// whitespace-trimmed, empty parts dropped, main content followed by
// sub-points space-joined, HTML entities decoded, then case-folded.
// Two points with identical signatures are exactly unchanged regardless of
// any other field.
func Signature(mainContent string, subPoints []string) string {
	parts := make([]string, 0, 1+len(subPoints))
	if trimmed := strings.TrimSpace(mainContent); trimmed != "" {
		parts = append(parts, trimmed)
	}
	for _, sub := range subPoints {
		if trimmed := strings.TrimSpace(sub); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	joined := html.UnescapeString(strings.Join(parts, " "))
	// Casers are stateful; build one per call instead of sharing.
	return cases.Fold().String(joined)
}

// ContentHash returns the MD5 hex digest of the raw point content. It is a
// debug/dedupe key for persisted state, not a matching key.
func ContentHash(mainContent string, subPoints []string) string {
	var builder strings.Builder
	builder.WriteString(mainContent)
	for _, sub := range subPoints {
		builder.WriteString(" ")
		builder.WriteString(sub)
	}
	sum := md5.Sum([]byte(builder.String()))
	return hex.EncodeToString(sum[:])
}

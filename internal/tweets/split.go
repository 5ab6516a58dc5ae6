package tweets

import (
	"strings"
	"unicode"
)

// SplitContent breaks text into chunks of at most budget characters. Whole
// sentences are packed greedily first; a sentence that alone exceeds the
// budget is split at word boundaries; a single word longer than the budget
// is emitted as one oversized chunk rather than an error.
func SplitContent(text string, budget int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if budget <= 0 || len([]rune(text)) <= budget {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	appendPiece := func(piece string) {
		pieceLen := len([]rune(piece))
		joined := pieceLen
		if currentLen > 0 {
			joined += currentLen + 1
		}
		if joined > budget {
			flush()
		}
		if currentLen > 0 {
			current.WriteString(" ")
			currentLen++
		}
		current.WriteString(piece)
		currentLen += pieceLen
	}

	for _, sentence := range splitSentences(text) {
		if len([]rune(sentence)) <= budget {
			appendPiece(sentence)
			continue
		}
		for _, word := range strings.Fields(sentence) {
			appendPiece(word)
		}
	}
	flush()
	return chunks
}

// splitSentences cuts text after ".", "!", or "?" followed by whitespace.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.', '!', '?':
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				sentence := strings.TrimSpace(string(runes[start : i+1]))
				if sentence != "" {
					sentences = append(sentences, sentence)
				}
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

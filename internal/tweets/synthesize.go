package tweets

import (
	"fmt"
	"strings"
	"time"

	"driftwatch/internal/changes"
	"driftwatch/internal/points"
)

// DefaultCharBudget leaves headroom below platform limits for the prefix
// and thread annotations. Tunable per project, not an architectural
// constant.
const DefaultCharBudget = 240

// Synthesize converts a classified change set into ordered tweet payloads.
// Additions come first, then updates, then deletions, each change record
// becoming one thread numbered from part 1. On a first run every current
// point arrives in the set's Added bucket (the diff ran against empty
// state) and only additions are emitted; whether those payloads get posted
// is the orchestrator's call, not ours.
func Synthesize(set changes.Set, section points.Section, firstRun bool, budget int) []Payload {
	if budget <= 0 {
		budget = DefaultCharBudget
	}
	now := time.Now().UTC()

	var payloads []Payload
	seq := map[ChangeType]int{}

	next := func(changeType ChangeType) string {
		seq[changeType]++
		return fmt.Sprintf("%s_%s_%03d_thread", section, changeType, seq[changeType])
	}

	for _, added := range set.Added {
		payloads = append(payloads, buildThread(threadSpec{
			threadID:   next(ChangeAdded),
			section:    section,
			changeType: ChangeAdded,
			prefix:     fmt.Sprintf("🟢 ADDED: %s: ", section),
			content:    combinedText(added.MainContent, added.SubPoints),
			budget:     budget,
			createdAt:  now,
		})...)
	}
	if firstRun {
		return payloads
	}

	for _, update := range set.Updated {
		score := update.Similarity
		payloads = append(payloads, buildThread(threadSpec{
			threadID:   next(ChangeUpdated),
			section:    section,
			changeType: ChangeUpdated,
			prefix:     fmt.Sprintf("🔄 UPDATED: %s (%.0f%% similarity): ", section, score*100),
			content:    combinedText(update.Current.MainContent, update.Current.SubPoints),
			similarity: &score,
			budget:     budget,
			createdAt:  now,
		})...)
	}

	for _, deleted := range set.Deleted {
		payloads = append(payloads, buildThread(threadSpec{
			threadID:   next(ChangeDeleted),
			section:    section,
			changeType: ChangeDeleted,
			prefix:     fmt.Sprintf("❌ DELETED: %s: ", section),
			content:    combinedText(deleted.MainContent, deleted.SubPoints),
			budget:     budget,
			createdAt:  now,
		})...)
	}

	return payloads
}

type threadSpec struct {
	threadID   string
	section    points.Section
	changeType ChangeType
	prefix     string
	content    string
	similarity *float64
	budget     int
	createdAt  time.Time
}

func buildThread(spec threadSpec) []Payload {
	chunks := SplitContent(spec.content, spec.budget)
	if len(chunks) == 0 {
		return nil
	}

	payloads := make([]Payload, 0, len(chunks))
	for i, chunk := range chunks {
		formatted := chunk
		if i == 0 {
			formatted = spec.prefix + chunk
		} else if len(chunks) > 1 {
			formatted = fmt.Sprintf("%s 🧵%d/%d", chunk, i+1, len(chunks))
		}
		payloads = append(payloads, Payload{
			ID:               fmt.Sprintf("%s_%d", spec.threadID, i+1),
			Section:          string(spec.section),
			ChangeType:       spec.changeType,
			ContentFormatted: formatted,
			ThreadID:         spec.threadID,
			ThreadPart:       i + 1,
			TotalThreadParts: len(chunks),
			Status:           StatusPending,
			CreatedAt:        spec.createdAt,
			SimilarityScore:  spec.similarity,
		})
	}
	return payloads
}

func combinedText(mainContent string, subPoints []string) string {
	parts := make([]string, 0, 1+len(subPoints))
	if trimmed := strings.TrimSpace(mainContent); trimmed != "" {
		parts = append(parts, trimmed)
	}
	for _, sub := range subPoints {
		if trimmed := strings.TrimSpace(sub); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}

package changes

import (
	"driftwatch/internal/points"
)

const (
	// PairThreshold is the minimum similarity (strictly exceeded) for the
	// greedy pass to pair a removed point with a new one as an update.
	PairThreshold = 0.5

	// RewriteThreshold separates edits from wholesale rewrites when
	// describing an update. Distinct from PairThreshold on purpose.
	RewriteThreshold = 0.7
)

// Update pairs a previous point with the current point it evolved into.
type Update struct {
	Previous   points.StatePoint
	Current    points.Point
	Similarity float64
	Details    Details
}

// Stats counts each classification bucket for one section diff.
type Stats struct {
	Unchanged int `json:"unchanged"`
	Added     int `json:"added"`
	Updated   int `json:"updated"`
	Deleted   int `json:"deleted"`
}

// Set is the full classification of one section: every previous point lands
// in exactly one of unchanged, deleted, or an update's previous side, and
// every current point in exactly one of unchanged, added, or an update's
// current side.
type Set struct {
	Added   []points.Point
	Deleted []points.StatePoint
	Updated []Update
	Stats   Stats
}

// Empty reports whether the diff found nothing worth emitting.
func (s Set) Empty() bool {
	return len(s.Added) == 0 && len(s.Deleted) == 0 && len(s.Updated) == 0
}

// Diff classifies current points against the previous run's state.
//
// Signatures seen twice on one side collapse last-write-wins into the
// lookup, keeping the first occurrence's position. The exact pass removes
// identical signatures from both sides as unchanged. The remaining pairs
// are matched greedily: each leftover previous point, in original order,
// takes the leftover current point with the highest similarity, provided
// it strictly exceeds threshold; ties go to the earliest current point.
// Greedy is the intended behavior here, not a shortcut to replace with
// optimal assignment.
func Diff(previous []points.StatePoint, current []points.Point, threshold float64) Set {
	prevSigs, prevOrder := indexStates(previous)
	curSigs, curOrder := indexPoints(current)

	var set Set
	matchedCur := make(map[string]bool)

	var prevRemaining []string
	for _, sig := range prevOrder {
		if _, ok := curSigs[sig]; ok {
			set.Stats.Unchanged++
			matchedCur[sig] = true
			continue
		}
		prevRemaining = append(prevRemaining, sig)
	}

	var curRemaining []string
	for _, sig := range curOrder {
		if !matchedCur[sig] {
			curRemaining = append(curRemaining, sig)
		}
	}

	taken := make([]bool, len(curRemaining))
	for _, prevSig := range prevRemaining {
		bestIdx := -1
		bestScore := -1.0
		for i, curSig := range curRemaining {
			if taken[i] {
				continue
			}
			if score := Similarity(prevSig, curSig); score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx >= 0 && bestScore > threshold {
			taken[bestIdx] = true
			curSig := curRemaining[bestIdx]
			set.Updated = append(set.Updated, Update{
				Previous:   prevSigs[prevSig],
				Current:    curSigs[curSig],
				Similarity: bestScore,
				Details:    Describe(prevSig, curSig, bestScore),
			})
			continue
		}
		set.Deleted = append(set.Deleted, prevSigs[prevSig])
	}

	for i, curSig := range curRemaining {
		if !taken[i] {
			set.Added = append(set.Added, curSigs[curSig])
		}
	}

	set.Stats.Added = len(set.Added)
	set.Stats.Updated = len(set.Updated)
	set.Stats.Deleted = len(set.Deleted)
	return set
}

func indexStates(items []points.StatePoint) (map[string]points.StatePoint, []string) {
	index := make(map[string]points.StatePoint, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		sig := item.Signature()
		if _, seen := index[sig]; !seen {
			order = append(order, sig)
		}
		index[sig] = item
	}
	return index, order
}

func indexPoints(items []points.Point) (map[string]points.Point, []string) {
	index := make(map[string]points.Point, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		sig := item.Signature()
		if _, seen := index[sig]; !seen {
			order = append(order, sig)
		}
		index[sig] = item
	}
	return index, order
}

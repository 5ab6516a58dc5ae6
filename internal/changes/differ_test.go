package changes

import (
	"fmt"
	"testing"

	"driftwatch/internal/points"
)

func statePoint(main string, subs ...string) points.StatePoint {
	return points.Point{MainContent: main, SubPoints: subs, Section: points.SectionDOK4}.ToState()
}

func currentPoint(main string, subs ...string) points.Point {
	return points.Point{MainContent: main, SubPoints: subs, Section: points.SectionDOK4}
}

func TestDiffAgainstSelfIsAllUnchanged(t *testing.T) {
	current := []points.Point{
		currentPoint("Own a cat", "meow"),
		currentPoint("The sky is blue today"),
		currentPoint("Dogs bark loud"),
	}
	set := Diff(points.ToStates(current), current, PairThreshold)

	want := Stats{Unchanged: 3}
	if set.Stats != want {
		t.Fatalf("stats = %+v, want %+v", set.Stats, want)
	}
	if !set.Empty() {
		t.Fatal("expected empty change set")
	}
}

func TestDiffDetectsAddition(t *testing.T) {
	previous := []points.StatePoint{statePoint("Own a cat", "meow")}
	current := []points.Point{
		currentPoint("Own a cat", "meow"),
		currentPoint("Dogs bark loud"),
	}
	set := Diff(previous, current, PairThreshold)

	if set.Stats.Unchanged != 1 || set.Stats.Added != 1 || set.Stats.Updated != 0 || set.Stats.Deleted != 0 {
		t.Fatalf("unexpected stats %+v", set.Stats)
	}
	if len(set.Added) != 1 || set.Added[0].MainContent != "Dogs bark loud" {
		t.Fatalf("unexpected additions %+v", set.Added)
	}
}

func TestDiffPairsNearDuplicateAsUpdate(t *testing.T) {
	previous := []points.StatePoint{statePoint("the sky is blue today")}
	current := []points.Point{currentPoint("the sky is very blue today")}
	set := Diff(previous, current, PairThreshold)

	if len(set.Updated) != 1 {
		t.Fatalf("expected 1 update, got %+v", set.Stats)
	}
	update := set.Updated[0]
	if update.Similarity <= PairThreshold || update.Similarity >= 1 {
		t.Fatalf("unexpected similarity %v", update.Similarity)
	}
	if update.Previous.MainContent != "the sky is blue today" {
		t.Fatalf("unexpected previous side %q", update.Previous.MainContent)
	}
	if update.Current.MainContent != "the sky is very blue today" {
		t.Fatalf("unexpected current side %q", update.Current.MainContent)
	}
	if len(set.Added) != 0 || len(set.Deleted) != 0 {
		t.Fatalf("expected no adds/deletes, got %+v", set.Stats)
	}
}

func TestDiffUnrelatedBecomesDeleteAndAdd(t *testing.T) {
	previous := []points.StatePoint{statePoint("apples are red")}
	current := []points.Point{currentPoint("quantum entanglement is weird")}
	set := Diff(previous, current, PairThreshold)

	if len(set.Updated) != 0 {
		t.Fatalf("expected no updates, got %d", len(set.Updated))
	}
	if len(set.Deleted) != 1 || set.Deleted[0].MainContent != "apples are red" {
		t.Fatalf("unexpected deletions %+v", set.Deleted)
	}
	if len(set.Added) != 1 || set.Added[0].MainContent != "quantum entanglement is weird" {
		t.Fatalf("unexpected additions %+v", set.Added)
	}
}

func TestDiffThresholdIsStrict(t *testing.T) {
	// Identical candidates score exactly 1.0 against themselves, but here we
	// need a pair that lands exactly on the threshold: "abcd" vs "ab" shares
	// 2 of max(4, 2) characters.
	previous := []points.StatePoint{statePoint("abcd")}
	current := []points.Point{currentPoint("ab")}
	set := Diff(previous, current, 0.5)

	if len(set.Updated) != 0 {
		t.Fatalf("similarity equal to the threshold must not pair, got %+v", set.Updated)
	}
	if len(set.Deleted) != 1 || len(set.Added) != 1 {
		t.Fatalf("expected delete+add, got %+v", set.Stats)
	}
}

func TestDiffTieBreaksTowardEarliestCurrent(t *testing.T) {
	// Substituting "cat" for two words sharing no letters with it gives
	// both candidates the same score against the previous point.
	previous := []points.StatePoint{statePoint("own a cat named felix")}
	current := []points.Point{
		currentPoint("own a dog named felix"),
		currentPoint("own a pig named felix"),
	}
	a := Similarity("own a cat named felix", "own a dog named felix")
	b := Similarity("own a cat named felix", "own a pig named felix")
	if a != b {
		t.Fatalf("candidates must score equally, got %v vs %v", a, b)
	}
	if a <= PairThreshold {
		t.Fatalf("candidates must clear the threshold, got %v", a)
	}

	set := Diff(previous, current, PairThreshold)
	if len(set.Updated) != 1 {
		t.Fatalf("expected 1 update, got %+v", set.Stats)
	}
	if got := set.Updated[0].Current.MainContent; got != "own a dog named felix" {
		t.Fatalf("tie broke toward %q, want the earliest candidate", got)
	}
	if len(set.Added) != 1 || set.Added[0].MainContent != "own a pig named felix" {
		t.Fatalf("loser of the tie must surface as an addition, got %+v", set.Added)
	}
}

func TestDiffCandidatesMatchAtMostOnce(t *testing.T) {
	previous := []points.StatePoint{
		statePoint("the quick brown fox jumps"),
		statePoint("the quick brown fox leaps"),
	}
	current := []points.Point{currentPoint("the quick brown fox vaults")}
	set := Diff(previous, current, PairThreshold)

	if len(set.Updated) != 1 {
		t.Fatalf("expected exactly 1 update, got %d", len(set.Updated))
	}
	if len(set.Deleted) != 1 {
		t.Fatalf("expected the unmatched previous point to be deleted, got %+v", set.Deleted)
	}
	if set.Updated[0].Previous.MainContent != "the quick brown fox jumps" {
		t.Fatalf("greedy pass should pair in previous order, paired %q", set.Updated[0].Previous.MainContent)
	}
}

func TestDiffDuplicateSignaturesCollapseLastWriteWins(t *testing.T) {
	previous := []points.StatePoint{statePoint("repeated point")}
	current := []points.Point{
		{MainContent: "repeated point", Section: points.SectionDOK4, PointNumber: 1},
		{MainContent: "repeated point", Section: points.SectionDOK4, PointNumber: 2},
	}
	set := Diff(previous, current, PairThreshold)

	if set.Stats.Unchanged != 1 {
		t.Fatalf("expected duplicates to collapse to one unchanged entry, got %+v", set.Stats)
	}
	if !set.Empty() {
		t.Fatalf("expected no emitted changes, got %+v", set.Stats)
	}
}

func TestDiffPartitionInvariant(t *testing.T) {
	previous := []points.StatePoint{
		statePoint("alpha stays the same"),
		statePoint("beta gets a small edit"),
		statePoint("gamma disappears entirely"),
	}
	current := []points.Point{
		currentPoint("alpha stays the same"),
		currentPoint("beta gets a smallish edit"),
		currentPoint("delta shows up brand new"),
	}
	set := Diff(previous, current, PairThreshold)

	prevSeen := set.Stats.Unchanged + len(set.Deleted) + len(set.Updated)
	if prevSeen != len(previous) {
		t.Fatalf("previous side not partitioned: %d buckets for %d points", prevSeen, len(previous))
	}
	curSeen := set.Stats.Unchanged + len(set.Added) + len(set.Updated)
	if curSeen != len(current) {
		t.Fatalf("current side not partitioned: %d buckets for %d points", curSeen, len(current))
	}
}

func TestDiffManyPointsStable(t *testing.T) {
	var previous []points.StatePoint
	var current []points.Point
	for i := 0; i < 25; i++ {
		text := fmt.Sprintf("point number %d about topic %d", i, i)
		previous = append(previous, statePoint(text))
		current = append(current, currentPoint(text))
	}
	set := Diff(previous, current, PairThreshold)
	if set.Stats.Unchanged != 25 || !set.Empty() {
		t.Fatalf("unexpected stats %+v", set.Stats)
	}
}

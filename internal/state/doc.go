// Package state persists project baselines, run outcomes, and synthesized
// tweets in SQLite.
//
// The baseline for a project is written wholesale after a fully successful
// run; a failed run leaves the previous baseline untouched so the next run
// diffs against the last known-good snapshot.
package state

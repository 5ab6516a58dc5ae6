// Package runner drives the per-project pipeline: fetch the outline,
// extract points for each tracked section, diff against the persisted
// baseline, synthesize change tweets, and persist the results.
//
// Steps run strictly in sequence and the baseline is only overwritten
// after the whole project succeeds, so a failed run never corrupts the
// next diff.
package runner

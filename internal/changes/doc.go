// Package changes classifies the points observed in the current run against
// the previous run's persisted state. Exact signature matches are unchanged;
// the remainder is paired greedily by text similarity into updates, and
// whatever stays unpaired is an addition or a deletion.
package changes

// Package points defines the Point value objects extracted from a tracked
// outline section, parses normalized section text into ordered Points, and
// computes the canonical content signature used as the matching key when
// diffing runs against each other.
package points

// Package outline fetches the raw Workflowy document tree and normalizes a
// resolved section of it into indented plain text ready for point parsing.
package outline

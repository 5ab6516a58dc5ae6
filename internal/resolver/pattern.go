package resolver

import (
	"context"
	"strings"

	"driftwatch/internal/outline"
)

// PatternResolver matches section labels against node names without any
// model in the loop. It prefers an exact name match, then a name that
// starts with the label, then one containing it as a word.
type PatternResolver struct{}

// NewPatternResolver constructs the fallback resolver.
func NewPatternResolver() *PatternResolver {
	return &PatternResolver{}
}

// Resolve implements Resolver.
func (r *PatternResolver) Resolve(_ context.Context, label string, candidates []outline.Node) (string, bool, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false, nil
	}
	folded := strings.ToLower(label)

	for _, node := range candidates {
		if strings.EqualFold(strings.TrimSpace(node.Name), label) {
			return node.ID, true, nil
		}
	}
	for _, node := range candidates {
		name := strings.ToLower(strings.TrimSpace(node.Name))
		if strings.HasPrefix(name, folded) {
			return node.ID, true, nil
		}
	}
	for _, node := range candidates {
		name := strings.ToLower(node.Name)
		for _, word := range strings.FieldsFunc(name, func(r rune) bool {
			return r == ' ' || r == '-' || r == ':' || r == '(' || r == ')'
		}) {
			if word == folded {
				return node.ID, true, nil
			}
		}
	}
	return "", false, nil
}

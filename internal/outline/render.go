package outline

import (
	"context"
	"strings"
)

// ResolveFunc maps a human section label to a node id among the top-level
// candidates. ok=false means the label was not found, which yields an empty
// section rather than an error.
type ResolveFunc func(ctx context.Context, label string, candidates []Node) (id string, ok bool, err error)

// NormalizeSection resolves a section label against the tree's top-level
// nodes and renders that section as cleaned, indented plain text. A label
// the resolver cannot place contributes an empty string.
func NormalizeSection(ctx context.Context, nodes []Node, label string, resolve ResolveFunc) (string, error) {
	id, ok, err := resolve(ctx, label, TopLevel(nodes))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return CleanMarkup(RenderSection(nodes, id)), nil
}

// RenderSection renders the node with the given id and its descendants as
// indented bullet lines. The section node itself sits at depth one so that
// its direct children (the points) land at four spaces and their children
// at six, which is what the point parser keys on. Notes render as
// un-indented continuation lines directly below their node.
func RenderSection(nodes []Node, sectionID string) string {
	index := BuildChildIndex(nodes)

	var section *Node
	for i := range nodes {
		if nodes[i].ID == sectionID {
			section = &nodes[i]
			break
		}
	}
	if section == nil {
		return ""
	}

	var builder strings.Builder
	renderNode(&builder, index, *section, 1)
	return builder.String()
}

func renderNode(builder *strings.Builder, index ChildIndex, node Node, depth int) {
	builder.WriteString(strings.Repeat("  ", depth))
	builder.WriteString("- ")
	builder.WriteString(node.Name)
	builder.WriteString("\n")
	if note := strings.TrimSpace(node.Note); note != "" {
		builder.WriteString(note)
		builder.WriteString("\n")
	}
	for _, child := range index[node.ID] {
		renderNode(builder, index, child, depth+1)
	}
}

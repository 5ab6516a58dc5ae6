package outline

import "sort"

// Node is one bullet in the fetched outline tree. Nodes form a tree via
// ParentID; root nodes carry an empty ParentID. Immutable per fetch.
type Node struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Note     string `json:"note,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
	Order    int    `json:"order"`
}

// ChildIndex maps parent ids to their children ordered by Node.Order.
type ChildIndex map[string][]Node

// BuildChildIndex assembles the parent-to-children adjacency for a flat
// node list.
func BuildChildIndex(nodes []Node) ChildIndex {
	index := make(ChildIndex, len(nodes))
	for _, node := range nodes {
		index[node.ParentID] = append(index[node.ParentID], node)
	}
	for parent := range index {
		children := index[parent]
		sort.SliceStable(children, func(i, j int) bool {
			return children[i].Order < children[j].Order
		})
	}
	return index
}

// TopLevel returns the root nodes of the tree in order. These are the
// candidates handed to the section resolver.
func TopLevel(nodes []Node) []Node {
	var roots []Node
	for _, node := range nodes {
		if node.ParentID == "" {
			roots = append(roots, node)
		}
	}
	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].Order < roots[j].Order
	})
	return roots
}

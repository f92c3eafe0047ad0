package profiletree

// FilterGroups removes every node whose count is below the minimum group size of its depth,
// together with its subtree. Nodes are evaluated after their children. Removed groups are
// discarded: their applications are not reassigned to any sibling. The root is never removed.
// It returns the number of nodes removed.
func FilterGroups(t *Tree, conf Config) int {
	removed := 0
	for _, i := range t.postOrder() {
		if i == rootIndex || t.nodes[i].removed {
			continue
		}
		if t.nodes[i].count < int64(conf.MinGroupSizeAt(t.nodes[i].depth)) {
			removed += t.removeSubtree(i)
		}
	}
	return removed
}

// FilterShallowLeaves removes leaves constraining fewer than minDepth characteristics. A
// parent left without children by the removal is evaluated in turn. The root is never
// removed. It returns the number of nodes removed.
func FilterShallowLeaves(t *Tree, minDepth int) int {
	if minDepth <= 0 {
		return 0
	}
	removed := 0
	for _, i := range t.postOrder() {
		n := t.nodes[i]
		if i == rootIndex || n.removed {
			continue
		}
		if len(n.children) == 0 && n.depth < minDepth {
			removed += t.removeSubtree(i)
		}
	}
	return removed
}

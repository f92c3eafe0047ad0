package profiletree

// PruneStats counts the structural reductions applied by Prune.
type PruneStats struct {
	NeutralRemoved int `json:"neutralRemoved"`
	Collapsed      int `json:"collapsed"`
}

// Prune simplifies a classified tree until neither reduction applies any more:
//
//  1. a neutral node without children is removed; its parent is queued again since it may
//     have become a childless neutral node itself.
//  2. a node carrying the same label as its parent is spliced out; its children move up to
//     the parent, keeping their full paths so they stay reachable by matching.
//
// The reductions are driven by a worklist seeded bottom-up with every node; a node is only
// queued again when it loses its last child. The root is never removed.
func Prune(t *Tree) PruneStats {
	var stats PruneStats

	order := t.postOrder()
	queue := make([]int, 0, len(order))
	for _, i := range order {
		if i != rootIndex {
			queue = append(queue, i)
		}
	}

	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]

		n := &t.nodes[i]
		if i == rootIndex || n.removed {
			continue
		}
		parent := n.parent

		switch {
		case n.label == t.nodes[parent].label:
			t.splice(i)
			stats.Collapsed++
		case n.label == LabelNeutral && len(n.children) == 0:
			t.removeSubtree(i)
			stats.NeutralRemoved++
		default:
			continue
		}

		if len(t.nodes[parent].children) == 0 {
			queue = append(queue, parent)
		}
	}
	return stats
}

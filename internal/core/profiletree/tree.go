package profiletree

import (
	"sort"
	"strings"
)

const (
	rootIndex = 0
	noParent  = -1
)

type node struct {
	depth int
	// path holds the value of every characteristic from the root down to this node.
	path []string

	count          int64
	hitCount       int64
	rejectionCount int64

	label Label

	parent   int
	children []int
	removed  bool
}

// Tree is the mutable partition tree the build stages operate on. Nodes live in an arena
// and refer to each other by index; removed nodes are tombstoned and dropped on Freeze.
type Tree struct {
	features []string
	nodes    []node
}

func newTree(features []string, root node) *Tree {
	root.parent = noParent
	return &Tree{
		features: features,
		nodes:    []node{root},
	}
}

func (t *Tree) add(parent int, n node) int {
	idx := len(t.nodes)
	n.parent = parent
	t.nodes = append(t.nodes, n)
	t.nodes[parent].children = append(t.nodes[parent].children, idx)
	return idx
}

// graft appends every node of sub below parent. The root of sub becomes a child of parent.
func (t *Tree) graft(parent int, sub *Tree) {
	offset := len(t.nodes)
	for i, n := range sub.nodes {
		children := make([]int, len(n.children))
		for j, c := range n.children {
			children[j] = c + offset
		}
		n.children = children
		if i == rootIndex {
			n.parent = parent
		} else {
			n.parent += offset
		}
		t.nodes = append(t.nodes, n)
	}
	t.nodes[parent].children = append(t.nodes[parent].children, offset)
}

// Features returns the characteristic names the tree splits on.
func (t *Tree) Features() []string {
	return append([]string(nil), t.features...)
}

// Len returns the number of live nodes, root included.
func (t *Tree) Len() int {
	n := 0
	for i := range t.nodes {
		if !t.nodes[i].removed {
			n++
		}
	}
	return n
}

// Depth returns the depth of the deepest live node.
func (t *Tree) Depth() int {
	d := 0
	for i := range t.nodes {
		if !t.nodes[i].removed && t.nodes[i].depth > d {
			d = t.nodes[i].depth
		}
	}
	return d
}

// postOrder lists the live nodes reachable from the root, children before their parent.
func (t *Tree) postOrder() []int {
	type frame struct {
		idx      int
		expanded bool
	}
	order := make([]int, 0, len(t.nodes))
	stack := []frame{{idx: rootIndex}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.expanded {
			order = append(order, top.idx)
			continue
		}
		stack = append(stack, frame{idx: top.idx, expanded: true})
		children := t.nodes[top.idx].children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{idx: children[i]})
		}
	}
	return order
}

// removeSubtree detaches i from its parent and tombstones it with all of its descendants.
// It returns the number of nodes removed.
func (t *Tree) removeSubtree(i int) int {
	t.unlink(i)
	removed := 0
	stack := []int{i}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stack = append(stack, t.nodes[cur].children...)
		t.nodes[cur].children = nil
		t.nodes[cur].removed = true
		removed++
	}
	return removed
}

// splice removes i and hands its children over to its parent, in i's position.
func (t *Tree) splice(i int) {
	n := &t.nodes[i]
	p := &t.nodes[n.parent]
	spliced := make([]int, 0, len(p.children)+len(n.children)-1)
	for _, c := range p.children {
		if c == i {
			spliced = append(spliced, n.children...)
			continue
		}
		spliced = append(spliced, c)
	}
	for _, c := range n.children {
		t.nodes[c].parent = n.parent
	}
	p.children = spliced
	n.children = nil
	n.removed = true
}

func (t *Tree) unlink(i int) {
	parent := t.nodes[i].parent
	if parent == noParent {
		return
	}
	siblings := t.nodes[parent].children
	for j, c := range siblings {
		if c == i {
			t.nodes[parent].children = append(siblings[:j:j], siblings[j+1:]...)
			break
		}
	}
}

// sortChildren orders every child list by key so equal inputs serialize identically.
func (t *Tree) sortChildren() {
	for i := range t.nodes {
		children := t.nodes[i].children
		sort.Slice(children, func(a, b int) bool {
			return comparePaths(t.nodes[children[a]].path, t.nodes[children[b]].path) < 0
		})
	}
}

func comparePaths(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := strings.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

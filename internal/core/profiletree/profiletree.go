package profiletree

import (
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
)

// segmentSep joins the values of a child key. It cannot appear in characteristic values
// coming from the aggregation pipeline.
const segmentSep = "\x1f"

type childKey struct {
	depth   int
	segment string
}

type frozenNode struct {
	depth          int
	path           []string
	count          int64
	hitCount       int64
	rejectionCount int64
	label          Label
	parent         int
	children       []int

	// spans lists the distinct depths reached by the children, ascending.
	spans []int
	index map[childKey]int
}

// ProfileTree is the immutable result of a build. It is safe for concurrent use by any
// number of goroutines.
type ProfileTree struct {
	snapshotID     string
	builtAt        time.Time
	datasetVersion string
	conf           Config
	parameterHash  string
	stats          BuildStats
	nodes          []frozenNode
}

// freeze copies the live nodes of t in breadth-first order, children sorted by key, and
// indexes every child list.
func freeze(t *Tree) []frozenNode {
	t.sortChildren()

	nodes := make([]frozenNode, 0, t.Len())
	queue := []struct{ src, parent int }{{src: rootIndex, parent: noParent}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		src := t.nodes[cur.src]
		idx := len(nodes)
		nodes = append(nodes, frozenNode{
			depth:          src.depth,
			path:           append([]string(nil), src.path...),
			count:          src.count,
			hitCount:       src.hitCount,
			rejectionCount: src.rejectionCount,
			label:          src.label,
			parent:         cur.parent,
		})
		if cur.parent != noParent {
			nodes[cur.parent].children = append(nodes[cur.parent].children, idx)
		}
		for _, c := range src.children {
			queue = append(queue, struct{ src, parent int }{src: c, parent: idx})
		}
	}

	indexNodes(nodes)
	return nodes
}

// indexNodes fills spans and index of every node from its children.
func indexNodes(nodes []frozenNode) {
	for i := range nodes {
		n := &nodes[i]
		if len(n.children) == 0 {
			continue
		}
		n.index = make(map[childKey]int, len(n.children))
		for _, c := range n.children {
			child := nodes[c]
			n.index[childKey{depth: child.depth, segment: joinSegment(child.path[n.depth:])}] = c
			if !lo.Contains(n.spans, child.depth) {
				n.spans = append(n.spans, child.depth)
			}
		}
		sort.Ints(n.spans)
	}
}

func joinSegment(values []string) string {
	return strings.Join(values, segmentSep)
}

// SnapshotID identifies this build.
func (pt *ProfileTree) SnapshotID() string { return pt.snapshotID }

// BuiltAt is the time the build finished.
func (pt *ProfileTree) BuiltAt() time.Time { return pt.builtAt }

// DatasetVersion names the aggregated dataset the tree was built from, if known.
func (pt *ProfileTree) DatasetVersion() string { return pt.datasetVersion }

// Config returns a copy of the configuration the tree was built with.
func (pt *ProfileTree) Config() Config { return pt.conf.clone() }

// Features returns the characteristic names the tree splits on.
func (pt *ProfileTree) Features() []string {
	return append([]string(nil), pt.conf.Features...)
}

// ParameterHash fingerprints the parameter set the tree was built with.
func (pt *ProfileTree) ParameterHash() string { return pt.parameterHash }

// Stats reports how each stage of the build shaped the tree.
func (pt *ProfileTree) Stats() BuildStats { return pt.stats }

// Len returns the number of nodes, root included.
func (pt *ProfileTree) Len() int { return len(pt.nodes) }

// Depth returns the depth of the deepest node.
func (pt *ProfileTree) Depth() int {
	d := 0
	for i := range pt.nodes {
		if pt.nodes[i].depth > d {
			d = pt.nodes[i].depth
		}
	}
	return d
}

// RootLabel returns the label of the whole population.
func (pt *ProfileTree) RootLabel() Label { return pt.nodes[rootIndex].label }

// NodeView is a read-only copy of one tree node.
type NodeView struct {
	Index          int
	Parent         int
	Depth          int
	Path           []string
	Label          Label
	Count          int64
	HitCount       int64
	RejectionCount int64
	Children       []int
}

// Nodes lists every node in breadth-first order. Index 0 is the root, whose Parent is -1.
func (pt *ProfileTree) Nodes() []NodeView {
	views := make([]NodeView, len(pt.nodes))
	for i, n := range pt.nodes {
		views[i] = NodeView{
			Index:          i,
			Parent:         n.parent,
			Depth:          n.depth,
			Path:           append([]string(nil), n.path...),
			Label:          n.label,
			Count:          n.count,
			HitCount:       n.hitCount,
			RejectionCount: n.rejectionCount,
			Children:       append([]int(nil), n.children...),
		}
	}
	return views
}

// Leaves returns the number of nodes without children.
func (pt *ProfileTree) Leaves() int {
	leaves := 0
	for i := range pt.nodes {
		if len(pt.nodes[i].children) == 0 {
			leaves++
		}
	}
	return leaves
}

func (pt *ProfileTree) conditions(path []string) map[string]string {
	conds := make(map[string]string, len(path))
	for i, v := range path {
		conds[pt.conf.Features[i]] = v
	}
	return conds
}

package profiletree

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruneCollapseReparentsGrandchildren(t *testing.T) {
	tree := newTree(testFeatures, node{count: 1000, label: LabelNeutral})
	a := tree.add(rootIndex, node{depth: 1, path: []string{"a"}, label: LabelRisk})
	a1 := tree.add(a, node{depth: 2, path: []string{"a", "1"}, label: LabelRisk})
	tree.add(a1, node{depth: 3, path: []string{"a", "1", "x"}, label: LabelFavorable})
	tree.add(a1, node{depth: 3, path: []string{"a", "1", "y"}, label: LabelRisk})
	tree.add(a, node{depth: 2, path: []string{"a", "2"}, label: LabelFavorable})
	tree.add(rootIndex, node{depth: 1, path: []string{"b"}, label: LabelFavorable})

	stats := Prune(tree)
	assert.Equal(t, PruneStats{Collapsed: 2}, stats)

	assert.Equal(t, [][]string{{"a"}, {"b"}}, liveChildren(tree, rootIndex))
	assert.Equal(t, [][]string{{"a", "1", "x"}, {"a", "2"}}, liveChildren(tree, a))
	for _, c := range tree.nodes[a].children {
		assert.Equal(t, a, tree.nodes[c].parent)
	}
}

func TestPruneCollapseSiblingRisks(t *testing.T) {
	tree := newTree(testFeatures, node{count: 1000, label: LabelNeutral})
	p := tree.add(rootIndex, node{depth: 1, path: []string{"p"}, label: LabelRisk})
	p1 := tree.add(p, node{depth: 2, path: []string{"p", "1"}, label: LabelRisk})
	tree.add(p1, node{depth: 3, path: []string{"p", "1", "x"}, label: LabelFavorable})
	tree.add(p1, node{depth: 3, path: []string{"p", "1", "y"}, label: LabelFavorable})
	p2 := tree.add(p, node{depth: 2, path: []string{"p", "2"}, label: LabelRisk})
	tree.add(p2, node{depth: 3, path: []string{"p", "2", "z"}, label: LabelFavorable})
	w := tree.add(p2, node{depth: 3, path: []string{"p", "2", "w"}, label: LabelNeutral})
	tree.add(w, node{depth: 4, path: []string{"p", "2", "w", "v"}, label: LabelFavorable})

	stats := Prune(tree)
	assert.Equal(t, PruneStats{Collapsed: 2}, stats)

	assert.Equal(t, [][]string{{"p"}}, liveChildren(tree, rootIndex))
	assert.Equal(t, [][]string{
		{"p", "1", "x"},
		{"p", "1", "y"},
		{"p", "2", "z"},
		{"p", "2", "w"},
	}, liveChildren(tree, p))
	for _, c := range tree.nodes[p].children {
		assert.Equal(t, p, tree.nodes[c].parent)
	}
	assert.True(t, tree.nodes[p1].removed)
	assert.True(t, tree.nodes[p2].removed)
	assert.Equal(t, [][]string{{"p", "2", "w", "v"}}, liveChildren(tree, w))
}

func TestBuildCollapseSiblingRisks(t *testing.T) {
	// P/1 and P/2 are risk groups under the risk group P; their favorable and neutral
	// children end up directly below P, their risk children collapse away
	pt := buildTree(t, testConfig(), []HistoricalRecord{
		rec(100, 90, 0, "P", "1", "a", "x", "x", "x", "x"),
		rec(50, 50, 0, "P", "1", "n", "f", "x", "x", "x"),
		rec(50, 25, 0, "P", "1", "n", "z", "x", "x", "x"),
		rec(100, 0, 100, "P", "1", "r", "x", "x", "x", "x"),
		rec(100, 90, 0, "P", "2", "c", "x", "x", "x", "x"),
		rec(50, 50, 0, "P", "2", "m", "f", "x", "x", "x"),
		rec(50, 25, 0, "P", "2", "m", "z", "x", "x", "x"),
		rec(100, 0, 100, "P", "2", "s", "x", "x", "x", "x"),
		rec(400, 400, 0, "Q", "x", "x", "x", "x", "x", "x"),
	})
	require.Equal(t, LabelNeutral, pt.RootLabel())

	nodes := pt.Nodes()
	var underP [][]string
	for _, n := range nodes {
		if n.Parent >= 0 && len(nodes[n.Parent].Path) == 1 && nodes[n.Parent].Path[0] == "P" {
			underP = append(underP, n.Path)
		}
	}
	assert.ElementsMatch(t, [][]string{
		{"P", "1", "a"},
		{"P", "1", "n"},
		{"P", "2", "c"},
		{"P", "2", "m"},
	}, underP)

	tests := []struct {
		values []string
		want   Label
	}{
		{values: []string{"P", "1", "a", "x", "x", "x", "x"}, want: LabelFavorable},
		{values: []string{"P", "1", "n", "f", "x", "x", "x"}, want: LabelFavorable},
		{values: []string{"P", "1", "n"}, want: LabelNeutral},
		{values: []string{"P", "2", "c", "x", "x", "x", "x"}, want: LabelFavorable},
		{values: []string{"P", "2", "m", "f", "x", "x", "x"}, want: LabelFavorable},
		{values: []string{"P", "2", "m"}, want: LabelNeutral},
		{values: []string{"P"}, want: LabelRisk},
		// the collapsed risk leaf no longer exists below P
		{values: []string{"P", "1", "r", "x", "x", "x", "x"}, want: LabelNoProfile},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.values, "/"), func(t *testing.T) {
			p, err := pt.Match(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Label)
		})
	}
}

func TestPruneNeutralCascade(t *testing.T) {
	tree := newTree(testFeatures, node{count: 1000, label: LabelRisk})
	n := tree.add(rootIndex, node{depth: 1, path: []string{"n"}, label: LabelNeutral})
	tree.add(n, node{depth: 2, path: []string{"n", "m"}, label: LabelNeutral})
	f := tree.add(rootIndex, node{depth: 1, path: []string{"f"}, label: LabelFavorable})
	tree.add(f, node{depth: 2, path: []string{"f", "o"}, label: LabelNeutral})

	stats := Prune(tree)
	assert.Equal(t, PruneStats{NeutralRemoved: 2, Collapsed: 1}, stats)
	assert.Equal(t, [][]string{{"f"}}, liveChildren(tree, rootIndex))
	assert.Empty(t, tree.nodes[f].children)
}

func TestPruneKeepsRoot(t *testing.T) {
	tree := newTree(testFeatures, node{count: 10, label: LabelNeutral})
	tree.add(rootIndex, node{depth: 1, path: []string{"a"}, label: LabelNeutral})

	Prune(tree)
	assert.Equal(t, 1, tree.Len())
	assert.False(t, tree.nodes[rootIndex].removed)
}

func prunedTree(t *testing.T, seed int64, minGroupSize int) *Tree {
	t.Helper()

	conf := testConfig()
	conf.MinGroupSize = minGroupSize

	tree, err := Split(context.Background(), testFeatures, randomRecords(seed, 400), 0)
	require.NoError(t, err)
	FilterGroups(tree, conf)
	require.NoError(t, Classify(tree, conf))
	Prune(tree)
	return tree
}

func TestPruneInvariants(t *testing.T) {
	for seed := int64(10); seed < 20; seed++ {
		tree := prunedTree(t, seed, 30)
		for _, i := range tree.postOrder() {
			n := tree.nodes[i]
			if i == rootIndex {
				continue
			}
			assert.NotEqual(t, tree.nodes[n.parent].label, n.label, "same label on edge to %v", n.path)
			if len(n.children) == 0 {
				assert.NotEqual(t, LabelNeutral, n.label, "childless neutral node %v", n.path)
			}
		}
	}
}

func TestPruneIdempotent(t *testing.T) {
	tree := prunedTree(t, 21, 20)
	before := freeze(tree)

	stats := Prune(tree)
	assert.Zero(t, stats)
	assert.Equal(t, before, freeze(tree))
}

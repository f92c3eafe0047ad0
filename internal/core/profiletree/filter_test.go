package profiletree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterGroups(t *testing.T) {
	conf := testConfig()
	conf.MinGroupSize = 50

	tree, err := Split(context.Background(), testFeatures, []HistoricalRecord{
		rec(10, 9, 0, fullPath("small")...),
		rec(100, 90, 0, fullPath("large")...),
	}, 0)
	require.NoError(t, err)

	removed := FilterGroups(tree, conf)
	assert.Equal(t, FeatureCount, removed)

	assert.Equal(t, [][]string{{"large"}}, liveChildren(tree, rootIndex))
	for _, i := range tree.postOrder() {
		if i == rootIndex {
			continue
		}
		assert.GreaterOrEqual(t, tree.nodes[i].count, int64(50))
	}
	// the removed group is not merged into its sibling
	assert.EqualValues(t, 100, tree.nodes[tree.nodes[rootIndex].children[0]].count)
	assert.EqualValues(t, 110, tree.nodes[rootIndex].count)
}

func TestFilterGroupsPerLevel(t *testing.T) {
	conf := testConfig()
	conf.MinGroupSize = 1000
	conf.MinGroupSizePerLevel = []int{50, 50, 50, 50, 50, 50, 60}

	tree, err := Split(context.Background(), testFeatures, []HistoricalRecord{
		rec(55, 50, 0, fullPath("A")...),
	}, 0)
	require.NoError(t, err)

	removed := FilterGroups(tree, conf)
	assert.Equal(t, 1, removed)
	assert.Equal(t, FeatureCount-1, tree.Depth())
}

func TestFilterNeverRemovesRoot(t *testing.T) {
	conf := testConfig()
	conf.MinGroupSize = 1000

	tree, err := Split(context.Background(), testFeatures, []HistoricalRecord{rec(10, 1, 1, fullPath("A")...)}, 0)
	require.NoError(t, err)

	FilterGroups(tree, conf)
	assert.Equal(t, 1, tree.Len())
	assert.False(t, tree.nodes[rootIndex].removed)
}

func TestFilterShallowLeaves(t *testing.T) {
	tree := newTree(testFeatures, node{count: 300})
	a := tree.add(rootIndex, node{depth: 1, path: []string{"a"}, count: 100})
	tree.add(a, node{depth: 3, path: []string{"a", "x", "y"}, count: 100})
	b := tree.add(rootIndex, node{depth: 1, path: []string{"b"}, count: 200})
	tree.add(b, node{depth: 2, path: []string{"b", "x"}, count: 200})

	removed := FilterShallowLeaves(tree, 3)
	assert.Equal(t, 2, removed)
	assert.Equal(t, [][]string{{"a"}}, liveChildren(tree, rootIndex))

	assert.Zero(t, FilterShallowLeaves(tree, 0))
}

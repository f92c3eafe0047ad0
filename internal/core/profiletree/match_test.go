package profiletree

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedClock = func() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func buildTree(t *testing.T, conf Config, records []HistoricalRecord) *ProfileTree {
	t.Helper()

	pt, err := Build(context.Background(), conf, records, WithSnapshotID("test"), WithClock(fixedClock))
	require.NoError(t, err)
	return pt
}

// twoGroups is a neutral population made of one favorable and one risk group.
func twoGroups() []HistoricalRecord {
	return []HistoricalRecord{
		rec(100, 90, 0, "A", "B", "C", "D", "E", "F", "G"),
		rec(100, 10, 50, "X", "B", "C", "D", "E", "F", "G"),
	}
}

func TestMatchRoundTrip(t *testing.T) {
	pt := buildTree(t, testConfig(), twoGroups())
	assert.Equal(t, LabelNeutral, pt.RootLabel())

	p, err := pt.Match([]string{"A", "B", "C", "D", "E", "F", "G"})
	require.NoError(t, err)
	assert.Equal(t, LabelFavorable, p.Label)
	assert.Equal(t, []string{"A"}, p.Path)
	assert.Equal(t, map[string]string{"nationality": "A"}, p.Conditions)
	assert.EqualValues(t, 100, p.Count)
	assert.InDelta(t, 0.9, p.HitRate, 1e-9)
	assert.Equal(t, "test", p.SnapshotID)

	p, err = pt.Match([]string{"X", "Q", "Q", "Q", "Q", "Q", "Q"})
	require.NoError(t, err)
	assert.Equal(t, LabelRisk, p.Label)
}

func TestMatchUnknownValue(t *testing.T) {
	pt := buildTree(t, testConfig(), twoGroups())

	p, err := pt.Match([]string{"Q", "B", "C", "D", "E", "F", "G"})
	require.NoError(t, err)
	assert.Equal(t, LabelNoProfile, p.Label)
	assert.Empty(t, p.Path)
	assert.Zero(t, p.Count)

	// a missing value never matches, not even the unknown bucket
	pt = buildTree(t, testConfig(), []HistoricalRecord{
		rec(100, 90, 0, "A"),
		rec(100, 10, 50, "X"),
	})
	p, err = pt.Match([]string{"", "B"})
	require.NoError(t, err)
	assert.Equal(t, LabelNoProfile, p.Label)

	p, err = pt.Match([]string{"A"})
	require.NoError(t, err)
	assert.Equal(t, LabelFavorable, p.Label)
}

func TestMatchPrunedGroup(t *testing.T) {
	conf := testConfig()
	conf.MinGroupSize = 50

	pt := buildTree(t, conf, []HistoricalRecord{
		rec(10, 9, 0, fullPath("small")...),
		rec(100, 10, 50, fullPath("large")...),
		rec(100, 90, 0, fullPath("other")...),
	})

	p, err := pt.Match(fullPath("small"))
	require.NoError(t, err)
	assert.Equal(t, LabelNoProfile, p.Label)

	p, err = pt.Match(fullPath("large"))
	require.NoError(t, err)
	assert.Equal(t, LabelRisk, p.Label)
	assert.EqualValues(t, 100, p.Count)
}

func TestMatchCollapsedKeys(t *testing.T) {
	// root risk, P and C collapse into it, the favorable group below C keeps its full key
	pt := buildTree(t, testConfig(), []HistoricalRecord{
		rec(100, 90, 0, "P", "C", "g1", "x", "x", "x", "x"),
		rec(100, 0, 100, "P", "C", "g2", "x", "x", "x", "x"),
		rec(100, 0, 100, "P", "C", "g3", "x", "x", "x", "x"),
		rec(300, 300, 0, "Q", "x", "x", "x", "x", "x", "x"),
	})
	require.Equal(t, LabelRisk, pt.RootLabel())

	nodes := pt.Nodes()
	require.Len(t, nodes, 3)
	assert.Equal(t, []string{"P", "C", "g1"}, nodes[1].Path)
	assert.Equal(t, 0, nodes[1].Parent)
	assert.Equal(t, []string{"Q"}, nodes[2].Path)

	tests := []struct {
		values []string
		want   Label
	}{
		{values: []string{"P", "C", "g1", "x", "x", "x", "x"}, want: LabelFavorable},
		{values: []string{"P", "C", "g2", "x", "x", "x", "x"}, want: LabelNoProfile},
		{values: []string{"Q", "y"}, want: LabelFavorable},
		{values: []string{"P", "C"}, want: LabelRisk},
		{values: []string{"P", "", "g1"}, want: LabelNoProfile},
		{values: nil, want: LabelRisk},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.values), func(t *testing.T) {
			p, err := pt.Match(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Label)
		})
	}
}

func TestMatchAttributes(t *testing.T) {
	pt := buildTree(t, testConfig(), twoGroups())

	p, err := pt.MatchAttributes(map[string]string{"nationality": "X", "unrelated": "ignored"})
	require.NoError(t, err)
	assert.Equal(t, LabelRisk, p.Label)

	p, err = pt.MatchAttributes(map[string]string{"visa_type": "B"})
	require.NoError(t, err)
	assert.Equal(t, LabelNoProfile, p.Label)
}

func TestMatchInvalidVector(t *testing.T) {
	pt := buildTree(t, testConfig(), twoGroups())

	_, err := pt.Match(append(fullPath("A"), "H"))
	assert.True(t, errors.Is(err, ErrInvalidVector), "got %v", err)
}

func TestMatchConcurrent(t *testing.T) {
	pt := buildTree(t, testConfig(), randomRecords(30, 300))

	want := make([]Label, 50)
	records := randomRecords(31, len(want))
	for i, r := range records {
		p, err := pt.Match(r.Path)
		require.NoError(t, err)
		want[i] = p.Label
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, r := range records {
				p, err := pt.Match(r.Path)
				assert.NoError(t, err)
				assert.Equal(t, want[i], p.Label)
			}
		}()
	}
	wg.Wait()
}

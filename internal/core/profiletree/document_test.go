package profiletree

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRoundTrip(t *testing.T) {
	conf := testConfig()
	conf.MinGroupSize = 10
	pt := buildTree(t, conf, randomRecords(50, 300))

	b, err := json.Marshal(pt.Document())
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(b, &doc))

	restored, err := FromDocument(&doc)
	require.NoError(t, err)
	assert.Equal(t, pt.Document(), restored.Document())

	for _, r := range randomRecords(51, 100) {
		want, err := pt.Match(r.Path)
		require.NoError(t, err)
		got, err := restored.Match(r.Path)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestFromDocumentInvalid(t *testing.T) {
	valid := func() *Document {
		return buildTree(t, testConfig(), twoGroups()).Document()
	}

	tests := []struct {
		name   string
		mutate func(d *Document)
	}{
		{name: "no nodes", mutate: func(d *Document) { d.Nodes = nil }},
		{name: "bad parameters", mutate: func(d *Document) { d.Parameters.Features = d.Parameters.Features[:3]; d.ParameterHash = "" }},
		{name: "hash mismatch", mutate: func(d *Document) { d.ParameterHash = "deadbeef" }},
		{name: "bad label", mutate: func(d *Document) { d.Nodes[1].Label = LabelNoProfile }},
		{name: "root with parent", mutate: func(d *Document) { d.Nodes[0].Parent = 1 }},
		{name: "forward parent", mutate: func(d *Document) { d.Nodes[1].Parent = 2 }},
		{name: "path mismatch", mutate: func(d *Document) { d.Nodes[1].Path = []string{"A", "B"} }},
		{name: "counts", mutate: func(d *Document) { d.Nodes[1].HitCount = d.Nodes[1].Count + 1 }},
		{name: "duplicate key", mutate: func(d *Document) { d.Nodes[2].Path = d.Nodes[1].Path }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := valid()
			tt.mutate(doc)
			_, err := FromDocument(doc)
			assert.True(t, errors.Is(err, ErrInvalidDocument), "got %v", err)
		})
	}

	_, err := FromDocument(nil)
	assert.True(t, errors.Is(err, ErrInvalidDocument))
}

func TestProfiles(t *testing.T) {
	pt := buildTree(t, testConfig(), twoGroups())

	profiles := pt.Profiles()
	require.Len(t, profiles, 2)

	assert.Equal(t, LabelFavorable, profiles[0].Type)
	assert.EqualValues(t, 100, profiles[0].Size)
	assert.InDelta(t, 0.9, profiles[0].HitRate, 1e-9)
	assert.Equal(t, map[string]string{"nationality": "A"}, profiles[0].Features)

	assert.Equal(t, LabelRisk, profiles[1].Type)
	assert.InDelta(t, 0.5, profiles[1].RejectionRate, 1e-9)
}

package offline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvv-bao/profiler/internal/core/profiletree"
	"github.com/kvv-bao/profiler/internal/service"
)

const recordsJSON = `[
	{"path": ["A", "B", "C", "D", "E", "F", "G"], "count": 100, "hitCount": 90, "rejectionCount": 0},
	{"path": ["X", "B", "C", "D", "E", "F", "G"], "count": 100, "hitCount": 10, "rejectionCount": 50},
	{"path": ["S", "B"], "count": 5, "hitCount": 5, "rejectionCount": 0}
]`

func testConfig() profiletree.Config {
	return profiletree.Config{
		Features:                []string{"nationality", "visa_type", "post", "age_group", "travel_purpose", "occupation", "previous_visits"},
		MinHitRateForFavorable:  0.8,
		MinRejectionRateForRisk: 0.3,
	}
}

func writeRecords(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(recordsJSON), 0o644))
	return path
}

func TestBuildThenMatch(t *testing.T) {
	input := writeRecords(t)
	output := filepath.Join(t.TempDir(), "tree.json")

	pt, err := runBuild(context.Background(), testConfig(), buildOptions{
		input:          input,
		output:         output,
		filter:         "Count >= 10",
		datasetVersion: "2024-01",
		snapshotID:     "offline",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, pt.Stats().Records)

	var out bytes.Buffer
	require.NoError(t, runMatch(output, service.MatchQuery{Values: []string{"A", "B", "C", "D", "E", "F", "G"}}, &out))

	var p profiletree.Profile
	require.NoError(t, json.Unmarshal(out.Bytes(), &p))
	assert.Equal(t, profiletree.LabelFavorable, p.Label)
	assert.Equal(t, "offline", p.SnapshotID)

	out.Reset()
	require.NoError(t, runMatch(output, service.MatchQuery{Attributes: map[string]string{"nationality": "S"}}, &out))
	require.NoError(t, json.Unmarshal(out.Bytes(), &p))
	assert.Equal(t, profiletree.LabelNoProfile, p.Label)
}

func TestBuildToStdout(t *testing.T) {
	var out bytes.Buffer
	_, err := runBuild(context.Background(), testConfig(), buildOptions{
		input:  writeRecords(t),
		output: stdio,
	}, &out)
	require.NoError(t, err)

	var doc profiletree.Document
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.NotEmpty(t, doc.SnapshotID)
	assert.Equal(t, testConfig().ParameterSet().Hash(), doc.ParameterHash)
}

func TestBuildInvalidFilter(t *testing.T) {
	_, err := runBuild(context.Background(), testConfig(), buildOptions{
		input:  writeRecords(t),
		output: stdio,
		filter: "Count >>",
	}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestMatchQuery(t *testing.T) {
	q, err := matchQuery([]string{"A", ""}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", ""}, q.Values)

	q, err = matchQuery(nil, []string{"nationality=A", "post="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"nationality": "A", "post": ""}, q.Attributes)

	_, err = matchQuery([]string{"A"}, []string{"post=B"})
	assert.Error(t, err)

	_, err = matchQuery(nil, []string{"nationality"})
	assert.Error(t, err)
}

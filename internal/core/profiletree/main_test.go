package profiletree

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testFeatures = []string{"nationality", "visa_type", "post", "age_group", "travel_purpose", "occupation", "previous_visits"}

func testConfig() Config {
	return Config{
		Features:                append([]string(nil), testFeatures...),
		MinGroupSize:            0,
		MinHitRateForFavorable:  0.8,
		MinRejectionRateForRisk: 0.3,
	}
}

func rec(count, hit, rejection int64, path ...string) HistoricalRecord {
	return HistoricalRecord{Path: path, Count: count, HitCount: hit, RejectionCount: rejection}
}

func fullPath(first string) []string {
	return []string{first, "B", "C", "D", "E", "F", "G"}
}

// liveChildren returns the paths of the children of the live node at i.
func liveChildren(t *Tree, i int) [][]string {
	var paths [][]string
	for _, c := range t.nodes[i].children {
		paths = append(paths, t.nodes[c].path)
	}
	return paths
}

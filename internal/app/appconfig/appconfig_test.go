package appconfig

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvv-bao/profiler/internal/core/profiletree"
)

func TestWorkerHeartbeatURLMapDecode(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("https://hc.example.com/ping/abc"))

	var m WorkerHeartbeatURLMap
	require.NoError(t, m.Decode("rebuild:"+encoded))
	assert.Equal(t, "https://hc.example.com/ping/abc", m["rebuild"])

	require.NoError(t, m.Decode(""))
	assert.Empty(t, m)

	assert.Error(t, m.Decode("rebuild"))
	assert.Error(t, m.Decode("rebuild:not-base64!"))
}

func defaultProfileSpec() ProfileSpec {
	return ProfileSpec{
		ProfileFeatures:                []string{"nationality", "visa_type", "post", "age_group", "travel_purpose", "occupation", "previous_visits"},
		ProfileMinGroupSize:            50,
		ProfileMinHitRateForFavorable:  0.8,
		ProfileMinRejectionRateForRisk: 0.3,
		ProfileBuildConcurrency:        4,
	}
}

func TestProfileTreeConfig(t *testing.T) {
	conf, err := defaultProfileSpec().ProfileTreeConfig()
	require.NoError(t, err)
	assert.Equal(t, 50, conf.MinGroupSize)
	assert.Equal(t, 4, conf.BuildConcurrency)
	assert.Len(t, conf.Features, profiletree.FeatureCount)

	tests := []struct {
		name   string
		modify func(s *ProfileSpec)
	}{
		{"six features", func(s *ProfileSpec) { s.ProfileFeatures = s.ProfileFeatures[:6] }},
		{"hit rate above one", func(s *ProfileSpec) { s.ProfileMinHitRateForFavorable = 1.5 }},
		{"negative rejection rate", func(s *ProfileSpec) { s.ProfileMinRejectionRateForRisk = -0.1 }},
		{"negative group size", func(s *ProfileSpec) { s.ProfileMinGroupSize = -1 }},
		{"short per-level list", func(s *ProfileSpec) { s.ProfileMinGroupSizePerLevel = []int{10, 10} }},
		{"depth beyond features", func(s *ProfileSpec) { s.ProfileMinDepth = 8 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := defaultProfileSpec()
			tt.modify(&s)
			_, err := s.ProfileTreeConfig()
			assert.ErrorIs(t, err, profiletree.ErrInvalidConfig)
		})
	}
}

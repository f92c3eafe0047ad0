package appconfig

import (
	"github.com/kvv-bao/profiler/internal/core/profiletree"
)

// ProfileTreeConfig turns the profile settings into a validated build configuration.
func (s ProfileSpec) ProfileTreeConfig() (profiletree.Config, error) {
	conf := profiletree.Config{
		Features:                s.ProfileFeatures,
		MinGroupSize:            s.ProfileMinGroupSize,
		MinGroupSizePerLevel:    s.ProfileMinGroupSizePerLevel,
		MinHitRateForFavorable:  s.ProfileMinHitRateForFavorable,
		MinRejectionRateForRisk: s.ProfileMinRejectionRateForRisk,
		MinProfileDepth:         s.ProfileMinDepth,
		BuildConcurrency:        s.ProfileBuildConcurrency,
	}
	if err := conf.Validate(); err != nil {
		return profiletree.Config{}, err
	}
	return conf, nil
}

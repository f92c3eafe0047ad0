package profiletree

import (
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"
)

// FeatureCount is the number of characteristics every tree splits on.
const FeatureCount = 7

// Config holds everything a build depends on. It is passed by value into the pipeline and
// cloned by Build, so trees built with different configurations never share state.
type Config struct {
	// Features is the ordered list of characteristic names; level i of the tree splits on
	// Features[i].
	Features []string

	// MinGroupSize is the global minimum member count of a group.
	MinGroupSize int

	// MinGroupSizePerLevel, when set, holds one minimum per depth (entry i applies to
	// depth i+1) and takes precedence over MinGroupSize.
	MinGroupSizePerLevel []int

	// MinHitRateForFavorable is the hit rate at or above which a group is favorable.
	MinHitRateForFavorable float64

	// MinRejectionRateForRisk is the rejection rate at or above which a group is a risk.
	MinRejectionRateForRisk float64

	// MinProfileDepth removes leaf profiles constraining fewer characteristics than this.
	// Zero disables the filter.
	MinProfileDepth int

	// BuildConcurrency bounds the number of first-level subtrees built at once.
	// Zero or less means unbounded.
	BuildConcurrency int
}

// Validate rejects configurations that cannot produce a meaningful tree. Every returned
// error wraps ErrInvalidConfig.
func (c Config) Validate() error {
	if len(c.Features) != FeatureCount {
		return errors.Wrapf(ErrInvalidConfig, "expected %d features, got %d", FeatureCount, len(c.Features))
	}
	seen := make(map[string]struct{}, len(c.Features))
	for i, f := range c.Features {
		if f == "" {
			return errors.Wrapf(ErrInvalidConfig, "feature %d has an empty name", i)
		}
		if _, ok := seen[f]; ok {
			return errors.Wrapf(ErrInvalidConfig, "feature %q is listed twice", f)
		}
		seen[f] = struct{}{}
	}

	if c.MinGroupSize < 0 {
		return errors.Wrapf(ErrInvalidConfig, "minGroupSize must not be negative, got %d", c.MinGroupSize)
	}
	if len(c.MinGroupSizePerLevel) != 0 {
		if len(c.MinGroupSizePerLevel) != len(c.Features) {
			return errors.Wrapf(ErrInvalidConfig, "minGroupSizePerLevel needs %d entries, got %d", len(c.Features), len(c.MinGroupSizePerLevel))
		}
		for i, v := range c.MinGroupSizePerLevel {
			if v < 0 {
				return errors.Wrapf(ErrInvalidConfig, "minGroupSizePerLevel[%d] must not be negative, got %d", i, v)
			}
		}
	}

	if err := validateRate("minHitRateForFavorable", c.MinHitRateForFavorable); err != nil {
		return err
	}
	if err := validateRate("minRejectionRateForRisk", c.MinRejectionRateForRisk); err != nil {
		return err
	}

	if c.MinProfileDepth < 0 || c.MinProfileDepth > len(c.Features) {
		return errors.Wrapf(ErrInvalidConfig, "minProfileDepth must be within [0,%d], got %d", len(c.Features), c.MinProfileDepth)
	}
	return nil
}

func validateRate(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return errors.Wrapf(ErrInvalidConfig, "%s must be within [0,1], got %v", name, v)
	}
	return nil
}

// MinGroupSizeAt returns the minimum group size applying to nodes at the given depth.
func (c Config) MinGroupSizeAt(depth int) int {
	if len(c.MinGroupSizePerLevel) != 0 && depth >= 1 && depth <= len(c.MinGroupSizePerLevel) {
		return c.MinGroupSizePerLevel[depth-1]
	}
	return c.MinGroupSize
}

func (c Config) clone() Config {
	cc := c
	cc.Features = append([]string(nil), c.Features...)
	if c.MinGroupSizePerLevel != nil {
		cc.MinGroupSizePerLevel = append([]int(nil), c.MinGroupSizePerLevel...)
	}
	return cc
}

// ParameterSet is the part of a Config that determines the shape of a tree. It is stored
// next to every exported tree so profiles built with the same parameters can be grouped.
type ParameterSet struct {
	Features                []string `json:"features" msgpack:"features"`
	MinGroupSize            int      `json:"minGroupSize" msgpack:"minGroupSize"`
	MinGroupSizePerLevel    []int    `json:"minGroupSizePerLevel,omitempty" msgpack:"minGroupSizePerLevel,omitempty"`
	MinHitRateForFavorable  float64  `json:"minHitRateForFavorable" msgpack:"minHitRateForFavorable"`
	MinRejectionRateForRisk float64  `json:"minRejectionRateForRisk" msgpack:"minRejectionRateForRisk"`
	MinProfileDepth         int      `json:"minProfileDepth" msgpack:"minProfileDepth"`
}

func (c Config) ParameterSet() ParameterSet {
	cc := c.clone()
	return ParameterSet{
		Features:                cc.Features,
		MinGroupSize:            cc.MinGroupSize,
		MinGroupSizePerLevel:    cc.MinGroupSizePerLevel,
		MinHitRateForFavorable:  cc.MinHitRateForFavorable,
		MinRejectionRateForRisk: cc.MinRejectionRateForRisk,
		MinProfileDepth:         cc.MinProfileDepth,
	}
}

// Config turns the parameter set back into a Config. BuildConcurrency is not part of the
// parameters and is left at zero.
func (p ParameterSet) Config() Config {
	return Config{
		Features:                p.Features,
		MinGroupSize:            p.MinGroupSize,
		MinGroupSizePerLevel:    p.MinGroupSizePerLevel,
		MinHitRateForFavorable:  p.MinHitRateForFavorable,
		MinRejectionRateForRisk: p.MinRejectionRateForRisk,
		MinProfileDepth:         p.MinProfileDepth,
	}.clone()
}

// Hash fingerprints the parameter set. Equal parameter sets always hash equally.
func (p ParameterSet) Hash() string {
	b, err := json.Marshal(p)
	if err != nil {
		// only non-finite rates fail to marshal, and those never pass Validate
		b = []byte(fmt.Sprintf("%#v", p))
	}
	return strconv.FormatUint(xxh3.Hash(b), 16)
}

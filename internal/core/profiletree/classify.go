package profiletree

import (
	"strings"

	"github.com/pkg/errors"
)

// Classify labels every live node, root included. A node with count 0 is an invariant
// violation of the preceding filter stage and aborts classification with ErrZeroCountNode.
func Classify(t *Tree, conf Config) error {
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.removed {
			continue
		}
		if n.count == 0 {
			return errors.Wrapf(ErrZeroCountNode, "node at depth %d with path [%s]", n.depth, strings.Join(n.path, ", "))
		}
		n.label = classify(n.count, n.hitCount, n.rejectionCount, conf)
	}
	return nil
}

// classify applies the rate thresholds. A group qualifying as both risk and favorable is
// a risk.
func classify(count, hitCount, rejectionCount int64, conf Config) Label {
	hitRate, rejectionRate := Rates(count, hitCount, rejectionCount)
	switch {
	case rejectionRate >= conf.MinRejectionRateForRisk:
		return LabelRisk
	case hitRate >= conf.MinHitRateForFavorable:
		return LabelFavorable
	default:
		return LabelNeutral
	}
}

// Rates returns hitCount/count and rejectionCount/count, both 0 when count is 0.
func Rates(count, hitCount, rejectionCount int64) (hitRate, rejectionRate float64) {
	if count == 0 {
		return 0, 0
	}
	return float64(hitCount) / float64(count), float64(rejectionCount) / float64(count)
}

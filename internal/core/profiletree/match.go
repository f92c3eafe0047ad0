package profiletree

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Profile is the outcome of matching one characteristic vector.
type Profile struct {
	Label Label `json:"label"`

	// Path holds the values of the node that decided the match. For LabelNoProfile it is the
	// path of the deepest node reached before matching failed.
	Path       []string          `json:"path"`
	Conditions map[string]string `json:"conditions"`
	Depth      int               `json:"depth"`

	// Count, HitRate and RejectionRate describe the matched group. They are zero for
	// LabelNoProfile.
	Count         int64   `json:"count"`
	HitRate       float64 `json:"hitRate"`
	RejectionRate float64 `json:"rejectionRate"`

	SnapshotID string `json:"snapshotId"`
}

// Match walks the tree along values, the characteristic values of one application in feature
// order. An empty value is missing and never matches. A vector shorter than the feature list
// is matched as far as it goes. When no child of the current node matches, the result is
// LabelNoProfile; the walk never falls back to an ancestor.
func (pt *ProfileTree) Match(values []string) (*Profile, error) {
	if len(values) > len(pt.conf.Features) {
		return nil, errors.Wrapf(ErrInvalidVector, "got %d values for %d features", len(values), len(pt.conf.Features))
	}

	cur := rootIndex
	for {
		n := &pt.nodes[cur]
		if len(n.children) == 0 || n.depth >= len(values) {
			return pt.profileOf(n), nil
		}

		next, pending := pt.step(n, values)
		switch {
		case next >= 0:
			cur = next
		case pending:
			// the vector ends before any child constraint can be checked
			return pt.profileOf(n), nil
		default:
			return pt.noProfile(n), nil
		}
	}
}

// step looks up the child of n matching values. pending reports that some child constrains
// characteristics beyond the end of values.
func (pt *ProfileTree) step(n *frozenNode, values []string) (next int, pending bool) {
	for _, d := range n.spans {
		if d > len(values) {
			return -1, true
		}
		segment := values[n.depth:d]
		if lo.Contains(segment, "") {
			continue
		}
		if c, ok := n.index[childKey{depth: d, segment: joinSegment(segment)}]; ok {
			return c, false
		}
	}
	return -1, false
}

// MatchAttributes matches an application given as feature name to value. Features absent from
// attrs are missing values.
func (pt *ProfileTree) MatchAttributes(attrs map[string]string) (*Profile, error) {
	values := make([]string, len(pt.conf.Features))
	for i, f := range pt.conf.Features {
		values[i] = attrs[f]
	}
	return pt.Match(values)
}

func (pt *ProfileTree) profileOf(n *frozenNode) *Profile {
	hitRate, rejectionRate := Rates(n.count, n.hitCount, n.rejectionCount)
	return &Profile{
		Label:         n.label,
		Path:          append([]string{}, n.path...),
		Conditions:    pt.conditions(n.path),
		Depth:         n.depth,
		Count:         n.count,
		HitRate:       hitRate,
		RejectionRate: rejectionRate,
		SnapshotID:    pt.snapshotID,
	}
}

func (pt *ProfileTree) noProfile(n *frozenNode) *Profile {
	return &Profile{
		Label:      LabelNoProfile,
		Path:       append([]string{}, n.path...),
		Conditions: pt.conditions(n.path),
		Depth:      n.depth,
		SnapshotID: pt.snapshotID,
	}
}

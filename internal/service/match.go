package service

import (
	"github.com/pkg/errors"

	"github.com/kvv-bao/profiler/internal/core/profiletree"
	"github.com/kvv-bao/profiler/internal/pkg/apierr"
	"github.com/kvv-bao/profiler/internal/pkg/observability"
)

// TreeSource yields the tree lookups are served against.
type TreeSource interface {
	Current() *profiletree.ProfileTree
}

type staticTree struct {
	pt *profiletree.ProfileTree
}

func (s staticTree) Current() *profiletree.ProfileTree {
	return s.pt
}

// MatchQuery is one application to match: either Values in feature order, or Attributes keyed
// by feature name. Values wins when both are set.
type MatchQuery struct {
	Values     []string
	Attributes map[string]string
}

type Match struct {
	trees TreeSource
}

func NewMatch(profileTree *ProfileTree) *Match {
	return &Match{trees: profileTree}
}

// NewStaticMatch matches against a fixed tree, e.g. one loaded from an audit document.
func NewStaticMatch(pt *profiletree.ProfileTree) *Match {
	return &Match{trees: staticTree{pt: pt}}
}

func (s *Match) tree() (*profiletree.ProfileTree, error) {
	pt := s.trees.Current()
	if pt == nil {
		return nil, apierr.ErrUnavailable
	}
	return pt, nil
}

// Features returns the characteristic names of the published tree.
func (s *Match) Features() ([]string, error) {
	pt, err := s.tree()
	if err != nil {
		return nil, err
	}
	return pt.Features(), nil
}

func (s *Match) Match(q MatchQuery) (*profiletree.Profile, error) {
	pt, err := s.tree()
	if err != nil {
		return nil, err
	}
	return matchOne(pt, q)
}

// MatchBatch matches every query against the same tree, even when a new one is published
// halfway through.
func (s *Match) MatchBatch(qs []MatchQuery) ([]*profiletree.Profile, error) {
	pt, err := s.tree()
	if err != nil {
		return nil, err
	}

	profiles := make([]*profiletree.Profile, 0, len(qs))
	for i, q := range qs {
		p, err := matchOne(pt, q)
		if err != nil {
			var perr *apierr.Error
			if errors.As(err, &perr) {
				return nil, perr.WithExtras(apierr.Extras{"index": i})
			}
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func matchOne(pt *profiletree.ProfileTree, q MatchQuery) (*profiletree.Profile, error) {
	var (
		p   *profiletree.Profile
		err error
	)
	if q.Values != nil {
		p, err = pt.Match(q.Values)
	} else {
		p, err = pt.MatchAttributes(q.Attributes)
	}
	if err != nil {
		if errors.Is(err, profiletree.ErrInvalidVector) {
			return nil, apierr.ErrInvalidReq.Msg("invalid characteristic vector: expected at most %d values", len(pt.Features()))
		}
		return nil, err
	}

	observability.ProfileMatches.WithLabelValues(p.Label.String()).Inc()
	return p, nil
}

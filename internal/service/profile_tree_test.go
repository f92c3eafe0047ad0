package service

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvv-bao/profiler/internal/app/appconfig"
	"github.com/kvv-bao/profiler/internal/core/profiletree"
	"github.com/kvv-bao/profiler/internal/pkg/apierr"
	"github.com/kvv-bao/profiler/internal/pkg/cache"
)

func newTestProfileTree() *ProfileTree {
	return &ProfileTree{
		conf:       &appconfig.Config{},
		profiles:   cache.NewSingular[*LeafProfiles]("test:profiles"),
		instanceID: "self",
	}
}

func TestProfileTreeUnpublished(t *testing.T) {
	s := newTestProfileTree()

	assert.Nil(t, s.Current())

	_, err := s.Profiles()
	assert.ErrorIs(t, err, apierr.ErrUnavailable)

	_, err = s.Document(context.Background(), "")
	assert.ErrorIs(t, err, apierr.ErrUnavailable)
}

func TestProfileTreePublish(t *testing.T) {
	s := newTestProfileTree()
	pt := testTree(t)
	s.publish(pt, originRebuild)

	assert.Same(t, pt, s.Current())

	doc, err := s.Document(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "snap", doc.SnapshotID)

	doc, err = s.Document(context.Background(), "snap")
	require.NoError(t, err)
	assert.Equal(t, pt.Len(), len(doc.Nodes))

	profiles, err := s.Profiles()
	require.NoError(t, err)
	assert.Equal(t, "snap", profiles.SnapshotID)
	assert.Equal(t, pt.BuiltAt(), profiles.BuiltAt)
	assert.Len(t, profiles.Profiles, 2)
}

func TestProfileTreeProfilesFollowPublication(t *testing.T) {
	s := newTestProfileTree()
	s.publish(testTree(t), originRebuild)

	first, err := s.Profiles()
	require.NoError(t, err)
	require.Len(t, first.Profiles, 2)

	pt, err := profiletree.Build(context.Background(), profiletree.Config{
		Features:                testFeatures,
		MinHitRateForFavorable:  0.8,
		MinRejectionRateForRisk: 0.3,
	}, []profiletree.HistoricalRecord{
		{Path: []string{"A"}, Count: 100, HitCount: 90},
		{Path: []string{"M"}, Count: 100, HitCount: 50},
		{Path: []string{"X"}, Count: 100, RejectionCount: 60},
	}, profiletree.WithSnapshotID("next"))
	require.NoError(t, err)
	s.publish(pt, originPeer)

	second, err := s.Profiles()
	require.NoError(t, err)
	assert.Equal(t, "next", second.SnapshotID)
	assert.Len(t, second.Profiles, 2)
	for _, p := range second.Profiles {
		assert.NotEqual(t, profiletree.LabelNeutral, p.Type)
	}
}

func TestProfileTreeIgnoresOwnNotification(t *testing.T) {
	s := newTestProfileTree()
	pt := testTree(t)
	s.publish(pt, originRebuild)

	for _, evt := range []SnapshotPublished{
		{SnapshotID: "other", Publisher: "self"},
		{SnapshotID: "snap", Publisher: "peer"},
	} {
		b, err := json.Marshal(evt)
		require.NoError(t, err)

		// neither message may reach the repository, which is nil here
		s.handlePublished(&nats.Msg{Subject: SubjectProfileTreePublished, Data: b})
		assert.Same(t, pt, s.Current())
	}

	s.handlePublished(&nats.Msg{Subject: SubjectProfileTreePublished, Data: []byte("{")})
	assert.Same(t, pt, s.Current())
}

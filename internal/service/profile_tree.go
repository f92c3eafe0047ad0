package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"github.com/kvv-bao/profiler/internal/app/appconfig"
	"github.com/kvv-bao/profiler/internal/core/profiletree"
	"github.com/kvv-bao/profiler/internal/model"
	"github.com/kvv-bao/profiler/internal/pkg/apierr"
	"github.com/kvv-bao/profiler/internal/pkg/async"
	"github.com/kvv-bao/profiler/internal/pkg/cache"
	"github.com/kvv-bao/profiler/internal/pkg/observability"
	"github.com/kvv-bao/profiler/internal/repo"
	"github.com/kvv-bao/profiler/internal/util/recordfilter"
)

const (
	// SubjectProfileTreePublished carries a SnapshotPublished message for every new snapshot.
	SubjectProfileTreePublished = "PROFILETREE.published"

	rebuildMutexName = "mutex:profiletree:rebuild"

	originRebuild = "rebuild"
	originStartup = "startup"
	originPeer    = "peer"
)

var ErrRebuildInProgress = errors.New("a profile tree rebuild is already in progress")

// SnapshotPublished notifies the other replicas of a newly persisted snapshot.
type SnapshotPublished struct {
	SnapshotID string `json:"snapshotId"`
	Publisher  string `json:"publisher"`
}

// LeafProfiles is the flat profile list of one snapshot.
type LeafProfiles struct {
	SnapshotID string                     `json:"snapshotId"`
	BuiltAt    time.Time                  `json:"builtAt"`
	Profiles   []profiletree.ProfileEntry `json:"profiles"`
}

type ProfileTreeDeps struct {
	fx.In

	Config                  *appconfig.Config
	Lifecycle               fx.Lifecycle
	HistoricalGroupRepo     *repo.HistoricalGroup
	ProfileTreeSnapshotRepo *repo.ProfileTreeSnapshot
	Archive                 *Archive
	Redis                   *redis.Client
	RedSync                 *redsync.Redsync
	NATS                    *nats.Conn
}

// ProfileTree builds, persists and publishes profile trees. The published tree is held in an
// atomic pointer: readers never lock and a new tree becomes visible with a single swap.
type ProfileTree struct {
	conf     *appconfig.Config
	treeConf profiletree.Config
	filter   *recordfilter.Filter

	historicalGroupRepo     *repo.HistoricalGroup
	profileTreeSnapshotRepo *repo.ProfileTreeSnapshot
	archive                 *Archive
	redsync                 *redsync.Redsync
	nats                    *nats.Conn

	documents *cache.Set[*profiletree.Document]
	profiles  *cache.Singular[*LeafProfiles]

	instanceID string
	current    atomic.Pointer[profiletree.ProfileTree]
}

func NewProfileTree(deps ProfileTreeDeps) (*ProfileTree, error) {
	treeConf, err := deps.Config.ProfileTreeConfig()
	if err != nil {
		return nil, err
	}
	filter, err := recordfilter.Compile(deps.Config.ProfileRecordFilter)
	if err != nil {
		return nil, err
	}

	s := &ProfileTree{
		conf:                    deps.Config,
		treeConf:                treeConf,
		filter:                  filter,
		historicalGroupRepo:     deps.HistoricalGroupRepo,
		profileTreeSnapshotRepo: deps.ProfileTreeSnapshotRepo,
		archive:                 deps.Archive,
		redsync:                 deps.RedSync,
		nats:                    deps.NATS,
		documents:               cache.NewSet[*profiletree.Document](deps.Redis, "profiletree:document"),
		profiles:                cache.NewSingular[*LeafProfiles]("profiletree:profiles"),
		instanceID:              xid.New().String(),
	}

	var sub *nats.Subscription
	deps.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := s.LoadLatest(ctx); err != nil && !errors.Is(err, apierr.ErrNotFound) {
				log.Warn().
					Err(err).
					Str("evt.name", "profiletree.load.failed").
					Msg("failed to load the latest profile tree snapshot; waiting for a rebuild")
			}

			var err error
			sub, err = s.nats.Subscribe(SubjectProfileTreePublished, s.handlePublished)
			return err
		},
		OnStop: func(ctx context.Context) error {
			if sub == nil {
				return nil
			}
			return sub.Unsubscribe()
		},
	})

	return s, nil
}

// Current returns the published tree, or nil when none has been published yet.
func (s *ProfileTree) Current() *profiletree.ProfileTree {
	return s.current.Load()
}

// TreeConfig returns the build configuration of this service.
func (s *ProfileTree) TreeConfig() profiletree.Config {
	return s.treeConf
}

func (s *ProfileTree) publish(pt *profiletree.ProfileTree, origin string) {
	s.current.Store(pt)

	observability.ProfileTreeNodes.Set(float64(pt.Len()))
	observability.ProfileTreePublished.WithLabelValues(origin).Inc()

	log.Info().
		Str("evt.name", "profiletree.published").
		Str("origin", origin).
		Str("snapshotId", pt.SnapshotID()).
		Str("datasetVersion", pt.DatasetVersion()).
		Str("parameterHash", pt.ParameterHash()).
		Int("nodes", pt.Len()).
		Msg("profile tree published")
}

// LoadLatest publishes the most recent persisted snapshot.
func (s *ProfileTree) LoadLatest(ctx context.Context) error {
	snapshot, err := s.profileTreeSnapshotRepo.GetLatestSnapshot(ctx)
	if err != nil {
		return err
	}
	return s.publishSnapshot(snapshot, originStartup)
}

func (s *ProfileTree) publishSnapshot(snapshot *model.ProfileTreeSnapshot, origin string) error {
	pt, err := profiletree.FromDocument(snapshot.Document)
	if err != nil {
		return errors.Wrapf(err, "snapshot %s", snapshot.SnapshotID)
	}
	if pt.ParameterHash() != s.treeConf.ParameterSet().Hash() {
		log.Warn().
			Str("evt.name", "profiletree.parameters.mismatch").
			Str("snapshotId", pt.SnapshotID()).
			Msg("published snapshot was built with parameters differing from the current configuration")
	}
	s.publish(pt, origin)
	return nil
}

func (s *ProfileTree) handlePublished(msg *nats.Msg) {
	var evt SnapshotPublished
	if err := json.Unmarshal(msg.Data, &evt); err != nil {
		log.Error().Err(err).Str("evt.name", "profiletree.notify.invalid").Msg("failed to decode snapshot notification")
		return
	}
	if evt.Publisher == s.instanceID {
		return
	}
	if cur := s.Current(); cur != nil && cur.SnapshotID() == evt.SnapshotID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	snapshot, err := s.profileTreeSnapshotRepo.GetSnapshotByID(ctx, evt.SnapshotID)
	if err != nil {
		log.Error().Err(err).Str("evt.name", "profiletree.notify.load_failed").Str("snapshotId", evt.SnapshotID).Msg("failed to load notified snapshot")
		return
	}
	if err := s.publishSnapshot(snapshot, originPeer); err != nil {
		log.Error().Err(err).Str("evt.name", "profiletree.notify.publish_failed").Str("snapshotId", evt.SnapshotID).Msg("failed to publish notified snapshot")
	}
}

// Rebuild builds a new tree from the historical groups of datasetVersion, persists it and
// publishes it. An empty datasetVersion selects the configured one, or else the latest. Only one
// replica rebuilds at a time; a concurrent call fails with ErrRebuildInProgress.
func (s *ProfileTree) Rebuild(ctx context.Context, datasetVersion string) (*profiletree.ProfileTree, error) {
	mutex := s.redsync.NewMutex(rebuildMutexName,
		redsync.WithExpiry(s.conf.WorkerTimeout+time.Minute),
		redsync.WithTries(1),
	)
	if err := mutex.LockContext(ctx); err != nil {
		log.Warn().Err(err).Str("evt.name", "profiletree.rebuild.locked").Msg("failed to acquire the rebuild lock")
		return nil, ErrRebuildInProgress
	}
	defer func() {
		if _, err := mutex.UnlockContext(context.Background()); err != nil {
			log.Error().Err(err).Str("evt.name", "profiletree.rebuild.unlock_failed").Msg("failed to release the rebuild lock")
		}
	}()

	if datasetVersion == "" {
		datasetVersion = s.conf.ProfileDatasetVersion
	}
	if datasetVersion == "" {
		v, err := s.historicalGroupRepo.GetLatestDatasetVersion(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to determine the latest dataset version")
		}
		datasetVersion = v
	}

	records, err := s.historicalGroupRepo.GetRecordsByDatasetVersion(ctx, datasetVersion)
	if err != nil {
		return nil, err
	}
	loaded := len(records)
	records, err = s.filter.Apply(records)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	pt, err := profiletree.Build(ctx, s.treeConf, records, profiletree.WithDatasetVersion(datasetVersion))
	if err != nil {
		observability.ProfileTreeBuildDuration.WithLabelValues("failure").Observe(time.Since(start).Seconds())
		return nil, errors.Wrapf(err, "failed to build profile tree from dataset %q", datasetVersion)
	}
	observability.ProfileTreeBuildDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())

	LogBuildStats(pt, loaded, time.Since(start))

	if err := s.profileTreeSnapshotRepo.SaveSnapshot(ctx, model.NewProfileTreeSnapshot(pt)); err != nil {
		return nil, err
	}

	s.publish(pt, originRebuild)

	err = async.WaitAll(
		async.Errable(func() error { return s.notify(pt) }),
		async.Errable(func() error { return s.archive.ExportDocument(ctx, pt.Document()) }),
	)
	if err != nil {
		log.Warn().Err(err).Str("evt.name", "profiletree.rebuild.side_effect_failed").Msg("profile tree published, but a side effect failed")
	}

	return pt, nil
}

func (s *ProfileTree) notify(pt *profiletree.ProfileTree) error {
	b, err := json.Marshal(SnapshotPublished{
		SnapshotID: pt.SnapshotID(),
		Publisher:  s.instanceID,
	})
	if err != nil {
		return err
	}
	return errors.Wrap(s.nats.Publish(SubjectProfileTreePublished, b), "failed to notify replicas")
}

// LogBuildStats logs how each stage of a build shaped the tree.
func LogBuildStats(pt *profiletree.ProfileTree, loaded int, took time.Duration) {
	stats := pt.Stats()
	log.Info().
		Str("evt.name", "profiletree.build.done").
		Str("snapshotId", pt.SnapshotID()).
		Str("datasetVersion", pt.DatasetVersion()).
		Int("recordsLoaded", loaded).
		Int("records", stats.Records).
		Int("splitNodes", stats.SplitNodes).
		Int("filteredNodes", stats.FilteredNodes).
		Int("neutralRemoved", stats.NeutralRemoved).
		Int("collapsed", stats.Collapsed).
		Int("shallowLeavesRemoved", stats.ShallowLeavesRemoved).
		Int("nodes", stats.Nodes).
		Int("leaves", stats.Leaves).
		Int("depth", stats.Depth).
		Str("rootLabel", pt.RootLabel().String()).
		Dur("took", took).
		Msg("profile tree built")
}

// Document returns the audit document of a snapshot: the published one when snapshotID is
// empty, otherwise the persisted one, cached in Redis.
func (s *ProfileTree) Document(ctx context.Context, snapshotID string) (*profiletree.Document, error) {
	cur := s.Current()
	if snapshotID == "" {
		if cur == nil {
			return nil, apierr.ErrUnavailable
		}
		return cur.Document(), nil
	}
	if cur != nil && cur.SnapshotID() == snapshotID {
		return cur.Document(), nil
	}

	doc, _, err := s.documents.MutexGetSet(ctx, snapshotID, func() (*profiletree.Document, error) {
		snapshot, err := s.profileTreeSnapshotRepo.GetSnapshotByID(ctx, snapshotID)
		if err != nil {
			return nil, err
		}
		return snapshot.Document, nil
	}, s.conf.DocumentCacheTTL)
	return doc, err
}

// Profiles returns the leaf profiles of the published tree.
func (s *ProfileTree) Profiles() (*LeafProfiles, error) {
	cur := s.Current()
	if cur == nil {
		return nil, apierr.ErrUnavailable
	}

	compute := func() (*LeafProfiles, error) {
		return &LeafProfiles{
			SnapshotID: cur.SnapshotID(),
			BuiltAt:    cur.BuiltAt(),
			Profiles:   cur.Profiles(),
		}, nil
	}

	cached, err := s.profiles.MutexGetSet(compute, 0)
	if err != nil {
		return nil, err
	}
	if cached.SnapshotID != cur.SnapshotID() {
		cached, _ = compute()
		s.profiles.Set(cached, 0)
	}
	return cached, nil
}

// Snapshots lists the most recent persisted snapshots.
func (s *ProfileTree) Snapshots(ctx context.Context, limit int) ([]*model.ProfileTreeSnapshot, error) {
	return s.profileTreeSnapshotRepo.GetRecentSnapshots(ctx, limit)
}

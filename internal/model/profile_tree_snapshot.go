package model

import (
	"time"

	"github.com/uptrace/bun"
	"gopkg.in/guregu/null.v3"

	"github.com/kvv-bao/profiler/internal/core/profiletree"
)

// ProfileTreeSnapshot is a published profile tree together with its audit document.
type ProfileTreeSnapshot struct {
	bun.BaseModel `bun:"profile_tree_snapshots,alias:pts"`

	SnapshotID     string                `bun:",pk" json:"snapshotId"`
	DatasetVersion null.String           `json:"datasetVersion"`
	ParameterHash  string                `bun:",notnull" json:"parameterHash"`
	Nodes          int                   `bun:",notnull" json:"nodes"`
	Leaves         int                   `bun:",notnull" json:"leaves"`
	BuiltAt        time.Time             `bun:",notnull" json:"builtAt"`
	CreatedAt      time.Time             `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt"`
	Document       *profiletree.Document `bun:"type:jsonb" json:"document,omitempty"`
}

// NewProfileTreeSnapshot captures pt for persistence.
func NewProfileTreeSnapshot(pt *profiletree.ProfileTree) *ProfileTreeSnapshot {
	stats := pt.Stats()
	return &ProfileTreeSnapshot{
		SnapshotID:     pt.SnapshotID(),
		DatasetVersion: null.NewString(pt.DatasetVersion(), pt.DatasetVersion() != ""),
		ParameterHash:  pt.ParameterHash(),
		Nodes:          stats.Nodes,
		Leaves:         stats.Leaves,
		BuiltAt:        pt.BuiltAt(),
		Document:       pt.Document(),
	}
}

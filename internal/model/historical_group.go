package model

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/kvv-bao/profiler/internal/core/profiletree"
)

// HistoricalGroup is one aggregated group of past applications, as delivered by the upstream
// aggregation pipeline.
type HistoricalGroup struct {
	bun.BaseModel `bun:"historical_groups,alias:hg"`

	GroupID        int64     `bun:",pk,autoincrement" json:"id"`
	DatasetVersion string    `bun:",notnull" json:"datasetVersion"`
	Path           []string  `bun:",array" json:"path"`
	Count          int64     `bun:",notnull" json:"count"`
	HitCount       int64     `bun:",notnull" json:"hitCount"`
	RejectionCount int64     `bun:",notnull" json:"rejectionCount"`
	CreatedAt      time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"createdAt"`
}

func (g *HistoricalGroup) Record() profiletree.HistoricalRecord {
	return profiletree.HistoricalRecord{
		Path:           g.Path,
		Count:          g.Count,
		HitCount:       g.HitCount,
		RejectionCount: g.RejectionCount,
	}
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ServiceName = "profiler"
)

var (
	ProfileTreeBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "profiletree", "build_duration_seconds"),
		Help:    "Duration of profile tree builds in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	}, []string{"result"})
	ProfileTreeNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: prometheus.BuildFQName(ServiceName, "profiletree", "nodes"),
		Help: "Number of nodes of the currently published profile tree",
	})
	ProfileTreePublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "profiletree", "published_total"),
		Help: "Number of profile trees published, by origin",
	}, []string{"origin"})
	ProfileMatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "profile", "matches_total"),
		Help: "Number of characteristic vectors matched, by resulting label",
	}, []string{"label"})
	ProfileExportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "profiletree", "export_duration_seconds"),
		Help:    "Duration of audit document exports in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
	}, []string{"result"})
	WorkerCalcDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: prometheus.BuildFQName(ServiceName, "worker", "calc_duration_seconds"),
		Help: "Duration of last worker calculation in seconds",
	}, []string{"service"})
)

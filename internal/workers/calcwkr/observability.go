package calcwkr

import (
	"time"

	"github.com/kvv-bao/profiler/internal/pkg/observability"
)

func observeCalcDuration(service string, f func() error) error {
	start := time.Now()
	defer func() {
		observability.WorkerCalcDuration.WithLabelValues(service).Set(time.Since(start).Seconds())
	}()
	return f()
}

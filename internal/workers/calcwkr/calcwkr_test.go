package calcwkr

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvv-bao/profiler/internal/service"
)

func TestRunOnce(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name    string
		rebuild error
		want    error
	}{
		{"success", nil, nil},
		{"rebuild in progress elsewhere", errors.Wrap(service.ErrRebuildInProgress, "locked"), nil},
		{"failure", errBoom, errBoom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Worker{
				timeout: time.Second,
				rebuilder: rebuilderFunc(func(ctx context.Context) error {
					_, ok := ctx.Deadline()
					assert.True(t, ok)
					return tt.rebuild
				}),
			}
			err := w.runOnce(context.Background())
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestWorkerLoop(t *testing.T) {
	calls := make(chan struct{}, 1)
	w := &Worker{
		interval: time.Hour,
		timeout:  time.Second,
		rebuilder: rebuilderFunc(func(ctx context.Context) error {
			calls <- struct{}{}
			return nil
		}),
	}

	cancel := w.do()
	defer cancel()

	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		require.Fail(t, "worker did not rebuild")
	}
}

package cache

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingularMutexGetSet(t *testing.T) {
	c := NewSingular[[]string]("profiles")

	_, err := c.Get()
	assert.True(t, errors.Is(err, ErrNotFound))

	var calls atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.MutexGetSet(func() ([]string, error) {
				calls.Add(1)
				return []string{"a", "b"}, nil
			}, 0)
			assert.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, v)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, calls.Load())

	c.Delete()
	_, err = c.Get()
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSingularValueFuncError(t *testing.T) {
	c := NewSingular[int]("n")

	_, err := c.MutexGetSet(func() (int, error) {
		return 0, errors.New("boom")
	}, 0)
	require.Error(t, err)

	_, err = c.Get()
	assert.True(t, errors.Is(err, ErrNotFound))
}

package kv

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runContract exercises the behaviour every backend must share.
func runContract(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Helper()

	t.Run("get absent returns nil nil", func(t *testing.T) {
		r := newRepo(t)
		v, err := r.Get(context.Background(), "absent")
		require.NoError(t, err)
		require.Nil(t, v)
	})

	t.Run("set then get", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		require.NoError(t, r.Set(ctx, "k1", []byte(`[{"id":"1"}]`)))

		v, err := r.Get(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[{"id":"1"}]`), v)
	})

	t.Run("set overwrites", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		require.NoError(t, r.Set(ctx, "k", []byte("old")))
		require.NoError(t, r.Set(ctx, "k", []byte("new")))

		v, err := r.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), v)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		require.NoError(t, r.Set(ctx, "x", []byte{0x01}))
		require.NoError(t, r.Delete(ctx, "x"))

		v, err := r.Get(ctx, "x")
		require.NoError(t, err)
		require.Nil(t, v)

		require.NoError(t, r.Delete(ctx, "x"))
	})

	t.Run("update sees nil for absent key", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		var seen []byte
		called := false
		err := r.Update(ctx, "fresh", func(current []byte) ([]byte, error) {
			called = true
			seen = current
			return []byte("created"), nil
		})
		require.NoError(t, err)
		require.True(t, called)
		assert.Nil(t, seen)

		v, err := r.Get(ctx, "fresh")
		require.NoError(t, err)
		assert.Equal(t, []byte("created"), v)
	})

	t.Run("update transforms current value", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		require.NoError(t, r.Set(ctx, "n", []byte("1")))
		err := r.Update(ctx, "n", func(current []byte) ([]byte, error) {
			n, err := strconv.Atoi(string(current))
			if err != nil {
				return nil, err
			}
			return []byte(strconv.Itoa(n + 1)), nil
		})
		require.NoError(t, err)

		v, err := r.Get(ctx, "n")
		require.NoError(t, err)
		assert.Equal(t, []byte("2"), v)
	})

	t.Run("update error leaves value untouched", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		boom := errors.New("boom")

		require.NoError(t, r.Set(ctx, "keep", []byte("original")))
		err := r.Update(ctx, "keep", func(current []byte) ([]byte, error) {
			return []byte("changed"), boom
		})
		require.ErrorIs(t, err, boom)

		v, err := r.Get(ctx, "keep")
		require.NoError(t, err)
		assert.Equal(t, []byte("original"), v)
	})
}

// runConcurrentUpdates checks that Update does not lose writes.
func runConcurrentUpdates(t *testing.T, r Repository, workers int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, r.Set(ctx, "counter", []byte("0")))

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- r.Update(ctx, "counter", func(current []byte) ([]byte, error) {
				n, err := strconv.Atoi(string(current))
				if err != nil {
					return nil, err
				}
				return []byte(strconv.Itoa(n + 1)), nil
			})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	v, err := r.Get(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(workers), string(v))
}

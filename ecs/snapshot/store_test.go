package snapshot

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/plus3/sparsecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testWorld() (*ecs.World, *ecs.Component[int]) {
	score := ecs.NewComponent[int]("score")
	w := ecs.NewWorld(nil)
	w.Registry().Register(score)
	return w, score
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshots.db")
	s := openTestStore(t, path)

	clock := time.UnixMilli(1_700_000_000_000)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	w, score := testWorld()
	e := w.Create(score.With(10))
	require.NoError(t, s.SaveWorld(ctx, "first", w))

	require.NoError(t, ecs.Add(w, e, score, 20))
	w.Create(score.With(30))
	require.NoError(t, s.SaveWorld(ctx, "second", w))

	t.Run("load", func(t *testing.T) {
		snap, err := s.Load(ctx, "first")
		require.NoError(t, err)

		dst, dscore := testWorld()
		require.NoError(t, dst.Restore(snap))
		v, ok := ecs.Get(dst, e, dscore)
		require.True(t, ok)
		assert.Equal(t, 10, v)
		assert.Equal(t, 1, dst.Len())
	})

	t.Run("missing", func(t *testing.T) {
		_, err := s.Load(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list newest first", func(t *testing.T) {
		infos, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, infos, 2)
		assert.Equal(t, "second", infos[0].Name)
		assert.Equal(t, 2, infos[0].Entities)
		assert.Equal(t, 1, infos[0].Components)
		assert.Positive(t, infos[0].Size)
		assert.Equal(t, "first", infos[1].Name)
		assert.True(t, infos[0].CreatedAt.After(infos[1].CreatedAt))
	})

	t.Run("save replaces", func(t *testing.T) {
		require.NoError(t, s.SaveWorld(ctx, "first", w))
		infos, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, infos, 2)
		assert.Equal(t, "first", infos[0].Name)
		assert.Equal(t, 2, infos[0].Entities)
	})

	t.Run("delete", func(t *testing.T) {
		ok, err := s.Delete(ctx, "second")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.Delete(ctx, "second")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("reopen keeps data", func(t *testing.T) {
		again := openTestStore(t, path)
		infos, err := again.List(ctx)
		require.NoError(t, err)
		require.Len(t, infos, 1)
		assert.Equal(t, "first", infos[0].Name)
	})
}

package host

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harun/phobos/pkg/plugin"
)

func TestOpenStore(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		_, err := OpenStore("")
		assert.Error(t, err)
	})

	t.Run("file database survives reopen", func(t *testing.T) {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "phobos.db")

		store, err := OpenStore(path)
		require.NoError(t, err)
		require.NoError(t, store.SetSysConfig(ctx, "theme", "dark"))
		require.NoError(t, store.Close())

		store, err = OpenStore(path)
		require.NoError(t, err)
		defer store.Close()

		value, found, err := store.GetSysConfig(ctx, "theme")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "dark", value)
	})
}

func TestStoreConfig(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, found, err := store.GetConfig(ctx, "com.test.a", "k")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.SetConfig(ctx, "com.test.a", "k", "v1"))
	require.NoError(t, store.SetConfig(ctx, "com.test.a", "k", "v2"))
	require.NoError(t, store.SetConfig(ctx, "com.test.b", "k", "other"))

	value, found, err := store.GetConfig(ctx, "com.test.a", "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v2", value)

	require.NoError(t, store.DeleteConfig(ctx, "com.test.a"))
	_, found, err = store.GetConfig(ctx, "com.test.a", "k")
	require.NoError(t, err)
	assert.False(t, found)

	value, _, err = store.GetConfig(ctx, "com.test.b", "k")
	require.NoError(t, err)
	assert.Equal(t, "other", value)
}

func TestStoreBootItems(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	low, err := store.AddBootItem(ctx, "com.test.a", "low", 1, nil)
	require.NoError(t, err)
	high, err := store.AddBootItem(ctx, "com.test.a", "high", 9, []plugin.Value{plugin.String("x"), plugin.Bool(true)})
	require.NoError(t, err)
	_, err = store.AddBootItem(ctx, "com.test.b", "other", 5, nil)
	require.NoError(t, err)
	assert.NotEqual(t, low.UUID, high.UUID)

	t.Run("ordered by priority", func(t *testing.T) {
		items, err := store.ListBootItems(ctx, "")
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "high", items[0].Command)
		assert.Equal(t, "other", items[1].Command)
		assert.Equal(t, "low", items[2].Command)
		assert.Equal(t, []plugin.Value{plugin.String("x"), plugin.Bool(true)}, items[0].Args)
	})

	t.Run("filtered by package", func(t *testing.T) {
		items, err := store.ListBootItems(ctx, "com.test.b")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "other", items[0].Command)
	})

	t.Run("remove checks owner", func(t *testing.T) {
		removed, err := store.RemoveBootItem(ctx, "com.test.b", low.UUID)
		require.NoError(t, err)
		assert.False(t, removed)

		removed, err = store.RemoveBootItem(ctx, "com.test.a", low.UUID)
		require.NoError(t, err)
		assert.True(t, removed)
	})

	t.Run("delete by package", func(t *testing.T) {
		require.NoError(t, store.DeleteBootItems(ctx, "com.test.a"))
		items, err := store.ListBootItems(ctx, "")
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "com.test.b", items[0].PackageName)
	})
}

func TestStore_BootArgsKeepKinds(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	args := []plugin.Value{
		plugin.Int(5),
		plugin.Float(5),
		plugin.Bytes([]byte{1, 2}),
		plugin.List(plugin.Int(1), plugin.Null()),
		plugin.Map(map[string]plugin.Value{"retries": plugin.Int(3)}),
	}
	_, err := store.AddBootItem(ctx, "com.test.a", "typed", 1, args)
	require.NoError(t, err)

	items, err := store.ListBootItems(ctx, "com.test.a")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Len(t, items[0].Args, len(args))
	for i, want := range args {
		got := items[0].Args[i]
		assert.Equal(t, want.Kind(), got.Kind(), "arg %d", i)
		assert.True(t, want.Equal(got), "arg %d: %s", i, got)
	}
}

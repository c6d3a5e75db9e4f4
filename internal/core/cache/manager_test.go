package cache

import (
	"context"
	"testing"
	"time"

	"dish-lens/internal/infrastructure/config"
	"dish-lens/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, size int) (*Manager, *time.Time) {
	t.Helper()
	m := NewManager(config.CacheConfig{Enabled: true, MaxSize: size, TTL: time.Minute})
	require.NotNil(t, m)
	t.Cleanup(func() { _ = m.Close() })

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestManagerSetGet(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 4)

	require.NoError(t, m.Set(ctx, "a", []byte("one")))
	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)

	_, err = m.Get(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestManagerExpiry(t *testing.T) {
	ctx := context.Background()
	m, now := newTestManager(t, 4)

	require.NoError(t, m.Set(ctx, "a", []byte("one")))
	*now = now.Add(2 * time.Minute)

	_, err := m.Get(ctx, "a")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	assert.Equal(t, 0, m.Len())
}

func TestManagerEvictsLeastUsed(t *testing.T) {
	ctx := context.Background()
	m, now := newTestManager(t, 2)

	require.NoError(t, m.Set(ctx, "a", []byte("1")))
	*now = now.Add(time.Second)
	require.NoError(t, m.Set(ctx, "b", []byte("2")))

	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", []byte("3")))
	assert.Equal(t, 2, m.Len())

	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
}

func TestNilManagerIsDisabled(t *testing.T) {
	ctx := context.Background()
	m := NewManager(config.CacheConfig{Enabled: false})
	assert.Nil(t, m)

	assert.NoError(t, m.Set(ctx, "a", []byte("1")))
	_, err := m.Get(ctx, "a")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	assert.Equal(t, false, m.GetStats()["enabled"])
	assert.NoError(t, m.Close())
}

func TestKeyIsStable(t *testing.T) {
	assert.Equal(t, Key("mealdb", "pizza"), Key("mealdb", "pizza"))
	assert.NotEqual(t, Key("mealdb", "pizza"), Key("mealdb", "pasta"))
	assert.Contains(t, Key("mealdb", "pizza"), "mealdb:")
}

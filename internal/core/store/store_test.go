package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"dish-lens/internal/infrastructure/config"
	"dish-lens/internal/pkg/common"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStores(t *testing.T, ttl time.Duration) (*Stores, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStores(client, config.StoreConfig{KeyPrefix: "test", RecipeTTL: ttl})
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func backends(t *testing.T) map[string]*Stores {
	redisStores, _ := newRedisStores(t, 0)
	return map[string]*Stores{
		"memory": NewMemoryStores(),
		"redis":  redisStores,
	}
}

func sampleRecipe(id string) *common.Recipe {
	return &common.Recipe{
		ID:           id,
		Name:         "Pad Thai",
		Ingredients:  []string{"200 g rice noodles", "2 eggs"},
		Instructions: []string{"Soak noodles", "Stir fry"},
		CookingTime:  "30 minutes",
		Servings:     2,
		Difficulty:   common.DifficultyEasy,
		Cuisine:      "Thai",
	}
}

func TestRecipeStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			r := sampleRecipe("r-1")
			require.NoError(t, s.Recipes.Put(ctx, r))

			got, err := s.Recipes.Get(ctx, "r-1")
			require.NoError(t, err)
			assert.Equal(t, r, got)

			_, err = s.Recipes.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Recipes.Delete(ctx, "r-1"))
			_, err = s.Recipes.Get(ctx, "r-1")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRecipeStoreRejectsMissingID(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, s.Recipes.Put(ctx, &common.Recipe{Name: "no id"}))
		})
	}
}

func TestRecipeStoreNormalizesEmptyLists(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Recipes.Put(ctx, &common.Recipe{ID: "bare", Name: "Bare"}))
			got, err := s.Recipes.Get(ctx, "bare")
			require.NoError(t, err)
			assert.NotNil(t, got.Ingredients)
			assert.NotNil(t, got.Instructions)
		})
	}
}

func TestMemoryRecipeStoreCopiesOnPut(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryRecipeStore()
	r := sampleRecipe("r-1")
	require.NoError(t, s.Put(ctx, r))

	r.Ingredients[0] = "mutated"
	got, err := s.Get(ctx, "r-1")
	require.NoError(t, err)
	assert.Equal(t, "200 g rice noodles", got.Ingredients[0])
}

func TestMemoryRecipeStoreConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryRecipeStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("r-%d", i)
			assert.NoError(t, s.Put(ctx, sampleRecipe(id)))
			_, err := s.Get(ctx, id)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}

func TestRedisRecipeTTL(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStores(t, time.Hour)

	require.NoError(t, s.Recipes.Put(ctx, sampleRecipe("r-1")))
	mr.FastForward(2 * time.Hour)

	_, err := s.Recipes.Get(ctx, "r-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSavedStoreToggle(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			saved, err := s.Saved.Toggle(ctx, "u1", "a")
			require.NoError(t, err)
			assert.True(t, saved)

			ok, err := s.Saved.IsSaved(ctx, "u1", "a")
			require.NoError(t, err)
			assert.True(t, ok)

			saved, err = s.Saved.Toggle(ctx, "u1", "a")
			require.NoError(t, err)
			assert.False(t, saved)

			ok, err = s.Saved.IsSaved(ctx, "u1", "a")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSavedStoreListKeepsOrder(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, id := range []string{"c", "a", "b"} {
				_, err := s.Saved.Toggle(ctx, "u1", id)
				require.NoError(t, err)
			}
			_, err := s.Saved.Toggle(ctx, "u1", "a")
			require.NoError(t, err)
			_, err = s.Saved.Toggle(ctx, "u1", "a")
			require.NoError(t, err)

			ids, err := s.Saved.List(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, []string{"c", "b", "a"}, ids)

			ids, err = s.Saved.List(ctx, "nobody")
			require.NoError(t, err)
			assert.Empty(t, ids)
		})
	}
}

func TestSavedStoreIsPerUser(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Saved.Toggle(ctx, "u1", "a")
			require.NoError(t, err)

			ok, err := s.Saved.IsSaved(ctx, "u2", "a")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestProfileStore(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Profiles.GetOverrides(ctx, "u1")
			assert.ErrorIs(t, err, ErrNotFound)

			o := &ProfileOverrides{Username: "chef", FullName: "Chef Tan", CreatedAt: "2024-01-01T00:00:00Z", UpdatedAt: "2024-01-02T00:00:00Z"}
			require.NoError(t, s.Profiles.SetOverrides(ctx, "u1", o))

			got, err := s.Profiles.GetOverrides(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, o, got)
		})
	}
}

func TestNewStoresSelectsBackend(t *testing.T) {
	ctx := context.Background()

	s, err := NewStores(ctx, config.StoreConfig{Backend: config.StoreMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryRecipeStore{}, s.Recipes)
	assert.NoError(t, s.Ping(ctx))

	mr := miniredis.RunT(t)
	s, err = NewStores(ctx, config.StoreConfig{Backend: config.StoreRedis, RedisAddr: mr.Addr(), KeyPrefix: "x"})
	require.NoError(t, err)
	assert.IsType(t, &RedisRecipeStore{}, s.Recipes)
	assert.NoError(t, s.Ping(ctx))

	mr.Close()
	assert.Error(t, s.Ping(ctx))
	assert.NoError(t, s.Close())

	_, err = NewStores(ctx, config.StoreConfig{Backend: "mongo"})
	assert.Error(t, err)
}

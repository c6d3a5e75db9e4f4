package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dish-lens/internal/infrastructure/config"
	"dish-lens/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// NewRedisClient 建立並測試 Redis 連線
func NewRedisClient(ctx context.Context, cfg config.StoreConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.Password,
		DB:       cfg.RedisDB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisStores 在同一個 Redis 連線上建立三種儲存
func NewRedisStores(client *redis.Client, cfg config.StoreConfig) *Stores {
	prefix := cfg.KeyPrefix
	return &Stores{
		Recipes:  NewRedisRecipeStore(client, prefix, cfg.RecipeTTL),
		Saved:    NewRedisSavedStore(client, prefix),
		Profiles: NewRedisProfileStore(client, prefix),
		ping:     func(ctx context.Context) error { return client.Ping(ctx).Err() },
		close:    client.Close,
	}
}

// NewStores 依設定選擇儲存後端
func NewStores(ctx context.Context, cfg config.StoreConfig) (*Stores, error) {
	switch cfg.Backend {
	case config.StoreRedis:
		client, err := NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		common.LogInfo("使用 Redis 儲存", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
		return NewRedisStores(client, cfg), nil
	case config.StoreMemory, "":
		common.LogInfo("使用記憶體儲存")
		return NewMemoryStores(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// RedisRecipeStore 以 JSON 字串存放食譜
type RedisRecipeStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisRecipeStore 創建 Redis 食譜儲存，ttl 為 0 代表不過期
func NewRedisRecipeStore(client *redis.Client, prefix string, ttl time.Duration) *RedisRecipeStore {
	return &RedisRecipeStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisRecipeStore) key(id string) string {
	return fmt.Sprintf("%s:recipe:%s", s.prefix, id)
}

// Put 存入食譜
func (s *RedisRecipeStore) Put(ctx context.Context, recipe *common.Recipe) error {
	if recipe == nil || recipe.ID == "" {
		return fmt.Errorf("recipe id is required")
	}
	r := recipe.Clone()
	r.Normalize()

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}
	if err := s.client.Set(ctx, s.key(r.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store recipe: %w", err)
	}
	return nil
}

// Get 取出食譜
func (s *RedisRecipeStore) Get(ctx context.Context, id string) (*common.Recipe, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	var r common.Recipe
	if err := common.ParseJSONBytes(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe: %w", err)
	}
	r.Normalize()
	return &r, nil
}

// Delete 刪除食譜
func (s *RedisRecipeStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	return nil
}

// toggleScript 原子地切換收藏；以遞增序號當分數保留收藏順序
var toggleScript = redis.NewScript(`
if redis.call('ZREM', KEYS[1], ARGV[1]) == 1 then
	return 0
end
local seq = redis.call('INCR', KEYS[2])
redis.call('ZADD', KEYS[1], seq, ARGV[1])
return 1
`)

// RedisSavedStore 以 sorted set 存放每位使用者的收藏
type RedisSavedStore struct {
	client *redis.Client
	prefix string
}

// NewRedisSavedStore 創建 Redis 收藏清單
func NewRedisSavedStore(client *redis.Client, prefix string) *RedisSavedStore {
	return &RedisSavedStore{client: client, prefix: prefix}
}

func (s *RedisSavedStore) key(userID string) string {
	return fmt.Sprintf("%s:saved:%s", s.prefix, userID)
}

// Toggle 切換收藏
func (s *RedisSavedStore) Toggle(ctx context.Context, userID, recipeID string) (bool, error) {
	keys := []string{s.key(userID), s.key(userID) + ":seq"}
	saved, err := toggleScript.Run(ctx, s.client, keys, recipeID).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to toggle saved recipe: %w", err)
	}
	return saved == 1, nil
}

// IsSaved 是否已收藏
func (s *RedisSavedStore) IsSaved(ctx context.Context, userID, recipeID string) (bool, error) {
	err := s.client.ZScore(ctx, s.key(userID), recipeID).Err()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to check saved recipe: %w", err)
	}
	return true, nil
}

// List 依收藏順序回傳 id
func (s *RedisSavedStore) List(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.client.ZRange(ctx, s.key(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list saved recipes: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// RedisProfileStore 以 hash 存放個人資料覆寫
type RedisProfileStore struct {
	client *redis.Client
	prefix string
}

// NewRedisProfileStore 創建 Redis 個人資料儲存
func NewRedisProfileStore(client *redis.Client, prefix string) *RedisProfileStore {
	return &RedisProfileStore{client: client, prefix: prefix}
}

func (s *RedisProfileStore) key(userID string) string {
	return fmt.Sprintf("%s:profile:%s", s.prefix, userID)
}

// GetOverrides 取出覆寫欄位
func (s *RedisProfileStore) GetOverrides(ctx context.Context, userID string) (*ProfileOverrides, error) {
	fields, err := s.client.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return &ProfileOverrides{
		Username:  fields["username"],
		FullName:  fields["full_name"],
		AvatarURL: fields["avatar_url"],
		CreatedAt: fields["created_at"],
		UpdatedAt: fields["updated_at"],
	}, nil
}

// SetOverrides 寫入覆寫欄位
func (s *RedisProfileStore) SetOverrides(ctx context.Context, userID string, o *ProfileOverrides) error {
	if o == nil {
		return fmt.Errorf("profile overrides are required")
	}
	err := s.client.HSet(ctx, s.key(userID), map[string]interface{}{
		"username":   o.Username,
		"full_name":  o.FullName,
		"avatar_url": o.AvatarURL,
		"created_at": o.CreatedAt,
		"updated_at": o.UpdatedAt,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to store profile: %w", err)
	}
	return nil
}

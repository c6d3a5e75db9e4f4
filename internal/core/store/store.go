// Package store 提供食譜、收藏與個人資料的儲存抽象，含記憶體與 Redis 兩種實作
package store

import (
	"context"
	"errors"

	"dish-lens/internal/pkg/common"
)

// ErrNotFound 指定的資料不存在
var ErrNotFound = errors.New("not found")

// RecipeStore 食譜儲存，Put 後以同一個 id Get 必須取回相同內容
type RecipeStore interface {
	Put(ctx context.Context, recipe *common.Recipe) error
	Get(ctx context.Context, id string) (*common.Recipe, error)
	Delete(ctx context.Context, id string) error
}

// SavedStore 使用者收藏的食譜 id，依收藏順序列出
type SavedStore interface {
	// Toggle 切換收藏狀態並回傳切換後是否為已收藏
	Toggle(ctx context.Context, userID, recipeID string) (bool, error)
	IsSaved(ctx context.Context, userID, recipeID string) (bool, error)
	List(ctx context.Context, userID string) ([]string, error)
}

// ProfileStore 使用者自行修改的個人資料欄位
type ProfileStore interface {
	// GetOverrides 沒有資料時回傳 ErrNotFound
	GetOverrides(ctx context.Context, userID string) (*ProfileOverrides, error)
	SetOverrides(ctx context.Context, userID string, o *ProfileOverrides) error
}

// ProfileOverrides 覆寫 session 推導出的個人資料
type ProfileOverrides struct {
	Username  string `json:"username,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Stores 同一個後端上的三種儲存
type Stores struct {
	Recipes  RecipeStore
	Saved    SavedStore
	Profiles ProfileStore
	ping     func(ctx context.Context) error
	close    func() error
}

// Ping 檢查後端是否可用，記憶體後端永遠可用
func (s *Stores) Ping(ctx context.Context) error {
	if s == nil || s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close 釋放後端連線
func (s *Stores) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

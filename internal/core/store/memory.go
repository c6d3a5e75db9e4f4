package store

import (
	"context"
	"fmt"
	"sync"

	"dish-lens/internal/pkg/common"
)

// MemoryRecipeStore 行程內食譜儲存，重啟後資料即消失
type MemoryRecipeStore struct {
	mu      sync.RWMutex
	recipes map[string]*common.Recipe
}

// NewMemoryRecipeStore 創建記憶體食譜儲存
func NewMemoryRecipeStore() *MemoryRecipeStore {
	return &MemoryRecipeStore{recipes: make(map[string]*common.Recipe)}
}

// Put 以 recipe.ID 存入副本，已存在時覆蓋
func (s *MemoryRecipeStore) Put(_ context.Context, recipe *common.Recipe) error {
	if recipe == nil || recipe.ID == "" {
		return fmt.Errorf("recipe id is required")
	}
	r := recipe.Clone()
	r.Normalize()

	s.mu.Lock()
	s.recipes[r.ID] = r
	s.mu.Unlock()
	return nil
}

// Get 取出副本
func (s *MemoryRecipeStore) Get(_ context.Context, id string) (*common.Recipe, error) {
	s.mu.RLock()
	r, ok := s.recipes[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

// Delete 刪除食譜，不存在時不視為錯誤
func (s *MemoryRecipeStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.recipes, id)
	s.mu.Unlock()
	return nil
}

// MemorySavedStore 行程內收藏清單
type MemorySavedStore struct {
	mu    sync.Mutex
	saved map[string][]string
}

// NewMemorySavedStore 創建記憶體收藏清單
func NewMemorySavedStore() *MemorySavedStore {
	return &MemorySavedStore{saved: make(map[string][]string)}
}

// Toggle 切換收藏
func (s *MemorySavedStore) Toggle(_ context.Context, userID, recipeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.saved[userID]
	for i, id := range ids {
		if id == recipeID {
			s.saved[userID] = append(ids[:i:i], ids[i+1:]...)
			return false, nil
		}
	}
	s.saved[userID] = append(ids, recipeID)
	return true, nil
}

// IsSaved 是否已收藏
func (s *MemorySavedStore) IsSaved(_ context.Context, userID, recipeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.saved[userID] {
		if id == recipeID {
			return true, nil
		}
	}
	return false, nil
}

// List 依收藏順序回傳 id
func (s *MemorySavedStore) List(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.saved[userID]...), nil
}

// MemoryProfileStore 行程內個人資料覆寫
type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]ProfileOverrides
}

// NewMemoryProfileStore 創建記憶體個人資料儲存
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]ProfileOverrides)}
}

// GetOverrides 取出覆寫欄位
func (s *MemoryProfileStore) GetOverrides(_ context.Context, userID string) (*ProfileOverrides, error) {
	s.mu.RLock()
	o, ok := s.profiles[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

// SetOverrides 寫入覆寫欄位
func (s *MemoryProfileStore) SetOverrides(_ context.Context, userID string, o *ProfileOverrides) error {
	if o == nil {
		return fmt.Errorf("profile overrides are required")
	}
	s.mu.Lock()
	s.profiles[userID] = *o
	s.mu.Unlock()
	return nil
}

// NewMemoryStores 創建全記憶體後端
func NewMemoryStores() *Stores {
	return &Stores{
		Recipes:  NewMemoryRecipeStore(),
		Saved:    NewMemorySavedStore(),
		Profiles: NewMemoryProfileStore(),
	}
}

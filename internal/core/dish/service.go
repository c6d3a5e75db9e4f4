// Package dish 串接圖片驗證、辨識流程、食譜解析與使用者收藏
package dish

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dish-lens/internal/core/image"
	"dish-lens/internal/core/recognition"
	"dish-lens/internal/core/store"
	"dish-lens/internal/pkg/common"
	"dish-lens/internal/pkg/metrics"

	"go.uber.org/zap"
)

// isoTime 與瀏覽器 toISOString 相同的時間格式
const isoTime = "2006-01-02T15:04:05.000Z"

// Identifier 辨識流程
type Identifier interface {
	Identify(ctx context.Context, img recognition.Image) common.RecognitionResult
}

// RecipeResolver 由菜名產生並儲存食譜
type RecipeResolver interface {
	Resolve(ctx context.Context, dishName, imageRef string) (*common.Recipe, error)
}

// IdentifyResult 辨識端點的回應內容，RecipeName 為辨識出的菜名
type IdentifyResult struct {
	Success     bool                `json:"success"`
	RecipeName  string              `json:"recipeName"`
	RecipeID    string              `json:"recipeId"`
	ImageURL    string              `json:"imageUrl"`
	Confidence  float64             `json:"confidence"`
	Provider    string              `json:"provider,omitempty"`
	Predictions []common.Prediction `json:"allPredictions,omitempty"`
	Recipe      *common.Recipe      `json:"recipe"`
}

// Service 應用層服務
// --------------------------------------------------
type Service struct {
	images   *image.Service
	pipeline Identifier
	resolver RecipeResolver
	stores   *store.Stores
	metrics  *metrics.Collector
	now      func() time.Time
}

// NewService 創建應用層服務，m 可為 nil
func NewService(images *image.Service, pipeline Identifier, resolver RecipeResolver, stores *store.Stores, m *metrics.Collector) *Service {
	return &Service{
		images:   images,
		pipeline: pipeline,
		resolver: resolver,
		stores:   stores,
		metrics:  m,
		now:      time.Now,
	}
}

// Identify 驗證圖片、辨識菜名、解析食譜
// 只有圖片不合法或儲存失敗會回傳錯誤
func (s *Service) Identify(ctx context.Context, data []byte, declaredType, filename string) (*IdentifyResult, error) {
	upload, err := s.images.Validate(data, declaredType)
	if err != nil {
		return nil, err
	}
	return s.identify(ctx, upload, filename)
}

// IdentifyDataURI 與 Identify 相同，圖片以 data URI 提供
func (s *Service) IdentifyDataURI(ctx context.Context, uri, filename string) (*IdentifyResult, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, common.ErrNoImage
	}
	upload, err := s.images.DecodeDataURI(uri)
	if err != nil {
		return nil, err
	}
	return s.identify(ctx, upload, filename)
}

func (s *Service) identify(ctx context.Context, upload *image.Upload, filename string) (*IdentifyResult, error) {
	result := s.pipeline.Identify(ctx, recognition.Image{
		Data:     upload.Data,
		MIMEType: upload.MIMEType,
		Filename: filename,
	})

	dishName := strings.TrimSpace(result.DishName)
	if dishName == "" {
		dishName = common.SentinelDish
	}

	imageRef := upload.DataURI()
	recipe, err := s.resolver.Resolve(ctx, dishName, imageRef)
	if err != nil {
		common.LogError("食譜解析失敗",
			zap.String("dish", dishName),
			zap.Error(err),
		)
		return nil, common.ErrImageProcessFailed.Wrap(err)
	}

	common.LogInfo("辨識完成",
		zap.String("dish", dishName),
		zap.String("provider", result.Provider),
		zap.Float64("confidence", result.Confidence),
		zap.String("recipe_id", recipe.ID),
	)

	return &IdentifyResult{
		Success:     true,
		RecipeName:  dishName,
		RecipeID:    recipe.ID,
		ImageURL:    imageRef,
		Confidence:  result.Confidence,
		Provider:    result.Provider,
		Predictions: result.AllPredictions,
		Recipe:      recipe,
	}, nil
}

// GetRecipe 取出已儲存的食譜
func (s *Service) GetRecipe(ctx context.Context, id string) (*common.Recipe, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, common.ErrRecipeNotFound
	}
	recipe, err := s.stores.Recipes.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, common.ErrRecipeNotFound
	}
	if err != nil {
		return nil, common.ErrInternalError.Wrap(err)
	}
	return recipe, nil
}

// ToggleSave 切換收藏，回傳切換後的狀態
func (s *Service) ToggleSave(ctx context.Context, session *common.Session, recipeID string) (bool, error) {
	if session == nil {
		return false, common.ErrLoginToSave
	}
	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		return false, common.ErrInvalidRequest.Wrap(fmt.Errorf("recipe id is required"))
	}

	saved, err := s.stores.Saved.Toggle(ctx, session.UserID, recipeID)
	if err != nil {
		common.LogError("切換收藏失敗",
			zap.String("user_id", session.UserID),
			zap.String("recipe_id", recipeID),
			zap.Error(err),
		)
		return false, common.ErrInternalError.Wrap(err)
	}
	s.metrics.SavedToggle(saved)
	return saved, nil
}

// IsSaved 匿名或查詢失敗時視為未收藏
func (s *Service) IsSaved(ctx context.Context, session *common.Session, recipeID string) bool {
	if session == nil {
		return false
	}
	saved, err := s.stores.Saved.IsSaved(ctx, session.UserID, strings.TrimSpace(recipeID))
	if err != nil {
		common.LogWarn("查詢收藏狀態失敗",
			zap.String("user_id", session.UserID),
			zap.String("recipe_id", recipeID),
			zap.Error(err),
		)
		return false
	}
	return saved
}

// SavedRecipes 依收藏順序列出仍存在的食譜，匿名時為空
func (s *Service) SavedRecipes(ctx context.Context, session *common.Session) ([]*common.Recipe, error) {
	recipes := []*common.Recipe{}
	if session == nil {
		return recipes, nil
	}

	ids, err := s.stores.Saved.List(ctx, session.UserID)
	if err != nil {
		return nil, common.ErrInternalError.Wrap(err)
	}
	for _, id := range ids {
		recipe, err := s.stores.Recipes.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, common.ErrInternalError.Wrap(err)
		}
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

// GetProfile 由會話與使用者覆寫欄位組成個人資料
func (s *Service) GetProfile(ctx context.Context, session *common.Session) (*common.Profile, error) {
	if session == nil {
		return nil, common.ErrUnauthenticated
	}

	now := s.now().UTC().Format(isoTime)
	username := defaultUsername(session.Email)
	fullName := strings.TrimSpace(session.FullName)
	if fullName == "" {
		fullName = username
	}
	profile := &common.Profile{
		ID:        session.UserID,
		Username:  username,
		FullName:  fullName,
		AvatarURL: session.AvatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	overrides, err := s.stores.Profiles.GetOverrides(ctx, session.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return profile, nil
	}
	if err != nil {
		return nil, common.ErrInternalError.Wrap(err)
	}
	applyOverrides(profile, overrides)
	return profile, nil
}

// UpdateProfile 儲存使用者修改的欄位，空值保留原本設定
func (s *Service) UpdateProfile(ctx context.Context, session *common.Session, update common.ProfileUpdate) (*common.Profile, error) {
	if session == nil {
		return nil, common.ErrLoginToProfile
	}

	overrides, err := s.stores.Profiles.GetOverrides(ctx, session.UserID)
	if errors.Is(err, store.ErrNotFound) {
		overrides = &store.ProfileOverrides{}
	} else if err != nil {
		return nil, common.ErrInternalError.Wrap(err)
	}

	now := s.now().UTC().Format(isoTime)
	if v := strings.TrimSpace(update.Username); v != "" {
		overrides.Username = v
	}
	if v := strings.TrimSpace(update.FullName); v != "" {
		overrides.FullName = v
	}
	if v := strings.TrimSpace(update.AvatarURL); v != "" {
		overrides.AvatarURL = v
	}
	if overrides.CreatedAt == "" {
		overrides.CreatedAt = now
	}
	overrides.UpdatedAt = now

	if err := s.stores.Profiles.SetOverrides(ctx, session.UserID, overrides); err != nil {
		return nil, common.ErrInternalError.Wrap(err)
	}

	common.LogInfo("個人資料已更新", zap.String("user_id", session.UserID))
	return s.GetProfile(ctx, session)
}

// defaultUsername 取 email 的 @ 前段，沒有時為 "user"
func defaultUsername(email string) string {
	if name, _, _ := strings.Cut(strings.TrimSpace(email), "@"); name != "" {
		return name
	}
	return "user"
}

func applyOverrides(p *common.Profile, o *store.ProfileOverrides) {
	if o.Username != "" {
		p.Username = o.Username
	}
	if o.FullName != "" {
		p.FullName = o.FullName
	}
	if o.AvatarURL != "" {
		p.AvatarURL = o.AvatarURL
	}
	if o.CreatedAt != "" {
		p.CreatedAt = o.CreatedAt
	}
	if o.UpdatedAt != "" {
		p.UpdatedAt = o.UpdatedAt
	}
}

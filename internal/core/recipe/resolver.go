package recipe

import (
	"context"
	"fmt"
	"strings"

	"dish-lens/internal/core/catalog"
	"dish-lens/internal/core/store"
	"dish-lens/internal/pkg/common"
	"dish-lens/internal/pkg/metrics"

	"go.uber.org/zap"
)

// 食譜來源
const (
	SourceLookup   = "lookup"
	SourceTemplate = "template"
	SourceGeneric  = "generic"
)

// Resolver 由菜名產生完整食譜並存入儲存
type Resolver struct {
	lookup  Lookup
	store   store.RecipeStore
	metrics *metrics.Collector
	newID   func() string
}

// Option Resolver 選項
type Option func(*Resolver)

// WithMetrics 設定指標收集器
func WithMetrics(m *metrics.Collector) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithIDGenerator 替換 id 產生方式
func WithIDGenerator(fn func() string) Option {
	return func(r *Resolver) { r.newID = fn }
}

// NewResolver 創建食譜解析器，lookup 可為 nil（略過外部查詢）
func NewResolver(lookup Lookup, st store.RecipeStore, opts ...Option) *Resolver {
	r := &Resolver{
		lookup: lookup,
		store:  st,
		newID:  common.GenerateUUID,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve 依序嘗試外部查詢、首字重查、模板、通用食譜，
// 成功後配上新的 id 與圖片引用並存入儲存；只有儲存失敗會回傳錯誤
func (r *Resolver) Resolve(ctx context.Context, dishName, imageRef string) (*common.Recipe, error) {
	dishName = strings.TrimSpace(dishName)
	if dishName == "" {
		dishName = common.SentinelDish
	}

	recipe, source := r.build(ctx, dishName)
	recipe.ID = r.newID()
	recipe.ImageURL = imageRef
	recipe.Normalize()

	if err := r.store.Put(ctx, recipe); err != nil {
		common.LogError("食譜儲存失敗", zap.String("dish", dishName), zap.Error(err))
		return nil, fmt.Errorf("failed to store recipe: %w", err)
	}

	r.metrics.Resolution(source)
	common.LogInfo("食譜已產生",
		zap.String("dish", dishName),
		zap.String("source", source),
		zap.String("recipe_id", recipe.ID),
	)
	return recipe, nil
}

func (r *Resolver) build(ctx context.Context, dishName string) (*common.Recipe, string) {
	if found := r.search(ctx, dishName); found != nil {
		return found, SourceLookup
	}

	// 整個菜名查不到時，改用第一個字再查一次
	if fields := strings.Fields(dishName); len(fields) > 0 && fields[0] != dishName {
		if found := r.search(ctx, fields[0]); found != nil {
			return found, SourceLookup
		}
	}

	if tpl, ok := catalog.FindTemplate(dishName); ok {
		out := tpl.Recipe
		out.Name = common.Capitalize(dishName)
		out.Description = fmt.Sprintf("A delicious %s recipe.", dishName)
		return &out, SourceTemplate
	}

	generic := catalog.GenericRecipe(dishName)
	EstimateRecipe(generic.Instructions, generic.Ingredients).Apply(&generic)
	return &generic, SourceGeneric
}

// search 查詢錯誤一律視為未命中
func (r *Resolver) search(ctx context.Context, name string) *common.Recipe {
	if r.lookup == nil {
		return nil
	}
	found, err := r.lookup.Search(ctx, name)
	if err != nil || found == nil {
		common.LogInfo("外部食譜查無結果", zap.String("query", name), zap.Error(err))
		return nil
	}
	return found
}

package recipe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"dish-lens/internal/core/cache"
	"dish-lens/internal/infrastructure/config"
	"dish-lens/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrNoMatch 外部食譜庫沒有對應的菜
var ErrNoMatch = errors.New("no recipe match")

// Lookup 以菜名查詢外部食譜庫
type Lookup interface {
	Search(ctx context.Context, dishName string) (*common.Recipe, error)
}

// MealDBClient TheMealDB 查詢客戶端
type MealDBClient struct {
	client *resty.Client
}

// NewMealDBClient 創建 TheMealDB 客戶端
func NewMealDBClient(cfg config.MealDBConfig) *MealDBClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &MealDBClient{client: client}
}

// meal 欄位全部可能為 null，以 map 解析後逐一取值
type mealSearchResponse struct {
	Meals []map[string]interface{} `json:"meals"`
}

// Search 以 search.php?s= 查詢，取第一筆結果
func (c *MealDBClient) Search(ctx context.Context, dishName string) (*common.Recipe, error) {
	var result mealSearchResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("s", dishName).
		SetResult(&result).
		Get("/search.php")
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe database: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("recipe database returned status %d", resp.StatusCode())
	}
	if len(result.Meals) == 0 {
		return nil, ErrNoMatch
	}

	return mealToRecipe(result.Meals[0]), nil
}

var lineBreaks = regexp.MustCompile(`\r\n|\r|\n`)

// mealToRecipe 將 TheMealDB 的餐點轉成食譜，時間、份量與難度由估算器推出
func mealToRecipe(meal map[string]interface{}) *common.Recipe {
	ingredients := []string{}
	for i := 1; i <= 20; i++ {
		ingredient := strings.TrimSpace(mealField(meal, fmt.Sprintf("strIngredient%d", i)))
		if ingredient == "" {
			continue
		}
		if measure := strings.TrimSpace(mealField(meal, fmt.Sprintf("strMeasure%d", i))); measure != "" {
			ingredient = measure + " " + ingredient
		}
		ingredients = append(ingredients, ingredient)
	}

	r := &common.Recipe{
		ID:           mealField(meal, "idMeal"),
		Name:         mealField(meal, "strMeal"),
		Description:  fmt.Sprintf("A delicious %s dish from %s cuisine.", mealField(meal, "strCategory"), mealField(meal, "strArea")),
		ImageURL:     mealField(meal, "strMealThumb"),
		Ingredients:  ingredients,
		Instructions: SplitInstructions(mealField(meal, "strInstructions")),
		Cuisine:      mealField(meal, "strArea"),
	}
	EstimateRecipe(r.Instructions, r.Ingredients).Apply(r)
	return r
}

// SplitInstructions 以換行切分步驟並去除空行
func SplitInstructions(text string) []string {
	steps := []string{}
	for _, line := range lineBreaks.Split(text, -1) {
		if s := strings.TrimSpace(line); s != "" {
			steps = append(steps, s)
		}
	}
	return steps
}

func mealField(meal map[string]interface{}, key string) string {
	if v, ok := meal[key].(string); ok {
		return v
	}
	return ""
}

// CachedLookup 以行程內快取包裝外部查詢，命中與未命中都會快取
type CachedLookup struct {
	next  Lookup
	cache *cache.Manager
}

// NewCachedLookup 創建帶快取的查詢，cache 為 nil 時等同直接查詢
func NewCachedLookup(next Lookup, c *cache.Manager) *CachedLookup {
	return &CachedLookup{next: next, cache: c}
}

// cachedMiss 代表已知查無結果
var cachedMiss = []byte("null")

// Search 先查快取，否則轉給下一層；查詢錯誤不寫入快取
func (l *CachedLookup) Search(ctx context.Context, dishName string) (*common.Recipe, error) {
	key := cache.Key("mealdb", strings.ToLower(strings.TrimSpace(dishName)))

	if data, err := l.cache.Get(ctx, key); err == nil {
		if string(data) == string(cachedMiss) {
			return nil, ErrNoMatch
		}
		var r common.Recipe
		if err := common.ParseJSONBytes(data, &r); err == nil {
			common.LogDebug("食譜查詢快取命中", zap.String("dish", dishName))
			return &r, nil
		}
		l.cache.Delete(ctx, key)
	}

	r, err := l.next.Search(ctx, dishName)
	switch {
	case errors.Is(err, ErrNoMatch):
		_ = l.cache.Set(ctx, key, cachedMiss)
		return nil, err
	case err != nil:
		return nil, err
	}

	if data, mErr := common.ToJSON(r); mErr == nil {
		if sErr := l.cache.Set(ctx, key, []byte(data)); sErr != nil {
			common.LogWarn("食譜查詢快取寫入失敗", zap.Error(sErr))
		}
	}
	return r.Clone(), nil
}

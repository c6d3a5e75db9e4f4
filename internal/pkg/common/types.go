package common

import "strings"

// SentinelDish 代表「沒有任何辨識器給出真實猜測」的佔位菜名
const SentinelDish = "dish"

// Difficulty 食譜難度
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Recipe 食譜
// ingredients 與 instructions 永遠不為 nil（無資料時為空切片）
type Recipe struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	ImageURL     string     `json:"image_url,omitempty"`
	Ingredients  []string   `json:"ingredients"`
	Instructions []string   `json:"instructions"`
	CookingTime  string     `json:"cooking_time,omitempty"`
	Servings     int        `json:"servings,omitempty"`
	Difficulty   Difficulty `json:"difficulty,omitempty"`
	Cuisine      string     `json:"cuisine,omitempty"`
}

// Normalize 將 nil 切片換成空切片
func (r *Recipe) Normalize() {
	if r.Ingredients == nil {
		r.Ingredients = []string{}
	}
	if r.Instructions == nil {
		r.Instructions = []string{}
	}
}

// Clone 深拷貝食譜，避免共用底層切片
func (r *Recipe) Clone() *Recipe {
	if r == nil {
		return nil
	}
	out := *r
	out.Ingredients = append([]string{}, r.Ingredients...)
	out.Instructions = append([]string{}, r.Instructions...)
	return &out
}

// Prediction 單一候選結果
type Prediction struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
}

// RecognitionResult 辨識結果，回傳後不可再修改
type RecognitionResult struct {
	Success        bool         `json:"success"`
	DishName       string       `json:"dish_name,omitempty"`
	Confidence     float64      `json:"confidence,omitempty"`
	Description    string       `json:"description,omitempty"`
	Provider       string       `json:"provider,omitempty"`
	AllPredictions []Prediction `json:"all_predictions,omitempty"`
	ErrorReason    string       `json:"error,omitempty"`
}

// IsUsable 是否為可採用的結果：成功且菜名非空、非佔位值
func (r RecognitionResult) IsUsable() bool {
	name := strings.TrimSpace(r.DishName)
	return r.Success && name != "" && name != SentinelDish
}

// Session 外部驗證服務提供的使用者會話
type Session struct {
	UserID    string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Profile 使用者個人資料
type Profile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ProfileUpdate 個人資料更新內容
type ProfileUpdate struct {
	Username  string `json:"username" binding:"omitempty,max=64"`
	FullName  string `json:"full_name" binding:"omitempty,max=128"`
	AvatarURL string `json:"avatar_url" binding:"omitempty,max=2048"`
}

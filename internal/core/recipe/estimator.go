package recipe

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"dish-lens/internal/pkg/common"
)

// Estimate 由步驟與食材推估的烹調資訊
type Estimate struct {
	CookingTime string
	Servings    int
	Difficulty  common.Difficulty
}

// 耗時的烹調方式與額外分鐘數，同一步驟命中多個時累加
var slowMethods = []struct {
	keyword string
	minutes int
}{
	{"simmer", 30},
	{"bake", 30},
	{"roast", 30},
	{"slow cook", 120},
	{"marinate", 60},
	{"chill", 60},
	{"refrigerate", 60},
	{"freeze", 60},
}

// 需要技巧的手法，每個步驟最多加一分
var complexTechniques = []string{
	"knead", "fold", "whip", "temper", "caramelize",
	"reduce", "deglaze", "blanch", "braise", "sous vide",
}

var firstNumber = regexp.MustCompile(`\d+`)

// EstimateRecipe 依步驟與食材推估烹調時間、份量與難度，結果只取決於輸入
func EstimateRecipe(instructions, ingredients []string) Estimate {
	return Estimate{
		CookingTime: FormatMinutes(CookingMinutes(instructions, ingredients)),
		Servings:    EstimateServings(ingredients),
		Difficulty:  EstimateDifficulty(instructions, ingredients),
	}
}

// Apply 將推估值寫入食譜
func (e Estimate) Apply(r *common.Recipe) {
	r.CookingTime = e.CookingTime
	r.Servings = e.Servings
	r.Difficulty = e.Difficulty
}

// CookingMinutes 基礎 15 分鐘，每步驟 3 分鐘、每項食材 1 分鐘，再加上耗時手法
func CookingMinutes(instructions, ingredients []string) int {
	total := 15 + 3*len(instructions) + len(ingredients)
	for _, step := range instructions {
		lower := strings.ToLower(step)
		for _, m := range slowMethods {
			if strings.Contains(lower, m.keyword) {
				total += m.minutes
			}
		}
	}
	return total
}

// FormatMinutes 未滿一小時為 "N minutes"，否則為 "H hour(s)" 加上剩餘分鐘
func FormatMinutes(total int) string {
	if total < 60 {
		return fmt.Sprintf("%d minutes", total)
	}

	hours, minutes := total/60, total%60
	unit := "hour"
	if hours > 1 {
		unit = "hours"
	}
	if minutes == 0 {
		return fmt.Sprintf("%d %s", hours, unit)
	}
	return fmt.Sprintf("%d %s %d minutes", hours, unit, minutes)
}

// EstimateServings 優先採用食材中 "serv" 字樣旁的數字，否則依食材數量分級
func EstimateServings(ingredients []string) int {
	for _, ing := range ingredients {
		lower := strings.ToLower(ing)
		if !strings.Contains(lower, "serv") {
			continue
		}
		if m := firstNumber.FindString(lower); m != "" {
			if n, err := strconv.Atoi(m); err == nil {
				return n
			}
		}
	}

	switch n := len(ingredients); {
	case n <= 5:
		return 2
	case n <= 10:
		return 4
	default:
		return 6
	}
}

// EstimateDifficulty 步驟分級 + 食材分級 + 技巧步驟數；<=3 Easy，<=6 Medium，其餘 Hard
func EstimateDifficulty(instructions, ingredients []string) common.Difficulty {
	score := sizeBucket(len(instructions)) + sizeBucket(len(ingredients))

	for _, step := range instructions {
		lower := strings.ToLower(step)
		for _, technique := range complexTechniques {
			if strings.Contains(lower, technique) {
				score++
				break
			}
		}
	}

	switch {
	case score <= 3:
		return common.DifficultyEasy
	case score <= 6:
		return common.DifficultyMedium
	default:
		return common.DifficultyHard
	}
}

func sizeBucket(n int) int {
	switch {
	case n <= 5:
		return 1
	case n <= 10:
		return 2
	default:
		return 3
	}
}

// Package catalog 保存可辨識的菜名表、物件偵測類別與備用食譜模板
package catalog

import "strings"

// FoodCategories 模擬模型可辨識的菜名
var FoodCategories = []string{
	"pizza", "pasta", "burger", "salad", "sushi", "steak", "chicken", "fish",
	"soup", "sandwich", "taco", "burrito", "curry", "rice", "noodle", "cake",
	"cookie", "pie", "ice cream", "chocolate", "bread", "pancake", "waffle",
	"donut", "muffin", "croissant", "bagel", "pretzel", "lasagna", "risotto",
	"paella", "ramen", "pho", "bibimbap", "sashimi", "tempura", "dumpling",
	"spring roll", "falafel", "hummus", "kebab", "biryani", "tandoori",
	"enchilada", "quesadilla", "guacamole", "nachos", "chili", "gumbo",
	"jambalaya", "couscous", "moussaka", "gyro", "souvlaki", "tiramisu",
	"cheesecake", "brownie", "macaron", "cupcake", "crepe", "churro",
}

// DetectorClasses 模擬物件偵測器可輸出的類別
var DetectorClasses = []string{
	"pizza", "hot dog", "sandwich", "burger", "banana", "apple", "orange",
	"broccoli", "carrot", "donut", "cake", "bowl", "salad", "sushi", "pasta",
	"steak", "soup", "rice", "bread", "cookie",
}

// MatchCategory 在文字中以整字比對尋找菜名（不分大小寫，允許複數 s）
// 多個命中時取最長的菜名
func MatchCategory(text string) (string, bool) {
	return matchWords(text, FoodCategories)
}

func matchWords(text string, words []string) (string, bool) {
	padded := " " + normalizeWords(text) + " "
	best := ""
	for _, w := range words {
		if len(w) <= len(best) {
			continue
		}
		if strings.Contains(padded, " "+w+" ") || strings.Contains(padded, " "+w+"s ") {
			best = w
		}
	}
	return best, best != ""
}

// normalizeWords 轉小寫並把非字母字元換成單一空白
func normalizeWords(text string) string {
	var sb strings.Builder
	space := true
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			sb.WriteRune(r)
			space = false
			continue
		}
		if !space {
			sb.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(sb.String())
}

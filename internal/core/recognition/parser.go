package recognition

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"dish-lens/internal/pkg/common"
)

// ErrParseFailure 視覺模型的回覆既不是 JSON 也找不到菜名
var ErrParseFailure = errors.New("malformed vision response")

// visionPrompt 要求模型只回傳 JSON
const visionPrompt = `Identify the food dish in this image. Respond in JSON format with the following structure: {"dish": "name of the dish", "description": "brief description of the dish", "confidence": number between 0 and 1 representing your confidence}. Only respond with this JSON object and nothing else.`

const (
	defaultJSONConfidence  = 0.9
	defaultRegexConfidence = 0.7
	regexDescriptionLimit  = 200
)

var fallbackPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)dish[:\s]+"?([^"]+)"?`),
	regexp.MustCompile(`(?i)food[:\s]+"?([^"]+)"?`),
}

// VisionAnswer 解析後的模型回覆
type VisionAnswer struct {
	Dish        string
	Description string
	Confidence  float64
}

// visionJSON confidence 以指標判斷是否缺值
type visionJSON struct {
	Dish        string   `json:"dish"`
	Description string   `json:"description"`
	Confidence  *float64 `json:"confidence"`
}

// ParseVisionResponse 先取第一個 {...} 區塊當 JSON 解析，失敗再用正規表示式找菜名
func ParseVisionResponse(text string) (VisionAnswer, error) {
	text = common.StripCodeFences(text)
	if strings.TrimSpace(text) == "" {
		return VisionAnswer{}, fmt.Errorf("%w: empty response", ErrParseFailure)
	}

	if answer, ok := parseVisionJSON(text); ok {
		return answer, nil
	}

	for _, re := range fallbackPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		dish := strings.TrimSpace(m[1])
		if dish == "" {
			continue
		}
		return VisionAnswer{
			Dish:        dish,
			Description: truncate(text, regexDescriptionLimit) + "...",
			Confidence:  defaultRegexConfidence,
		}, nil
	}

	return VisionAnswer{}, ErrParseFailure
}

func parseVisionJSON(text string) (VisionAnswer, bool) {
	block, ok := common.ExtractJSONObject(text)
	if !ok {
		return VisionAnswer{}, false
	}

	var parsed visionJSON
	if err := common.ParseJSON(block, &parsed); err != nil {
		return VisionAnswer{}, false
	}
	dish := strings.TrimSpace(parsed.Dish)
	if dish == "" {
		return VisionAnswer{}, false
	}

	confidence := defaultJSONConfidence
	if parsed.Confidence != nil && *parsed.Confidence > 0 {
		confidence = clamp01(*parsed.Confidence)
	}

	description := strings.TrimSpace(parsed.Description)
	if description == "" {
		description = fmt.Sprintf("A delicious %s dish.", dish)
	}

	return VisionAnswer{Dish: dish, Description: description, Confidence: confidence}, true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// toResult 將解析結果轉成辨識結果
func (a VisionAnswer) toResult(provider string) common.RecognitionResult {
	return common.RecognitionResult{
		Success:     true,
		DishName:    a.Dish,
		Confidence:  a.Confidence,
		Description: a.Description,
		Provider:    provider,
	}
}

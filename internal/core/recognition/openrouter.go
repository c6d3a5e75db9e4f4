package recognition

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"dish-lens/internal/infrastructure/config"
	"dish-lens/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// OpenRouterRecognizer 經由 OpenRouter（OpenAI 相容的 chat completions）辨識菜名
type OpenRouterRecognizer struct {
	apiKey    string
	model     string
	maxTokens int
	client    *resty.Client
}

// NewOpenRouterRecognizer 創建 OpenRouter 辨識器
func NewOpenRouterRecognizer(cfg config.OpenRouterConfig) *OpenRouterRecognizer {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("HTTP-Referer", "https://dish-lens.app").
		SetHeader("X-Title", "Dish Lens")

	return &OpenRouterRecognizer{
		apiKey:    strings.TrimSpace(cfg.APIKey),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		client:    client,
	}
}

// Name 辨識器名稱
func (o *OpenRouterRecognizer) Name() string { return config.ProviderOpenRouter }

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Recognize 以圖片 data URI 呼叫模型並解析回覆
func (o *OpenRouterRecognizer) Recognize(ctx context.Context, img Image) (common.RecognitionResult, error) {
	if o.apiKey == "" {
		return common.RecognitionResult{}, fmt.Errorf("%w: OPENROUTER_API_KEY is empty", ErrProviderUnavailable)
	}

	imageURL := common.ToDataURI(img.MIMEType, img.Data)
	common.LogDebug("OpenRouter image_url", zap.Int("data_uri_length", len(imageURL)), zap.String("model", o.model))

	req := map[string]interface{}{
		"model": o.model,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": visionPrompt},
					{"type": "image_url", "image_url": map[string]string{"url": imageURL}},
				},
			},
		},
		"max_tokens": o.maxTokens,
	}

	var result chatCompletionResponse
	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post("/chat/completions")
	if err != nil {
		return common.RecognitionResult{}, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return common.RecognitionResult{}, fmt.Errorf("OpenRouter API returned status %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}
	if len(result.Choices) == 0 {
		return common.RecognitionResult{}, fmt.Errorf("no choices in OpenRouter response")
	}

	answer, err := ParseVisionResponse(result.Choices[0].Message.Content)
	if err != nil {
		return common.RecognitionResult{}, fmt.Errorf("openrouter: %w", err)
	}
	return answer.toResult(o.Name()), nil
}

package recognition

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dish-lens/internal/infrastructure/config"
	"dish-lens/internal/pkg/common"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiRecognizer 以 Gemini 視覺模型辨識菜名
type GeminiRecognizer struct {
	apiKey  string
	model   string
	timeout time.Duration

	// generate 取得模型的文字回覆，測試時替換
	generate func(ctx context.Context, img Image) (string, error)
}

// NewGeminiRecognizer 創建 Gemini 辨識器
func NewGeminiRecognizer(cfg config.GeminiConfig) *GeminiRecognizer {
	g := &GeminiRecognizer{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		model:   strings.TrimSpace(cfg.Model),
		timeout: cfg.Timeout,
	}
	g.generate = g.generateContent
	return g
}

// Name 辨識器名稱
func (g *GeminiRecognizer) Name() string { return config.ProviderGemini }

// Recognize 呼叫 Gemini 並解析回覆
func (g *GeminiRecognizer) Recognize(ctx context.Context, img Image) (common.RecognitionResult, error) {
	if g.apiKey == "" {
		return common.RecognitionResult{}, fmt.Errorf("%w: GEMINI_API_KEY is empty", ErrProviderUnavailable)
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	text, err := g.generate(ctx, img)
	if err != nil {
		return common.RecognitionResult{}, fmt.Errorf("gemini: %w", err)
	}

	answer, err := ParseVisionResponse(text)
	if err != nil {
		return common.RecognitionResult{}, fmt.Errorf("gemini: %w", err)
	}
	return answer.toResult(g.Name()), nil
}

func (g *GeminiRecognizer) generateContent(ctx context.Context, img Image) (string, error) {
	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(g.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0.4),
		TopK:             ptrInt32(32),
		TopP:             ptrFloat32(1),
		MaxOutputTokens:  ptrInt32(4096),
		ResponseMIMEType: "application/json",
	}

	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	resp, err := m.GenerateContent(ctx,
		genai.Text(visionPrompt),
		&genai.Blob{MIMEType: mimeType, Data: img.Data},
	)
	if err != nil {
		return "", err
	}

	txt := firstText(resp)
	if txt == "" {
		return "", fmt.Errorf("empty response")
	}
	return txt, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
func ptrInt32(v int32) *int32       { return &v }

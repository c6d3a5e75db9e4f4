package recognition

import (
	"fmt"
	"math/rand/v2"

	"dish-lens/internal/infrastructure/config"
	"dish-lens/internal/pkg/common"

	"go.uber.org/zap"
)

// BuildProviders 依設定的順序建立辨識器，未設定 API key 的遠端辨識器會被略過
// src 不為 nil 時，各模擬辨識器由它衍生出各自的亂數來源
func BuildProviders(cfg *config.Config, src rand.Source) ([]Recognizer, error) {
	latency := cfg.Recognition.SimulatedLatency
	var seed *rand.Rand
	if src != nil {
		seed = rand.New(src)
	}
	childSource := func() rand.Source {
		if seed == nil {
			return nil
		}
		return rand.NewPCG(seed.Uint64(), seed.Uint64())
	}
	providers := make([]Recognizer, 0, len(cfg.Recognition.Providers))

	for _, name := range cfg.Recognition.Providers {
		switch name {
		case config.ProviderGemini:
			if cfg.Gemini.APIKey == "" {
				common.LogInfo("Gemini API key 未設定，略過辨識器", zap.String("provider", name))
				continue
			}
			providers = append(providers, NewGeminiRecognizer(cfg.Gemini))
		case config.ProviderOpenRouter:
			if cfg.OpenRouter.APIKey == "" {
				common.LogInfo("OpenRouter API key 未設定，略過辨識器", zap.String("provider", name))
				continue
			}
			providers = append(providers, NewOpenRouterRecognizer(cfg.OpenRouter))
		case config.ProviderFilename:
			providers = append(providers, NewFilenameRecognizer())
		case config.ProviderLocalModel:
			providers = append(providers, NewLocalModelRecognizer(latency, childSource()))
		case config.ProviderDetector:
			providers = append(providers, NewObjectDetectorRecognizer(latency, childSource()))
		default:
			return nil, fmt.Errorf("unknown recognition provider %q", name)
		}
	}

	return providers, nil
}

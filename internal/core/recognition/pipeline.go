package recognition

import (
	"context"
	"fmt"
	"time"

	"dish-lens/internal/pkg/common"
	"dish-lens/internal/pkg/metrics"

	"go.uber.org/zap"
)

// DefaultSentinelConfidence 所有辨識器都沒有結果時回報的信心值
const DefaultSentinelConfidence = 0.7

// Pipeline 依固定順序逐一調用辨識器，第一個可用結果即返回
type Pipeline struct {
	providers          []Recognizer
	sentinelConfidence float64
	metrics            *metrics.Collector
}

// PipelineOption Pipeline 選項
type PipelineOption func(*Pipeline)

// WithSentinelConfidence 設定預設結果的信心值
func WithSentinelConfidence(c float64) PipelineOption {
	return func(p *Pipeline) { p.sentinelConfidence = c }
}

// WithMetrics 設定指標收集器
func WithMetrics(m *metrics.Collector) PipelineOption {
	return func(p *Pipeline) { p.metrics = m }
}

// NewPipeline 創建辨識流程，providers 的順序即優先順序
func NewPipeline(providers []Recognizer, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		providers:          append([]Recognizer(nil), providers...),
		sentinelConfidence: DefaultSentinelConfidence,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Providers 依優先順序回傳辨識器名稱
func (p *Pipeline) Providers() []string {
	names := make([]string, 0, len(p.providers))
	for _, r := range p.providers {
		names = append(names, r.Name())
	}
	return names
}

// Identify 永遠回傳成功的結果；全部失敗時菜名為 "dish"
func (p *Pipeline) Identify(ctx context.Context, img Image) common.RecognitionResult {
	for _, r := range p.providers {
		if ctx.Err() != nil {
			common.LogWarn("辨識已取消，略過其餘辨識器", zap.Error(ctx.Err()))
			break
		}

		start := time.Now()
		result, err := p.call(ctx, r, img)
		duration := time.Since(start)
		common.LogProviderCall(r.Name(), duration, err)

		switch {
		case err != nil:
			p.metrics.Recognition(r.Name(), metrics.OutcomeFailed, duration)
		case !result.IsUsable():
			p.metrics.Recognition(r.Name(), metrics.OutcomeSentinel, duration)
			common.LogDebug("辨識器沒有可用結果", zap.String("provider", r.Name()), zap.String("dish", result.DishName))
		default:
			p.metrics.Recognition(r.Name(), metrics.OutcomeUsable, duration)
			if result.Provider == "" {
				result.Provider = r.Name()
			}
			common.LogInfo("辨識完成",
				zap.String("provider", result.Provider),
				zap.String("dish", result.DishName),
				zap.Float64("confidence", result.Confidence),
			)
			return result
		}
	}

	common.LogWarn("所有辨識器都沒有結果，使用預設菜名")
	return common.RecognitionResult{
		Success:    true,
		DishName:   common.SentinelDish,
		Confidence: p.sentinelConfidence,
	}
}

// call 將 panic 轉成錯誤，單一辨識器的問題不影響整條流程
func (p *Pipeline) call(ctx context.Context, r Recognizer, img Image) (result common.RecognitionResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("provider %s panicked: %v", r.Name(), rec)
		}
	}()
	return r.Recognize(ctx, img)
}

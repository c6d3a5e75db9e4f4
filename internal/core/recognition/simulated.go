package recognition

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"dish-lens/internal/core/catalog"
	"dish-lens/internal/infrastructure/config"
	"dish-lens/internal/pkg/common"
)

// 沒有分數來源的辨識器使用固定信心值
const (
	filenameConfidence    = 0.6
	detectorMinConfidence = 0.5
	detectorConfRange     = 0.3
)

// lockedRand 讓同一個亂數來源可被多個請求共用
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand(src rand.Source) *lockedRand {
	if src == nil {
		src = rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())
	}
	return &lockedRand{r: rand.New(src)}
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// LocalModelRecognizer 模擬的本地分類模型：從菜名表隨機挑選
type LocalModelRecognizer struct {
	categories []string
	latency    time.Duration
	rng        *lockedRand
}

// NewLocalModelRecognizer 創建模擬本地模型，src 為 nil 時以時間播種
func NewLocalModelRecognizer(latency time.Duration, src rand.Source) *LocalModelRecognizer {
	return &LocalModelRecognizer{
		categories: catalog.FoodCategories,
		latency:    latency,
		rng:        newLockedRand(src),
	}
}

// Name 辨識器名稱
func (l *LocalModelRecognizer) Name() string { return config.ProviderLocalModel }

// Recognize 信心值落在 [0.70, 0.99)，另附 2 到 4 個較低分的候選
func (l *LocalModelRecognizer) Recognize(ctx context.Context, _ Image) (common.RecognitionResult, error) {
	if err := sleepCtx(ctx, l.latency); err != nil {
		return common.RecognitionResult{}, err
	}

	n := len(l.categories)
	idx := l.rng.IntN(n)
	dish := l.categories[idx]
	confidence := 0.7 + l.rng.Float64()*0.29

	predictions := []common.Prediction{{Name: dish, Probability: confidence}}
	extra := 2 + l.rng.IntN(3)
	for i := 0; i < extra; i++ {
		p := confidence - (0.1 + l.rng.Float64()*0.3)
		if p < 0.1 {
			p = 0.1
		}
		predictions = append(predictions, common.Prediction{
			Name:        l.categories[(idx+i+1)%n],
			Probability: p,
		})
	}
	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Probability > predictions[j].Probability
	})

	return common.RecognitionResult{
		Success:        true,
		DishName:       dish,
		Confidence:     confidence,
		Provider:       l.Name(),
		AllPredictions: predictions,
	}, nil
}

// ObjectDetectorRecognizer 模擬的物件偵測器：偵測 1 到 3 個不重複類別，取第一個
type ObjectDetectorRecognizer struct {
	classes []string
	latency time.Duration
	rng     *lockedRand
}

// NewObjectDetectorRecognizer 創建模擬物件偵測器
func NewObjectDetectorRecognizer(latency time.Duration, src rand.Source) *ObjectDetectorRecognizer {
	return &ObjectDetectorRecognizer{
		classes: catalog.DetectorClasses,
		latency: latency,
		rng:     newLockedRand(src),
	}
}

// Name 辨識器名稱
func (d *ObjectDetectorRecognizer) Name() string { return config.ProviderDetector }

// Detect 回傳偵測到的類別，內部失敗時只回傳佔位菜名
func (d *ObjectDetectorRecognizer) Detect(ctx context.Context) []string {
	if err := sleepCtx(ctx, d.latency); err != nil || len(d.classes) == 0 {
		return []string{common.SentinelDish}
	}

	draws := d.rng.IntN(3) + 1
	items := make([]string, 0, draws)
	for i := 0; i < draws; i++ {
		item := d.classes[d.rng.IntN(len(d.classes))]
		if !slices.Contains(items, item) {
			items = append(items, item)
		}
	}
	return items
}

// Recognize 以第一個偵測到的類別作為菜名
func (d *ObjectDetectorRecognizer) Recognize(ctx context.Context, _ Image) (common.RecognitionResult, error) {
	items := d.Detect(ctx)
	if err := ctx.Err(); err != nil {
		return common.RecognitionResult{}, err
	}

	confidence := detectorMinConfidence + d.rng.Float64()*detectorConfRange
	predictions := make([]common.Prediction, 0, len(items))
	for _, item := range items {
		predictions = append(predictions, common.Prediction{Name: item, Probability: confidence})
	}

	return common.RecognitionResult{
		Success:        true,
		DishName:       items[0],
		Confidence:     confidence,
		Provider:       d.Name(),
		AllPredictions: predictions,
	}, nil
}

// FilenameRecognizer 由上傳檔名中的菜名關鍵字猜測
type FilenameRecognizer struct{}

// NewFilenameRecognizer 創建檔名辨識器
func NewFilenameRecognizer() *FilenameRecognizer { return &FilenameRecognizer{} }

// Name 辨識器名稱
func (FilenameRecognizer) Name() string { return config.ProviderFilename }

// Recognize 檔名沒有命中任何菜名時回傳 Success=false
func (f FilenameRecognizer) Recognize(_ context.Context, img Image) (common.RecognitionResult, error) {
	base := strings.TrimSuffix(filepath.Base(img.Filename), filepath.Ext(img.Filename))
	dish, ok := catalog.MatchCategory(base)
	if !ok {
		return common.RecognitionResult{
			Success:     false,
			Provider:    f.Name(),
			ErrorReason: "no known dish in file name",
		}, nil
	}
	return common.RecognitionResult{
		Success:    true,
		DishName:   dish,
		Confidence: filenameConfidence,
		Provider:   f.Name(),
	}, nil
}

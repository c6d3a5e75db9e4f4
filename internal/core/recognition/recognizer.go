// Package recognition 以多個辨識器依序猜測照片中的菜名
package recognition

import (
	"context"
	"errors"
	"time"

	"dish-lens/internal/pkg/common"
)

// ErrProviderUnavailable 辨識器未設定或暫時無法使用
var ErrProviderUnavailable = errors.New("recognition provider unavailable")

// Image 待辨識的圖片；大小與格式由上游驗證
type Image struct {
	Data     []byte
	MIMEType string
	Filename string
}

// Recognizer 辨識器共同介面
// 回傳 error 代表這次調用失敗，Pipeline 會記錄後改試下一個
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, img Image) (common.RecognitionResult, error)
}

// sleepCtx 模擬延遲，ctx 取消時提前返回
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

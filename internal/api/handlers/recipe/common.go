package recipe

import (
	"strings"

	"dish-lens/internal/core/dish"
)

// Handler 辨識、食譜與個人資料的 HTTP 處理器
type Handler struct {
	svc *dish.Service
}

// NewHandler 創建處理器
func NewHandler(svc *dish.Service) *Handler {
	return &Handler{svc: svc}
}

// getImageType 獲取圖片類型（用於日誌記錄）
func getImageType(contentType string) string {
	switch {
	case contentType == "":
		return "empty"
	case strings.HasPrefix(contentType, "image/"):
		return strings.TrimPrefix(contentType, "image/")
	default:
		return "unknown_format"
	}
}

package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"net/http"
	"slices"
	"strings"

	_ "image/gif"  // 支援 GIF
	_ "image/jpeg" // 支援 JPEG
	_ "image/png"  // 支援 PNG

	_ "golang.org/x/image/webp" // 支援 WebP

	"dish-lens/internal/infrastructure/config"
	"dish-lens/internal/pkg/common"
)

// DefaultAllowedTypes 預設允許的圖片類型
var DefaultAllowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Upload 通過驗證的上傳圖片
type Upload struct {
	Data     []byte
	MIMEType string
	Format   string
	Width    int
	Height   int
}

// DataURI 將圖片轉為 data URI，作為食譜的圖片引用
func (u *Upload) DataURI() string {
	return common.ToDataURI(u.MIMEType, u.Data)
}

// Service 圖片處理服務
type Service struct {
	maxSizeBytes int64
	allowedTypes []string
}

// NewService 創建新的圖片處理服務
func NewService(cfg config.ImageConfig) *Service {
	allowed := cfg.AllowedTypes
	if len(allowed) == 0 {
		allowed = DefaultAllowedTypes
	}
	return &Service{
		maxSizeBytes: cfg.MaxSizeBytes,
		allowedTypes: allowed,
	}
}

// MaxSizeBytes 單張圖片的大小上限
func (s *Service) MaxSizeBytes() int64 {
	return s.maxSizeBytes
}

// Validate 驗證圖片：大小、類型、可解碼
// declaredType 為上傳時宣告的 Content-Type，可為空
func (s *Service) Validate(data []byte, declaredType string) (*Upload, error) {
	if len(data) == 0 {
		return nil, common.ErrNoImage
	}

	// 檢查文件大小
	if s.maxSizeBytes > 0 && int64(len(data)) > s.maxSizeBytes {
		return nil, common.ErrInvalidImageSize.Wrap(
			fmt.Errorf("image size %d exceeds maximum limit of %d bytes", len(data), s.maxSizeBytes))
	}

	// 宣告類型不在允許清單時直接拒絕
	declared := normalizeMIME(declaredType)
	if declared != "" && declared != "application/octet-stream" && !s.isAllowed(declared) {
		return nil, common.ErrInvalidImageType.Wrap(fmt.Errorf("unsupported image type: %s", declared))
	}

	// 以內容判斷實際類型
	sniffed := normalizeMIME(http.DetectContentType(data))
	if !s.isAllowed(sniffed) {
		return nil, common.ErrInvalidImageType.Wrap(fmt.Errorf("unsupported image content: %s", sniffed))
	}

	// 解碼圖片標頭
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, common.ErrInvalidImageType.Wrap(fmt.Errorf("failed to decode image: %w", err))
	}
	if !isSupportedFormat(format) {
		return nil, common.ErrInvalidImageType.Wrap(fmt.Errorf("unsupported image format: %s", format))
	}

	return &Upload{
		Data:     data,
		MIMEType: sniffed,
		Format:   format,
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}

// DecodeDataURI 解析 data:image/...;base64, 格式並驗證
func (s *Service) DecodeDataURI(uri string) (*Upload, error) {
	if !strings.HasPrefix(uri, "data:image/") {
		return nil, common.ErrInvalidImageType.Wrap(fmt.Errorf("invalid image data format"))
	}

	// 解析 base64 數據
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, common.ErrInvalidImageType.Wrap(fmt.Errorf("invalid base64 data format"))
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, common.ErrInvalidImageType.Wrap(fmt.Errorf("failed to decode base64 data: %w", err))
	}

	declared := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	return s.Validate(decoded, declared)
}

func (s *Service) isAllowed(mimeType string) bool {
	return slices.Contains(s.allowedTypes, mimeType)
}

// normalizeMIME 去掉參數並轉小寫，image/jpg 視為 image/jpeg
func normalizeMIME(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType == "image/jpg" || mimeType == "image/pjpeg" {
		return "image/jpeg"
	}
	return mimeType
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	supportedFormats := map[string]bool{
		"jpeg": true,
		"png":  true,
		"gif":  true,
		"webp": true,
	}
	return supportedFormats[format]
}

package recipe

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"dish-lens/internal/api/handlers"
	"dish-lens/internal/core/dish"
	"dish-lens/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdentifyJSONRequest 以 JSON 上傳圖片
// image: data:image/...;base64,...
type IdentifyJSONRequest struct {
	Image    string `json:"image"`
	Filename string `json:"filename,omitempty"`
}

// HandleIdentify 處理 /dish/identify 食物辨識 API
// 接受 multipart 欄位 image，或 JSON 的 data URI
func (h *Handler) HandleIdentify(c *gin.Context) {
	requestID := requestid.Get(c)
	common.LogInfo("開始處理食物辨識請求",
		zap.String("request_id", requestID),
		zap.String("client_ip", c.ClientIP()),
		zap.String("content_type", c.ContentType()),
	)

	var (
		result *dish.IdentifyResult
		err    error
	)
	if c.ContentType() == gin.MIMEJSON {
		var req IdentifyJSONRequest
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			handlers.RespondError(c, common.ErrInvalidRequest.Wrap(bindErr))
			return
		}
		result, err = h.svc.IdentifyDataURI(c.Request.Context(), req.Image, req.Filename)
	} else {
		fh, formErr := c.FormFile("image")
		if formErr != nil {
			var maxErr *http.MaxBytesError
			if errors.As(formErr, &maxErr) {
				handlers.RespondError(c, common.ErrInvalidImageSize.Wrap(formErr))
				return
			}
			common.LogWarn("請求沒有圖片",
				zap.String("request_id", requestID),
				zap.Error(formErr),
			)
			handlers.RespondError(c, common.ErrNoImage)
			return
		}

		data, readErr := readFormFile(fh)
		if readErr != nil {
			handlers.RespondError(c, common.ErrImageProcessFailed.Wrap(readErr))
			return
		}

		declared := fh.Header.Get("Content-Type")
		common.LogDebug("收到上傳圖片",
			zap.String("request_id", requestID),
			zap.String("image_type", getImageType(declared)),
			zap.Int("image_length", len(data)),
			zap.String("filename", fh.Filename),
		)
		result, err = h.svc.Identify(c.Request.Context(), data, declared, fh.Filename)
	}

	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	common.LogInfo("食物辨識成功", zap.String("request_id", requestID))
	c.JSON(http.StatusOK, result)
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Package handlers 放各 HTTP 處理器共用的回應工具
package handlers

import (
	"dish-lens/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondError 將錯誤轉為統一的 JSON 錯誤回應
func RespondError(c *gin.Context, err error) {
	ce := common.AsCustomError(err)
	if ce.Status >= 500 {
		common.LogError("請求處理失敗",
			zap.String("code", ce.Code),
			zap.String("request_id", requestid.Get(c)),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(ce.Status, common.NewErrorResponse(ce, gin.IsDebugging()))
}

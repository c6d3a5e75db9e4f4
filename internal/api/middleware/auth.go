package middleware

import (
	"strings"

	"dish-lens/internal/core/auth"
	"dish-lens/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionContextKey = "session"

// TokenValidator 驗證 bearer token
type TokenValidator interface {
	ValidateToken(token string) (*common.Session, error)
}

// OptionalAuth 有合法 token 時帶入會話，沒有或不合法時以匿名身分繼續
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" || validator == nil {
			c.Next()
			return
		}

		session, err := validator.ValidateToken(token)
		if err != nil {
			common.LogDebug("token 驗證失敗，以匿名身分處理",
				zap.String("request_id", requestid.Get(c)),
				zap.Error(err),
			)
			c.Next()
			return
		}

		c.Set(sessionContextKey, session)
		c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), session))
		c.Next()
	}
}

// SessionFrom 取出目前請求的會話，匿名時回傳 nil
func SessionFrom(c *gin.Context) *common.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	s, _ := v.(*common.Session)
	return s
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

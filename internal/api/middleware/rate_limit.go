package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"dish-lens/internal/infrastructure/config"
	"dish-lens/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxTrackedClients 超過時清掉閒置的限流器
const maxTrackedClients = 10000

// RateLimiter 令牌桶限流器
type RateLimiter struct {
	limiter *rate.Limiter
	now     func() time.Time
}

// NewRateLimiter 創建新的限流器，window 內最多 requests 次，令牌連續補充
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return newRateLimiter(requests, window, time.Now)
}

func newRateLimiter(requests int, window time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(requests)/window.Seconds()), requests),
		now:     now,
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow() bool {
	return rl.limiter.AllowN(rl.now(), 1)
}

// idle 令牌已補滿，等同從未使用過
func (rl *RateLimiter) idle(now time.Time) bool {
	return rl.limiter.TokensAt(now) >= float64(rl.limiter.Burst())
}

// KeyedRateLimiter 每個客戶端各自一個令牌桶
type KeyedRateLimiter struct {
	mu       sync.Mutex
	requests int
	window   time.Duration
	limiters map[string]*RateLimiter
	now      func() time.Time
}

// NewKeyedRateLimiter 創建依客戶端區分的限流器
func NewKeyedRateLimiter(requests int, window time.Duration) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		requests: requests,
		window:   window,
		limiters: make(map[string]*RateLimiter),
		now:      time.Now,
	}
}

// Allow 檢查指定客戶端是否允許請求
func (k *KeyedRateLimiter) Allow(key string) bool {
	k.mu.Lock()
	rl, ok := k.limiters[key]
	if !ok {
		if len(k.limiters) >= maxTrackedClients {
			k.pruneLocked()
		}
		rl = newRateLimiter(k.requests, k.window, k.now)
		k.limiters[key] = rl
	}
	k.mu.Unlock()

	return rl.Allow()
}

func (k *KeyedRateLimiter) pruneLocked() {
	now := k.now()
	for key, rl := range k.limiters {
		if rl.idle(now) {
			delete(k.limiters, key)
		}
	}
}

// RateLimit 限流中間件，登入使用者以 user id 計算，匿名以 IP 計算
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := NewKeyedRateLimiter(cfg.Requests, cfg.Window)

	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if s := SessionFrom(c); s != nil {
			key = "user:" + s.UserID
		}

		if !limiter.Allow(key) {
			common.LogInfo("Rate limit exceeded",
				zap.String("client", key),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", int(cfg.Window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"error":       common.ErrTooManyRequests.Message,
				"code":        common.ErrCodeTooManyRequests,
				"retry_after": cfg.Window.Seconds(),
			})
			return
		}

		c.Next()
	}
}

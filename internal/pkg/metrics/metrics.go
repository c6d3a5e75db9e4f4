// Package metrics 收集 HTTP、辨識與食譜解析的 Prometheus 指標
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 辨識結果標籤
const (
	OutcomeUsable   = "usable"
	OutcomeSentinel = "sentinel"
	OutcomeFailed   = "failed"
)

// Collector 指標收集器，nil 時所有方法皆為 no-op
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	recognitionsTotal   *prometheus.CounterVec
	recognitionDuration *prometheus.HistogramVec
	resolutionsTotal    *prometheus.CounterVec
	savedTogglesTotal   *prometheus.CounterVec
}

// New 以獨立的 registry 建立收集器
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := &Collector{
		registry: reg,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		recognitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dish_recognitions_total",
				Help: "Recognition attempts by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		recognitionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dish_recognition_duration_seconds",
				Help:    "Recognition provider latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"provider"},
		),
		resolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipe_resolutions_total",
				Help: "Recipe resolutions by source",
			},
			[]string{"source"},
		),
		savedTogglesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saved_recipe_toggles_total",
				Help: "Save toggles by resulting state",
			},
			[]string{"state"},
		),
	}

	reg.MustRegister(
		c.httpRequestsTotal,
		c.httpRequestDuration,
		c.recognitionsTotal,
		c.recognitionDuration,
		c.resolutionsTotal,
		c.savedTogglesTotal,
	)
	return c
}

// Registry 回傳底層 registry，供測試讀取
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// HTTPMiddleware gin 的 HTTP 指標中間件
func (c *Collector) HTTPMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if c == nil {
			ctx.Next()
			return
		}

		start := time.Now()
		ctx.Next()

		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		c.httpRequestsTotal.WithLabelValues(ctx.Request.Method, path, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.httpRequestDuration.WithLabelValues(ctx.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Recognition 記錄一次辨識器調用
func (c *Collector) Recognition(provider, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.recognitionsTotal.WithLabelValues(provider, outcome).Inc()
	c.recognitionDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// Resolution 記錄食譜來源（lookup / template / generic）
func (c *Collector) Resolution(source string) {
	if c == nil {
		return
	}
	c.resolutionsTotal.WithLabelValues(source).Inc()
}

// SavedToggle 記錄收藏切換後的狀態
func (c *Collector) SavedToggle(saved bool) {
	if c == nil {
		return
	}
	state := "unsaved"
	if saved {
		state = "saved"
	}
	c.savedTogglesTotal.WithLabelValues(state).Inc()
}

// Handler Prometheus 抓取端點
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

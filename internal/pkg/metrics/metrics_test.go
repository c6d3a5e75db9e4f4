package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorCounts(t *testing.T) {
	c := New()

	c.Recognition("gemini", OutcomeUsable, 10*time.Millisecond)
	c.Recognition("gemini", OutcomeFailed, time.Millisecond)
	c.Resolution("template")
	c.SavedToggle(true)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.recognitionsTotal.WithLabelValues("gemini", OutcomeUsable)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.recognitionsTotal.WithLabelValues("gemini", OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.resolutionsTotal.WithLabelValues("template")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.savedTogglesTotal.WithLabelValues("saved")))
}

func TestHTTPMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c := New()

	r := gin.New()
	r.Use(c.HTTPMiddleware())
	r.GET("/ping", func(ctx *gin.Context) { ctx.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(c.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues("GET", "/ping", "200")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector

	c.Recognition("x", OutcomeUsable, time.Second)
	c.Resolution("generic")
	c.SavedToggle(false)
	assert.Nil(t, c.Registry())

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(c.HTTPMiddleware())
	r.GET("/ping", func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

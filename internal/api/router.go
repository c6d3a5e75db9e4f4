package api

import (
	"errors"
	"time"

	"dish-lens/internal/api/handlers/health"
	recipeHandler "dish-lens/internal/api/handlers/recipe"
	"dish-lens/internal/api/middleware"
	"dish-lens/internal/core/cache"
	"dish-lens/internal/core/dish"
	"dish-lens/internal/core/store"
	"dish-lens/internal/infrastructure/config"
	"dish-lens/internal/pkg/common"
	"dish-lens/internal/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies 路由需要的服務
type Dependencies struct {
	Dish      *dish.Service
	Validator middleware.TokenValidator
	Metrics   *metrics.Collector
	Stores    *store.Stores
	Cache     *cache.Manager
	Providers []string
}

// SetupRouter 設置路由，回傳的 cleanup 需在關閉時調用
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, func(), error) {
	if deps.Dish == nil {
		return nil, nil, errors.New("dish service is required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(deps.Metrics.HTTPMiddleware())
	router.Use(middleware.OptionalAuth(deps.Validator))

	// 請求體大小限制與逾時
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg.App.Version, deps.Providers, deps.Stores, deps.Cache)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	dedup := middleware.NewDeduplicator(cfg.DedupWindow)
	h := recipeHandler.NewHandler(deps.Dish)

	// API 路由組
	api := router.Group("/api/v1")
	api.Use(middleware.RateLimit(cfg.RateLimit))
	{
		api.POST("/dish/identify", dedup.Middleware(), h.HandleIdentify)

		recipeGroup := api.Group("/recipes")
		{
			recipeGroup.GET("/:id", h.HandleGetRecipe)
			recipeGroup.POST("/:id/save", h.HandleToggleSave)
			recipeGroup.GET("/:id/saved", h.HandleIsSaved)
		}

		profileGroup := api.Group("/profile")
		{
			profileGroup.GET("", h.HandleGetProfile)
			profileGroup.PUT("", h.HandleUpdateProfile)
			profileGroup.GET("/recipes", h.HandleSavedRecipes)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Strings("providers", deps.Providers),
		zap.Bool("auth_enabled", deps.Validator != nil),
		zap.Bool("cache_enabled", deps.Cache != nil),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, dedup.Close, nil
}

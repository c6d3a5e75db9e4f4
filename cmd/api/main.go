package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dish-lens/internal/api"
	"dish-lens/internal/core/auth"
	"dish-lens/internal/core/cache"
	"dish-lens/internal/core/dish"
	"dish-lens/internal/core/image"
	"dish-lens/internal/core/recipe"
	"dish-lens/internal/core/recognition"
	"dish-lens/internal/core/store"
	"dish-lens/internal/infrastructure/config"
	"dish-lens/internal/pkg/common"
	"dish-lens/internal/pkg/metrics"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("gemini_api_key", config.MaskAPIKey(cfg.Gemini.APIKey)),
		zap.String("openrouter_api_key", config.MaskAPIKey(cfg.OpenRouter.APIKey)),
		zap.String("openrouter_model", cfg.OpenRouter.Model),
		zap.Strings("providers", cfg.Recognition.Providers),
		zap.String("store_backend", cfg.Store.Backend),
	)

	m := metrics.New()

	// 初始化儲存
	initCtx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	stores, err := store.NewStores(initCtx, cfg.Store)
	cancelInit()
	if err != nil {
		common.LogFatal("Failed to initialize stores", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			common.LogError("Failed to close stores", zap.Error(err))
		}
	}()

	// 初始化快取（關閉時為 nil）
	cacheManager := cache.NewManager(cfg.Cache)
	defer cacheManager.Close()

	// 外部食譜查詢
	var lookup recipe.Lookup
	if cfg.MealDB.Enabled {
		lookup = recipe.NewCachedLookup(recipe.NewMealDBClient(cfg.MealDB), cacheManager)
	}

	// 辨識流程
	providers, err := recognition.BuildProviders(cfg, nil)
	if err != nil {
		common.LogFatal("Failed to build recognition providers", zap.Error(err))
	}
	pipeline := recognition.NewPipeline(providers,
		recognition.WithSentinelConfidence(cfg.Recognition.SentinelConfidence),
		recognition.WithMetrics(m),
	)
	resolver := recipe.NewResolver(lookup, stores.Recipes, recipe.WithMetrics(m))
	dishService := dish.NewService(image.NewService(cfg.Image), pipeline, resolver, stores, m)

	validator := auth.NewValidator(cfg.Auth)
	if !validator.Enabled() {
		common.LogWarn("SUPABASE_JWT_SECRET 未設定，所有請求都視為匿名")
	}

	// 設置路由
	router, cleanup, err := api.SetupRouter(cfg, api.Dependencies{
		Dish:      dishService,
		Validator: validator,
		Metrics:   m,
		Stores:    stores,
		Cache:     cacheManager,
		Providers: pipeline.Providers(),
	})
	if err != nil {
		common.LogFatal("Failed to setup router", zap.Error(err))
	}
	defer cleanup()

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	serverErr := make(chan error, 1)
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		common.LogError("Failed to start server", zap.Error(err))
		return
	}

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}

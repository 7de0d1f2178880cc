package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"grocery-aggregator/internal/api/handlers/health"
	"grocery-aggregator/internal/api/handlers/shoppinglist"
	"grocery-aggregator/internal/api/middleware"
	"grocery-aggregator/internal/core/checked"
	"grocery-aggregator/internal/core/recipe"
	"grocery-aggregator/internal/infrastructure/config"
	"grocery-aggregator/internal/infrastructure/database"
	"grocery-aggregator/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter 設置路由，db 為 nil 時不持久化清單
func SetupRouter(cfg *config.Config, store checked.Store, db *database.DB) (*gin.Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("checked store is required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(requestid.New())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodySize))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 初始化服務
	var source recipe.Source
	if cfg.RecipeSource.Enabled {
		source = recipe.NewClient(cfg.RecipeSource)
	}
	var repo shoppinglist.ListRepository
	if db != nil {
		repo = db
	}
	listHandler := shoppinglist.NewHandler(store, source, repo)

	common.LogInfo("Services initialized",
		zap.String("checked_backend", cfg.Checked.Backend),
		zap.Bool("recipe_source_enabled", source != nil),
		zap.Bool("database_enabled", db != nil),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
	)

	// 全局中間件：設置超時和依賴
	timeout := cfg.Server.RequestTimeout
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set(health.ConfigKey, cfg)
		c.Set(health.CheckedStoreKey, store)
		if db != nil {
			c.Set(health.DatabaseKey, db)
		}

		c.Next()

		// 處理器未寫回應且已超時
		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeout),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrorResponse{
				Code:    common.ErrCodeRequestTimeout,
				Message: common.ErrRequestTimeout.Message,
			})
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		listGroup := api.Group("/shopping-list")
		{
			listGroup.POST("/build", listHandler.HandleBuildList)
			listGroup.GET("/checked", listHandler.HandleGetChecked)
			listGroup.PUT("/checked", listHandler.HandleSetChecked)
			listGroup.GET("/:id", listHandler.HandleGetList)
		}

		ingredientGroup := api.Group("/ingredients")
		{
			ingredientGroup.POST("/normalize", listHandler.HandleNormalize)
			ingredientGroup.POST("/categorize", listHandler.HandleCategorize)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Int64("max_body_size", cfg.Server.MaxBodySize),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
	)

	return router, nil
}

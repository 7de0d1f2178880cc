package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grocery-aggregator/internal/api"
	"grocery-aggregator/internal/core/checked"
	"grocery-aggregator/internal/infrastructure/config"
	"grocery-aggregator/internal/infrastructure/database"
	"grocery-aggregator/internal/pkg/common"

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
	if err := common.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("env", cfg.App.Env),
		zap.String("checked_backend", cfg.Checked.Backend),
		zap.Bool("database_enabled", cfg.Database.Enabled),
		zap.Bool("recipe_source_enabled", cfg.RecipeSource.Enabled),
	)

	ctx := context.Background()

	// 勾選狀態儲存
	store, err := checked.NewStore(ctx, cfg)
	if err != nil {
		common.LogFatal("Failed to initialize checked store", zap.Error(err))
	}
	defer store.Close()

	// 資料庫（選用）
	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.Connect(ctx, cfg.Database)
		if err != nil {
			common.LogFatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := database.RunMigrations(ctx, db); err != nil {
			common.LogFatal("Failed to run migrations", zap.Error(err))
		}
	}

	// 設置路由
	router, err := api.SetupRouter(cfg, store, db)
	if err != nil {
		common.LogFatal("Failed to setup router", zap.Error(err))
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("debug", cfg.App.Debug),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}

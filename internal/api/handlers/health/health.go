package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"grocery-aggregator/internal/infrastructure/config"
	"grocery-aggregator/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger 可測試連線的依賴
type Pinger interface {
	Ping(ctx context.Context) error
}

// context 鍵
const (
	ConfigKey       = "config"
	CheckedStoreKey = "checked_store"
	DatabaseKey     = "database"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Backend   string                 `json:"checked_backend"`
	Database  bool                   `json:"database_enabled"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// HealthCheck 健康檢查處理器
func HealthCheck(c *gin.Context) {
	value, exists := c.Get(ConfigKey)
	if !exists {
		common.LogError("Configuration not found in context")
		common.RespondError(c, common.ErrInternalError)
		return
	}
	cfg, ok := value.(*config.Config)
	if !ok {
		common.LogError("Invalid configuration type in context")
		common.RespondError(c, common.ErrInternalError)
		return
	}

	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   cfg.App.Version,
		Backend:   cfg.Checked.Backend,
		Database:  cfg.Database.Enabled,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：勾選狀態儲存與資料庫（若啟用）都必須可連線
func ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	ready := true
	for _, key := range []string{CheckedStoreKey, DatabaseKey} {
		value, exists := c.Get(key)
		if !exists {
			continue
		}
		p, ok := value.(Pinger)
		if !ok {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			common.LogWarn("Readiness check failed", zap.String("dependency", key), zap.Error(err))
			checks[key] = "unavailable"
			ready = false
			continue
		}
		checks[key] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"checks": checks,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"checks": checks,
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

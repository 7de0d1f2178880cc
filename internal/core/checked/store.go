package checked

import (
	"context"
	"fmt"

	"grocery-aggregator/internal/infrastructure/config"
)

// Store 使用者勾選狀態儲存，鍵為標準化食材名稱
type Store interface {
	Get(ctx context.Context, userID string) (map[string]bool, error)
	Set(ctx context.Context, userID, itemName string, checked bool) error
	Ping(ctx context.Context) error
	Close() error
}

// NewStore 依設定建立儲存後端
func NewStore(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Checked.Backend {
	case config.CheckedBackendMemory, "":
		return NewMemoryStore(cfg.Checked), nil
	case config.CheckedBackendRedis:
		return NewRedisStore(ctx, cfg.Redis, cfg.Checked.TTL)
	}
	return nil, fmt.Errorf("unknown checked backend %q", cfg.Checked.Backend)
}

package checked

import (
	"context"
	"fmt"
	"time"

	"grocery-aggregator/internal/infrastructure/config"
	"grocery-aggregator/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

const checkedKeyPrefix = "grocery:checked:"

// RedisStore 以 Redis hash 儲存勾選狀態
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 建立 Redis 儲存並測試連線
func NewRedisStore(ctx context.Context, cfg config.RedisConfig, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, ttl), nil
}

// NewRedisStoreWithClient 使用既有的 client
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get 讀取使用者的所有勾選狀態
func (s *RedisStore) Get(ctx context.Context, userID string) (map[string]bool, error) {
	values, err := s.client.HGetAll(ctx, checkedKey(userID)).Result()
	common.LogStoreAccess(config.CheckedBackendRedis, "get", userID, err)
	if err != nil {
		return nil, common.ErrStoreError.Wrap(fmt.Errorf("failed to get checked state: %w", err))
	}

	out := make(map[string]bool, len(values))
	for name, v := range values {
		out[name] = v == "1"
	}
	return out, nil
}

// Set 寫入單一項目並刷新整個 hash 的存活時間
func (s *RedisStore) Set(ctx context.Context, userID, itemName string, checked bool) error {
	key := checkedKey(userID)
	value := "0"
	if checked {
		value = "1"
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, itemName, value)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	common.LogStoreAccess(config.CheckedBackendRedis, "set", userID, err)
	if err != nil {
		return common.ErrStoreError.Wrap(fmt.Errorf("failed to set checked state: %w", err))
	}
	return nil
}

// Ping 測試連線
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return common.ErrStoreError.Wrap(err)
	}
	return nil
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func checkedKey(userID string) string {
	return checkedKeyPrefix + userID
}

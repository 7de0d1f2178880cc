package database

import (
	"context"
	"fmt"
	"time"

	"grocery-aggregator/internal/infrastructure/config"
	"grocery-aggregator/internal/pkg/common"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DB 資料庫連線池
type DB struct {
	Pool *pgxpool.Pool
}

// Connect 建立連線池並測試連線
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	// 連線池設定
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 && cfg.MinConns <= poolConfig.MaxConns {
		poolConfig.MinConns = cfg.MinConns
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// 測試連線
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	common.LogInfo("資料庫已連線",
		zap.Int32("max_conns", poolConfig.MaxConns),
		zap.Int32("min_conns", poolConfig.MinConns),
	)
	return &DB{Pool: pool}, nil
}

// Ping 測試連線
func (db *DB) Ping(ctx context.Context) error {
	if err := db.Pool.Ping(ctx); err != nil {
		return common.ErrDatabaseError.Wrap(err)
	}
	return nil
}

// Close 關閉連線池
func (db *DB) Close() {
	db.Pool.Close()
}

// migration 單一版本的 schema 變更
type migration struct {
	version int
	sql     string
}

// migrations 依版本順序執行
var migrations = []migration{
	{version: 1, sql: migration001},
}

// RunMigrations 執行尚未套用的 migration
func RunMigrations(ctx context.Context, db *DB) error {
	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists bool
		err := db.Pool.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)",
			m.version,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration %d: %w", m.version, err)
		}
		if exists {
			continue
		}

		common.LogInfo("套用 migration", zap.Int("version", m.version))
		if _, err := db.Pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", m.version, err)
		}

		_, err = db.Pool.Exec(ctx,
			"INSERT INTO schema_migrations (version) VALUES ($1)",
			m.version,
		)
		if err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
	}

	return nil
}

const migration001 = `
CREATE TABLE IF NOT EXISTS shopping_list_items (
    id BIGSERIAL PRIMARY KEY,
    shopping_list_id TEXT NOT NULL,
    recipe_id TEXT NOT NULL DEFAULT '',
    source_recipe_title TEXT NOT NULL DEFAULT '',
    item_name TEXT NOT NULL,
    original_text TEXT NOT NULL DEFAULT '',
    quantity_amount DOUBLE PRECISION,
    quantity_unit TEXT,
    display_unit TEXT,
    grocery_category TEXT,
    is_checked BOOLEAN NOT NULL DEFAULT FALSE,
    order_index INT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_shopping_list_items_list
    ON shopping_list_items (shopping_list_id, order_index);
`

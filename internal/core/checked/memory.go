package checked

import (
	"context"
	"sync"
	"time"

	"grocery-aggregator/internal/infrastructure/config"
	"grocery-aggregator/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryStore 記憶體勾選狀態儲存
type MemoryStore struct {
	config config.CheckedConfig
	mu     sync.RWMutex
	store  map[string]*userEntry
	stats  storeStats
	now    func() time.Time
	stop   chan struct{}
	once   sync.Once
}

// userEntry 單一使用者的勾選狀態
type userEntry struct {
	items       map[string]bool
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// storeStats 儲存統計
type storeStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewMemoryStore 建立記憶體儲存並啟動過期清理協程
func NewMemoryStore(cfg config.CheckedConfig) *MemoryStore {
	m := &MemoryStore{
		config: cfg,
		store:  make(map[string]*userEntry),
		now:    time.Now,
		stop:   make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go m.startCleanup()
	}

	common.LogInfo("勾選狀態儲存已初始化",
		zap.String("後端", config.CheckedBackendMemory),
		zap.Int("最大容量", cfg.MaxSize),
		zap.Duration("存活時間", cfg.TTL),
	)
	return m
}

// Get 取得使用者的勾選狀態，不存在時回傳空 map
func (m *MemoryStore) Get(ctx context.Context, userID string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]bool)
	entry, ok := m.store[userID]
	if !ok {
		m.stats.misses++
		return out, nil
	}
	now := m.now()
	if now.After(entry.expiresAt) {
		delete(m.store, userID)
		m.stats.evictions++
		m.stats.misses++
		return out, nil
	}

	entry.lastAccess = now
	entry.accessCount++
	m.stats.hits++
	for name, checked := range entry.items {
		out[name] = checked
	}
	common.LogStoreAccess(config.CheckedBackendMemory, "get", userID, nil)
	return out, nil
}

// Set 寫入單一項目的勾選狀態並延長存活時間
func (m *MemoryStore) Set(ctx context.Context, userID, itemName string, checked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry, ok := m.store[userID]
	if !ok || now.After(entry.expiresAt) {
		// 檢查容量
		if m.config.MaxSize > 0 && len(m.store) >= m.config.MaxSize {
			if evicted := m.cleanup(); evicted > 0 {
				common.LogInfo("勾選狀態清理執行", zap.Int("清理數量", evicted))
			}
			if len(m.store) >= m.config.MaxSize {
				m.evictLRU()
			}
		}
		entry = &userEntry{items: make(map[string]bool)}
		m.store[userID] = entry
	}

	entry.items[itemName] = checked
	entry.expiresAt = now.Add(m.config.TTL)
	entry.lastAccess = now

	common.LogStoreAccess(config.CheckedBackendMemory, "set", userID, nil)
	return nil
}

// Ping 記憶體後端永遠可用
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// startCleanup 定期清理過期項目
func (m *MemoryStore) startCleanup() {
	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanup()
			m.mu.Unlock()
		case <-m.stop:
			return
		}
	}
}

// cleanup 清理過期項目，呼叫端須持有寫鎖
func (m *MemoryStore) cleanup() int {
	now := m.now()
	count := 0
	for userID, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, userID)
			count++
			m.stats.evictions++
		}
	}

	if count > 0 {
		common.LogDebug("已清理過期勾選狀態",
			zap.Int("count", count),
			zap.Int64("total_evictions", m.stats.evictions),
			zap.Int("remaining_size", len(m.store)),
		)
	}
	return count
}

// evictLRU 淘汰最少使用的使用者
func (m *MemoryStore) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	var lowestAccessCount int

	for key, entry := range m.store {
		if oldestKey == "" ||
			entry.accessCount < lowestAccessCount ||
			(entry.accessCount == lowestAccessCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestAccessCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
		common.LogInfo("勾選狀態已淘汰(LRU)", zap.String("user_id", oldestKey))
	}
}

// GetStats 取得統計資訊
func (m *MemoryStore) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ratio := 0.0
	if total := m.stats.hits + m.stats.misses; total > 0 {
		ratio = float64(m.stats.hits) / float64(total)
	}
	return map[string]interface{}{
		"size":      len(m.store),
		"max_size":  m.config.MaxSize,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
		"hit_ratio": ratio,
	}
}

// Close 停止清理協程並清空資料
func (m *MemoryStore) Close() error {
	m.once.Do(func() { close(m.stop) })

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = make(map[string]*userEntry)
	common.LogInfo("勾選狀態儲存已關閉",
		zap.Int64("命中次數", m.stats.hits),
		zap.Int64("未命中次數", m.stats.misses),
		zap.Int64("淘汰次數", m.stats.evictions),
	)
	return nil
}

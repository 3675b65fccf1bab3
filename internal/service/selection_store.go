package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dujiao-next/storefront/internal/cache"
	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/repository"
)

// ShippingSelection 结算会话中已选的配送方式
type ShippingSelection struct {
	MethodID   string    `json:"method_id"`
	Price      string    `json:"price"`
	SelectedAt time.Time `json:"selected_at"`
}

// SelectionStore 配送选择存储
type SelectionStore interface {
	Get(ctx context.Context, session string) (*ShippingSelection, error)
	Save(ctx context.Context, session string, selection ShippingSelection) error
	Clear(ctx context.Context, session string) error
}

// NewSelectionStore Redis 可用时使用 Redis，否则退化为进程内存储
func NewSelectionStore(ttl time.Duration) SelectionStore {
	if cache.Enabled() {
		return NewRedisSelectionStore(ttl)
	}
	return NewMemorySelectionStore(ttl)
}

// SelectionStoreBackend 返回存储后端名称，用于启动日志
func SelectionStoreBackend(store SelectionStore) string {
	switch store.(type) {
	case *RedisSelectionStore:
		return "redis"
	case *MemorySelectionStore:
		return "memory"
	case nil:
		return "none"
	default:
		return "custom"
	}
}

// CheckoutSession 根据购物车归属生成结算会话标识
func CheckoutSession(owner repository.CartOwner) string {
	if owner.UserID != 0 {
		return fmt.Sprintf("user:%d", owner.UserID)
	}
	sessionID := strings.TrimSpace(owner.SessionID)
	if sessionID == "" {
		return ""
	}
	return "session:" + sessionID
}

func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return time.Duration(constants.DefaultSelectionTTLSec) * time.Second
	}
	return ttl
}

// RedisSelectionStore 基于 Redis 的配送选择存储
type RedisSelectionStore struct {
	ttl time.Duration
}

// NewRedisSelectionStore 创建 Redis 存储
func NewRedisSelectionStore(ttl time.Duration) *RedisSelectionStore {
	return &RedisSelectionStore{ttl: normalizeTTL(ttl)}
}

func selectionKey(session string) string {
	return constants.CheckoutSelectionKey + ":" + session
}

// Get 读取配送选择，不存在时返回 nil
func (s *RedisSelectionStore) Get(ctx context.Context, session string) (*ShippingSelection, error) {
	if session == "" {
		return nil, nil
	}
	var selection ShippingSelection
	hit, err := cache.GetJSON(ctx, selectionKey(session), &selection)
	if err != nil || !hit {
		return nil, err
	}
	return &selection, nil
}

// Save 写入配送选择
func (s *RedisSelectionStore) Save(ctx context.Context, session string, selection ShippingSelection) error {
	if session == "" {
		return nil
	}
	return cache.SetJSON(ctx, selectionKey(session), selection, s.ttl)
}

// Clear 删除配送选择
func (s *RedisSelectionStore) Clear(ctx context.Context, session string) error {
	if session == "" {
		return nil
	}
	return cache.Del(ctx, selectionKey(session))
}

type memorySelection struct {
	selection ShippingSelection
	expiresAt time.Time
}

// MemorySelectionStore 进程内配送选择存储
type MemorySelectionStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memorySelection
	now   func() time.Time
}

// NewMemorySelectionStore 创建进程内存储
func NewMemorySelectionStore(ttl time.Duration) *MemorySelectionStore {
	return &MemorySelectionStore{
		ttl:   normalizeTTL(ttl),
		items: make(map[string]memorySelection),
		now:   time.Now,
	}
}

// Get 读取配送选择，过期条目视为不存在
func (s *MemorySelectionStore) Get(_ context.Context, session string) (*ShippingSelection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[session]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.items, session)
		return nil, nil
	}
	selection := entry.selection
	return &selection, nil
}

// Save 写入配送选择
func (s *MemorySelectionStore) Save(_ context.Context, session string, selection ShippingSelection) error {
	if session == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[session] = memorySelection{selection: selection, expiresAt: s.now().Add(s.ttl)}
	return nil
}

// Clear 删除配送选择
func (s *MemorySelectionStore) Clear(_ context.Context, session string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, session)
	return nil
}

// Package shipping 提供配送方式目录：一次激活拉取一次远程集合，
// 并在加载完成时为尚未选择配送方式的调用方自动选中第一项。
package shipping

import (
	"context"
	"strings"
	"sync"

	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// State 目录状态
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Fetcher 配送方式集合数据源
type Fetcher interface {
	Fetch(ctx context.Context) ([]models.ShippingMethod, error)
}

// FetcherFunc 函数适配器
type FetcherFunc func(ctx context.Context) ([]models.ShippingMethod, error)

// Fetch 实现 Fetcher
func (f FetcherFunc) Fetch(ctx context.Context) ([]models.ShippingMethod, error) {
	return f(ctx)
}

// SelectFunc 选择回调：配送方式标识与数值价格
type SelectFunc func(methodID string, price decimal.Decimal)

// Snapshot 目录当前状态的只读副本
type Snapshot struct {
	State    State
	Methods  []models.ShippingMethod
	Selected string
	Message  string
}

// Option 目录选项
type Option func(*Catalog)

// WithOnSelect 设置选择回调。回调按顺序串行执行，不能在回调内调用 Select。
func WithOnSelect(fn SelectFunc) Option {
	return func(c *Catalog) {
		c.onSelect = fn
	}
}

// WithLogger 设置日志
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Catalog) {
		if log != nil {
			c.log = log
		}
	}
}

// Catalog 配送方式目录
type Catalog struct {
	fetcher  Fetcher
	onSelect SelectFunc
	log      *zap.SugaredLogger

	// notifyMu 保证"状态变更 + 回调"整体有序，迟到的默认选择不会覆盖手动选择
	notifyMu sync.Mutex

	mu         sync.Mutex
	state      State
	methods    []models.ShippingMethod
	selected   string
	message    string
	active     bool
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewCatalog 创建目录
func NewCatalog(fetcher Fetcher, opts ...Option) *Catalog {
	c := &Catalog{
		fetcher: fetcher,
		log:     logger.Named("shipping_catalog"),
		state:   StateIdle,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Activate 发起一次异步拉取；在 Deactivate 之前重复调用不会再次拉取
func (c *Catalog) Activate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	c.active = true
	c.generation++
	c.cancel = cancel
	c.done = make(chan struct{})
	c.state = StateLoading
	c.methods = nil
	c.message = ""

	go c.run(fetchCtx, cancel, c.generation, c.done)
}

// Deactivate 取消进行中的拉取，迟到的结果会被丢弃。
// 返回后不会再有回调执行，因此不能在选择回调内调用。
func (c *Catalog) Deactivate() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.active = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.generation++
	c.state = StateIdle
	c.methods = nil
	c.message = ""
}

// Wait 等待本次拉取结束（或 ctx 结束）并返回快照
func (c *Catalog) Wait(ctx context.Context) Snapshot {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}
	return c.Snapshot()
}

// Preselect 同步调用方已持有的选择，不触发回调
func (c *Catalog) Preselect(methodID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = strings.TrimSpace(methodID)
}

// Select 用户选择配送方式；标识不在当前集合中时静默忽略
func (c *Catalog) Select(methodID string) bool {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.state != StateReady {
		c.mu.Unlock()
		return false
	}
	id := strings.TrimSpace(methodID)
	method, ok := findMethod(c.methods, id)
	if !ok {
		c.mu.Unlock()
		c.log.Debugw("shipping_select_unknown_method", "method_id", id)
		return false
	}
	price, err := method.PriceDecimal()
	if err != nil {
		c.mu.Unlock()
		c.log.Warnw("shipping_select_price_invalid", "method_id", id, "price", method.Price, "error", err)
		return false
	}
	c.selected = id
	c.mu.Unlock()

	c.notify(id, price)
	return true
}

// Snapshot 返回当前状态
func (c *Catalog) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	methods := make([]models.ShippingMethod, len(c.methods))
	copy(methods, c.methods)
	return Snapshot{
		State:    c.state,
		Methods:  methods,
		Selected: c.selected,
		Message:  c.message,
	}
}

func (c *Catalog) run(ctx context.Context, cancel context.CancelFunc, generation uint64, done chan struct{}) {
	defer close(done)
	defer cancel()
	if c.fetcher == nil {
		c.resolve(generation, nil, ErrFetcherMissing)
		return
	}
	methods, err := c.fetcher.Fetch(ctx)
	c.resolve(generation, methods, err)
}

func (c *Catalog) resolve(generation uint64, methods []models.ShippingMethod, fetchErr error) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if generation != c.generation {
		c.mu.Unlock()
		c.log.Debugw("shipping_fetch_result_discarded", "generation", generation)
		return
	}
	if fetchErr != nil {
		c.state = StateError
		c.methods = nil
		c.message = describeFetchError(fetchErr)
		c.mu.Unlock()
		c.log.Warnw("shipping_fetch_failed", "error", fetchErr)
		return
	}

	c.state = StateReady
	c.methods = append([]models.ShippingMethod(nil), methods...)
	// 已有选择不在新集合中时视为未选择
	if c.selected != "" {
		if _, ok := findMethod(c.methods, c.selected); !ok {
			c.log.Infow("shipping_selection_stale", "method_id", c.selected)
			c.selected = ""
		}
	}
	// 在结果到达时检查是否已有选择，而不是在发起拉取时
	if c.selected != "" || len(c.methods) == 0 {
		c.mu.Unlock()
		return
	}
	first := c.methods[0]
	price, err := first.PriceDecimal()
	if err != nil {
		c.mu.Unlock()
		c.log.Warnw("shipping_default_price_invalid", "method_id", first.ID, "price", first.Price, "error", err)
		return
	}
	c.selected = first.ID
	c.mu.Unlock()

	c.log.Debugw("shipping_default_selected", "method_id", first.ID)
	c.notify(first.ID, price)
}

func (c *Catalog) notify(methodID string, price decimal.Decimal) {
	if c.onSelect != nil {
		c.onSelect(methodID, price)
	}
}

func findMethod(methods []models.ShippingMethod, id string) (models.ShippingMethod, bool) {
	if id == "" {
		return models.ShippingMethod{}, false
	}
	for _, method := range methods {
		if method.ID == id {
			return method, true
		}
	}
	return models.ShippingMethod{}, false
}

package pricing

import (
	"sync"

	"github.com/shopspring/decimal"
)

// State 订单汇总状态
type State string

const (
	StateLoading   State = "loading"
	StateEmpty     State = "empty"
	StatePopulated State = "populated"
)

// Summary 订单汇总输出
type Summary struct {
	State     State
	ItemCount int
	Subtotal  decimal.Decimal
	Shipping  decimal.Decimal
	Total     decimal.Decimal
}

// Option Aggregator 选项
type Option func(*Aggregator)

// WithListener 注册汇总变更监听。监听在持锁状态下被调用，不能回调 Aggregator。
func WithListener(fn func(Summary)) Option {
	return func(a *Aggregator) {
		a.listener = fn
	}
}

// Aggregator 订单汇总器：购物车或运费变化时重新计算
type Aggregator struct {
	mu       sync.Mutex
	view     CartView
	shipping decimal.Decimal
	summary  Summary
	listener func(Summary)
}

// NewAggregator 创建汇总器，初始为加载中状态
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		view:     Pending(),
		shipping: decimal.Zero,
		summary:  Summary{State: StateLoading},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// SetCart 更新购物车视图；输入非法时返回错误并保留上一次的汇总
func (a *Aggregator) SetCart(view CartView) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	next, err := derive(view, a.shipping)
	if err != nil {
		return err
	}
	a.view = view
	a.apply(next)
	return nil
}

// SetShippingCost 更新运费
func (a *Aggregator) SetShippingCost(value interface{}) error {
	shipping, err := ParseAmount(value)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	next, err := derive(a.view, shipping)
	if err != nil {
		return err
	}
	a.shipping = shipping
	a.apply(next)
	return nil
}

// Summary 返回当前汇总
func (a *Aggregator) Summary() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.summary
}

func (a *Aggregator) apply(next Summary) {
	a.summary = next
	if a.listener != nil {
		a.listener(next)
	}
}

// Summarize 一次性计算购物车视图的汇总
func Summarize(view CartView, shippingCost interface{}) (Summary, error) {
	shipping, err := ParseAmount(shippingCost)
	if err != nil {
		return Summary{}, err
	}
	return derive(view, shipping)
}

func derive(view CartView, shipping decimal.Decimal) (Summary, error) {
	if view.Loading {
		return Summary{State: StateLoading}, nil
	}
	if view.Cart == nil || len(view.Cart.Items) == 0 {
		return Summary{
			State:    StateEmpty,
			Subtotal: decimal.Zero,
			Shipping: decimal.Zero,
			Total:    decimal.Zero,
		}, nil
	}
	totals, err := Compute(view.Cart.Items, shipping)
	if err != nil {
		return Summary{}, err
	}
	count := 0
	for _, item := range view.Cart.Items {
		count += item.Quantity
	}
	return Summary{
		State:     StatePopulated,
		ItemCount: count,
		Subtotal:  totals.Subtotal,
		Shipping:  totals.Shipping,
		Total:     totals.Total,
	}, nil
}

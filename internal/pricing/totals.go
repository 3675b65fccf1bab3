// Package pricing 负责购物车金额汇总：小计、运费、合计。
//
// 所有计算基于 decimal，累加过程中不做任何舍入，只在展示时保留两位小数。
package pricing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidLineItem = errors.New("invalid line item")
	ErrInvalidAmount   = errors.New("invalid amount")
)

// LineItem 购物车行项目快照
type LineItem struct {
	ID        string
	ProductID uint
	Name      string
	Image     string
	UnitPrice string // 十进制字符串，例如 "19.99"
	Quantity  int
}

// CartSnapshot 已解析的购物车快照（只读）
type CartSnapshot struct {
	ID        string
	UserID    *uint
	SessionID *string
	CreatedAt *time.Time
	Items     []LineItem
}

// CartView 购物车数据源的输出：Loading 为 true 表示购物车尚未解析完成
type CartView struct {
	Loading bool
	Cart    *CartSnapshot
}

// Pending 返回加载中的购物车视图
func Pending() CartView {
	return CartView{Loading: true}
}

// Resolved 返回已解析的购物车视图
func Resolved(cart *CartSnapshot) CartView {
	return CartView{Cart: cart}
}

// Totals 金额汇总结果
type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// LineTotal 计算单行金额
func LineTotal(item LineItem) (decimal.Decimal, error) {
	if item.Quantity < 1 {
		return decimal.Zero, fmt.Errorf("%w: item %s quantity %d", ErrInvalidLineItem, item.ID, item.Quantity)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(item.UnitPrice))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: item %s price %q", ErrInvalidLineItem, item.ID, item.UnitPrice)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: item %s price %q", ErrInvalidLineItem, item.ID, item.UnitPrice)
	}
	return price.Mul(decimal.NewFromInt(int64(item.Quantity))), nil
}

// Subtotal 按列表顺序累加 单价 × 数量
func Subtotal(items []LineItem) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, item := range items {
		line, err := LineTotal(item)
		if err != nil {
			return decimal.Zero, err
		}
		sum = sum.Add(line)
	}
	return sum, nil
}

// ParseAmount 解析金额输入：十进制字符串、整数、浮点数或 decimal；nil 和空串视为 0
func ParseAmount(value interface{}) (decimal.Decimal, error) {
	var amount decimal.Decimal
	switch v := value.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		amount = v
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, nil
		}
		amount = *v
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(trimmed)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, v)
		}
		amount = d
	case int:
		amount = decimal.NewFromInt(int64(v))
	case int64:
		amount = decimal.NewFromInt(v)
	case float64:
		amount = decimal.NewFromFloat(v)
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, value)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative %s", ErrInvalidAmount, amount.String())
	}
	return amount, nil
}

// Compute 计算小计与合计，shippingCost 缺省为 0
func Compute(items []LineItem, shippingCost interface{}) (Totals, error) {
	shipping, err := ParseAmount(shippingCost)
	if err != nil {
		return Totals{}, err
	}
	subtotal, err := Subtotal(items)
	if err != nil {
		return Totals{}, err
	}
	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal.Add(shipping),
	}, nil
}

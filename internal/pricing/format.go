package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ShippingDeferredLabel 运费为 0 时的展示文案（运费在下一步计算）
const ShippingDeferredLabel = "calculated at next step"

const defaultCurrencySymbol = "$"

// Formatter 金额展示格式化（单一固定区域）
type Formatter struct {
	Symbol string
}

// NewFormatter 创建格式化器
func NewFormatter(symbol string) Formatter {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		symbol = defaultCurrencySymbol
	}
	return Formatter{Symbol: symbol}
}

// Money 保留两位小数并加货币前缀
func (f Formatter) Money(amount decimal.Decimal) string {
	symbol := f.Symbol
	if symbol == "" {
		symbol = defaultCurrencySymbol
	}
	return symbol + amount.StringFixed(2)
}

// ShippingLabel 运费为 0 时表示待定，其余金额正常展示
func (f Formatter) ShippingLabel(shipping decimal.Decimal) string {
	if shipping.IsZero() {
		return ShippingDeferredLabel
	}
	return f.Money(shipping)
}

// SummaryView 订单汇总展示数据
type SummaryView struct {
	State            State  `json:"state"`
	ItemCount        int    `json:"item_count"`
	Subtotal         string `json:"subtotal,omitempty"`
	Shipping         string `json:"shipping,omitempty"`
	ShippingDeferred bool   `json:"shipping_deferred"`
	Total            string `json:"total,omitempty"`
}

// View 将汇总转换为展示数据；加载中不输出金额
func (f Formatter) View(summary Summary) SummaryView {
	view := SummaryView{State: summary.State, ItemCount: summary.ItemCount}
	if summary.State == StateLoading {
		return view
	}
	view.Subtotal = f.Money(summary.Subtotal)
	view.Shipping = f.ShippingLabel(summary.Shipping)
	view.ShippingDeferred = summary.Shipping.IsZero()
	view.Total = f.Money(summary.Total)
	return view
}

package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ShippingMethod 配送方式
// Price 保持原始十进制字符串，只在计算或展示时转换。
type ShippingMethod struct {
	ID                string    `gorm:"primarykey;type:varchar(64)" json:"id"`              // 标识
	Name              string    `gorm:"type:varchar(120);not null" json:"name"`             // 名称
	EstimatedDelivery string    `gorm:"type:varchar(120)" json:"estimated_delivery"`        // 预计送达
	Price             string    `gorm:"type:varchar(32);not null;default:'0'" json:"price"` // 价格
	SortOrder         int       `gorm:"default:0;index" json:"sort_order"`                  // 排序
	IsActive          bool      `gorm:"default:true;index" json:"is_active"`                // 是否启用
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName 指定表名
func (ShippingMethod) TableName() string {
	return "shipping_methods"
}

// PriceDecimal 解析价格
func (m ShippingMethod) PriceDecimal() (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(m.Price))
}

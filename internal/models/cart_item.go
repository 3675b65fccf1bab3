package models

import "time"

// CartItem 购物车项
type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                                  // 主键
	CartID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_product" json:"cart_id"` // 购物车ID
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_product" json:"product_id"`               // 商品ID
	Quantity  int       `gorm:"not null" json:"quantity"`                                              // 数量
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                               // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                                            // 更新时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}

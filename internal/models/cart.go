package models

import "time"

// Cart 购物车（登录用户或匿名会话各持有一个）
type Cart struct {
	ID        string     `gorm:"primarykey;type:varchar(36)" json:"id"`                    // UUID
	UserID    *uint      `gorm:"uniqueIndex" json:"user_id,omitempty"`                     // 所属用户
	SessionID *string    `gorm:"type:varchar(64);uniqueIndex" json:"session_id,omitempty"` // 匿名会话
	CreatedAt *time.Time `json:"created_at"`                                               // 创建时间
	UpdatedAt time.Time  `json:"updated_at"`                                               // 更新时间

	Items []CartItem `gorm:"foreignKey:CartID" json:"items"` // 购物车项
}

// TableName 指定表名
func (Cart) TableName() string {
	return "carts"
}

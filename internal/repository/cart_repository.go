package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dujiao-next/storefront/internal/models"

	"gorm.io/gorm"
)

// CartOwner 购物车归属：登录用户或匿名会话二选一
type CartOwner struct {
	UserID    uint
	SessionID string
}

// CartRepository 购物车数据访问接口
type CartRepository interface {
	GetByOwner(ctx context.Context, owner CartOwner) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	UpsertItem(ctx context.Context, item *models.CartItem) error
	DeleteItem(ctx context.Context, cartID string, productID uint) error
	ClearItems(ctx context.Context, cartID string) error
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// GetByOwner 按归属查询购物车（含购物车项与商品），不存在时返回 nil
func (r *GormCartRepository) GetByOwner(ctx context.Context, owner CartOwner) (*models.Cart, error) {
	query := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Preload("Items.Product")
	switch {
	case owner.UserID != 0:
		query = query.Where("user_id = ?", owner.UserID)
	case owner.SessionID != "":
		query = query.Where("session_id = ?", owner.SessionID)
	default:
		return nil, nil
	}
	var cart models.Cart
	if err := query.First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// Create 创建购物车
func (r *GormCartRepository) Create(ctx context.Context, cart *models.Cart) error {
	if cart == nil {
		return nil
	}
	return r.db.WithContext(ctx).Create(cart).Error
}

// UpsertItem 添加或更新购物车项
func (r *GormCartRepository) UpsertItem(ctx context.Context, item *models.CartItem) error {
	if item == nil {
		return nil
	}
	db := r.db.WithContext(ctx)
	var existing models.CartItem
	err := db.Where("cart_id = ? AND product_id = ?", item.CartID, item.ProductID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(item).Error
	}
	if err != nil {
		return err
	}
	updates := map[string]interface{}{
		"quantity":   item.Quantity,
		"updated_at": time.Now(),
	}
	return db.Model(&existing).Updates(updates).Error
}

// DeleteItem 删除购物车项
func (r *GormCartRepository) DeleteItem(ctx context.Context, cartID string, productID uint) error {
	return r.db.WithContext(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID).Delete(&models.CartItem{}).Error
}

// ClearItems 清空购物车
func (r *GormCartRepository) ClearItems(ctx context.Context, cartID string) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

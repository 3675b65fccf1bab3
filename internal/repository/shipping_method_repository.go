package repository

import (
	"context"

	"github.com/dujiao-next/storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShippingMethodRepository 配送方式数据访问接口
type ShippingMethodRepository interface {
	ListActive(ctx context.Context) ([]models.ShippingMethod, error)
	Upsert(ctx context.Context, method *models.ShippingMethod) error
}

// GormShippingMethodRepository GORM 实现
type GormShippingMethodRepository struct {
	db *gorm.DB
}

// NewShippingMethodRepository 创建配送方式仓库
func NewShippingMethodRepository(db *gorm.DB) *GormShippingMethodRepository {
	return &GormShippingMethodRepository{db: db}
}

// ListActive 按排序返回启用的配送方式
func (r *GormShippingMethodRepository) ListActive(ctx context.Context) ([]models.ShippingMethod, error) {
	var methods []models.ShippingMethod
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order asc").
		Order("id asc").
		Find(&methods).Error; err != nil {
		return nil, err
	}
	return methods, nil
}

// Upsert 按 ID 写入配送方式
func (r *GormShippingMethodRepository) Upsert(ctx context.Context, method *models.ShippingMethod) error {
	if method == nil {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "estimated_delivery", "price", "sort_order", "is_active", "updated_at"}),
	}).Create(method).Error
}

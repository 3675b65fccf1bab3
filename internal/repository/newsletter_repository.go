package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dujiao-next/storefront/internal/models"

	"gorm.io/gorm"
)

// NewsletterRepository 邮件订阅数据访问接口
type NewsletterRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.NewsletterSubscriber, error)
	GetByID(ctx context.Context, id uint) (*models.NewsletterSubscriber, error)
	Create(ctx context.Context, subscriber *models.NewsletterSubscriber) error
	MarkWelcomed(ctx context.Context, id uint, at time.Time) (int64, error)
	ListUnwelcomed(ctx context.Context, createdBefore time.Time, limit int) ([]models.NewsletterSubscriber, error)
}

// GormNewsletterRepository GORM 实现
type GormNewsletterRepository struct {
	db *gorm.DB
}

// NewNewsletterRepository 创建订阅仓库
func NewNewsletterRepository(db *gorm.DB) *GormNewsletterRepository {
	return &GormNewsletterRepository{db: db}
}

// GetByEmail 按邮箱查询，不存在时返回 nil
func (r *GormNewsletterRepository) GetByEmail(ctx context.Context, email string) (*models.NewsletterSubscriber, error) {
	var subscriber models.NewsletterSubscriber
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&subscriber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscriber, nil
}

// GetByID 按 ID 查询，不存在时返回 nil
func (r *GormNewsletterRepository) GetByID(ctx context.Context, id uint) (*models.NewsletterSubscriber, error) {
	var subscriber models.NewsletterSubscriber
	if err := r.db.WithContext(ctx).First(&subscriber, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscriber, nil
}

// Create 创建订阅
func (r *GormNewsletterRepository) Create(ctx context.Context, subscriber *models.NewsletterSubscriber) error {
	return r.db.WithContext(ctx).Create(subscriber).Error
}

// MarkWelcomed 标记欢迎任务完成，仅首次生效
func (r *GormNewsletterRepository) MarkWelcomed(ctx context.Context, id uint, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.NewsletterSubscriber{}).
		Where("id = ? AND welcomed_at IS NULL", id).
		Update("welcomed_at", at)
	return result.RowsAffected, result.Error
}

// ListUnwelcomed 查询创建早于指定时间且尚未完成欢迎任务的订阅
func (r *GormNewsletterRepository) ListUnwelcomed(ctx context.Context, createdBefore time.Time, limit int) ([]models.NewsletterSubscriber, error) {
	if limit <= 0 {
		limit = 100
	}
	var subscribers []models.NewsletterSubscriber
	err := r.db.WithContext(ctx).
		Where("welcomed_at IS NULL AND created_at < ?", createdBefore).
		Order("id asc").
		Limit(limit).
		Find(&subscribers).Error
	return subscribers, err
}

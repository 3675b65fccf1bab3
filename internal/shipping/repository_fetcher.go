package shipping

import (
	"context"
	"fmt"

	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"
)

// RepositoryFetcher 从数据库读取启用的配送方式
type RepositoryFetcher struct {
	repo repository.ShippingMethodRepository
}

// NewRepositoryFetcher 创建数据库拉取器
func NewRepositoryFetcher(repo repository.ShippingMethodRepository) *RepositoryFetcher {
	return &RepositoryFetcher{repo: repo}
}

// Fetch 实现 Fetcher
func (f *RepositoryFetcher) Fetch(ctx context.Context) ([]models.ShippingMethod, error) {
	if f == nil || f.repo == nil {
		return nil, ErrFetcherMissing
	}
	methods, err := f.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	return methods, nil
}

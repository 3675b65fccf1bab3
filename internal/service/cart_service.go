package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/pricing"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/google/uuid"
)

// UpsertCartItemInput 购物车更新输入
type UpsertCartItemInput struct {
	Owner     repository.CartOwner
	ProductID uint
	Quantity  int
}

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// Resolve 解析购物车视图，购物车不存在时创建空购物车
func (s *CartService) Resolve(ctx context.Context, owner repository.CartOwner) (pricing.CartView, error) {
	cart, err := s.ensureCart(ctx, owner)
	if err != nil {
		return pricing.Pending(), err
	}
	return pricing.Resolved(toCartSnapshot(cart)), nil
}

// UpsertItem 添加或更新购物车项，数量小于 1 时移除
func (s *CartService) UpsertItem(ctx context.Context, input UpsertCartItemInput) error {
	if input.ProductID == 0 {
		return ErrInvalidCartItem
	}
	if input.Quantity <= 0 {
		return s.RemoveItem(ctx, input.Owner, input.ProductID)
	}
	product, err := s.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return err
	}
	if product == nil || !product.IsActive || product.PriceAmount.Decimal.IsNegative() {
		return ErrProductNotAvailable
	}
	cart, err := s.ensureCart(ctx, input.Owner)
	if err != nil {
		return err
	}
	return s.cartRepo.UpsertItem(ctx, &models.CartItem{
		CartID:    cart.ID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
	})
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(ctx context.Context, owner repository.CartOwner, productID uint) error {
	if productID == 0 {
		return ErrInvalidCartItem
	}
	cart, err := s.lookup(ctx, owner)
	if err != nil || cart == nil {
		return err
	}
	return s.cartRepo.DeleteItem(ctx, cart.ID, productID)
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, owner repository.CartOwner) error {
	cart, err := s.lookup(ctx, owner)
	if err != nil || cart == nil {
		return err
	}
	return s.cartRepo.ClearItems(ctx, cart.ID)
}

func (s *CartService) lookup(ctx context.Context, owner repository.CartOwner) (*models.Cart, error) {
	owner = normalizeOwner(owner)
	if owner.UserID == 0 && owner.SessionID == "" {
		return nil, ErrCartOwnerRequired
	}
	return s.cartRepo.GetByOwner(ctx, owner)
}

func (s *CartService) ensureCart(ctx context.Context, owner repository.CartOwner) (*models.Cart, error) {
	cart, err := s.lookup(ctx, owner)
	if err != nil || cart != nil {
		return cart, err
	}
	owner = normalizeOwner(owner)
	now := time.Now()
	cart = &models.Cart{ID: uuid.NewString(), CreatedAt: &now}
	if owner.UserID != 0 {
		userID := owner.UserID
		cart.UserID = &userID
	} else {
		sessionID := owner.SessionID
		cart.SessionID = &sessionID
	}
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		// 并发请求可能已抢先创建
		existing, lookupErr := s.cartRepo.GetByOwner(ctx, owner)
		if lookupErr == nil && existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("create cart: %w", err)
	}
	logger.Debugw("cart_created", "cart_id", cart.ID, "user_id", owner.UserID, "session_id", owner.SessionID)
	return cart, nil
}

func normalizeOwner(owner repository.CartOwner) repository.CartOwner {
	owner.SessionID = strings.TrimSpace(owner.SessionID)
	return owner
}

func toCartSnapshot(cart *models.Cart) *pricing.CartSnapshot {
	snapshot := &pricing.CartSnapshot{
		ID:        cart.ID,
		UserID:    cart.UserID,
		SessionID: cart.SessionID,
		CreatedAt: cart.CreatedAt,
		Items:     make([]pricing.LineItem, 0, len(cart.Items)),
	}
	for _, item := range cart.Items {
		product := item.Product
		if product == nil || !product.IsActive {
			continue
		}
		snapshot.Items = append(snapshot.Items, pricing.LineItem{
			ID:        strconv.FormatUint(uint64(item.ID), 10),
			ProductID: item.ProductID,
			Name:      product.Name,
			Image:     product.Image,
			UnitPrice: product.PriceAmount.String(),
			Quantity:  item.Quantity,
		})
	}
	return snapshot
}

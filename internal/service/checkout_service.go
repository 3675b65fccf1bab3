package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/pricing"
	"github.com/dujiao-next/storefront/internal/repository"
	"github.com/dujiao-next/storefront/internal/shipping"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CheckoutSummary 结算汇总
type CheckoutSummary struct {
	pricing.SummaryView
	ShippingMethodID string `json:"shipping_method_id,omitempty"`
}

// SelectShippingResult 选择配送方式结果
type SelectShippingResult struct {
	Changed  bool
	Snapshot shipping.Snapshot
}

// CheckoutService 结算服务：配送方式选择与订单汇总
type CheckoutService struct {
	fetcher   shipping.Fetcher
	store     SelectionStore
	carts     *CartService
	formatter pricing.Formatter
	log       *zap.SugaredLogger
}

// NewCheckoutService 创建结算服务
func NewCheckoutService(fetcher shipping.Fetcher, store SelectionStore, carts *CartService, currencySymbol string) *CheckoutService {
	if store == nil {
		store = NewMemorySelectionStore(0)
	}
	return &CheckoutService{
		fetcher:   fetcher,
		store:     store,
		carts:     carts,
		formatter: pricing.NewFormatter(currencySymbol),
		log:       logger.Named("checkout"),
	}
}

// Formatter 返回金额格式化器
func (s *CheckoutService) Formatter() pricing.Formatter {
	return s.formatter
}

// selectionRecorder 记录目录回调中的最后一次选择
type selectionRecorder struct {
	mu     sync.Mutex
	picked *ShippingSelection
}

func (r *selectionRecorder) record(methodID string, price decimal.Decimal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.picked = &ShippingSelection{
		MethodID:   methodID,
		Price:      price.String(),
		SelectedAt: time.Now(),
	}
}

func (r *selectionRecorder) last() *ShippingSelection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.picked
}

// checkoutSession 一次请求对应一次目录激活
type checkoutSession struct {
	catalog  *shipping.Catalog
	recorder *selectionRecorder
}

func (s *CheckoutService) open(ctx context.Context, session string) (*checkoutSession, shipping.Snapshot, error) {
	stored, err := s.store.Get(ctx, session)
	if err != nil {
		return nil, shipping.Snapshot{}, fmt.Errorf("load shipping selection: %w", err)
	}
	recorder := &selectionRecorder{}
	catalog := shipping.NewCatalog(s.fetcher,
		shipping.WithOnSelect(recorder.record),
		shipping.WithLogger(s.log.With("session", session)),
	)
	if stored != nil {
		catalog.Preselect(stored.MethodID)
	}
	catalog.Activate(ctx)
	snapshot := catalog.Wait(ctx)
	if snapshot.State == shipping.StateLoading {
		catalog.Deactivate()
		return nil, snapshot, fmt.Errorf("%w: %v", ErrCheckoutCanceled, ctx.Err())
	}
	return &checkoutSession{catalog: catalog, recorder: recorder}, snapshot, nil
}

func (s *CheckoutService) persist(ctx context.Context, session string, recorder *selectionRecorder) error {
	picked := recorder.last()
	if picked == nil {
		return nil
	}
	if err := s.store.Save(ctx, session, *picked); err != nil {
		return fmt.Errorf("save shipping selection: %w", err)
	}
	s.log.Infow("shipping_selection_saved", "session", session, "method_id", picked.MethodID, "price", picked.Price)
	return nil
}

// ShippingOptions 拉取配送方式集合；会话尚无选择时默认选中第一项
func (s *CheckoutService) ShippingOptions(ctx context.Context, owner repository.CartOwner) (shipping.Snapshot, error) {
	session := CheckoutSession(owner)
	if session == "" {
		return shipping.Snapshot{}, ErrCartOwnerRequired
	}
	cs, snapshot, err := s.open(ctx, session)
	if err != nil {
		return snapshot, err
	}
	defer cs.catalog.Deactivate()
	if err := s.persist(ctx, session, cs.recorder); err != nil {
		return snapshot, err
	}
	current := cs.catalog.Snapshot()
	if current.State == shipping.StateReady && current.Selected == "" {
		if err := s.store.Clear(ctx, session); err != nil {
			return current, fmt.Errorf("clear shipping selection: %w", err)
		}
	}
	return current, nil
}

// SelectShipping 选择配送方式；标识未知时保持原有选择并返回 Changed=false
func (s *CheckoutService) SelectShipping(ctx context.Context, owner repository.CartOwner, methodID string) (SelectShippingResult, error) {
	session := CheckoutSession(owner)
	if session == "" {
		return SelectShippingResult{}, ErrCartOwnerRequired
	}
	cs, snapshot, err := s.open(ctx, session)
	if err != nil {
		return SelectShippingResult{Snapshot: snapshot}, err
	}
	defer cs.catalog.Deactivate()
	if snapshot.State == shipping.StateError {
		return SelectShippingResult{Snapshot: snapshot}, fmt.Errorf("%w: %s", ErrShippingUnavailable, snapshot.Message)
	}
	changed := cs.catalog.Select(methodID)
	if err := s.persist(ctx, session, cs.recorder); err != nil {
		return SelectShippingResult{Snapshot: cs.catalog.Snapshot()}, err
	}
	return SelectShippingResult{Changed: changed, Snapshot: cs.catalog.Snapshot()}, nil
}

// Summary 汇总购物车小计、运费与合计
func (s *CheckoutService) Summary(ctx context.Context, owner repository.CartOwner) (CheckoutSummary, error) {
	view, err := s.carts.Resolve(ctx, owner)
	if err != nil {
		return CheckoutSummary{}, err
	}
	session := CheckoutSession(owner)
	selection, err := s.store.Get(ctx, session)
	if err != nil {
		return CheckoutSummary{}, fmt.Errorf("load shipping selection: %w", err)
	}
	if selection != nil {
		selection, err = s.revalidate(ctx, session, selection)
		if err != nil {
			return CheckoutSummary{}, err
		}
	}
	var shippingCost interface{}
	methodID := ""
	if selection != nil {
		shippingCost = selection.Price
		methodID = selection.MethodID
	}
	summary, err := pricing.Summarize(view, shippingCost)
	if err != nil {
		return CheckoutSummary{}, err
	}
	if summary.State == pricing.StateEmpty {
		methodID = ""
	}
	return CheckoutSummary{SummaryView: s.formatter.View(summary), ShippingMethodID: methodID}, nil
}

// revalidate 按当前配送方式集合校验已存选择，返回应计入运费的选择。
// 集合不可用时不计运费；选择已下架时回落到默认项或清除。
func (s *CheckoutService) revalidate(ctx context.Context, session string, stored *ShippingSelection) (*ShippingSelection, error) {
	cs, snapshot, err := s.open(ctx, session)
	if err != nil {
		return nil, err
	}
	defer cs.catalog.Deactivate()
	if snapshot.State != shipping.StateReady {
		s.log.Warnw("shipping_selection_unverified", "session", session, "method_id", stored.MethodID, "message", snapshot.Message)
		return nil, nil
	}
	if err := s.persist(ctx, session, cs.recorder); err != nil {
		return nil, err
	}

	current := cs.catalog.Snapshot()
	var method *models.ShippingMethod
	for i := range current.Methods {
		if current.Methods[i].ID == current.Selected {
			method = &current.Methods[i]
			break
		}
	}
	if method == nil {
		if err := s.store.Clear(ctx, session); err != nil {
			return nil, fmt.Errorf("clear shipping selection: %w", err)
		}
		return nil, nil
	}
	price, err := method.PriceDecimal()
	if err != nil {
		s.log.Warnw("shipping_selection_price_invalid", "session", session, "method_id", method.ID, "price", method.Price, "error", err)
		return nil, nil
	}
	if picked := cs.recorder.last(); picked != nil {
		return picked, nil
	}
	if storedPrice, err := decimal.NewFromString(stored.Price); err != nil || !storedPrice.Equal(price) {
		refreshed := ShippingSelection{MethodID: method.ID, Price: price.String(), SelectedAt: stored.SelectedAt}
		if err := s.store.Save(ctx, session, refreshed); err != nil {
			return nil, fmt.Errorf("save shipping selection: %w", err)
		}
		return &refreshed, nil
	}
	return stored, nil
}

package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/pricing"
	"github.com/dujiao-next/storefront/internal/repository"
	"github.com/dujiao-next/storefront/internal/shipping"
)

func twoMethodFetcher(calls *int32) shipping.Fetcher {
	return shipping.FetcherFunc(func(ctx context.Context) ([]models.ShippingMethod, error) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		return []models.ShippingMethod{
			{ID: "m1", Name: "Standard", EstimatedDelivery: "3-5 days", Price: "5.00"},
			{ID: "m2", Name: "Express", EstimatedDelivery: "1-2 days", Price: "10.00"},
		}, nil
	})
}

type checkoutFixture struct {
	svc   *CheckoutService
	carts *CartService
	store *MemorySelectionStore
	serum *models.Product
}

func newCheckoutFixture(t *testing.T, fetcher shipping.Fetcher) checkoutFixture {
	t.Helper()
	db := openServiceTestDB(t)
	serum := seedProduct(t, db, "serum", "19.99")
	carts := NewCartService(repository.NewCartRepository(db), repository.NewProductRepository(db))
	store := NewMemorySelectionStore(time.Hour)
	return checkoutFixture{
		svc:   NewCheckoutService(fetcher, store, carts, "$"),
		carts: carts,
		store: store,
		serum: serum,
	}
}

func TestShippingOptionsDefaultsToFirstMethod(t *testing.T) {
	var calls int32
	fx := newCheckoutFixture(t, twoMethodFetcher(&calls))
	owner := repository.CartOwner{SessionID: "sess-default"}

	snapshot, err := fx.svc.ShippingOptions(context.Background(), owner)
	if err != nil {
		t.Fatalf("shipping options failed: %v", err)
	}
	if snapshot.State != shipping.StateReady || len(snapshot.Methods) != 2 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if snapshot.Selected != "m1" {
		t.Fatalf("default selection want m1 got %s", snapshot.Selected)
	}
	stored, _ := fx.store.Get(context.Background(), CheckoutSession(owner))
	if stored == nil || stored.MethodID != "m1" || stored.Price != "5" {
		t.Fatalf("default selection should be stored with price 5, got %+v", stored)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("fetch calls want 1 got %d", calls)
	}
}

func TestSelectShippingKeepsExplicitChoice(t *testing.T) {
	fx := newCheckoutFixture(t, twoMethodFetcher(nil))
	ctx := context.Background()
	owner := repository.CartOwner{SessionID: "sess-express"}

	result, err := fx.svc.SelectShipping(ctx, owner, "m2")
	if err != nil {
		t.Fatalf("select shipping failed: %v", err)
	}
	if !result.Changed || result.Snapshot.Selected != "m2" {
		t.Fatalf("select m2 want changed got %+v", result)
	}

	snapshot, err := fx.svc.ShippingOptions(ctx, owner)
	if err != nil {
		t.Fatalf("shipping options failed: %v", err)
	}
	if snapshot.Selected != "m2" {
		t.Fatalf("later resolution should keep m2, got %s", snapshot.Selected)
	}
	stored, _ := fx.store.Get(ctx, CheckoutSession(owner))
	if stored == nil || stored.MethodID != "m2" || stored.Price != "10" {
		t.Fatalf("stored selection want m2 at 10 got %+v", stored)
	}
}

func TestSelectShippingUnknownIDLeavesSelection(t *testing.T) {
	fx := newCheckoutFixture(t, twoMethodFetcher(nil))
	ctx := context.Background()
	owner := repository.CartOwner{UserID: 11}

	if _, err := fx.svc.SelectShipping(ctx, owner, "m2"); err != nil {
		t.Fatalf("select m2 failed: %v", err)
	}
	result, err := fx.svc.SelectShipping(ctx, owner, "overnight")
	if err != nil {
		t.Fatalf("select unknown failed: %v", err)
	}
	if result.Changed {
		t.Fatalf("unknown id should not change the selection")
	}
	if result.Snapshot.Selected != "m2" {
		t.Fatalf("selection want m2 got %s", result.Snapshot.Selected)
	}
	stored, _ := fx.store.Get(ctx, CheckoutSession(owner))
	if stored == nil || stored.MethodID != "m2" {
		t.Fatalf("stored selection should stay m2, got %+v", stored)
	}
}

func TestShippingOptionsFetchError(t *testing.T) {
	failing := shipping.FetcherFunc(func(ctx context.Context) ([]models.ShippingMethod, error) {
		return nil, errors.New("connection refused")
	})
	fx := newCheckoutFixture(t, failing)
	owner := repository.CartOwner{SessionID: "sess-error"}

	snapshot, err := fx.svc.ShippingOptions(context.Background(), owner)
	if err != nil {
		t.Fatalf("error state should not be returned as error: %v", err)
	}
	if snapshot.State != shipping.StateError || snapshot.Message == "" || len(snapshot.Methods) != 0 {
		t.Fatalf("unexpected error snapshot: %+v", snapshot)
	}

	_, err = fx.svc.SelectShipping(context.Background(), owner, "m1")
	if !errors.Is(err, ErrShippingUnavailable) {
		t.Fatalf("want ErrShippingUnavailable got %v", err)
	}
	if stored, _ := fx.store.Get(context.Background(), CheckoutSession(owner)); stored != nil {
		t.Fatalf("failed fetch should not store a selection")
	}
}

func TestShippingOptionsCanceledRequest(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	blocking := shipping.FetcherFunc(func(ctx context.Context) ([]models.ShippingMethod, error) {
		<-release
		return nil, nil
	})
	fx := newCheckoutFixture(t, blocking)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := fx.svc.ShippingOptions(ctx, repository.CartOwner{SessionID: "sess-slow"})
	if !errors.Is(err, ErrCheckoutCanceled) {
		t.Fatalf("want ErrCheckoutCanceled got %v", err)
	}
}

func TestCheckoutSummary(t *testing.T) {
	fx := newCheckoutFixture(t, twoMethodFetcher(nil))
	ctx := context.Background()
	owner := repository.CartOwner{SessionID: "sess-summary"}

	empty, err := fx.svc.Summary(ctx, owner)
	if err != nil {
		t.Fatalf("empty summary failed: %v", err)
	}
	if empty.State != pricing.StateEmpty || empty.Subtotal != "$0.00" || empty.Total != "$0.00" {
		t.Fatalf("unexpected empty summary: %+v", empty)
	}

	if err := fx.carts.UpsertItem(ctx, UpsertCartItemInput{Owner: owner, ProductID: fx.serum.ID, Quantity: 3}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	deferred, err := fx.svc.Summary(ctx, owner)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if deferred.Subtotal != "$59.97" || deferred.Total != "$59.97" {
		t.Fatalf("unexpected deferred summary: %+v", deferred)
	}
	if !deferred.ShippingDeferred || deferred.Shipping != pricing.ShippingDeferredLabel {
		t.Fatalf("shipping should be deferred, got %+v", deferred)
	}

	if _, err := fx.svc.SelectShipping(ctx, owner, "m1"); err != nil {
		t.Fatalf("select m1 failed: %v", err)
	}
	priced, err := fx.svc.Summary(ctx, owner)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if priced.Shipping != "$5.00" || priced.Total != "$64.97" || priced.ShippingMethodID != "m1" {
		t.Fatalf("unexpected priced summary: %+v", priced)
	}
	if priced.ItemCount != 3 {
		t.Fatalf("item count want 3 got %d", priced.ItemCount)
	}
}

func TestCheckoutRequiresOwner(t *testing.T) {
	fx := newCheckoutFixture(t, twoMethodFetcher(nil))
	if _, err := fx.svc.ShippingOptions(context.Background(), repository.CartOwner{}); !errors.Is(err, ErrCartOwnerRequired) {
		t.Fatalf("want ErrCartOwnerRequired got %v", err)
	}
	if _, err := fx.svc.SelectShipping(context.Background(), repository.CartOwner{}, "m1"); !errors.Is(err, ErrCartOwnerRequired) {
		t.Fatalf("want ErrCartOwnerRequired got %v", err)
	}
}

func TestStaleStoredSelectionFallsBackToDefault(t *testing.T) {
	fx := newCheckoutFixture(t, twoMethodFetcher(nil))
	ctx := context.Background()
	owner := repository.CartOwner{SessionID: "sess-retired"}
	session := CheckoutSession(owner)

	if err := fx.carts.UpsertItem(ctx, UpsertCartItemInput{Owner: owner, ProductID: fx.serum.ID, Quantity: 1}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := fx.store.Save(ctx, session, ShippingSelection{MethodID: "retired", Price: "99"}); err != nil {
		t.Fatalf("save selection failed: %v", err)
	}

	summary, err := fx.svc.Summary(ctx, owner)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.ShippingMethodID != "m1" || summary.Shipping != "$5.00" || summary.Total != "$24.99" {
		t.Fatalf("summary want m1/$5.00/$24.99 got %s/%s/%s", summary.ShippingMethodID, summary.Shipping, summary.Total)
	}

	if err := fx.store.Save(ctx, session, ShippingSelection{MethodID: "retired", Price: "99"}); err != nil {
		t.Fatalf("save selection failed: %v", err)
	}
	snapshot, err := fx.svc.ShippingOptions(ctx, owner)
	if err != nil {
		t.Fatalf("shipping options failed: %v", err)
	}
	if snapshot.Selected != "m1" {
		t.Fatalf("selected want m1 got %s", snapshot.Selected)
	}
	stored, _ := fx.store.Get(ctx, session)
	if stored == nil || stored.MethodID != "m1" {
		t.Fatalf("stored selection want m1 got %+v", stored)
	}
}

func TestSummaryRefreshesStoredPrice(t *testing.T) {
	fx := newCheckoutFixture(t, twoMethodFetcher(nil))
	ctx := context.Background()
	owner := repository.CartOwner{SessionID: "sess-reprice"}

	if err := fx.carts.UpsertItem(ctx, UpsertCartItemInput{Owner: owner, ProductID: fx.serum.ID, Quantity: 1}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := fx.store.Save(ctx, CheckoutSession(owner), ShippingSelection{MethodID: "m2", Price: "12.00"}); err != nil {
		t.Fatalf("save selection failed: %v", err)
	}
	summary, err := fx.svc.Summary(ctx, owner)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.Shipping != "$10.00" || summary.Total != "$29.99" {
		t.Fatalf("summary want $10.00/$29.99 got %s/%s", summary.Shipping, summary.Total)
	}
}

func TestSummaryWithoutCatalogSkipsStoredShipping(t *testing.T) {
	failing := shipping.FetcherFunc(func(ctx context.Context) ([]models.ShippingMethod, error) {
		return nil, errors.New("connection refused")
	})
	fx := newCheckoutFixture(t, failing)
	ctx := context.Background()
	owner := repository.CartOwner{SessionID: "sess-offline"}

	if err := fx.carts.UpsertItem(ctx, UpsertCartItemInput{Owner: owner, ProductID: fx.serum.ID, Quantity: 1}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := fx.store.Save(ctx, CheckoutSession(owner), ShippingSelection{MethodID: "m1", Price: "5.00"}); err != nil {
		t.Fatalf("save selection failed: %v", err)
	}
	summary, err := fx.svc.Summary(ctx, owner)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if !summary.ShippingDeferred || summary.Total != "$19.99" {
		t.Fatalf("unverified shipping should be deferred, got %+v", summary)
	}
}

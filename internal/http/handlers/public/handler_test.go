package public

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dujiao-next/storefront/internal/config"
	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/provider"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

type storefrontFixture struct {
	engine  *gin.Engine
	db      *gorm.DB
	product *models.Product
}

func newStorefrontFixture(t *testing.T) storefrontFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	ctx := context.Background()
	methods := repository.NewShippingMethodRepository(db)
	for _, method := range []*models.ShippingMethod{
		{ID: "m1", Name: "Standard", EstimatedDelivery: "3-5 days", Price: "5.00", SortOrder: 1, IsActive: true},
		{ID: "m2", Name: "Express", EstimatedDelivery: "1-2 days", Price: "10.00", SortOrder: 2, IsActive: true},
	} {
		if err := methods.Upsert(ctx, method); err != nil {
			t.Fatalf("seed shipping method failed: %v", err)
		}
	}
	product := &models.Product{Slug: "hydra-serum", Name: "Hydra Serum", PriceAmount: models.MustMoney("19.99"), IsActive: true}
	if err := repository.NewProductRepository(db).Create(ctx, product); err != nil {
		t.Fatalf("seed product failed: %v", err)
	}

	cfg := &config.Config{Storefront: config.StorefrontConfig{CurrencySymbol: "$"}}
	h := New(provider.NewContainerWithDB(cfg, db, nil))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if session := c.GetHeader("X-Session-ID"); session != "" {
			c.Set(handlershared.ContextSessionID, session)
		}
		if c.GetHeader("X-Test-User") == "7" {
			c.Set(handlershared.ContextUserID, uint(7))
		}
		c.Next()
	})
	r.GET("/shipping-methods", h.GetShippingMethods)
	r.GET("/account/menu", h.GetAccountMenu)
	r.POST("/newsletter/subscribe", h.SubscribeNewsletter)
	r.GET("/cart", h.GetCart)
	r.POST("/cart/items", h.UpsertCartItem)
	r.DELETE("/cart/items/:product_id", h.DeleteCartItem)
	r.GET("/checkout/shipping-options", h.GetShippingOptions)
	r.PUT("/checkout/shipping", h.SelectShipping)
	r.GET("/checkout/summary", h.GetCheckoutSummary)
	return storefrontFixture{engine: r, db: db, product: product}
}

func (fx storefrontFixture) do(t *testing.T, method, path, session, body string) envelope {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set("X-Session-ID", session)
	}
	w := httptest.NewRecorder()
	fx.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s http status want 200 got %d", method, path, w.Code)
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal %s %s failed: %v", method, path, err)
	}
	return resp
}

func TestCheckoutFlow(t *testing.T) {
	fx := newStorefrontFixture(t)
	session := "5d1f0c56-0a4b-4c41-9d9e-8d6d7b1f4e01"

	resp := fx.do(t, http.MethodPost, "/cart/items", session, `{"product_id":1,"quantity":3}`)
	if resp.StatusCode != 0 {
		t.Fatalf("upsert want status 0 got %d (%s)", resp.StatusCode, resp.Msg)
	}

	resp = fx.do(t, http.MethodGet, "/checkout/summary", session, "")
	var summary struct {
		State            string `json:"state"`
		Subtotal         string `json:"subtotal"`
		Shipping         string `json:"shipping"`
		ShippingDeferred bool   `json:"shipping_deferred"`
		Total            string `json:"total"`
		ShippingMethodID string `json:"shipping_method_id"`
	}
	if err := json.Unmarshal(resp.Data, &summary); err != nil {
		t.Fatalf("decode summary failed: %v", err)
	}
	if summary.State != "populated" || summary.Subtotal != "$59.97" || summary.Total != "$59.97" || !summary.ShippingDeferred {
		t.Fatalf("unexpected summary before shipping: %+v", summary)
	}
	if summary.Shipping != "calculated at next step" {
		t.Fatalf("shipping label want deferred got %s", summary.Shipping)
	}

	resp = fx.do(t, http.MethodGet, "/checkout/shipping-options", session, "")
	var options ShippingOptionsResponse
	if err := json.Unmarshal(resp.Data, &options); err != nil {
		t.Fatalf("decode options failed: %v", err)
	}
	if options.State != "ready" || len(options.Methods) != 2 || options.Selected != "m1" {
		t.Fatalf("unexpected options: %+v", options)
	}
	if options.Methods[0].PriceLabel != "$5.00" {
		t.Fatalf("price label want $5.00 got %s", options.Methods[0].PriceLabel)
	}

	resp = fx.do(t, http.MethodPut, "/checkout/shipping", session, `{"method_id":"m2"}`)
	if err := json.Unmarshal(resp.Data, &options); err != nil {
		t.Fatalf("decode select failed: %v", err)
	}
	if options.Changed == nil || !*options.Changed || options.Selected != "m2" {
		t.Fatalf("select m2 should change selection: %+v", options)
	}

	resp = fx.do(t, http.MethodPut, "/checkout/shipping", session, `{"method_id":"unknown"}`)
	if err := json.Unmarshal(resp.Data, &options); err != nil {
		t.Fatalf("decode select failed: %v", err)
	}
	if options.Changed == nil || *options.Changed || options.Selected != "m2" {
		t.Fatalf("unknown id should keep m2: %+v", options)
	}

	resp = fx.do(t, http.MethodGet, "/checkout/summary", session, "")
	if err := json.Unmarshal(resp.Data, &summary); err != nil {
		t.Fatalf("decode summary failed: %v", err)
	}
	if summary.Shipping != "$10.00" || summary.Total != "$69.97" || summary.ShippingMethodID != "m2" {
		t.Fatalf("unexpected summary after shipping: %+v", summary)
	}

	// 已选配送方式下架后回落到第一项
	if err := fx.db.Model(&models.ShippingMethod{}).Where("id = ?", "m2").Update("is_active", false).Error; err != nil {
		t.Fatalf("retire m2 failed: %v", err)
	}
	resp = fx.do(t, http.MethodGet, "/checkout/summary", session, "")
	if err := json.Unmarshal(resp.Data, &summary); err != nil {
		t.Fatalf("decode summary failed: %v", err)
	}
	if summary.Shipping != "$5.00" || summary.Total != "$64.97" || summary.ShippingMethodID != "m1" {
		t.Fatalf("retired method should fall back to m1: %+v", summary)
	}
}

func TestCartEndpoints(t *testing.T) {
	fx := newStorefrontFixture(t)
	session := "7c9e6679-7425-40de-944b-e07fc1f90ae7"

	resp := fx.do(t, http.MethodGet, "/cart", session, "")
	var cart struct {
		Items   []CartItemResponse `json:"items"`
		Summary struct {
			State string `json:"state"`
			Total string `json:"total"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(resp.Data, &cart); err != nil {
		t.Fatalf("decode cart failed: %v", err)
	}
	if len(cart.Items) != 0 || cart.Summary.State != "empty" || cart.Summary.Total != "$0.00" {
		t.Fatalf("unexpected empty cart: %+v", cart)
	}

	fx.do(t, http.MethodPost, "/cart/items", session, `{"product_id":1,"quantity":2}`)
	resp = fx.do(t, http.MethodGet, "/cart", session, "")
	if err := json.Unmarshal(resp.Data, &cart); err != nil {
		t.Fatalf("decode cart failed: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].LineTotal != "$39.98" || cart.Items[0].UnitPrice != "19.99" {
		t.Fatalf("unexpected cart items: %+v", cart.Items)
	}

	resp = fx.do(t, http.MethodPost, "/cart/items", session, `{"product_id":99,"quantity":1}`)
	if resp.StatusCode != 400 {
		t.Fatalf("unknown product want 400 got %d", resp.StatusCode)
	}
	resp = fx.do(t, http.MethodDelete, "/cart/items/abc", session, "")
	if resp.StatusCode != 400 {
		t.Fatalf("bad product id want 400 got %d", resp.StatusCode)
	}
	resp = fx.do(t, http.MethodDelete, "/cart/items/1", session, "")
	if resp.StatusCode != 0 {
		t.Fatalf("delete want 0 got %d", resp.StatusCode)
	}
	resp = fx.do(t, http.MethodGet, "/cart", "", "")
	if resp.StatusCode != 400 {
		t.Fatalf("missing session want 400 got %d", resp.StatusCode)
	}
}

func TestShippingMethodsCollection(t *testing.T) {
	fx := newStorefrontFixture(t)
	resp := fx.do(t, http.MethodGet, "/shipping-methods", "", "")
	var data struct {
		Items []PublicShippingMethod `json:"items"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decode collection failed: %v", err)
	}
	if len(data.Items) != 2 || data.Items[0].ID != "m1" || data.Items[1].Price != "10.00" {
		t.Fatalf("unexpected collection: %+v", data.Items)
	}
}

func TestNewsletterSubscribeEndpoint(t *testing.T) {
	fx := newStorefrontFixture(t)

	resp := fx.do(t, http.MethodPost, "/newsletter/subscribe", "", `{"email":"Glow@Example.com"}`)
	if resp.StatusCode != 0 {
		t.Fatalf("subscribe want 0 got %d (%s)", resp.StatusCode, resp.Msg)
	}
	resp = fx.do(t, http.MethodPost, "/newsletter/subscribe", "", `{"email":"nope"}`)
	if resp.StatusCode != 400 {
		t.Fatalf("invalid email want 400 got %d", resp.StatusCode)
	}
	var data struct {
		Fields []struct {
			Field string `json:"field"`
			Code  string `json:"code"`
		} `json:"fields"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decode field errors failed: %v", err)
	}
	if len(data.Fields) != 1 || data.Fields[0].Field != "email" || data.Fields[0].Code != "invalid" {
		t.Fatalf("unexpected field errors: %+v", data.Fields)
	}
}

func TestAccountMenuEndpoint(t *testing.T) {
	fx := newStorefrontFixture(t)
	resp := fx.do(t, http.MethodGet, "/account/menu", "", "")
	var data struct {
		SignedIn bool `json:"signed_in"`
		Entries  []struct {
			Action string `json:"action"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decode menu failed: %v", err)
	}
	if data.SignedIn || len(data.Entries) != 2 || data.Entries[0].Action != "sign_in" {
		t.Fatalf("unexpected guest menu: %+v", data)
	}

	req := httptest.NewRequest(http.MethodGet, "/account/menu", nil)
	req.Header.Set("X-Test-User", "7")
	w := httptest.NewRecorder()
	fx.engine.ServeHTTP(w, req)
	var signed envelope
	if err := json.Unmarshal(w.Body.Bytes(), &signed); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if err := json.Unmarshal(signed.Data, &data); err != nil {
		t.Fatalf("decode menu failed: %v", err)
	}
	if !data.SignedIn || len(data.Entries) != 3 || data.Entries[2].Action != "sign_out" {
		t.Fatalf("unexpected member menu: %+v", data)
	}
}

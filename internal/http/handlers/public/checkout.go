package public

import (
	"strings"

	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/pricing"
	"github.com/dujiao-next/storefront/internal/shipping"

	"github.com/gin-gonic/gin"
)

// ShippingMethodResponse 配送方式响应
type ShippingMethodResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	EstimatedDelivery string `json:"estimated_delivery"`
	Price             string `json:"price"`
	PriceLabel        string `json:"price_label"`
}

// ShippingOptionsResponse 配送方式选择面板
type ShippingOptionsResponse struct {
	State    shipping.State           `json:"state"`
	Methods  []ShippingMethodResponse `json:"methods"`
	Selected string                   `json:"selected,omitempty"`
	Message  string                   `json:"message,omitempty"`
	Changed  *bool                    `json:"changed,omitempty"`
}

// SelectShippingRequest 选择配送方式请求
type SelectShippingRequest struct {
	MethodID string `json:"method_id" binding:"required"`
}

func buildShippingOptions(formatter pricing.Formatter, snapshot shipping.Snapshot) ShippingOptionsResponse {
	methods := make([]ShippingMethodResponse, 0, len(snapshot.Methods))
	for _, method := range snapshot.Methods {
		label := method.Price
		if price, err := method.PriceDecimal(); err == nil {
			label = formatter.Money(price)
		}
		methods = append(methods, ShippingMethodResponse{
			ID:                method.ID,
			Name:              method.Name,
			EstimatedDelivery: method.EstimatedDelivery,
			Price:             method.Price,
			PriceLabel:        label,
		})
	}
	return ShippingOptionsResponse{
		State:    snapshot.State,
		Methods:  methods,
		Selected: snapshot.Selected,
		Message:  snapshot.Message,
	}
}

// GetShippingOptions 获取配送方式及当前选择
func (h *Handler) GetShippingOptions(c *gin.Context) {
	snapshot, err := h.CheckoutService.ShippingOptions(c.Request.Context(), cartOwner(c))
	if err != nil {
		respondCheckoutError(c, err, "error.shipping_fetch_failed")
		return
	}
	response.Success(c, buildShippingOptions(h.CheckoutService.Formatter(), snapshot))
}

// SelectShipping 选择配送方式；未知标识不改变当前选择
func (h *Handler) SelectShipping(c *gin.Context) {
	var req SelectShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.CheckoutService.SelectShipping(c.Request.Context(), cartOwner(c), strings.TrimSpace(req.MethodID))
	if err != nil {
		respondCheckoutError(c, err, "error.shipping_select_failed")
		return
	}
	resp := buildShippingOptions(h.CheckoutService.Formatter(), result.Snapshot)
	changed := result.Changed
	resp.Changed = &changed
	response.Success(c, resp)
}

// GetCheckoutSummary 获取订单汇总
func (h *Handler) GetCheckoutSummary(c *gin.Context) {
	summary, err := h.CheckoutService.Summary(c.Request.Context(), cartOwner(c))
	if err != nil {
		respondCheckoutError(c, err, "error.checkout_summary_failed")
		return
	}
	response.Success(c, summary)
}

package public

import (
	"strconv"

	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/pricing"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 购物车项请求
type CartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// CartItemResponse 购物车项响应
type CartItemResponse struct {
	ID        string `json:"id"`
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

// CartResponse 购物车响应
type CartResponse struct {
	ID      string                  `json:"id"`
	Items   []CartItemResponse      `json:"items"`
	Summary service.CheckoutSummary `json:"summary"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	owner := cartOwner(c)
	view, err := h.CartService.Resolve(c.Request.Context(), owner)
	if err != nil {
		respondCartError(c, err, "error.cart_fetch_failed")
		return
	}
	summary, err := h.CheckoutService.Summary(c.Request.Context(), owner)
	if err != nil {
		respondCheckoutError(c, err, "error.cart_fetch_failed")
		return
	}

	formatter := h.CheckoutService.Formatter()
	items := make([]CartItemResponse, 0, len(view.Cart.Items))
	for _, item := range view.Cart.Items {
		lineTotal, err := pricing.LineTotal(item)
		if err != nil {
			respondCartError(c, err, "error.cart_fetch_failed")
			return
		}
		items = append(items, CartItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: formatter.Money(lineTotal),
		})
	}
	response.Success(c, CartResponse{ID: view.Cart.ID, Items: items, Summary: summary})
}

// UpsertCartItem 添加/更新购物车项
func (h *Handler) UpsertCartItem(c *gin.Context) {
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.CartService.UpsertItem(c.Request.Context(), service.UpsertCartItemInput{
		Owner:     cartOwner(c),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}); err != nil {
		respondCartError(c, err, "error.cart_update_failed")
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// DeleteCartItem 删除购物车项
func (h *Handler) DeleteCartItem(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "error.cart_item_invalid", nil)
		return
	}
	if err := h.CartService.RemoveItem(c.Request.Context(), cartOwner(c), uint(productID)); err != nil {
		respondCartError(c, err, "error.cart_update_failed")
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

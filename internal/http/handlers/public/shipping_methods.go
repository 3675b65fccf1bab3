package public

import (
	"github.com/dujiao-next/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

// PublicShippingMethod 配送方式集合中的一项
type PublicShippingMethod struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	EstimatedDelivery string `json:"estimated_delivery"`
	Price             string `json:"price"`
}

// GetShippingMethods 输出配送方式集合
func (h *Handler) GetShippingMethods(c *gin.Context) {
	methods, err := h.ShippingMethodRepo.ListActive(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.shipping_fetch_failed", err)
		return
	}
	items := make([]PublicShippingMethod, 0, len(methods))
	for _, method := range methods {
		items = append(items, PublicShippingMethod{
			ID:                method.ID,
			Name:              method.Name,
			EstimatedDelivery: method.EstimatedDelivery,
			Price:             method.Price,
		})
	}
	response.Success(c, gin.H{"items": items})
}

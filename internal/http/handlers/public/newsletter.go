package public

import (
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// NewsletterSubscribeRequest 订阅请求
type NewsletterSubscribeRequest struct {
	Email  string `json:"email"`
	Source string `json:"source"`
}

// SubscribeNewsletter 邮件订阅
func (h *Handler) SubscribeNewsletter(c *gin.Context) {
	var req NewsletterSubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	subscriber, created, err := h.NewsletterService.Subscribe(c.Request.Context(), service.SubscriptionInput{
		Email:  req.Email,
		Source: req.Source,
	})
	if err != nil {
		if validationErr, ok := service.IsValidationError(err); ok {
			h.Metrics.ObserveNewsletterSignup("invalid")
			response.ErrorWithData(c, response.CodeBadRequest, messageFor("error.subscription_invalid"), gin.H{
				"fields": validationErr.Fields,
			})
			return
		}
		h.Metrics.ObserveNewsletterSignup("failed")
		respondError(c, response.CodeInternal, "error.subscription_failed", err)
		return
	}
	if created {
		h.Metrics.ObserveNewsletterSignup("created")
	} else {
		h.Metrics.ObserveNewsletterSignup("existing")
	}
	response.Success(c, gin.H{
		"email":      subscriber.Email,
		"subscribed": true,
		"created":    created,
	})
}

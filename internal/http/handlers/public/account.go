package public

import (
	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/http/response"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAccountMenu 账户菜单
func (h *Handler) GetAccountMenu(c *gin.Context) {
	userID := handlershared.OptionalUserID(c)
	status := service.AuthStatus{SignedIn: userID != 0, UserID: userID}
	if email, ok := c.Get(handlershared.ContextUserEmail); ok {
		status.Email, _ = email.(string)
	}
	response.Success(c, gin.H{
		"signed_in": status.SignedIn,
		"entries":   service.BuildAccountMenu(status),
	})
}

package public

import (
	handlershared "github.com/dujiao-next/storefront/internal/http/handlers/shared"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

// cartOwner 登录用户优先，否则使用匿名会话
func cartOwner(c *gin.Context) repository.CartOwner {
	return repository.CartOwner{
		UserID:    handlershared.OptionalUserID(c),
		SessionID: handlershared.SessionID(c),
	}
}

func messageFor(key string) string {
	return handlershared.Message(key)
}

package shared

import "github.com/gin-gonic/gin"

// 请求上下文键
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextSessionID = "session_id"
)

// OptionalUserID 读取可选的登录用户 ID，未登录返回 0
func OptionalUserID(c *gin.Context) uint {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return 0
	}
	if id, ok := value.(uint); ok {
		return id
	}
	return 0
}

// SessionID 读取匿名会话 ID
func SessionID(c *gin.Context) string {
	if value, ok := c.Get(ContextSessionID); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}

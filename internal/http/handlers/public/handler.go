package public

import "github.com/dujiao-next/storefront/internal/provider"

// Handler 店铺前台接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

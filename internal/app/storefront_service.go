package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/provider"
	"github.com/dujiao-next/storefront/internal/router"
	"github.com/dujiao-next/storefront/internal/service"
)

const readHeaderTimeout = 10 * time.Second

// StorefrontService 店铺 HTTP 接口服务
type StorefrontService struct {
	server         *http.Server
	shippingSource string
	selectionStore string
	currency       string

	mu       sync.Mutex
	listener net.Listener
}

// NewStorefrontService 基于容器装配路由并创建 HTTP 服务
func NewStorefrontService(cfg *config.Config, container *provider.Container) *StorefrontService {
	return &StorefrontService{
		server: &http.Server{
			Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
			Handler:           router.SetupRouter(cfg, container),
			ReadHeaderTimeout: readHeaderTimeout,
		},
		shippingSource: container.ShippingSource,
		selectionStore: service.SelectionStoreBackend(container.SelectionStore),
		currency:       cfg.Storefront.CurrencySymbol,
	}
}

// Name 服务名称
func (s *StorefrontService) Name() string {
	return "http"
}

// Describe 启动日志字段
func (s *StorefrontService) Describe() []interface{} {
	return []interface{}{
		"addr", s.server.Addr,
		"shipping_source", s.shippingSource,
		"selection_store", s.selectionStore,
		"currency", s.currency,
	}
}

// Addr 监听地址；端口为 0 时在 Start 之后返回实际端口
func (s *StorefrontService) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.server.Addr
}

// Start 监听并处理请求，Stop 之后返回 nil
func (s *StorefrontService) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("http server not initialized")
	}
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 等待进行中的请求完成后关闭
func (s *StorefrontService) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

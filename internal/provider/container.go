package provider

import (
	"strings"

	"github.com/dujiao-next/storefront/internal/cache"
	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/metrics"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/queue"
	"github.com/dujiao-next/storefront/internal/repository"
	"github.com/dujiao-next/storefront/internal/service"
	"github.com/dujiao-next/storefront/internal/shipping"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Metrics     *metrics.Registry

	// Repositories
	ProductRepo        repository.ProductRepository
	CartRepo           repository.CartRepository
	ShippingMethodRepo repository.ShippingMethodRepository
	NewsletterRepo     repository.NewsletterRepository

	// Services
	ShippingSource    string
	ShippingFetcher   shipping.Fetcher
	SelectionStore    service.SelectionStore
	CartService       *service.CartService
	CheckoutService   *service.CheckoutService
	NewsletterService *service.NewsletterService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient = nil
	}

	return NewContainerWithDB(cfg, models.DB, queueClient)
}

// NewContainerWithDB 使用指定数据库连接构建容器
func NewContainerWithDB(cfg *config.Config, db *gorm.DB, queueClient *queue.Client) *Container {
	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Metrics:     metrics.New(),
	}
	c.initRepositories(db)
	c.initServices()
	return c
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.ShippingMethodRepo = repository.NewShippingMethodRepository(db)
	c.NewsletterRepo = repository.NewNewsletterRepository(db)
}

func (c *Container) initServices() {
	c.ShippingFetcher = c.buildShippingFetcher()
	c.SelectionStore = service.NewSelectionStore(c.Config.Checkout.SelectionTTL())
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo)
	c.CheckoutService = service.NewCheckoutService(
		c.ShippingFetcher,
		c.SelectionStore,
		c.CartService,
		c.Config.Storefront.CurrencySymbol,
	)

	var newsletterQueue service.NewsletterQueue
	if c.QueueClient.Enabled() {
		newsletterQueue = c.QueueClient
	}
	c.NewsletterService = service.NewNewsletterService(c.NewsletterRepo, newsletterQueue)
}

func (c *Container) buildShippingFetcher() shipping.Fetcher {
	source := strings.ToLower(strings.TrimSpace(c.Config.Shipping.Source))
	if source == constants.ShippingSourceHTTP {
		url := strings.TrimSpace(c.Config.Shipping.RemoteURL)
		if url != "" {
			c.ShippingSource = constants.ShippingSourceHTTP
			return c.Metrics.InstrumentFetcher(c.ShippingSource, shipping.NewHTTPFetcher(url, c.Config.Shipping.Timeout()))
		}
		logger.Warnw("provider_shipping_remote_url_missing", "fallback", constants.ShippingSourceDatabase)
	}
	c.ShippingSource = constants.ShippingSourceDatabase
	return c.Metrics.InstrumentFetcher(c.ShippingSource, shipping.NewRepositoryFetcher(c.ShippingMethodRepo))
}

package router

import (
	"github.com/dujiao-next/storefront/internal/cache"
	"github.com/dujiao-next/storefront/internal/config"
	publichandlers "github.com/dujiao-next/storefront/internal/http/handlers/public"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	newsletterRule := NewsletterRateLimitRule(cfg.Security.NewsletterRateLimit)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))
	r.Use(MetricsMiddleware(c.Metrics))

	apiV1 := r.Group("/api/v1")
	apiV1.Use(SessionMiddleware(), OptionalUserJWTMiddleware(cfg.UserJWT.SecretKey))
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/shipping-methods", publicHandler.GetShippingMethods)
		}

		apiV1.GET("/account/menu", publicHandler.GetAccountMenu)
		apiV1.POST("/newsletter/subscribe",
			RateLimitMiddleware(cache.Client(), newsletterRule, KeyByIPAndJSONField("email")),
			publicHandler.SubscribeNewsletter,
		)

		// 购物车（登录用户或匿名会话）
		cart := apiV1.Group("/cart")
		{
			cart.GET("", publicHandler.GetCart)
			cart.POST("/items", publicHandler.UpsertCartItem)
			cart.DELETE("/items/:product_id", publicHandler.DeleteCartItem)
		}

		// 结算
		checkout := apiV1.Group("/checkout")
		{
			checkout.GET("/shipping-options", publicHandler.GetShippingOptions)
			checkout.PUT("/shipping", publicHandler.SelectShipping)
			checkout.GET("/summary", publicHandler.GetCheckoutSummary)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(c.Metrics.Handler()))

	return r
}

package main

import (
	"context"

	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/repository"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(nil); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	ctx := context.Background()

	// 添加商品
	products := []models.Product{
		{
			Slug:        "hydrating-serum",
			Name:        "Hydrating Serum",
			PriceAmount: models.MustMoney("19.99"),
			Image:       "/images/products/hydrating-serum.jpg",
			IsActive:    true,
		},
		{
			Slug:        "gentle-cleanser",
			Name:        "Gentle Cleanser",
			PriceAmount: models.MustMoney("12.50"),
			Image:       "/images/products/gentle-cleanser.jpg",
			IsActive:    true,
		},
		{
			Slug:        "daily-sunscreen-spf50",
			Name:        "Daily Sunscreen SPF 50",
			PriceAmount: models.MustMoney("24.00"),
			Image:       "/images/products/daily-sunscreen.jpg",
			IsActive:    true,
		},
		{
			Slug:        "night-repair-cream",
			Name:        "Night Repair Cream",
			PriceAmount: models.MustMoney("32.75"),
			Image:       "/images/products/night-repair-cream.jpg",
			IsActive:    true,
		},
	}

	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("slug = ?", product.Slug).First(&existing).Error; err != nil {
			// 不存在则创建
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", product.Slug)
			}
		} else {
			stdLog.Printf("Product already exists: %s", product.Slug)
		}
	}

	// 添加配送方式，第一个启用的方式作为默认选项
	shippingRepo := repository.NewShippingMethodRepository(models.DB)
	methods := []models.ShippingMethod{
		{ID: "m1", Name: "Standard", EstimatedDelivery: "3-5 business days", Price: "5.00", SortOrder: 1, IsActive: true},
		{ID: "m2", Name: "Express", EstimatedDelivery: "1-2 business days", Price: "10.00", SortOrder: 2, IsActive: true},
	}
	for i := range methods {
		if err := shippingRepo.Upsert(ctx, &methods[i]); err != nil {
			stdLog.Printf("Failed to upsert shipping method %s: %v", methods[i].ID, err)
			continue
		}
		stdLog.Printf("Upserted shipping method: %s", methods[i].ID)
	}

	stdLog.Println("Seed completed")
}

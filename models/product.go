package models

import (
	"context"
	"time"

	"github.com/opencantine/pantry_backend/config"
)

// Product is a shared stock item. Qty is kept non-negative by the restock
// processor's conditional writes, never by values supplied by clients.
type Product struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Qty       int       `gorm:"not null;default:0" json:"qty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

const productListCacheKey = "ProductList"
const productListCacheTTL = 30 * time.Second

// ListProducts reads current stock straight from the database.
func ListProducts(ctx context.Context) ([]Product, error) {
	db := config.GetDB()
	var products []Product
	if err := db.WithContext(ctx).Order("name ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListProductsCached serves the product list for display. The snapshot may lag
// behind a concurrent restock by up to the cache TTL; anything that mutates
// stock must read through ListProducts (or a locked read) instead.
func ListProductsCached(ctx context.Context) ([]Product, error) {
	var cached []Product
	if ok, err := config.GetRedisObject(productListCacheKey, &cached); err == nil && ok {
		return cached, nil
	}

	products, err := ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if err := config.SetRedisObject(productListCacheKey, products, productListCacheTTL); err != nil {
		config.LogError(config.GetLogger(), "product.go", "ListProductsCached", "SetRedisObject", nil, err)
	}
	return products, nil
}

func invalidateProductListCache() {
	if err := config.RemoveRedisKey(productListCacheKey); err != nil {
		config.LogError(config.GetLogger(), "product.go", "invalidateProductListCache", "RemoveRedisKey", nil, err)
	}
}

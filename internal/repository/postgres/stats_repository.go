package postgres

import (
	"context"
	"misikaMarket/domain"

	"gorm.io/gorm"
)

// StatsRepository runs the read-only aggregates behind the admin dashboards.
type StatsRepository struct {
	DB *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{
		DB: db,
	}
}

func (r *StatsRepository) ProductCounts(ctx context.Context) (domain.ProductCounts, error) {
	var counts domain.ProductCounts

	err := conn(ctx, r.DB).Model(&domain.Product{}).
		Select("COUNT(*) AS total, COUNT(*) FILTER (WHERE is_active) AS active, COUNT(*) FILTER (WHERE is_active AND is_featured) AS featured").
		Scan(&counts).Error
	if err != nil {
		return domain.ProductCounts{}, translateError(err, "product")
	}

	return counts, nil
}

// InventoryCounts counts active products; low stock includes out of stock.
func (r *StatsRepository) InventoryCounts(ctx context.Context, threshold int) (domain.InventoryCounts, error) {
	var counts domain.InventoryCounts

	err := conn(ctx, r.DB).Model(&domain.Product{}).
		Where("is_active = ?", true).
		Select("COUNT(*) AS total, COUNT(*) FILTER (WHERE stock <= ?) AS low_stock, COUNT(*) FILTER (WHERE stock = 0) AS out_of_stock", threshold).
		Scan(&counts).Error
	if err != nil {
		return domain.InventoryCounts{}, translateError(err, "product")
	}

	return counts, nil
}

func (r *StatsRepository) LowStockItems(ctx context.Context, threshold, limit int) ([]domain.InventoryItem, error) {
	var items []domain.InventoryItem

	err := conn(ctx, r.DB).Model(&domain.Product{}).
		Select("products.id, products.name, products.sku, products.stock, categories.name AS category_name").
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("products.is_active = ? AND products.stock <= ?", true, threshold).
		Order("products.stock ASC").
		Order("products.name ASC").
		Limit(limit).
		Scan(&items).Error
	if err != nil {
		return nil, translateError(err, "product")
	}

	return items, nil
}

func (r *StatsRepository) ProductsByCategory(ctx context.Context) ([]domain.CategoryCount, error) {
	var counts []domain.CategoryCount

	err := conn(ctx, r.DB).Model(&domain.Category{}).
		Select("categories.id, categories.name, COUNT(products.id) AS product_count").
		Joins("LEFT JOIN products ON products.category_id = categories.id AND products.is_active").
		Where("categories.is_active = ?", true).
		Group("categories.id, categories.name").
		Order("categories.name ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, translateError(err, "category")
	}

	return counts, nil
}

func (r *StatsRepository) RecentProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	var products []domain.Product

	err := conn(ctx, r.DB).Preload("Category").
		Where("is_active = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, translateError(err, "product")
	}

	return products, nil
}

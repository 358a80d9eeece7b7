package postgres

import (
	"context"
	"misikaMarket/domain"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartRepository struct {
	DB *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{
		DB: db,
	}
}

// FindByUser returns the user's lines with their products, oldest first.
func (r *CartRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	var items []domain.CartItem

	err := conn(ctx, r.DB).Preload("Product").Preload("Product.Category").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, translateError(err, "cart item")
	}

	return items, nil
}

func (r *CartRepository) FindItem(ctx context.Context, userID, itemID uuid.UUID) (domain.CartItem, error) {
	var item domain.CartItem

	err := conn(ctx, r.DB).Preload("Product").
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		return domain.CartItem{}, translateError(err, "cart item")
	}

	return item, nil
}

func (r *CartRepository) FindByProduct(ctx context.Context, userID, productID uuid.UUID) (domain.CartItem, error) {
	var item domain.CartItem

	err := conn(ctx, r.DB).Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	if err != nil {
		return domain.CartItem{}, translateError(err, "cart item")
	}

	return item, nil
}

func (r *CartRepository) Create(ctx context.Context, item *domain.CartItem) error {
	if err := conn(ctx, r.DB).Omit("Product").Create(item).Error; err != nil {
		return translateError(err, "cart item")
	}

	return nil
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	result := conn(ctx, r.DB).Model(&domain.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Updates(map[string]any{"quantity": quantity, "updated_at": time.Now()})
	if result.Error != nil {
		return translateError(result.Error, "cart item")
	}

	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("cart item")
	}

	return nil
}

func (r *CartRepository) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	result := conn(ctx, r.DB).Where("id = ? AND user_id = ?", itemID, userID).Delete(&domain.CartItem{})
	if result.Error != nil {
		return translateError(result.Error, "cart item")
	}

	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("cart item")
	}

	return nil
}

func (r *CartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := conn(ctx, r.DB).Where("user_id = ?", userID).Delete(&domain.CartItem{}).Error; err != nil {
		return translateError(err, "cart item")
	}

	return nil
}

func (r *CartRepository) CountItems(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64

	err := conn(ctx, r.DB).Model(&domain.CartItem{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&count).Error
	if err != nil {
		return 0, translateError(err, "cart item")
	}

	return count, nil
}

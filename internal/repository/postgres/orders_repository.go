package postgres

import (
	"context"
	"misikaMarket/domain"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrdersRepository struct {
	DB *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{
		DB: db,
	}
}

// Create inserts the order together with its items and payment.
func (r *OrdersRepository) Create(ctx context.Context, order *domain.Order) error {
	err := conn(ctx, r.DB).Omit("Address", "User", "Items.Product").Create(order).Error
	if err != nil {
		return translateError(err, "order")
	}

	return nil
}

func (r *OrdersRepository) FindByUser(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]domain.Order, int64, error) {
	query := conn(ctx, r.DB).Model(&domain.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "order")
	}

	var orders []domain.Order
	err := query.Preload("Items").Preload("Payment").
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, translateError(err, "order")
	}

	return orders, total, nil
}

func (r *OrdersRepository) FindOwned(ctx context.Context, userID, orderID uuid.UUID) (domain.Order, error) {
	var order domain.Order

	err := conn(ctx, r.DB).Preload("Items.Product").Preload("Payment").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		return domain.Order{}, translateError(err, "order")
	}

	return order, nil
}

func (r *OrdersRepository) FindByID(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	var order domain.Order

	err := conn(ctx, r.DB).Preload("Items").Preload("Payment").Preload("User").
		First(&order, "id = ?", orderID).Error
	if err != nil {
		return domain.Order{}, translateError(err, "order")
	}

	return order, nil
}

// Lock loads the order row FOR UPDATE with its items. A nil userID skips the
// ownership filter.
func (r *OrdersRepository) Lock(ctx context.Context, userID *uuid.UUID, orderID uuid.UUID) (domain.Order, error) {
	var order domain.Order

	query := conn(ctx, r.DB).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", orderID)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if err := query.First(&order).Error; err != nil {
		return domain.Order{}, translateError(err, "order")
	}

	if err := conn(ctx, r.DB).Where("order_id = ?", order.ID).Find(&order.Items).Error; err != nil {
		return domain.Order{}, translateError(err, "order item")
	}

	return order, nil
}

func (r *OrdersRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error {
	result := conn(ctx, r.DB).Model(&domain.Order{}).Where("id = ?", orderID).
		Updates(map[string]any{"status": status, "updated_at": time.Now()})
	if result.Error != nil {
		return translateError(result.Error, "order")
	}

	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("order")
	}

	return nil
}

// ConfirmPending moves a PENDING order to CONFIRMED and reports whether it did.
func (r *OrdersRepository) ConfirmPending(ctx context.Context, orderID uuid.UUID) (bool, error) {
	result := conn(ctx, r.DB).Model(&domain.Order{}).
		Where("id = ? AND status = ?", orderID, domain.OrderPending).
		Updates(map[string]any{"status": domain.OrderConfirmed, "updated_at": time.Now()})
	if result.Error != nil {
		return false, translateError(result.Error, "order")
	}

	return result.RowsAffected == 1, nil
}

func (r *OrdersRepository) List(ctx context.Context, status string, page domain.PageRequest) ([]domain.Order, int64, error) {
	query := conn(ctx, r.DB).Model(&domain.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "order")
	}

	var orders []domain.Order
	err := query.Preload("User").Preload("Items").Preload("Payment").
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, translateError(err, "order")
	}

	return orders, total, nil
}

func (r *OrdersRepository) Recent(ctx context.Context, userID *uuid.UUID, limit int) ([]domain.Order, error) {
	var orders []domain.Order

	query := conn(ctx, r.DB).Preload("Items").Order("created_at DESC").Limit(limit)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	} else {
		query = query.Preload("User")
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, translateError(err, "order")
	}

	return orders, nil
}

func (r *OrdersRepository) Count(ctx context.Context, userID *uuid.UUID, status string) (int64, error) {
	var count int64

	query := conn(ctx, r.DB).Model(&domain.Order{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, translateError(err, "order")
	}

	return count, nil
}

// Revenue sums the totals of orders in the given status.
func (r *OrdersRepository) Revenue(ctx context.Context, status domain.OrderStatus) (decimal.Decimal, error) {
	var sum decimal.NullDecimal

	err := conn(ctx, r.DB).Model(&domain.Order{}).
		Where("status = ?", status).
		Select("SUM(total)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, translateError(err, "order")
	}

	if !sum.Valid {
		return decimal.Zero, nil
	}

	return sum.Decimal, nil
}

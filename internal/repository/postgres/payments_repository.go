package postgres

import (
	"context"
	"misikaMarket/domain"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentsRepository struct {
	DB *gorm.DB
}

func NewPaymentsRepository(db *gorm.DB) *PaymentsRepository {
	return &PaymentsRepository{
		DB: db,
	}
}

func (r *PaymentsRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) (domain.Payment, error) {
	var payment domain.Payment

	if err := conn(ctx, r.DB).Where("order_id = ?", orderID).First(&payment).Error; err != nil {
		return domain.Payment{}, translateError(err, "payment")
	}

	return payment, nil
}

func (r *PaymentsRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string, gatewayID *string) error {
	updates := map[string]any{"status": status, "updated_at": time.Now()}
	if gatewayID != nil {
		updates["gateway_payment_id"] = *gatewayID
	}

	result := conn(ctx, r.DB).Model(&domain.Payment{}).Where("order_id = ?", orderID).Updates(updates)
	if result.Error != nil {
		return translateError(result.Error, "payment")
	}

	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("payment")
	}

	return nil
}

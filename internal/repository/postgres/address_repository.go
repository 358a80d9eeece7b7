package postgres

import (
	"context"
	"misikaMarket/domain"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AddressRepository struct {
	DB *gorm.DB
}

func NewAddressRepository(db *gorm.DB) *AddressRepository {
	return &AddressRepository{
		DB: db,
	}
}

func (r *AddressRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.Address, error) {
	var addresses []domain.Address

	err := conn(ctx, r.DB).Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("created_at DESC").
		Find(&addresses).Error
	if err != nil {
		return nil, translateError(err, "address")
	}

	return addresses, nil
}

func (r *AddressRepository) FindOwned(ctx context.Context, userID, id uuid.UUID) (domain.Address, error) {
	var address domain.Address

	err := conn(ctx, r.DB).Where("id = ? AND user_id = ?", id, userID).First(&address).Error
	if err != nil {
		return domain.Address{}, translateError(err, "address")
	}

	return address, nil
}

func (r *AddressRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64

	if err := conn(ctx, r.DB).Model(&domain.Address{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, translateError(err, "address")
	}

	return count, nil
}

func (r *AddressRepository) Create(ctx context.Context, address *domain.Address) error {
	if err := conn(ctx, r.DB).Create(address).Error; err != nil {
		return translateError(err, "address")
	}

	return nil
}

func (r *AddressRepository) Update(ctx context.Context, address *domain.Address) error {
	address.UpdatedAt = time.Now()

	result := conn(ctx, r.DB).Model(&domain.Address{}).
		Where("id = ? AND user_id = ?", address.ID, address.UserID).
		Select("first_name", "last_name", "phone", "address_line1", "address_line2", "city", "state", "postal_code", "country", "is_default", "updated_at").
		Updates(address)
	if result.Error != nil {
		return translateError(result.Error, "address")
	}

	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("address")
	}

	return nil
}

// UnsetDefaults clears the default flag on every address of the user.
func (r *AddressRepository) UnsetDefaults(ctx context.Context, userID uuid.UUID) error {
	err := conn(ctx, r.DB).Model(&domain.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Updates(map[string]any{"is_default": false, "updated_at": time.Now()}).Error
	if err != nil {
		return translateError(err, "address")
	}

	return nil
}

func (r *AddressRepository) SetDefault(ctx context.Context, userID, id uuid.UUID) error {
	result := conn(ctx, r.DB).Model(&domain.Address{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"is_default": true, "updated_at": time.Now()})
	if result.Error != nil {
		return translateError(result.Error, "address")
	}

	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("address")
	}

	return nil
}

func (r *AddressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := conn(ctx, r.DB).Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Address{})
	if result.Error != nil {
		return translateError(result.Error, "address")
	}

	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("address")
	}

	return nil
}

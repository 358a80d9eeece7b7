package postgres

import (
	"context"
	"misikaMarket/domain"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContactRepository struct {
	DB *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{
		DB: db,
	}
}

func (r *ContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	if err := conn(ctx, r.DB).Create(contact).Error; err != nil {
		return translateError(err, "contact")
	}

	return nil
}

func (r *ContactRepository) List(ctx context.Context, isRead *bool, page domain.PageRequest) ([]domain.Contact, int64, error) {
	query := conn(ctx, r.DB).Model(&domain.Contact{})
	if isRead != nil {
		query = query.Where("is_read = ?", *isRead)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "contact")
	}

	var contacts []domain.Contact
	err := query.Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&contacts).Error
	if err != nil {
		return nil, 0, translateError(err, "contact")
	}

	return contacts, total, nil
}

func (r *ContactRepository) MarkRead(ctx context.Context, id uuid.UUID) (domain.Contact, error) {
	result := conn(ctx, r.DB).Model(&domain.Contact{}).Where("id = ?", id).
		Updates(map[string]any{"is_read": true, "updated_at": time.Now()})
	if result.Error != nil {
		return domain.Contact{}, translateError(result.Error, "contact")
	}

	if result.RowsAffected == 0 {
		return domain.Contact{}, domain.NewNotFoundError("contact")
	}

	var contact domain.Contact
	if err := conn(ctx, r.DB).First(&contact, "id = ?", id).Error; err != nil {
		return domain.Contact{}, translateError(err, "contact")
	}

	return contact, nil
}

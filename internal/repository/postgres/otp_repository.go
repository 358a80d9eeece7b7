package postgres

import (
	"context"
	"misikaMarket/domain"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OTPRepository struct {
	DB *gorm.DB
}

func NewOTPRepository(db *gorm.DB) *OTPRepository {
	return &OTPRepository{
		DB: db,
	}
}

// Upsert stores the code for (email, purpose), replacing any pending one.
func (r *OTPRepository) Upsert(ctx context.Context, otp *domain.OTPVerification) error {
	err := conn(ctx, r.DB).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}, {Name: "purpose"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at", "payload", "created_at"}),
	}).Create(otp).Error
	if err != nil {
		return translateError(err, "otp")
	}

	return nil
}

func (r *OTPRepository) Find(ctx context.Context, email, purpose string) (domain.OTPVerification, error) {
	var otp domain.OTPVerification

	err := conn(ctx, r.DB).Where("email = ? AND purpose = ?", email, purpose).First(&otp).Error
	if err != nil {
		return domain.OTPVerification{}, translateError(err, "otp")
	}

	return otp, nil
}

// Consume deletes the code for (email, purpose) only while it matches and is
// unexpired at now. Of two concurrent consumers exactly one deletes the row.
func (r *OTPRepository) Consume(ctx context.Context, email, purpose, code string, now time.Time) error {
	result := conn(ctx, r.DB).
		Where("email = ? AND purpose = ? AND code = ? AND expires_at > ?", email, purpose, code, now).
		Delete(&domain.OTPVerification{})
	if result.Error != nil {
		return translateError(result.Error, "otp")
	}

	if result.RowsAffected == 0 {
		return domain.ErrInvalidOTP
	}

	return nil
}

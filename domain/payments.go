package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
)

type Payment struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID          uuid.UUID       `gorm:"type:uuid;column:order_id;uniqueIndex;not null" json:"orderId"`
	PaymentMethod    string          `gorm:"column:payment_method;not null" json:"paymentMethod"`
	Amount           decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Status           string          `gorm:"column:status;not null;default:PENDING" json:"status"`
	GatewayPaymentID *string         `gorm:"column:gateway_payment_id" json:"gatewayPaymentId,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PaymentIntent is what the gateway returns when a client payment is started.
type PaymentIntent struct {
	ID           string            `json:"paymentIntentId"`
	ClientSecret string            `json:"clientSecret"`
	Status       string            `json:"status,omitempty"`
	Amount       int64             `json:"-"`
	Metadata     map[string]string `json:"-"`
}

const (
	VerificationVerified     = "verified"
	VerificationFailed       = "failed"
	VerificationPending      = "pending"
	VerificationManualReview = "manual_review"
)

type PaymentVerification struct {
	Verified      bool   `json:"verified"`
	TransactionID string `json:"transactionId,omitempty"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

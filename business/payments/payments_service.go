package payments

import (
	"context"
	"errors"
	"fmt"
	"misikaMarket/domain"
	"misikaMarket/pkg/logger"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentGateway contract interface
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amountMinor int64, metadata map[string]string) (domain.PaymentIntent, error)
	GetPaymentIntent(ctx context.Context, id string) (domain.PaymentIntent, error)
}

// PaymentsRepository contract interface
type PaymentsRepository interface {
	FindByOrder(ctx context.Context, orderID uuid.UUID) (domain.Payment, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string, gatewayID *string) error
}

// OrdersRepository contract interface
type OrdersRepository interface {
	FindOwned(ctx context.Context, userID, orderID uuid.UUID) (domain.Order, error)
	ConfirmPending(ctx context.Context, orderID uuid.UUID) (bool, error)
}

// Transactor contract interface
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Stripe payment intent states the service acts on.
const (
	intentSucceeded = "succeeded"
	intentCanceled  = "canceled"
)

type VerifyInput struct {
	PaymentMethod   string
	PaymentIntentID string
	OrderID         *uuid.UUID
}

type PaymentsService struct {
	gateway     PaymentGateway
	paymentRepo PaymentsRepository
	orderRepo   OrdersRepository
	tx          Transactor
	now         func() time.Time
}

// NewPaymentsService accepts a nil gateway when Stripe is not configured;
// card operations then fail with an upstream error.
func NewPaymentsService(gateway PaymentGateway, paymentRepo PaymentsRepository, orderRepo OrdersRepository, tx Transactor) *PaymentsService {
	return &PaymentsService{
		gateway:     gateway,
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		tx:          tx,
		now:         time.Now,
	}
}

var errGatewayDisabled = domain.NewUpstreamError("payment gateway is not configured", nil)

func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// CreateIntent starts a card payment for amount in major currency units.
func (s *PaymentsService) CreateIntent(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID *uuid.UUID) (domain.PaymentIntent, error) {
	if !amount.IsPositive() {
		return domain.PaymentIntent{}, domain.NewValidationError("amount must be greater than zero")
	}

	if s.gateway == nil {
		return domain.PaymentIntent{}, errGatewayDisabled
	}

	metadata := map[string]string{"userId": userID.String()}
	if orderID != nil {
		if _, err := s.orderRepo.FindOwned(ctx, userID, *orderID); err != nil {
			return domain.PaymentIntent{}, err
		}
		metadata["orderId"] = orderID.String()
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, minorUnits(amount), metadata)
	if err != nil {
		logger.Error("Failed to create payment intent", err)
		return domain.PaymentIntent{}, err
	}

	return intent, nil
}

// Verify checks a payment with the method's source of truth. A verified or
// cancelled result is written back to the order when the caller owns it.
func (s *PaymentsService) Verify(ctx context.Context, userID uuid.UUID, input VerifyInput) (domain.PaymentVerification, error) {
	if !domain.IsPaymentMethod(input.PaymentMethod) {
		return domain.PaymentVerification{}, domain.NewValidationError("paymentMethod must be one of COD, STRIPE, UPI, NET_BANKING")
	}

	var order *domain.Order
	if input.OrderID != nil {
		found, err := s.orderRepo.FindOwned(ctx, userID, *input.OrderID)
		if err != nil {
			return domain.PaymentVerification{}, err
		}
		if found.PaymentMethod != input.PaymentMethod {
			return domain.PaymentVerification{}, domain.NewValidationError("paymentMethod does not match the order")
		}
		order = &found
	}

	var result domain.PaymentVerification
	switch input.PaymentMethod {
	case domain.PaymentCOD:
		result = domain.PaymentVerification{
			Verified:      true,
			TransactionID: fmt.Sprintf("COD_%d", s.now().UnixMilli()),
			Status:        domain.VerificationVerified,
			Message:       "Cash on delivery confirmed",
		}

	case domain.PaymentStripe:
		var err error
		result, err = s.verifyStripe(ctx, input.PaymentIntentID, order)
		if err != nil {
			return domain.PaymentVerification{}, err
		}

	default:
		result = domain.PaymentVerification{
			Verified: false,
			Status:   domain.VerificationManualReview,
			Message:  fmt.Sprintf("%s payments are verified manually", input.PaymentMethod),
		}
	}

	// COD payments are settled at checkout.
	if order != nil && order.PaymentMethod != domain.PaymentCOD {
		if err := s.record(ctx, *order, result); err != nil {
			return domain.PaymentVerification{}, err
		}
	}

	return result, nil
}

// verifyStripe reads the intent from Stripe. When order is set the intent must
// have been created for that order and its total.
func (s *PaymentsService) verifyStripe(ctx context.Context, intentID string, order *domain.Order) (domain.PaymentVerification, error) {
	if intentID == "" {
		return domain.PaymentVerification{}, domain.NewValidationError("paymentIntentId is required for STRIPE payments")
	}

	if s.gateway == nil {
		return domain.PaymentVerification{}, errGatewayDisabled
	}

	intent, err := s.gateway.GetPaymentIntent(ctx, intentID)
	if err != nil {
		if !domain.IsNotFound(err) {
			logger.Error("Failed to retrieve payment intent", err)
		}
		return domain.PaymentVerification{}, err
	}

	if order != nil {
		if intent.Metadata["orderId"] != order.ID.String() {
			return domain.PaymentVerification{}, domain.NewValidationError("payment intent does not belong to the order")
		}
		if intent.Amount != minorUnits(order.Total) {
			return domain.PaymentVerification{}, domain.NewValidationError("payment intent amount does not match the order total")
		}
	}

	switch intent.Status {
	case intentSucceeded:
		return domain.PaymentVerification{Verified: true, TransactionID: intent.ID, Status: domain.VerificationVerified, Message: "Payment succeeded"}, nil
	case intentCanceled:
		return domain.PaymentVerification{TransactionID: intent.ID, Status: domain.VerificationFailed, Message: "Payment was canceled"}, nil
	}

	return domain.PaymentVerification{
		TransactionID: intent.ID,
		Status:        domain.VerificationPending,
		Message:       fmt.Sprintf("Payment is %s", intent.Status),
	}, nil
}

// record applies a verification result to the order's payment row. Only
// PENDING orders accept a result.
func (s *PaymentsService) record(ctx context.Context, order domain.Order, result domain.PaymentVerification) error {
	var status string
	switch {
	case result.Verified:
		status = domain.PaymentStatusCompleted
	case result.Status == domain.VerificationFailed:
		status = domain.PaymentStatusFailed
	default:
		return nil
	}

	if order.Status != domain.OrderPending {
		return domain.ErrInvalidTransition.WithMessage(fmt.Sprintf("order is %s and no longer awaits payment", order.Status))
	}

	var gatewayID *string
	if result.TransactionID != "" {
		id := result.TransactionID
		gatewayID = &id
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.paymentRepo.UpdateStatus(ctx, order.ID, status, gatewayID); err != nil {
			return err
		}

		if status != domain.PaymentStatusCompleted {
			return nil
		}

		confirmed, err := s.orderRepo.ConfirmPending(ctx, order.ID)
		if err != nil {
			return err
		}
		// Cancelled or confirmed in the meantime.
		if !confirmed {
			return domain.ErrInvalidTransition.WithMessage("order no longer awaits payment")
		}

		logger.Info("order confirmed by payment", "order_id", order.ID)
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidTransition) {
			logger.Error("Failed to record payment verification", err)
		}
		return err
	}

	return nil
}

func (s *PaymentsService) GetPayment(ctx context.Context, userID, orderID uuid.UUID) (domain.Payment, error) {
	if _, err := s.orderRepo.FindOwned(ctx, userID, orderID); err != nil {
		return domain.Payment{}, err
	}

	return s.paymentRepo.FindByOrder(ctx, orderID)
}

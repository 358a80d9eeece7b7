package rest

import (
	"context"
	"misikaMarket/business/payments"
	"misikaMarket/domain"
	"net/http"
	"time"

	jsonres "misikaMarket/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type PaymentsService interface {
	CreateIntent(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID *uuid.UUID) (domain.PaymentIntent, error)
	Verify(ctx context.Context, userID uuid.UUID, input payments.VerifyInput) (domain.PaymentVerification, error)
	GetPayment(ctx context.Context, userID, orderID uuid.UUID) (domain.Payment, error)
}

type PaymentsHandler struct {
	paymentsService PaymentsService
	validator       *validator.Validate
	timeout         time.Duration
}

func NewPaymentsHandler(paymentsService PaymentsService, v *validator.Validate, timeout time.Duration) *PaymentsHandler {
	return &PaymentsHandler{
		paymentsService: paymentsService,
		validator:       v,
		timeout:         timeout,
	}
}

type CreateIntentRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	OrderID string          `json:"orderId" validate:"omitempty,uuid"`
}

type VerifyPaymentRequest struct {
	PaymentMethod   string `json:"paymentMethod" validate:"required"`
	PaymentIntentID string `json:"paymentIntentId"`
	OrderID         string `json:"orderId" validate:"omitempty,uuid"`
}

func optionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id := uuid.MustParse(s)
	return &id
}

func (h *PaymentsHandler) CreateIntent(c echo.Context) error {
	userID, err := accountID(c)
	if err != nil {
		return err
	}

	var req CreateIntentRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	intent, err := h.paymentsService.CreateIntent(ctx, userID, req.Amount, optionalUUID(req.OrderID))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Payment intent created successfully", intent))
}

func (h *PaymentsHandler) Verify(c echo.Context) error {
	userID, err := accountID(c)
	if err != nil {
		return err
	}

	var req VerifyPaymentRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.paymentsService.Verify(ctx, userID, payments.VerifyInput{
		PaymentMethod:   req.PaymentMethod,
		PaymentIntentID: req.PaymentIntentID,
		OrderID:         optionalUUID(req.OrderID),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success(result.Message, result))
}

func (h *PaymentsHandler) GetPayment(c echo.Context) error {
	userID, err := accountID(c)
	if err != nil {
		return err
	}

	orderID, err := paramUUID(c, "orderId")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	payment, err := h.paymentsService.GetPayment(ctx, userID, orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Payment retrieved successfully", payment))
}

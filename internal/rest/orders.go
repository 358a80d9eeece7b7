package rest

import (
	"context"
	"misikaMarket/domain"
	"net/http"
	"time"

	jsonres "misikaMarket/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type OrdersService interface {
	Preview(ctx context.Context, userID, addressID uuid.UUID, paymentMethod string) (domain.OrderPreview, error)
	PlaceOrder(ctx context.Context, userID uuid.UUID, input domain.PlaceOrderInput) (domain.Order, error)
	GetOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.Order, domain.Pagination, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (domain.Order, error)
	CancelOrder(ctx context.Context, userID, orderID uuid.UUID) error
}

type OrdersHandler struct {
	ordersService OrdersService
	validator     *validator.Validate
	timeout       time.Duration
}

func NewOrdersHandler(ordersService OrdersService, v *validator.Validate, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		ordersService: ordersService,
		validator:     v,
		timeout:       timeout,
	}
}

type CheckoutRequest struct {
	AddressID     string `json:"addressId" validate:"required,uuid"`
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=COD STRIPE UPI NET_BANKING"`
}

type CreateOrderRequest struct {
	AddressID       string `json:"addressId" validate:"required,uuid"`
	PaymentMethod   string `json:"paymentMethod" validate:"required,oneof=COD STRIPE UPI NET_BANKING"`
	PaymentIntentID string `json:"paymentIntentId"`
	Notes           string `json:"notes" validate:"max=500"`
}

func (h *OrdersHandler) Checkout(c echo.Context) error {
	userID, err := accountID(c)
	if err != nil {
		return err
	}

	var req CheckoutRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	preview, err := h.ordersService.Preview(ctx, userID, uuid.MustParse(req.AddressID), req.PaymentMethod)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Checkout summary retrieved successfully", preview))
}

func (h *OrdersHandler) CreateOrder(c echo.Context) error {
	userID, err := accountID(c)
	if err != nil {
		return err
	}

	var req CreateOrderRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.PlaceOrder(ctx, userID, domain.PlaceOrderInput{
		AddressID:       uuid.MustParse(req.AddressID),
		PaymentMethod:   req.PaymentMethod,
		PaymentIntentID: req.PaymentIntentID,
		Notes:           req.Notes,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, jsonres.Success("Order created successfully", order))
}

func (h *OrdersHandler) GetOrders(c echo.Context) error {
	userID, err := accountID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	orders, pagination, err := h.ordersService.GetOrders(ctx, userID, queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Paginated("Orders retrieved successfully", orders, pagination))
}

func (h *OrdersHandler) GetOrder(c echo.Context) error {
	userID, err := accountID(c)
	if err != nil {
		return err
	}

	orderID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.ordersService.GetOrder(ctx, userID, orderID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Order retrieved successfully", order))
}

func (h *OrdersHandler) CancelOrder(c echo.Context) error {
	userID, err := accountID(c)
	if err != nil {
		return err
	}

	orderID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.ordersService.CancelOrder(ctx, userID, orderID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Order cancelled successfully", nil))
}

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

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (domain.Cart, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (domain.CartItem, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (domain.CartItem, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

type CartHandler struct {
	cartService CartService
	validator   *validator.Validate
	timeout     time.Duration
}

func NewCartHandler(cartService CartService, v *validator.Validate, timeout time.Duration) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validator:   v,
		timeout:     timeout,
	}
}

type AddToCartRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

func (h *CartHandler) GetCart(c echo.Context) error {
	userID, err := accountID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cart, err := h.cartService.GetCart(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Cart retrieved successfully", cart))
}

func (h *CartHandler) AddItem(c echo.Context) error {
	userID, err := accountID(c)
	if err != nil {
		return err
	}

	var req AddToCartRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	item, err := h.cartService.AddItem(ctx, userID, uuid.MustParse(req.ProductID), req.Quantity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Item added to cart successfully", item))
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	userID, err := accountID(c)
	if err != nil {
		return err
	}

	itemID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateCartItemRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	item, err := h.cartService.UpdateItem(ctx, userID, itemID, req.Quantity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Cart item updated successfully", item))
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	userID, err := accountID(c)
	if err != nil {
		return err
	}

	itemID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.cartService.RemoveItem(ctx, userID, itemID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Item removed from cart successfully", nil))
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	userID, err := accountID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.cartService.ClearCart(ctx, userID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Cart cleared successfully", nil))
}

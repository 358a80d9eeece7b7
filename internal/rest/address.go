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

type AddressService interface {
	GetAddresses(ctx context.Context, userID uuid.UUID) ([]domain.Address, error)
	CreateAddress(ctx context.Context, userID uuid.UUID, address domain.Address) (domain.Address, error)
	UpdateAddress(ctx context.Context, userID, id uuid.UUID, patch domain.AddressPatch) (domain.Address, error)
	DeleteAddress(ctx context.Context, userID, id uuid.UUID) error
	SetDefaultAddress(ctx context.Context, userID, id uuid.UUID) (domain.Address, error)
}

type AddressHandler struct {
	addressService AddressService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewAddressHandler(addressService AddressService, v *validator.Validate, timeout time.Duration) *AddressHandler {
	return &AddressHandler{
		addressService: addressService,
		validator:      v,
		timeout:        timeout,
	}
}

type CreateAddressRequest struct {
	FirstName    string `json:"firstName" validate:"required,min=2,max=50"`
	LastName     string `json:"lastName" validate:"required,min=2,max=50"`
	Phone        string `json:"phone" validate:"required,numeric,len=10"`
	AddressLine1 string `json:"addressLine1" validate:"required,min=5"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city" validate:"required,min=2"`
	State        string `json:"state" validate:"required,min=2"`
	PostalCode   string `json:"postalCode" validate:"required,numeric,len=6"`
	Country      string `json:"country"`
	IsDefault    bool   `json:"isDefault"`
}

type UpdateAddressRequest struct {
	FirstName    *string `json:"firstName" validate:"omitempty,min=2,max=50"`
	LastName     *string `json:"lastName" validate:"omitempty,min=2,max=50"`
	Phone        *string `json:"phone" validate:"omitempty,numeric,len=10"`
	AddressLine1 *string `json:"addressLine1" validate:"omitempty,min=5"`
	AddressLine2 *string `json:"addressLine2"`
	City         *string `json:"city" validate:"omitempty,min=2"`
	State        *string `json:"state" validate:"omitempty,min=2"`
	PostalCode   *string `json:"postalCode" validate:"omitempty,numeric,len=6"`
	Country      *string `json:"country"`
	IsDefault    *bool   `json:"isDefault"`
}

func (h *AddressHandler) GetAddresses(c echo.Context) error {
	userID, err := accountID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	addresses, err := h.addressService.GetAddresses(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Addresses retrieved successfully", addresses))
}

func (h *AddressHandler) CreateAddress(c echo.Context) error {
	userID, err := accountID(c)
	if err != nil {
		return err
	}

	var req CreateAddressRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	address, err := h.addressService.CreateAddress(ctx, userID, domain.Address{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		IsDefault:    req.IsDefault,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, jsonres.Success("Address created successfully", address))
}

func (h *AddressHandler) UpdateAddress(c echo.Context) error {
	userID, err := accountID(c)
	if err != nil {
		return err
	}

	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateAddressRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	address, err := h.addressService.UpdateAddress(ctx, userID, id, domain.AddressPatch{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		IsDefault:    req.IsDefault,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Address updated successfully", address))
}

func (h *AddressHandler) DeleteAddress(c echo.Context) error {
	userID, err := accountID(c)
	if err != nil {
		return err
	}

	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.addressService.DeleteAddress(ctx, userID, id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Address deleted successfully", nil))
}

func (h *AddressHandler) SetDefaultAddress(c echo.Context) error {
	userID, err := accountID(c)
	if err != nil {
		return err
	}

	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	address, err := h.addressService.SetDefaultAddress(ctx, userID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Default address updated successfully", address))
}

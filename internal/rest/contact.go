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

type ContactService interface {
	Submit(ctx context.Context, contact domain.Contact) (domain.Contact, error)
	List(ctx context.Context, page, limit int, isRead *bool) ([]domain.Contact, domain.Pagination, error)
	MarkRead(ctx context.Context, id uuid.UUID) (domain.Contact, error)
}

type ContactHandler struct {
	contactService ContactService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewContactHandler(contactService ContactService, v *validator.Validate, timeout time.Duration) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		validator:      v,
		timeout:        timeout,
	}
}

type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,numeric,len=10"`
	Subject string `json:"subject" validate:"required,min=5,max=200"`
	Message string `json:"message" validate:"required,min=10,max=1000"`
}

func (h *ContactHandler) Submit(c echo.Context) error {
	var req ContactRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	contact, err := h.contactService.Submit(ctx, domain.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, jsonres.Success("Message sent successfully. We will get back to you soon!", contact))
}

func (h *ContactHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	contacts, pagination, err := h.contactService.List(ctx, queryInt(c, "page"), queryInt(c, "limit"), queryBool(c, "isRead"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Paginated("Contacts retrieved successfully", contacts, pagination))
}

func (h *ContactHandler) MarkRead(c echo.Context) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	contact, err := h.contactService.MarkRead(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Contact marked as read", contact))
}

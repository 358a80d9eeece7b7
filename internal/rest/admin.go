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

type AdminService interface {
	DashboardStats(ctx context.Context) (domain.DashboardStats, error)
	ListUsers(ctx context.Context, filter domain.UserFilter, page, limit int) ([]domain.AdminUser, domain.Pagination, error)
	SetUserStatus(ctx context.Context, actorID, userID uuid.UUID, status string) (domain.User, error)
	ListOrders(ctx context.Context, status string, page, limit int) ([]domain.Order, domain.Pagination, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) (domain.Order, error)
	Inventory(ctx context.Context) (domain.InventoryReport, error)
	CatalogStats(ctx context.Context) (domain.CatalogStats, error)
	ProductStats(ctx context.Context) (domain.ProductStats, error)
}

// AdminHandler serves both /api/admin and the older /api/stats routes.
type AdminHandler struct {
	adminService AdminService
	validator    *validator.Validate
	timeout      time.Duration
}

func NewAdminHandler(adminService AdminService, v *validator.Validate, timeout time.Duration) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		validator:    v,
		timeout:      timeout,
	}
}

type UpdateUserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *AdminHandler) DashboardStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stats, err := h.adminService.DashboardStats(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Dashboard statistics retrieved successfully", stats))
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	filter := domain.UserFilter{
		Search: c.QueryParam("search"),
		Role:   c.QueryParam("role"),
		Status: c.QueryParam("status"),
	}

	users, pagination, err := h.adminService.ListUsers(ctx, filter, queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Paginated("Users retrieved successfully", users, pagination))
}

func (h *AdminHandler) SetUserStatus(c echo.Context) error {
	actorID, err := accountID(c)
	if err != nil {
		return err
	}

	userID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateUserStatusRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	user, err := h.adminService.SetUserStatus(ctx, actorID, userID, req.Status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("User status updated successfully", user))
}

func (h *AdminHandler) ListOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	orders, pagination, err := h.adminService.ListOrders(ctx, c.QueryParam("status"), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Paginated("Orders retrieved successfully", orders, pagination))
}

func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	orderID, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateOrderStatusRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	order, err := h.adminService.UpdateOrderStatus(ctx, orderID, req.Status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Order status updated successfully", order))
}

func (h *AdminHandler) Inventory(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	report, err := h.adminService.Inventory(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Inventory retrieved successfully", report))
}

func (h *AdminHandler) CatalogStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stats, err := h.adminService.CatalogStats(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Statistics retrieved successfully", stats))
}

func (h *AdminHandler) ProductStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stats, err := h.adminService.ProductStats(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Product statistics retrieved successfully", stats))
}

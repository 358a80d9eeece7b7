package rest

import (
	"context"
	"misikaMarket/business/category"
	"misikaMarket/domain"
	"net/http"
	"time"

	jsonres "misikaMarket/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type CategoryService interface {
	GetAllCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, idOrSlug string) (domain.Category, error)
	CreateCategory(ctx context.Context, input category.CreateInput) (domain.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, patch domain.CategoryPatch) (domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type CategoryHandler struct {
	categoryService CategoryService
	validator       *validator.Validate
	timeout         time.Duration
}

func NewCategoryHandler(categoryService CategoryService, v *validator.Validate, timeout time.Duration) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		validator:       v,
		timeout:         timeout,
	}
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description"`
	Image       string `json:"image" validate:"omitempty,url"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description"`
	Image       *string `json:"image" validate:"omitempty,url"`
	IsActive    *bool   `json:"isActive"`
}

func (h *CategoryHandler) GetAllCategories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	categories, err := h.categoryService.GetAllCategories(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Categories retrieved successfully", categories))
}

// GetCategory accepts either the category id or its slug.
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cat, err := h.categoryService.GetCategory(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Category retrieved successfully", cat))
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req CreateCategoryRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cat, err := h.categoryService.CreateCategory(ctx, category.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, jsonres.Success("Category created successfully", cat))
}

func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateCategoryRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cat, err := h.categoryService.UpdateCategory(ctx, id, domain.CategoryPatch{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Category updated successfully", cat))
}

func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.categoryService.DeleteCategory(ctx, id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Category deleted successfully", nil))
}

package rest

import (
	"context"
	"misikaMarket/business/product"
	"misikaMarket/domain"
	"net/http"
	"time"

	jsonres "misikaMarket/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ProductService interface {
	GetAllProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, domain.Pagination, error)
	GetProductsByCategory(ctx context.Context, slug string, filter domain.ProductFilter) ([]domain.Product, domain.Pagination, error)
	GetFeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error)
	SearchProducts(ctx context.Context, query string, page, limit int) ([]domain.Product, domain.Pagination, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (domain.Product, error)
	CreateProduct(ctx context.Context, input product.CreateInput) (domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type ProductHandler struct {
	productService ProductService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewProductHandler(productService ProductService, v *validator.Validate, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      v,
		timeout:        timeout,
	}
}

type CreateProductRequest struct {
	Name        string           `json:"name" validate:"required,min=2,max=200"`
	Description string           `json:"description" validate:"required,min=10"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"salePrice"`
	SKU         string           `json:"sku" validate:"required"`
	Stock       int              `json:"stock" validate:"gte=0"`
	Images      []string         `json:"images" validate:"required,min=1,dive,url"`
	CategoryID  string           `json:"categoryId" validate:"required,uuid"`
	IsFeatured  bool             `json:"isFeatured"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=2,max=200"`
	SKU         *string          `json:"sku" validate:"omitempty,min=1"`
	Description *string          `json:"description" validate:"omitempty,min=10"`
	Price       *decimal.Decimal `json:"price"`
	SalePrice   *decimal.Decimal `json:"salePrice"`
	ClearSale   bool             `json:"clearSalePrice"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	Images      []string         `json:"images" validate:"omitempty,dive,url"`
	CategoryID  *string          `json:"categoryId" validate:"omitempty,uuid"`
	IsFeatured  *bool            `json:"isFeatured"`
	IsActive    *bool            `json:"isActive"`
}

func positive(field string, d *decimal.Decimal) error {
	if d != nil && !d.IsPositive() {
		return domain.NewValidationError(field + " must be a positive number")
	}
	return nil
}

func queryDecimal(c echo.Context, name string) (*decimal.Decimal, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, domain.NewValidationError(name + " must be a number")
	}
	return &d, nil
}

func productFilter(c echo.Context) (domain.ProductFilter, error) {
	minPrice, err := queryDecimal(c, "minPrice")
	if err != nil {
		return domain.ProductFilter{}, err
	}

	maxPrice, err := queryDecimal(c, "maxPrice")
	if err != nil {
		return domain.ProductFilter{}, err
	}

	return domain.ProductFilter{
		CategorySlug: c.QueryParam("category"),
		MinPrice:     minPrice,
		MaxPrice:     maxPrice,
		Search:       c.QueryParam("search"),
		Featured:     queryBool(c, "featured"),
		SortBy:       c.QueryParam("sortBy"),
		SortOrder:    c.QueryParam("sortOrder"),
		Page:         queryInt(c, "page"),
		Limit:        queryInt(c, "limit"),
	}, nil
}

func (h *ProductHandler) GetAllProducts(c echo.Context) error {
	filter, err := productFilter(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, pagination, err := h.productService.GetAllProducts(ctx, filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Paginated("Products retrieved successfully", products, pagination))
}

func (h *ProductHandler) GetProductsByCategory(c echo.Context) error {
	filter, err := productFilter(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, pagination, err := h.productService.GetProductsByCategory(ctx, c.Param("slug"), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Paginated("Products retrieved successfully", products, pagination))
}

func (h *ProductHandler) GetFeaturedProducts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, err := h.productService.GetFeaturedProducts(ctx, queryInt(c, "limit"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Featured products retrieved successfully", products))
}

func (h *ProductHandler) SearchProducts(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return domain.NewValidationError("search query is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	products, pagination, err := h.productService.SearchProducts(ctx, q, queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Paginated("Search results retrieved successfully", products, pagination))
}

func (h *ProductHandler) GetProductByID(c echo.Context) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	p, err := h.productService.GetProductByID(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Product retrieved successfully", p))
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req CreateProductRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	if err := positive("price", &req.Price); err != nil {
		return err
	}
	if err := positive("salePrice", req.SalePrice); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	p, err := h.productService.CreateProduct(ctx, product.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		SalePrice:   req.SalePrice,
		SKU:         req.SKU,
		Stock:       req.Stock,
		Images:      req.Images,
		CategoryID:  uuid.MustParse(req.CategoryID),
		IsFeatured:  req.IsFeatured,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, jsonres.Success("Product created successfully", p))
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateProductRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	if err := positive("price", req.Price); err != nil {
		return err
	}
	if err := positive("salePrice", req.SalePrice); err != nil {
		return err
	}

	patch := domain.ProductPatch{
		Name:           req.Name,
		SKU:            req.SKU,
		Description:    req.Description,
		Price:          req.Price,
		SalePrice:      req.SalePrice,
		ClearSalePrice: req.ClearSale,
		Stock:          req.Stock,
		Images:         req.Images,
		IsActive:       req.IsActive,
		IsFeatured:     req.IsFeatured,
	}
	if req.CategoryID != nil {
		categoryID := uuid.MustParse(*req.CategoryID)
		patch.CategoryID = &categoryID
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	p, err := h.productService.UpdateProduct(ctx, id, patch)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Product updated successfully", p))
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.productService.DeleteProduct(ctx, id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Product deleted successfully", nil))
}

package product

import (
	"context"
	"fmt"
	"misikaMarket/domain"
	"misikaMarket/pkg/logger"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRepository contract interface
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.Product, error)
	FindActiveByID(ctx context.Context, id uuid.UUID) (domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error)
	Search(ctx context.Context, term string, page domain.PageRequest) ([]domain.Product, int64, error)
	Update(ctx context.Context, product *domain.Product, columns ...string) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	SKUTaken(ctx context.Context, sku string, exclude uuid.UUID) (bool, error)
	SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
}

// CategoryRepository contract interface
type CategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Category, error)
	FindBySlug(ctx context.Context, slug string) (domain.Category, error)
}

const (
	DefaultListLimit     = 12
	DefaultFeaturedLimit = 8
)

type CreateInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	SalePrice   *decimal.Decimal
	SKU         string
	Stock       int
	Images      []string
	CategoryID  uuid.UUID
	IsFeatured  bool
}

type productService struct {
	productRepo  ProductRepository
	categoryRepo CategoryRepository
}

func NewProductService(productRepo ProductRepository, categoryRepo CategoryRepository) *productService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

func (s *productService) GetAllProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, domain.Pagination, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get all product")
		return nil, domain.Pagination{}, fmt.Errorf("context error: %w", err)
	}

	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, domain.Pagination{}, domain.NewValidationError("minPrice cannot exceed maxPrice")
	}

	page := domain.NewPageRequest(filter.Page, filter.Limit, DefaultListLimit)
	filter.Page, filter.Limit = page.Page, page.Limit

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		logger.Error("Failed to find all product", err)
		return nil, domain.Pagination{}, err
	}

	return products, domain.NewPagination(page, total), nil
}

func (s *productService) GetProductsByCategory(ctx context.Context, slug string, filter domain.ProductFilter) ([]domain.Product, domain.Pagination, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	if !category.IsActive {
		return nil, domain.Pagination{}, domain.NewNotFoundError("category")
	}

	filter.CategorySlug = category.Slug
	return s.GetAllProducts(ctx, filter)
}

func (s *productService) GetFeaturedProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}

	featured := true
	products, _, err := s.productRepo.List(ctx, domain.ProductFilter{Featured: &featured, Page: 1, Limit: limit})
	if err != nil {
		logger.Error("Failed to find featured products", err)
		return nil, err
	}

	return products, nil
}

func (s *productService) SearchProducts(ctx context.Context, query string, page, limit int) ([]domain.Product, domain.Pagination, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.Pagination{}, domain.NewValidationError("search query is required")
	}

	pr := domain.NewPageRequest(page, limit, DefaultListLimit)

	products, total, err := s.productRepo.Search(ctx, query, pr)
	if err != nil {
		logger.Error("Failed to search products", err)
		return nil, domain.Pagination{}, err
	}

	return products, domain.NewPagination(pr, total), nil
}

func (s *productService) GetProductByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	if id == uuid.Nil {
		logger.Error("invalid product id")
		return domain.Product{}, domain.NewValidationError("invalid product id")
	}

	product, err := s.productRepo.FindActiveByID(ctx, id)
	if err != nil {
		if !domain.IsNotFound(err) {
			logger.Error("failed to find product by id", err)
		}
		return domain.Product{}, err
	}

	return product, nil
}

func (s *productService) activeCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.NewValidationError("category does not exist")
		}
		return err
	}
	if !category.IsActive {
		return domain.NewValidationError("category is not active")
	}
	return nil
}

func (s *productService) checkSlug(ctx context.Context, name string, exclude uuid.UUID) (string, error) {
	slug := domain.Slugify(name)
	if slug == "" {
		return "", domain.NewValidationError("product name is required")
	}

	taken, err := s.productRepo.SlugTaken(ctx, slug, exclude)
	if err != nil {
		return "", err
	}
	if taken {
		return "", domain.NewDuplicateError("product with this name already exists")
	}

	return slug, nil
}

func (s *productService) checkSKU(ctx context.Context, sku string, exclude uuid.UUID) error {
	if sku == "" {
		return domain.NewValidationError("sku is required")
	}

	taken, err := s.productRepo.SKUTaken(ctx, sku, exclude)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrDuplicateSKU
	}

	return nil
}

func validatePricing(price decimal.Decimal, salePrice *decimal.Decimal, stock int) error {
	if !price.IsPositive() {
		return domain.NewValidationError("price must be greater than 0")
	}

	if salePrice != nil && salePrice.IsNegative() {
		return domain.NewValidationError("sale price cannot be negative")
	}

	if stock < 0 {
		return domain.NewValidationError("stock cannot be negative")
	}

	return nil
}

func (s *productService) CreateProduct(ctx context.Context, input CreateInput) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when create product")
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	input.Name = strings.TrimSpace(input.Name)
	input.SKU = strings.TrimSpace(input.SKU)

	if err := validatePricing(input.Price, input.SalePrice, input.Stock); err != nil {
		return domain.Product{}, err
	}

	if err := s.checkSKU(ctx, input.SKU, uuid.Nil); err != nil {
		return domain.Product{}, err
	}

	slug, err := s.checkSlug(ctx, input.Name, uuid.Nil)
	if err != nil {
		return domain.Product{}, err
	}

	if err := s.activeCategory(ctx, input.CategoryID); err != nil {
		return domain.Product{}, err
	}

	images := input.Images
	if images == nil {
		images = []string{}
	}

	product := domain.Product{
		Name:        input.Name,
		Slug:        slug,
		SKU:         input.SKU,
		Description: input.Description,
		Price:       input.Price,
		SalePrice:   input.SalePrice,
		Stock:       input.Stock,
		Images:      images,
		IsActive:    true,
		IsFeatured:  input.IsFeatured,
		CategoryID:  input.CategoryID,
	}

	if err := s.productRepo.Create(ctx, &product); err != nil {
		logger.Error("failed to create new product", err)
		return domain.Product{}, err
	}

	logger.Info("product created successfully", "product_id", product.ID)

	return s.productRepo.FindByID(ctx, product.ID)
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when updating product")
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("product not found", err)
		return domain.Product{}, err
	}

	// Only patched columns are written so a concurrent checkout's stock
	// decrement is not overwritten by this read.
	var columns []string

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		slug, err := s.checkSlug(ctx, name, id)
		if err != nil {
			return domain.Product{}, err
		}
		product.Name = name
		product.Slug = slug
		columns = append(columns, "name", "slug")
	}

	if patch.SKU != nil {
		sku := strings.TrimSpace(*patch.SKU)
		if sku != product.SKU {
			if err := s.checkSKU(ctx, sku, id); err != nil {
				return domain.Product{}, err
			}
			product.SKU = sku
			columns = append(columns, "sku")
		}
	}

	if patch.CategoryID != nil && *patch.CategoryID != product.CategoryID {
		if err := s.activeCategory(ctx, *patch.CategoryID); err != nil {
			return domain.Product{}, err
		}
		product.CategoryID = *patch.CategoryID
		columns = append(columns, "category_id")
	}

	if patch.Description != nil {
		product.Description = *patch.Description
		columns = append(columns, "description")
	}
	if patch.Price != nil {
		product.Price = *patch.Price
		columns = append(columns, "price")
	}
	if patch.ClearSalePrice {
		product.SalePrice = nil
		columns = append(columns, "sale_price")
	} else if patch.SalePrice != nil {
		product.SalePrice = patch.SalePrice
		columns = append(columns, "sale_price")
	}
	if patch.Stock != nil {
		product.Stock = *patch.Stock
		columns = append(columns, "stock")
	}
	if patch.Images != nil {
		product.Images = patch.Images
		columns = append(columns, "images")
	}
	if patch.IsActive != nil {
		product.IsActive = *patch.IsActive
		columns = append(columns, "is_active")
	}
	if patch.IsFeatured != nil {
		product.IsFeatured = *patch.IsFeatured
		columns = append(columns, "is_featured")
	}

	if err := validatePricing(product.Price, product.SalePrice, product.Stock); err != nil {
		return domain.Product{}, err
	}

	product.Category = nil
	if err := s.productRepo.Update(ctx, &product, columns...); err != nil {
		logger.Error("failed to update product", err)
		return domain.Product{}, err
	}

	logger.Info("product updated successfully", "product_id", id)

	return s.productRepo.FindByID(ctx, id)
}

// DeleteProduct hides the product; order history keeps referencing it.
func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.SoftDelete(ctx, id); err != nil {
		logger.Error("failed to delete product", err)
		return err
	}

	logger.Info("product deleted successfully", "product_id", id)

	return nil
}

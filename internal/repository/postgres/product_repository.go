package postgres

import (
	"context"
	"misikaMarket/domain"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository struct {
	DB *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{
		DB: db,
	}
}

var productSortColumns = map[string]string{
	"createdAt": "products.created_at",
	"price":     "products.price",
	"name":      "products.name",
	"stock":     "products.stock",
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := conn(ctx, r.DB).Omit("Category").Create(product).Error; err != nil {
		return translateError(err, "product")
	}

	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	var product domain.Product

	err := conn(ctx, r.DB).Preload("Category").First(&product, "products.id = ?", id).Error
	if err != nil {
		return domain.Product{}, translateError(err, "product")
	}

	return product, nil
}

func (r *ProductRepository) FindActiveByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	var product domain.Product

	err := conn(ctx, r.DB).Preload("Category").
		Where("products.is_active = ?", true).
		First(&product, "products.id = ?", id).Error
	if err != nil {
		return domain.Product{}, translateError(err, "product")
	}

	return product, nil
}

// LockByIDs loads products with a row lock held until the surrounding
// transaction ends. Rows are locked in id order.
func (r *ProductRepository) LockByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Product, error) {
	var products []domain.Product

	err := conn(ctx, r.DB).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&products).Error
	if err != nil {
		return nil, translateError(err, "product")
	}

	out := make(map[uuid.UUID]domain.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}

	return out, nil
}

func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int64, error) {
	query := conn(ctx, r.DB).Model(&domain.Product{}).Where("products.is_active = ?", true)

	if filter.CategorySlug != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}
	if filter.MinPrice != nil {
		query = query.Where("products.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("products.price <= ?", *filter.MaxPrice)
	}
	if filter.Featured != nil {
		query = query.Where("products.is_featured = ?", *filter.Featured)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("(LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?)", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "product")
	}

	page := domain.NewPageRequest(filter.Page, filter.Limit, 12)

	var products []domain.Product
	err := query.Preload("Category").
		Order(productOrder(filter.SortBy, filter.SortOrder)).
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, translateError(err, "product")
	}

	return products, total, nil
}

// Search matches name, description and category name.
func (r *ProductRepository) Search(ctx context.Context, term string, page domain.PageRequest) ([]domain.Product, int64, error) {
	like := "%" + strings.ToLower(term) + "%"
	query := conn(ctx, r.DB).Model(&domain.Product{}).
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("products.is_active = ?", true).
		Where("(LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ? OR LOWER(categories.name) LIKE ?)", like, like, like)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "product")
	}

	var products []domain.Product
	err := query.Preload("Category").
		Order("products.created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, translateError(err, "product")
	}

	return products, total, nil
}

func productOrder(sortBy, sortOrder string) string {
	column, ok := productSortColumns[sortBy]
	if !ok {
		column = productSortColumns["createdAt"]
	}

	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}

	return column + " " + direction
}

// Update writes the named columns of product. updated_at is always set.
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product, columns ...string) error {
	product.UpdatedAt = time.Now()
	columns = append(columns, "updated_at")

	result := conn(ctx, r.DB).Model(&domain.Product{}).Where("id = ?", product.ID).
		Select(columns).
		Updates(product)
	if result.Error != nil {
		return translateError(result.Error, "product")
	}

	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("product")
	}

	return nil
}

func (r *ProductRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.DB).Model(&domain.Product{}).Where("id = ?", id).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now()})
	if result.Error != nil {
		return translateError(result.Error, "product")
	}

	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("product")
	}

	return nil
}

func (r *ProductRepository) SKUTaken(ctx context.Context, sku string, exclude uuid.UUID) (bool, error) {
	return r.taken(ctx, "sku", sku, exclude)
}

func (r *ProductRepository) SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	return r.taken(ctx, "slug", slug, exclude)
}

func (r *ProductRepository) taken(ctx context.Context, column, value string, exclude uuid.UUID) (bool, error) {
	var count int64

	query := conn(ctx, r.DB).Model(&domain.Product{}).Where(column+" = ?", value)
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, translateError(err, "product")
	}

	return count > 0, nil
}

// DecrementStock removes qty units only while enough stock remains.
func (r *ProductRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	result := conn(ctx, r.DB).Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Updates(map[string]any{"stock": gorm.Expr("stock - ?", qty), "updated_at": time.Now()})
	if result.Error != nil {
		return translateError(result.Error, "product")
	}

	if result.RowsAffected == 0 {
		return domain.ErrInsufficientStock
	}

	return nil
}

func (r *ProductRepository) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	result := conn(ctx, r.DB).Model(&domain.Product{}).Where("id = ?", id).
		Updates(map[string]any{"stock": gorm.Expr("stock + ?", qty), "updated_at": time.Now()})
	if result.Error != nil {
		return translateError(result.Error, "product")
	}

	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("product")
	}

	return nil
}

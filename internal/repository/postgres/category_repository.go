package postgres

import (
	"context"
	"misikaMarket/domain"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	DB *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{
		DB: db,
	}
}

const categoryWithCount = "categories.*, (SELECT COUNT(*) FROM products WHERE products.category_id = categories.id AND products.is_active) AS product_count"

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if err := conn(ctx, r.DB).Create(category).Error; err != nil {
		return translateError(err, "category")
	}

	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.Category, error) {
	var category domain.Category

	err := conn(ctx, r.DB).Select(categoryWithCount).First(&category, "categories.id = ?", id).Error
	if err != nil {
		return domain.Category{}, translateError(err, "category")
	}

	return category, nil
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (domain.Category, error) {
	var category domain.Category

	err := conn(ctx, r.DB).Select(categoryWithCount).Where("categories.slug = ?", slug).First(&category).Error
	if err != nil {
		return domain.Category{}, translateError(err, "category")
	}

	return category, nil
}

func (r *CategoryRepository) SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	var count int64

	query := conn(ctx, r.DB).Model(&domain.Category{}).Where("slug = ?", slug)
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, translateError(err, "category")
	}

	return count > 0, nil
}

func (r *CategoryRepository) FindAllActive(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category

	err := conn(ctx, r.DB).Select(categoryWithCount).
		Where("categories.is_active = ?", true).
		Order("categories.name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, translateError(err, "category")
	}

	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	category.UpdatedAt = time.Now()

	result := conn(ctx, r.DB).Model(&domain.Category{}).Where("id = ?", category.ID).
		Select("name", "slug", "description", "image", "is_active", "updated_at").
		Updates(category)
	if result.Error != nil {
		return translateError(result.Error, "category")
	}

	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("category")
	}

	return nil
}

func (r *CategoryRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.DB).Model(&domain.Category{}).Where("id = ?", id).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now()})
	if result.Error != nil {
		return translateError(result.Error, "category")
	}

	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("category")
	}

	return nil
}

func (r *CategoryRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64

	if err := conn(ctx, r.DB).Model(&domain.Category{}).Where("is_active = ?", true).Count(&count).Error; err != nil {
		return 0, translateError(err, "category")
	}

	return count, nil
}

package category

import (
	"context"
	"fmt"
	"misikaMarket/domain"
	"misikaMarket/pkg/logger"
	"strings"

	"github.com/google/uuid"
)

// CategoryRepository contract interface
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.Category, error)
	FindBySlug(ctx context.Context, slug string) (domain.Category, error)
	SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
	FindAllActive(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type CreateInput struct {
	Name        string
	Description string
	Image       string
}

type categoryService struct {
	categoryRepo CategoryRepository
}

func NewCategoryService(categoryRepo CategoryRepository) *categoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
	}
}

func (s *categoryService) GetAllCategories(ctx context.Context) ([]domain.Category, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when get all categories")
		return nil, fmt.Errorf("context error: %w", err)
	}

	categories, err := s.categoryRepo.FindAllActive(ctx)
	if err != nil {
		logger.Error("Failed to find all categories", err)
		return nil, err
	}

	return categories, nil
}

// GetCategory accepts either the category id or its slug. Inactive
// categories are not found.
func (s *categoryService) GetCategory(ctx context.Context, idOrSlug string) (domain.Category, error) {
	var (
		category domain.Category
		err      error
	)

	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		category, err = s.categoryRepo.FindByID(ctx, id)
	} else {
		category, err = s.categoryRepo.FindBySlug(ctx, idOrSlug)
	}
	if err != nil {
		if !domain.IsNotFound(err) {
			logger.Error("Failed to find category", err)
		}
		return domain.Category{}, err
	}

	if !category.IsActive {
		return domain.Category{}, domain.NewNotFoundError("category")
	}

	return category, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, input CreateInput) (domain.Category, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when create category")
		return domain.Category{}, fmt.Errorf("context error: %w", err)
	}

	name := strings.TrimSpace(input.Name)
	slug := domain.Slugify(name)
	if slug == "" {
		return domain.Category{}, domain.NewValidationError("category name is required")
	}

	taken, err := s.categoryRepo.SlugTaken(ctx, slug, uuid.Nil)
	if err != nil {
		logger.Error("Failed to check category slug", err)
		return domain.Category{}, err
	}
	if taken {
		return domain.Category{}, domain.NewDuplicateError("category with this name already exists")
	}

	category := domain.Category{
		Name:        name,
		Slug:        slug,
		Description: input.Description,
		Image:       input.Image,
		IsActive:    true,
	}

	if err := s.categoryRepo.Create(ctx, &category); err != nil {
		logger.Error("failed to create new category", err)
		return domain.Category{}, err
	}

	logger.Info("category created successfully", "category_id", category.ID)

	return category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uuid.UUID, patch domain.CategoryPatch) (domain.Category, error) {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when updating category")
		return domain.Category{}, fmt.Errorf("context error: %w", err)
	}

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("category not found", err)
		return domain.Category{}, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		slug := domain.Slugify(name)
		if slug == "" {
			return domain.Category{}, domain.NewValidationError("category name is required")
		}

		taken, err := s.categoryRepo.SlugTaken(ctx, slug, id)
		if err != nil {
			return domain.Category{}, err
		}
		if taken {
			return domain.Category{}, domain.NewDuplicateError("category with this name already exists")
		}

		category.Name = name
		category.Slug = slug
	}

	if patch.Description != nil {
		category.Description = *patch.Description
	}

	if patch.Image != nil {
		category.Image = *patch.Image
	}

	if patch.IsActive != nil {
		category.IsActive = *patch.IsActive
	}

	if err := s.categoryRepo.Update(ctx, &category); err != nil {
		logger.Error("failed to update category", err)
		return domain.Category{}, err
	}

	logger.Info("category updated successfully", "category_id", id)

	return category, nil
}

// DeleteCategory is a soft delete; the row and its products stay.
func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		logger.Error("context error when deleting category")
		return fmt.Errorf("context error: %w", err)
	}

	if err := s.categoryRepo.SoftDelete(ctx, id); err != nil {
		logger.Error("failed to delete category", err)
		return err
	}

	logger.Info("category deleted successfully", "category_id", id)

	return nil
}

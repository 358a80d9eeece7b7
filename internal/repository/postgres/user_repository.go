package postgres

import (
	"context"
	"misikaMarket/domain"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		DB: db,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := conn(ctx, r.DB).Create(user).Error; err != nil {
		return translateError(err, "user")
	}

	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	var user domain.User

	if err := conn(ctx, r.DB).First(&user, "id = ?", id).Error; err != nil {
		return domain.User{}, translateError(err, "user")
	}

	return user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User

	err := conn(ctx, r.DB).Where("LOWER(email) = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		return domain.User{}, translateError(err, "user")
	}

	return user, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64

	if err := conn(ctx, r.DB).Model(&domain.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, translateError(err, "user")
	}

	return count > 0, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now()

	result := conn(ctx, r.DB).Model(&domain.User{}).Where("id = ?", user.ID).
		Select("first_name", "last_name", "phone", "email", "updated_at").
		Updates(user)
	if result.Error != nil {
		return translateError(result.Error, "user")
	}

	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("user")
	}

	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result := conn(ctx, r.DB).Model(&domain.User{}).Where("id = ?", id).
		Updates(map[string]any{"password": passwordHash, "updated_at": time.Now()})
	if result.Error != nil {
		return translateError(result.Error, "user")
	}

	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("user")
	}

	return nil
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (domain.User, error) {
	result := conn(ctx, r.DB).Model(&domain.User{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now()})
	if result.Error != nil {
		return domain.User{}, translateError(result.Error, "user")
	}

	if result.RowsAffected == 0 {
		return domain.User{}, domain.NewNotFoundError("user")
	}

	return r.FindByID(ctx, id)
}

func (r *UserRepository) List(ctx context.Context, filter domain.UserFilter, page domain.PageRequest) ([]domain.AdminUser, int64, error) {
	query := conn(ctx, r.DB).Model(&domain.User{})

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(COALESCE(username, '')) LIKE ?",
			like, like, like, like,
		)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "user")
	}

	var users []domain.AdminUser
	err := query.
		Select("users.*, (SELECT COUNT(*) FROM orders WHERE orders.user_id = users.id) AS order_count").
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Scan(&users).Error
	if err != nil {
		return nil, 0, translateError(err, "user")
	}

	return users, total, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64

	if err := conn(ctx, r.DB).Model(&domain.User{}).Count(&count).Error; err != nil {
		return 0, translateError(err, "user")
	}

	return count, nil
}

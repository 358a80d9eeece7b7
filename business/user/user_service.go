package user

import (
	"context"
	"errors"
	"misikaMarket/business/notification"
	"misikaMarket/domain"
	"misikaMarket/pkg/logger"
	"misikaMarket/pkg/utils"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// UserRepository contract interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// OTPRepository contract interface
type OTPRepository interface {
	Upsert(ctx context.Context, otp *domain.OTPVerification) error
	Find(ctx context.Context, email, purpose string) (domain.OTPVerification, error)
	Consume(ctx context.Context, email, purpose, code string, now time.Time) error
}

// DashboardRepository contract interface
type DashboardRepository interface {
	Count(ctx context.Context, userID *uuid.UUID, status string) (int64, error)
	Recent(ctx context.Context, userID *uuid.UUID, limit int) ([]domain.Order, error)
}

// CartCounter contract interface
type CartCounter interface {
	CountItems(ctx context.Context, userID uuid.UUID) (int64, error)
}

// TokenManager contract interface
type TokenManager interface {
	IssuePair(subject, provider string) (domain.TokenPair, error)
	Verify(tokenString, kind string) (*utils.Claims, error)
}

// IdentityResolver contract interface
type IdentityResolver interface {
	Resolve(ctx context.Context, provider, subject string) (domain.Principal, error)
}

// RevocationStore contract interface
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

// Notifier contract interface
type Notifier interface {
	Enqueue(n domain.Notification)
}

// Transactor contract interface
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

type ProfileInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
}

// AuthResult is returned by register, login and refresh.
type AuthResult struct {
	User *domain.User `json:"user,omitempty"`
	domain.TokenPair
}

type userService struct {
	userRepo      UserRepository
	otpRepo       OTPRepository
	orderRepo     DashboardRepository
	cartRepo      CartCounter
	tokens        TokenManager
	resolver      IdentityResolver
	revocations   RevocationStore
	notifier      Notifier
	tx            Transactor
	validate      *validator.Validate
	dashboardSize int
	now           func() time.Time
}

func NewUserService(
	userRepo UserRepository,
	otpRepo OTPRepository,
	orderRepo DashboardRepository,
	cartRepo CartCounter,
	tokens TokenManager,
	resolver IdentityResolver,
	revocations RevocationStore,
	notifier Notifier,
	tx Transactor,
	validate *validator.Validate,
) *userService {
	return &userService{
		userRepo:      userRepo,
		otpRepo:       otpRepo,
		orderRepo:     orderRepo,
		cartRepo:      cartRepo,
		tokens:        tokens,
		resolver:      resolver,
		revocations:   revocations,
		notifier:      notifier,
		tx:            tx,
		validate:      validate,
		dashboardSize: 5,
		now:           time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Email = normalizeEmail(input.Email)

	if err := s.validate.Var(input.Email, "required,email"); err != nil {
		logger.Error("Invalid email format", err)
		return AuthResult{}, domain.NewValidationError("invalid email format")
	}

	if err := s.validate.Var(input.Password, "required,min=6"); err != nil {
		logger.Error("Invalid user password", err)
		return AuthResult{}, domain.NewValidationError("password must be at least 6 characters")
	}

	_, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err == nil {
		return AuthResult{}, domain.NewDuplicateError("user with this email already exists")
	}
	if !domain.IsNotFound(err) {
		logger.Error("Failed to check email", err)
		return AuthResult{}, err
	}

	var username *string
	if input.Username != "" {
		taken, err := s.userRepo.ExistsByUsername(ctx, input.Username)
		if err != nil {
			logger.Error("Failed to check username", err)
			return AuthResult{}, err
		}
		if taken {
			return AuthResult{}, domain.NewDuplicateError("user with this username already exists")
		}
		username = &input.Username
	}

	passwordHash, err := utils.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return AuthResult{}, domain.NewInternalError("failed to hash password", err)
	}

	newUser := domain.User{
		Username:  username,
		Email:     input.Email,
		Password:  string(passwordHash),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
		Role:      domain.RoleUser,
		Status:    domain.UserStatusActive,
	}

	if err := s.userRepo.Create(ctx, &newUser); err != nil {
		logger.Error("Failed to create new user", err)
		return AuthResult{}, err
	}

	tokens, err := s.tokens.IssuePair(newUser.ID.String(), domain.ProviderAccount)
	if err != nil {
		logger.Error("Failed to generate token", err)
		return AuthResult{}, domain.NewInternalError("failed to generate token", err)
	}

	s.notifier.Enqueue(notification.Welcome(newUser.FirstName, newUser.Email))

	logger.Info("user registered", "user_id", newUser.ID)

	return AuthResult{User: &newUser, TokenPair: tokens}, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if domain.IsNotFound(err) {
			utils.BurnPasswordCheck(password)
			return AuthResult{}, domain.ErrInvalidCredentials
		}
		logger.Error("Failed to find user", err)
		return AuthResult{}, err
	}

	if !utils.CheckPassword(password, user.Password) {
		return AuthResult{}, domain.ErrInvalidCredentials
	}

	if user.IsSuspended() {
		return AuthResult{}, domain.ErrAccountSuspended
	}

	tokens, err := s.tokens.IssuePair(user.ID.String(), domain.ProviderAccount)
	if err != nil {
		logger.Error("Failed to generate token", err)
		return AuthResult{}, domain.NewInternalError("failed to generate token", err)
	}

	return AuthResult{User: &user, TokenPair: tokens}, nil
}

// Refresh exchanges a refresh token for a new pair. The identity must still
// resolve in the store that issued the token.
func (s *userService) Refresh(ctx context.Context, refreshToken string) (AuthResult, error) {
	claims, err := s.tokens.Verify(refreshToken, utils.TokenKindRefresh)
	if err != nil {
		return AuthResult{}, err
	}

	principal, err := s.resolver.Resolve(ctx, claims.Provider, claims.Subject)
	if err != nil {
		return AuthResult{}, err
	}

	tokens, err := s.tokens.IssuePair(principal.Subject, principal.Provider)
	if err != nil {
		logger.Error("Failed to generate token", err)
		return AuthResult{}, domain.NewInternalError("failed to generate token", err)
	}

	return AuthResult{TokenPair: tokens}, nil
}

// Logout revokes the presented tokens until they expire. Without a
// revocation store it is a no-op and the client discards its tokens.
func (s *userService) Logout(ctx context.Context, principal domain.Principal, refreshToken string) error {
	if s.revocations == nil {
		return nil
	}

	if principal.TokenID != "" {
		if err := s.revocations.Revoke(ctx, principal.TokenID, time.Until(principal.ExpiresAt)); err != nil {
			logger.Error("Failed to revoke access token", err)
			return domain.NewInternalError("failed to revoke token", err)
		}
	}

	if refreshToken == "" {
		return nil
	}

	claims, err := s.tokens.Verify(refreshToken, utils.TokenKindRefresh)
	if err != nil {
		// an invalid refresh token cannot be used anyway
		return nil
	}

	if claims.Subject != principal.Subject || claims.ExpiresAt == nil {
		return nil
	}

	if err := s.revocations.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		logger.Error("Failed to revoke refresh token", err)
		return domain.NewInternalError("failed to revoke token", err)
	}

	return nil
}

// ForgotPassword behaves the same whether or not the email is registered.
func (s *userService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		logger.Error("Failed to find user for password reset", err)
		return err
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		logger.Error("Failed to generate otp", err)
		return domain.NewInternalError("failed to generate code", err)
	}

	otp := domain.OTPVerification{
		Email:     email,
		Purpose:   domain.OTPPurposeAccountReset,
		Code:      code,
		ExpiresAt: s.now().Add(domain.OTPTTL),
	}
	if err := s.otpRepo.Upsert(ctx, &otp); err != nil {
		logger.Error("Failed to store reset code", err)
		return err
	}

	s.notifier.Enqueue(notification.OTPCode(user.FirstName, email, code, domain.OTPPurposeAccountReset))

	return nil
}

func (s *userService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)

	if err := s.validate.Var(newPassword, "required,min=6"); err != nil {
		return domain.NewValidationError("password must be at least 6 characters")
	}

	otp, err := s.otpRepo.Find(ctx, email, domain.OTPPurposeAccountReset)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.ErrInvalidOTP
		}
		logger.Error("Failed to find reset code", err)
		return err
	}

	if !utils.OTPMatches(otp.Code, code) {
		return domain.ErrInvalidOTP
	}

	if otp.Expired(s.now()) {
		return domain.ErrExpiredOTP
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.ErrInvalidOTP
		}
		return err
	}

	passwordHash, err := utils.HashPassword(newPassword)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.NewInternalError("failed to hash password", err)
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// The code may have been used by a concurrent reset since Find.
		if err := s.otpRepo.Consume(ctx, email, domain.OTPPurposeAccountReset, otp.Code, s.now()); err != nil {
			return err
		}
		return s.userRepo.UpdatePassword(ctx, user.ID, string(passwordHash))
	})
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidOTP) {
			logger.Error("Failed to reset password", err)
		}
		return err
	}

	logger.Info("password reset", "user_id", user.ID)

	return nil
}

func (s *userService) GetProfile(ctx context.Context, id uuid.UUID) (domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("Failed to get user by ID", err)
		return domain.User{}, err
	}

	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, input ProfileInput) (domain.User, error) {
	existingUser, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		logger.Error("User not found for update", err)
		return domain.User{}, err
	}

	if input.FirstName != nil {
		existingUser.FirstName = *input.FirstName
	}

	if input.LastName != nil {
		existingUser.LastName = *input.LastName
	}

	if input.Phone != nil {
		existingUser.Phone = *input.Phone
	}

	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if err := s.validate.Var(email, "required,email"); err != nil {
			return domain.User{}, domain.NewValidationError("invalid email format")
		}

		// Check if email already exists (excluding current user)
		other, err := s.userRepo.FindByEmail(ctx, email)
		switch {
		case err == nil && other.ID != id:
			return domain.User{}, domain.NewDuplicateError("email is already taken")
		case err != nil && !domain.IsNotFound(err):
			return domain.User{}, err
		}
		existingUser.Email = email
	}

	if err := s.userRepo.UpdateProfile(ctx, &existingUser); err != nil {
		logger.Error("Failed to update user", err)
		return domain.User{}, err
	}

	return existingUser, nil
}

func (s *userService) ChangePassword(ctx context.Context, id uuid.UUID, currentPassword, newPassword string) error {
	if err := s.validate.Var(newPassword, "required,min=6"); err != nil {
		return domain.NewValidationError("password must be at least 6 characters")
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(currentPassword, user.Password) {
		return domain.NewValidationError("current password is incorrect")
	}

	passwordHash, err := utils.HashPassword(newPassword)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.NewInternalError("failed to hash password", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, id, string(passwordHash)); err != nil {
		logger.Error("Failed to update password", err)
		return err
	}

	return nil
}

func (s *userService) Dashboard(ctx context.Context, id uuid.UUID) (domain.UserDashboard, error) {
	total, err := s.orderRepo.Count(ctx, &id, "")
	if err != nil {
		logger.Error("Failed to count orders", err)
		return domain.UserDashboard{}, err
	}

	items, err := s.cartRepo.CountItems(ctx, id)
	if err != nil {
		logger.Error("Failed to count cart items", err)
		return domain.UserDashboard{}, err
	}

	recent, err := s.orderRepo.Recent(ctx, &id, s.dashboardSize)
	if err != nil {
		logger.Error("Failed to get recent orders", err)
		return domain.UserDashboard{}, err
	}

	return domain.UserDashboard{
		TotalOrders:   total,
		CartItemCount: items,
		RecentOrders:  recent,
	}, nil
}

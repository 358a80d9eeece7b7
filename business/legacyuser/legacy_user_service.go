package legacyuser

import (
	"context"
	"encoding/json"
	"misikaMarket/business/notification"
	"misikaMarket/domain"
	"misikaMarket/pkg/logger"
	"misikaMarket/pkg/utils"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// LegacyUserRepository contract interface
type LegacyUserRepository interface {
	FindByEmail(ctx context.Context, email string) (domain.LegacyUser, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpsertOTP(ctx context.Context, otp domain.OTPVerification) error
	FindOTP(ctx context.Context, email, purpose string) (domain.OTPVerification, error)
	CreateWithOTP(ctx context.Context, user *domain.LegacyUser, purpose, code string) error
	ResetPasswordWithOTP(ctx context.Context, email, purpose, code, passwordHash string) error
}

// TokenIssuer contract interface
type TokenIssuer interface {
	IssuePair(subject, provider string) (domain.TokenPair, error)
}

// Notifier contract interface
type Notifier interface {
	Enqueue(n domain.Notification)
}

type SignupInput struct {
	Name         string `validate:"required,min=2,max=100"`
	MobileNumber string `validate:"required,numeric,len=10"`
	Email        string `validate:"required,email"`
	City         string `validate:"required"`
	Password     string `validate:"required,min=6"`
}

type AuthResult struct {
	User domain.LegacyUser `json:"user"`
	domain.TokenPair
}

type legacyUserService struct {
	repo     LegacyUserRepository
	tokens   TokenIssuer
	notifier Notifier
	validate *validator.Validate
	now      func() time.Time
}

func NewLegacyUserService(repo LegacyUserRepository, tokens TokenIssuer, notifier Notifier, validate *validator.Validate) *legacyUserService {
	return &legacyUserService{
		repo:     repo,
		tokens:   tokens,
		notifier: notifier,
		validate: validate,
		now:      time.Now,
	}
}

// SendSignupOTP stores a fresh code together with the pending profile and
// emails the code. A second request for the same email replaces both.
func (s *legacyUserService) SendSignupOTP(ctx context.Context, input SignupInput) error {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if err := s.validate.Struct(input); err != nil {
		logger.Error("Invalid signup data", err)
		return domain.NewValidationError("invalid signup data")
	}

	exists, err := s.repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		logger.Error("Failed to check legacy email", err)
		return err
	}
	if exists {
		return domain.NewDuplicateError("user already exists")
	}

	passwordHash, err := utils.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.NewInternalError("failed to hash password", err)
	}

	payload, err := json.Marshal(domain.PendingLegacySignup{
		Name:         input.Name,
		MobileNumber: input.MobileNumber,
		City:         input.City,
		PasswordHash: string(passwordHash),
	})
	if err != nil {
		return domain.NewInternalError("failed to encode signup", err)
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		logger.Error("Failed to generate otp", err)
		return domain.NewInternalError("failed to generate code", err)
	}

	err = s.repo.UpsertOTP(ctx, domain.OTPVerification{
		Email:     input.Email,
		Purpose:   domain.OTPPurposeLegacySignup,
		Code:      code,
		ExpiresAt: s.now().Add(domain.OTPTTL),
		Payload:   payload,
	})
	if err != nil {
		logger.Error("Failed to store otp", err)
		return err
	}

	s.notifier.Enqueue(notification.OTPCode(input.Name, input.Email, code, domain.OTPPurposeLegacySignup))

	return nil
}

func (s *legacyUserService) checkOTP(ctx context.Context, email, purpose, code string) (domain.OTPVerification, error) {
	otp, err := s.repo.FindOTP(ctx, email, purpose)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.OTPVerification{}, domain.ErrInvalidOTP
		}
		logger.Error("Failed to find otp", err)
		return domain.OTPVerification{}, err
	}

	if !utils.OTPMatches(otp.Code, code) {
		return domain.OTPVerification{}, domain.ErrInvalidOTP
	}

	if otp.Expired(s.now()) {
		return domain.OTPVerification{}, domain.ErrExpiredOTP
	}

	return otp, nil
}

func (s *legacyUserService) VerifySignupOTP(ctx context.Context, email, code string) (AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)

	otp, err := s.checkOTP(ctx, email, domain.OTPPurposeLegacySignup, code)
	if err != nil {
		return AuthResult{}, err
	}

	var pending domain.PendingLegacySignup
	if err := json.Unmarshal(otp.Payload, &pending); err != nil || pending.PasswordHash == "" {
		logger.Error("Pending signup missing for otp", "email", email)
		return AuthResult{}, domain.ErrInvalidOTP.WithMessage("no pending signup for this email")
	}

	user := domain.LegacyUser{
		Name:         pending.Name,
		MobileNumber: pending.MobileNumber,
		Email:        email,
		City:         pending.City,
		Password:     pending.PasswordHash,
	}

	if err := s.repo.CreateWithOTP(ctx, &user, domain.OTPPurposeLegacySignup, code); err != nil {
		logger.Error("Failed to create legacy user", err)
		return AuthResult{}, err
	}

	tokens, err := s.tokens.IssuePair(strconv.FormatInt(user.ID, 10), domain.ProviderLegacy)
	if err != nil {
		logger.Error("Failed to generate token", err)
		return AuthResult{}, domain.NewInternalError("failed to generate token", err)
	}

	s.notifier.Enqueue(notification.Welcome(user.Name, user.Email))

	logger.Info("legacy user registered", "user_id", user.ID)

	return AuthResult{User: user, TokenPair: tokens}, nil
}

func (s *legacyUserService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if domain.IsNotFound(err) {
			utils.BurnPasswordCheck(password)
			return AuthResult{}, domain.ErrInvalidCredentials
		}
		logger.Error("Failed to find legacy user", err)
		return AuthResult{}, err
	}

	if !utils.CheckPassword(password, user.Password) {
		return AuthResult{}, domain.ErrInvalidCredentials
	}

	tokens, err := s.tokens.IssuePair(strconv.FormatInt(user.ID, 10), domain.ProviderLegacy)
	if err != nil {
		logger.Error("Failed to generate token", err)
		return AuthResult{}, domain.NewInternalError("failed to generate token", err)
	}

	return AuthResult{User: user, TokenPair: tokens}, nil
}

// ForgotPassword answers the same way for unknown emails.
func (s *legacyUserService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		logger.Error("Failed to find legacy user", err)
		return err
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return domain.NewInternalError("failed to generate code", err)
	}

	err = s.repo.UpsertOTP(ctx, domain.OTPVerification{
		Email:     email,
		Purpose:   domain.OTPPurposeLegacyReset,
		Code:      code,
		ExpiresAt: s.now().Add(domain.OTPTTL),
	})
	if err != nil {
		logger.Error("Failed to store otp", err)
		return err
	}

	s.notifier.Enqueue(notification.OTPCode(user.Name, email, code, domain.OTPPurposeLegacyReset))

	return nil
}

func (s *legacyUserService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)

	if err := s.validate.Var(newPassword, "required,min=6"); err != nil {
		return domain.NewValidationError("password must be at least 6 characters")
	}

	if _, err := s.checkOTP(ctx, email, domain.OTPPurposeLegacyReset, code); err != nil {
		return err
	}

	passwordHash, err := utils.HashPassword(newPassword)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.NewInternalError("failed to hash password", err)
	}

	if err := s.repo.ResetPasswordWithOTP(ctx, email, domain.OTPPurposeLegacyReset, code, string(passwordHash)); err != nil {
		logger.Error("Failed to reset legacy password", err)
		return err
	}

	return nil
}

func (s *legacyUserService) GetByEmail(ctx context.Context, email string) (domain.LegacyUser, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return domain.LegacyUser{}, err
	}

	return user, nil
}

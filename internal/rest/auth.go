package rest

import (
	"context"
	"misikaMarket/business/user"
	"misikaMarket/domain"
	"net/http"
	"time"

	jsonres "misikaMarket/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AccountService interface {
	Register(ctx context.Context, input user.RegisterInput) (user.AuthResult, error)
	Login(ctx context.Context, email, password string) (user.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (user.AuthResult, error)
	Logout(ctx context.Context, principal domain.Principal, refreshToken string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	GetProfile(ctx context.Context, id uuid.UUID) (domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input user.ProfileInput) (domain.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, currentPassword, newPassword string) error
	Dashboard(ctx context.Context, id uuid.UUID) (domain.UserDashboard, error)
}

type AuthHandler struct {
	accountService AccountService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewAuthHandler(accountService AccountService, v *validator.Validate, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		accountService: accountService,
		validator:      v,
		timeout:        timeout,
	}
}

type RegisterRequest struct {
	Username  string `json:"username" validate:"omitempty,min=3,max=30,alphanum"`
	FirstName string `json:"firstName" validate:"required,min=2,max=50"`
	LastName  string `json:"lastName" validate:"required,min=2,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Phone     string `json:"phone" validate:"required,numeric,len=10"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	OTP      string `json:"otp" validate:"required,numeric,len=6"`
	Password string `json:"password" validate:"required,min=6"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.accountService.Register(ctx, user.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, jsonres.Success("User registered successfully", result))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.accountService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Login successful", result))
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.accountService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Token refreshed successfully", result))
}

func (h *AuthHandler) Logout(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req LogoutRequest
	// the body is optional
	_ = c.Bind(&req)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.accountService.Logout(ctx, p, req.RefreshToken); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Logout successful", nil))
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.accountService.ForgotPassword(ctx, req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("If an account exists with this email, a reset code has been sent", nil))
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.accountService.ResetPassword(ctx, req.Email, req.OTP, req.Password); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Password reset successful", nil))
}

package rest

import (
	"context"
	"misikaMarket/business/legacyuser"
	"misikaMarket/business/user"
	"misikaMarket/domain"
	"net/http"
	"time"

	jsonres "misikaMarket/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type LegacyUserService interface {
	SendSignupOTP(ctx context.Context, input legacyuser.SignupInput) error
	VerifySignupOTP(ctx context.Context, email, code string) (legacyuser.AuthResult, error)
	Login(ctx context.Context, email, password string) (legacyuser.AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	GetByEmail(ctx context.Context, email string) (domain.LegacyUser, error)
}

// UserHandler serves the OTP-gated legacy user flows and the profile of the
// signed-in account.
type UserHandler struct {
	legacyService  LegacyUserService
	accountService AccountService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewUserHandler(legacyService LegacyUserService, accountService AccountService, v *validator.Validate, timeout time.Duration) *UserHandler {
	return &UserHandler{
		legacyService:  legacyService,
		accountService: accountService,
		validator:      v,
		timeout:        timeout,
	}
}

type SendOTPRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=100"`
	MobileNumber string `json:"mobileNumber" validate:"required,numeric,len=10"`
	Email        string `json:"email" validate:"required,email"`
	City         string `json:"city" validate:"required"`
	Password     string `json:"password" validate:"required,min=6"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,numeric,len=6"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=2,max=50"`
	LastName  *string `json:"lastName" validate:"omitempty,min=2,max=50"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone" validate:"omitempty,numeric,len=10"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

func (h *UserHandler) SendOTP(c echo.Context) error {
	var req SendOTPRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	err := h.legacyService.SendSignupOTP(ctx, legacyuser.SignupInput{
		Name:         req.Name,
		MobileNumber: req.MobileNumber,
		Email:        req.Email,
		City:         req.City,
		Password:     req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("OTP sent to your email", map[string]string{"email": req.Email}))
}

func (h *UserHandler) VerifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.legacyService.VerifySignupOTP(ctx, req.Email, req.OTP)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, jsonres.Success("User registered successfully", result))
}

func (h *UserHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.legacyService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Login successful", result))
}

func (h *UserHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.legacyService.ForgotPassword(ctx, req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("If an account exists with this email, a reset code has been sent", nil))
}

func (h *UserHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.legacyService.ResetPassword(ctx, req.Email, req.OTP, req.Password); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Password reset successful", nil))
}

func (h *UserHandler) GetByEmail(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	u, err := h.legacyService.GetByEmail(ctx, c.Param("email"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("User retrieved successfully", u))
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	u, err := h.accountService.GetProfile(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Profile retrieved successfully", u))
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	u, err := h.accountService.UpdateProfile(ctx, id, user.ProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Profile updated successfully", u))
}

func (h *UserHandler) ChangePassword(c echo.Context) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}

	var req ChangePasswordRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.accountService.ChangePassword(ctx, id, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Password changed successfully", nil))
}

func (h *UserHandler) Dashboard(c echo.Context) error {
	id, err := accountID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	dashboard, err := h.accountService.Dashboard(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, jsonres.Success("Dashboard data retrieved successfully", dashboard))
}

package middleware

import (
	"context"
	"errors"
	"misikaMarket/domain"
	"misikaMarket/pkg/logger"
	"misikaMarket/pkg/utils"
	"net/http"
	"strings"
	"time"

	jsonres "misikaMarket/pkg/response"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Keys set on the echo context by Authenticate.
const (
	ContextPrincipal = "principal"
	ContextUserID    = "user_id"
	ContextRole      = "role"
	ContextToken     = "token"
)

// TokenVerifier checks signature, expiry and kind of a bearer token
type TokenVerifier interface {
	Verify(token, kind string) (*utils.Claims, error)
}

// IdentityResolver maps a verified subject to a principal
type IdentityResolver interface {
	Resolve(ctx context.Context, provider, subject string) (domain.Principal, error)
}

// RevocationChecker reports whether a token id was logged out
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, jsonres.Error("UNAUTHORIZED", message, ""))
}

func forbidden(c echo.Context, message string) error {
	return c.JSON(http.StatusForbidden, jsonres.Error("FORBIDDEN", message, ""))
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// Authenticate resolves the bearer token into a principal. revocations may
// be nil when no revocation store is configured.
func Authenticate(verifier TokenVerifier, resolver IdentityResolver, revocations RevocationChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return unauthorized(c, "Access token is required")
			}

			tokenString, ok := bearerToken(authHeader)
			if !ok {
				return unauthorized(c, "Invalid authorization format")
			}

			claims, err := verifier.Verify(tokenString, utils.TokenKindAccess)
			if err != nil {
				if errors.Is(err, domain.ErrExpiredToken) {
					return unauthorized(c, "Token expired")
				}
				return unauthorized(c, "Invalid token")
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			if revocations != nil && claims.ID != "" {
				revoked, err := revocations.IsRevoked(ctx, claims.ID)
				if err != nil {
					logger.Error("Failed to check token revocation", err)
					return c.JSON(http.StatusServiceUnavailable, jsonres.Error("SERVICE_UNAVAILABLE", "Unable to verify token", ""))
				}
				if revoked {
					return unauthorized(c, "Token has been revoked")
				}
			}

			principal, err := resolver.Resolve(ctx, claims.Provider, claims.Subject)
			if err != nil {
				switch domain.KindOf(err) {
				case domain.KindForbidden:
					return forbidden(c, "Account is suspended")
				case domain.KindUnauthenticated:
					return unauthorized(c, "User not found")
				}
				logger.Error("Failed to resolve token subject", err)
				return c.JSON(http.StatusInternalServerError, jsonres.Error("INTERNAL_ERROR", "Authentication failed", ""))
			}

			principal.TokenID = claims.ID
			if claims.ExpiresAt != nil {
				principal.ExpiresAt = claims.ExpiresAt.Time
			}

			c.Set(ContextPrincipal, principal)
			if principal.IsAccount() {
				c.Set(ContextUserID, principal.AccountID)
			} else {
				c.Set(ContextUserID, principal.LegacyID)
			}
			c.Set(ContextRole, principal.Role)
			c.Set(ContextToken, tokenString)

			return next(c)
		}
	}
}

func PrincipalFrom(c echo.Context) (domain.Principal, bool) {
	p, ok := c.Get(ContextPrincipal).(domain.Principal)
	return p, ok
}

// AccountID returns the primary-schema user id of the caller.
func AccountID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(ContextUserID).(uuid.UUID)
	return id, ok
}

// AdminOnly checks the role flag of the resolved principal.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return unauthorized(c, "User not authenticated")
			}

			if !p.IsAdmin() {
				return forbidden(c, "Admin access required")
			}

			return next(c)
		}
	}
}

// RequireAccount rejects principals from the legacy user store.
func RequireAccount() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return unauthorized(c, "User not authenticated")
			}

			if !p.IsAccount() {
				return forbidden(c, "This action requires a registered account")
			}

			return next(c)
		}
	}
}

// SelfOrAdmin lets a caller read only the record whose email is in the
// path, unless the caller is an admin.
func SelfOrAdmin(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return unauthorized(c, "User not authenticated")
			}

			if p.IsAdmin() {
				return next(c)
			}

			if !strings.EqualFold(strings.TrimSpace(c.Param(param)), p.Email) {
				return forbidden(c, "You can only access your own data")
			}

			return next(c)
		}
	}
}

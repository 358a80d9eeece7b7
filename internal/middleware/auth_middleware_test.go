package middleware

import (
	"context"
	"errors"
	"misikaMarket/domain"
	"misikaMarket/pkg/utils"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type fakeVerifier map[string]*utils.Claims

func (f fakeVerifier) Verify(token, kind string) (*utils.Claims, error) {
	if token == "expired" {
		return nil, domain.ErrExpiredToken
	}
	c, ok := f[token]
	if !ok || c.Kind != kind {
		return nil, domain.ErrInvalidToken
	}
	return c, nil
}

type fakeResolver map[string]domain.Principal

func (f fakeResolver) Resolve(ctx context.Context, provider, subject string) (domain.Principal, error) {
	if subject == "suspended" {
		return domain.Principal{}, domain.ErrAccountSuspended
	}
	if subject == "broken" {
		return domain.Principal{}, errors.New("db down")
	}
	p, ok := f[subject]
	if !ok {
		return domain.Principal{}, domain.NewUnauthenticatedError("user not found")
	}
	return p, nil
}

type fakeRevocations map[string]bool

func (f fakeRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return f[jti], nil
}

var (
	accountID = uuid.New()
	userP     = domain.Principal{Provider: domain.ProviderAccount, Subject: accountID.String(), AccountID: accountID, Email: "asha@example.com", Role: domain.RoleUser}
	adminP    = domain.Principal{Provider: domain.ProviderAccount, Subject: "admin", AccountID: uuid.New(), Email: "root@example.com", Role: domain.RoleAdmin}
	legacyP   = domain.Principal{Provider: domain.ProviderLegacy, Subject: "42", LegacyID: 42, Email: "old@example.com", Role: domain.RoleUser}
)

func claims(subject, jti string) *utils.Claims {
	return &utils.Claims{
		Kind: utils.TokenKindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func newTestServer(revocations RevocationChecker, extra ...echo.MiddlewareFunc) *echo.Echo {
	verifier := fakeVerifier{
		"user-token":      claims(userP.Subject, "jti-user"),
		"admin-token":     claims("admin", "jti-admin"),
		"legacy-token":    claims("42", "jti-legacy"),
		"revoked-token":   claims(userP.Subject, "jti-revoked"),
		"suspended-token": claims("suspended", "jti-s"),
		"ghost-token":     claims("ghost", "jti-g"),
		"broken-token":    claims("broken", "jti-b"),
		"refresh-token":   {Kind: utils.TokenKindRefresh, RegisteredClaims: jwt.RegisteredClaims{Subject: userP.Subject}},
	}
	resolver := fakeResolver{userP.Subject: userP, "admin": adminP, "42": legacyP}

	e := echo.New()
	mws := append([]echo.MiddlewareFunc{Authenticate(verifier, resolver, revocations)}, extra...)
	e.GET("/users/email/:email", func(c echo.Context) error {
		p, _ := PrincipalFrom(c)
		return c.String(http.StatusOK, p.Email+"|"+p.TokenID)
	}, mws...)
	return e
}

func do(e *echo.Echo, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	e := newTestServer(fakeRevocations{"jti-revoked": true})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"expired", "Bearer expired", http.StatusUnauthorized},
		{"refresh used as access", "Bearer refresh-token", http.StatusUnauthorized},
		{"revoked", "Bearer revoked-token", http.StatusUnauthorized},
		{"unknown subject", "Bearer ghost-token", http.StatusUnauthorized},
		{"suspended", "Bearer suspended-token", http.StatusForbidden},
		{"resolver failure", "Bearer broken-token", http.StatusInternalServerError},
		{"valid", "Bearer user-token", http.StatusOK},
		{"case-insensitive scheme", "bearer user-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, "/users/email/x", tt.header)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestAuthenticateSetsPrincipal(t *testing.T) {
	e := newTestServer(nil)

	rec := do(e, "/users/email/x", "Bearer user-token")
	if rec.Body.String() != "asha@example.com|jti-user" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}

	// revocation store disabled: revoked ids are not consulted
	if rec := do(e, "/users/email/x", "Bearer revoked-token"); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAdminOnly(t *testing.T) {
	e := newTestServer(nil, AdminOnly())

	if rec := do(e, "/users/email/x", "Bearer user-token"); rec.Code != http.StatusForbidden {
		t.Fatalf("user status = %d", rec.Code)
	}
	if rec := do(e, "/users/email/x", "Bearer admin-token"); rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d", rec.Code)
	}
}

func TestRequireAccount(t *testing.T) {
	e := newTestServer(nil, RequireAccount())

	if rec := do(e, "/users/email/x", "Bearer legacy-token"); rec.Code != http.StatusForbidden {
		t.Fatalf("legacy status = %d", rec.Code)
	}
	if rec := do(e, "/users/email/x", "Bearer user-token"); rec.Code != http.StatusOK {
		t.Fatalf("account status = %d", rec.Code)
	}
}

func TestSelfOrAdmin(t *testing.T) {
	e := newTestServer(nil, SelfOrAdmin("email"))

	if rec := do(e, "/users/email/ASHA@example.com", "Bearer user-token"); rec.Code != http.StatusOK {
		t.Fatalf("self status = %d", rec.Code)
	}
	if rec := do(e, "/users/email/other@example.com", "Bearer user-token"); rec.Code != http.StatusForbidden {
		t.Fatalf("other status = %d", rec.Code)
	}
	if rec := do(e, "/users/email/other@example.com", "Bearer admin-token"); rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d", rec.Code)
	}
}

func TestAccountID(t *testing.T) {
	e := echo.New()
	var got uuid.UUID
	var legacyOK bool

	verifier := fakeVerifier{"user-token": claims(userP.Subject, "j1"), "legacy-token": claims("42", "j2")}
	resolver := fakeResolver{userP.Subject: userP, "42": legacyP}

	e.GET("/", func(c echo.Context) error {
		id, ok := AccountID(c)
		if ok {
			got = id
		} else {
			legacyOK = true
		}
		return c.NoContent(http.StatusNoContent)
	}, Authenticate(verifier, resolver, nil))

	do(e, "/", "Bearer user-token")
	if got != accountID {
		t.Fatalf("account id = %s", got)
	}

	do(e, "/", "Bearer legacy-token")
	if !legacyOK {
		t.Fatal("legacy principals have no account id")
	}
}

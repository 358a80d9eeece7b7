package utils

import (
	"errors"
	"misikaMarket/domain"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

type Claims struct {
	Kind     string `json:"kind"`
	Provider string `json:"provider"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewJWTManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTManager {
	if refreshSecret == "" {
		refreshSecret = accessSecret
	}

	return &JWTManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (m *JWTManager) AccessTTL() time.Duration {
	return m.accessTTL
}

func (m *JWTManager) IssueAccessToken(subject, provider string) (string, error) {
	return m.issue(subject, provider, TokenKindAccess)
}

func (m *JWTManager) IssueRefreshToken(subject, provider string) (string, error) {
	return m.issue(subject, provider, TokenKindRefresh)
}

func (m *JWTManager) IssuePair(subject, provider string) (domain.TokenPair, error) {
	access, err := m.IssueAccessToken(subject, provider)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refresh, err := m.IssueRefreshToken(subject, provider)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *JWTManager) issue(subject, provider, kind string) (string, error) {
	secret, ttl := m.accessSecret, m.accessTTL
	if kind == TokenKindRefresh {
		secret, ttl = m.refreshSecret, m.refreshTTL
	}

	now := m.now()
	claims := Claims{
		Kind:     kind,
		Provider: provider,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify checks signature, expiry and kind. It returns domain.ErrExpiredToken
// for an expired but otherwise valid token and domain.ErrInvalidToken for
// everything else.
func (m *JWTManager) Verify(tokenString, kind string) (*Claims, error) {
	secret := m.accessSecret
	if kind == TokenKindRefresh {
		secret = m.refreshSecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, domain.ErrInvalidToken
	}

	if !token.Valid || claims.Kind != kind || claims.Subject == "" {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}

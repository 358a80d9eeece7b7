package auth

import (
	"context"
	"errors"
	"misikaMarket/domain"
	"misikaMarket/pkg/logger"
	"strconv"

	"github.com/google/uuid"
)

// AccountRepository contract interface
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.User, error)
}

// LegacyRepository contract interface
type LegacyRepository interface {
	FindByID(ctx context.Context, id int64) (domain.LegacyUser, error)
}

// IdentityChain resolves a token subject to a principal. A token names the
// store that issued it; older tokens without a provider are tried against the
// account store first, then the legacy store. Identities are never merged.
type IdentityChain struct {
	accounts AccountRepository
	legacy   LegacyRepository
}

func NewIdentityChain(accounts AccountRepository, legacy LegacyRepository) *IdentityChain {
	return &IdentityChain{
		accounts: accounts,
		legacy:   legacy,
	}
}

var errNoIdentity = &domain.Error{Kind: domain.KindUnauthenticated, Code: "USER_NOT_FOUND", Message: "user not found"}

func (c *IdentityChain) Resolve(ctx context.Context, provider, subject string) (domain.Principal, error) {
	switch provider {
	case domain.ProviderAccount:
		return c.resolveAccount(ctx, subject)
	case domain.ProviderLegacy:
		return c.resolveLegacy(ctx, subject)
	case "":
	default:
		return domain.Principal{}, domain.ErrInvalidToken
	}

	p, err := c.resolveAccount(ctx, subject)
	if err == nil || !errors.Is(err, errNoIdentity) {
		return p, err
	}

	return c.resolveLegacy(ctx, subject)
}

func (c *IdentityChain) resolveAccount(ctx context.Context, subject string) (domain.Principal, error) {
	id, err := uuid.Parse(subject)
	if err != nil || c.accounts == nil {
		return domain.Principal{}, errNoIdentity
	}

	user, err := c.accounts.FindByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.Principal{}, errNoIdentity
		}
		logger.Error("Failed to resolve account principal", err)
		return domain.Principal{}, err
	}

	if user.IsSuspended() {
		return domain.Principal{}, domain.ErrAccountSuspended
	}

	return domain.Principal{
		Provider:  domain.ProviderAccount,
		Subject:   user.ID.String(),
		Email:     user.Email,
		Name:      fullName(user.FirstName, user.LastName),
		Role:      user.Role,
		AccountID: user.ID,
	}, nil
}

func (c *IdentityChain) resolveLegacy(ctx context.Context, subject string) (domain.Principal, error) {
	id, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || id <= 0 || c.legacy == nil {
		return domain.Principal{}, errNoIdentity
	}

	user, err := c.legacy.FindByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.Principal{}, errNoIdentity
		}
		logger.Error("Failed to resolve legacy principal", err)
		return domain.Principal{}, err
	}

	// userquery has no role column
	return domain.Principal{
		Provider: domain.ProviderLegacy,
		Subject:  strconv.FormatInt(user.ID, 10),
		Email:    user.Email,
		Name:     user.Name,
		Role:     domain.RoleUser,
		LegacyID: user.ID,
	}, nil
}

func fullName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}

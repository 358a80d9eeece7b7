package address

import (
	"context"
	"misikaMarket/domain"
	"misikaMarket/pkg/logger"

	"github.com/google/uuid"
)

// AddressRepository contract interface
type AddressRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.Address, error)
	FindOwned(ctx context.Context, userID, id uuid.UUID) (domain.Address, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	Create(ctx context.Context, address *domain.Address) error
	Update(ctx context.Context, address *domain.Address) error
	UnsetDefaults(ctx context.Context, userID uuid.UUID) error
	SetDefault(ctx context.Context, userID, id uuid.UUID) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// Transactor contract interface
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type addressService struct {
	addressRepo AddressRepository
	tx          Transactor
}

func NewAddressService(addressRepo AddressRepository, tx Transactor) *addressService {
	return &addressService{
		addressRepo: addressRepo,
		tx:          tx,
	}
}

// GetAddresses lists the default address first, then newest first.
func (s *addressService) GetAddresses(ctx context.Context, userID uuid.UUID) ([]domain.Address, error) {
	addresses, err := s.addressRepo.FindByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to list addresses", err)
		return nil, err
	}

	return addresses, nil
}

// CreateAddress stores a new address. The first address a user adds becomes
// the default; at most one address per user is ever the default.
func (s *addressService) CreateAddress(ctx context.Context, userID uuid.UUID, address domain.Address) (domain.Address, error) {
	address.ID = uuid.Nil
	address.UserID = userID
	if address.Country == "" {
		address.Country = "India"
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		count, err := s.addressRepo.CountByUser(ctx, userID)
		if err != nil {
			return err
		}

		if count == 0 {
			address.IsDefault = true
		}

		if address.IsDefault && count > 0 {
			if err := s.addressRepo.UnsetDefaults(ctx, userID); err != nil {
				return err
			}
		}

		return s.addressRepo.Create(ctx, &address)
	})
	if err != nil {
		logger.Error("Failed to create address", err)
		return domain.Address{}, err
	}

	return address, nil
}

func (s *addressService) UpdateAddress(ctx context.Context, userID, id uuid.UUID, patch domain.AddressPatch) (domain.Address, error) {
	var address domain.Address

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		address, err = s.addressRepo.FindOwned(ctx, userID, id)
		if err != nil {
			return err
		}

		applyPatch(&address, patch)

		if patch.IsDefault != nil && *patch.IsDefault {
			if err := s.addressRepo.UnsetDefaults(ctx, userID); err != nil {
				return err
			}
		}

		return s.addressRepo.Update(ctx, &address)
	})
	if err != nil {
		if !domain.IsNotFound(err) {
			logger.Error("Failed to update address", err)
		}
		return domain.Address{}, err
	}

	return address, nil
}

func applyPatch(a *domain.Address, p domain.AddressPatch) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}

	set(&a.FirstName, p.FirstName)
	set(&a.LastName, p.LastName)
	set(&a.Phone, p.Phone)
	set(&a.AddressLine1, p.AddressLine1)
	set(&a.AddressLine2, p.AddressLine2)
	set(&a.City, p.City)
	set(&a.State, p.State)
	set(&a.PostalCode, p.PostalCode)
	set(&a.Country, p.Country)

	if p.IsDefault != nil {
		a.IsDefault = *p.IsDefault
	}
}

// DeleteAddress removes the address. Orders already placed keep their own
// copy of it.
func (s *addressService) DeleteAddress(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.addressRepo.Delete(ctx, userID, id); err != nil {
		if !domain.IsNotFound(err) {
			logger.Error("Failed to delete address", err)
		}
		return err
	}

	return nil
}

func (s *addressService) SetDefaultAddress(ctx context.Context, userID, id uuid.UUID) (domain.Address, error) {
	var address domain.Address

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		address, err = s.addressRepo.FindOwned(ctx, userID, id)
		if err != nil {
			return err
		}

		if err := s.addressRepo.UnsetDefaults(ctx, userID); err != nil {
			return err
		}

		if err := s.addressRepo.SetDefault(ctx, userID, id); err != nil {
			return err
		}

		address.IsDefault = true
		return nil
	})
	if err != nil {
		if !domain.IsNotFound(err) {
			logger.Error("Failed to set default address", err)
		}
		return domain.Address{}, err
	}

	return address, nil
}

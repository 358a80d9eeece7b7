package cart

import (
	"context"
	"fmt"
	"misikaMarket/domain"
	"misikaMarket/pkg/logger"

	"github.com/google/uuid"
)

// CartRepository contract interface
type CartRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error)
	FindItem(ctx context.Context, userID, itemID uuid.UUID) (domain.CartItem, error)
	FindByProduct(ctx context.Context, userID, productID uuid.UUID) (domain.CartItem, error)
	Create(ctx context.Context, item *domain.CartItem) error
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

// ProductLocker contract interface
type ProductLocker interface {
	LockByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Product, error)
}

// Transactor contract interface
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type cartService struct {
	cartRepo    CartRepository
	productRepo ProductLocker
	tx          Transactor
}

func NewCartService(cartRepo CartRepository, productRepo ProductLocker, tx Transactor) *cartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		tx:          tx,
	}
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (domain.Cart, error) {
	items, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to get cart", err)
		return domain.Cart{}, err
	}

	return domain.NewCart(items), nil
}

// lockProduct returns the product with its row locked for the rest of the
// transaction. Missing and inactive products are both not found.
func (s *cartService) lockProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	products, err := s.productRepo.LockByIDs(ctx, []uuid.UUID{productID})
	if err != nil {
		return domain.Product{}, err
	}

	product, ok := products[productID]
	if !ok || !product.IsActive {
		return domain.Product{}, domain.NewNotFoundError("product")
	}

	return product, nil
}

func insufficient(product domain.Product) error {
	return domain.ErrInsufficientStock.WithMessage(fmt.Sprintf("insufficient stock for %s: only %d available", product.Name, product.Stock))
}

// AddItem merges quantity into an existing line for the same product. The
// merged quantity must fit in the current stock.
func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (domain.CartItem, error) {
	if quantity < 1 {
		return domain.CartItem{}, domain.NewValidationError("quantity must be at least 1")
	}

	var itemID uuid.UUID
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		product, err := s.lockProduct(ctx, productID)
		if err != nil {
			return err
		}

		if product.Stock < quantity {
			return insufficient(product)
		}

		existing, err := s.cartRepo.FindByProduct(ctx, userID, productID)
		switch {
		case err == nil:
			merged := existing.Quantity + quantity
			if product.Stock < merged {
				return insufficient(product)
			}
			itemID = existing.ID
			return s.cartRepo.UpdateQuantity(ctx, userID, existing.ID, merged)
		case domain.IsNotFound(err):
			item := domain.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
			if err := s.cartRepo.Create(ctx, &item); err != nil {
				return err
			}
			itemID = item.ID
			return nil
		default:
			return err
		}
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindInternal {
			logger.Error("Failed to add cart item", err)
		}
		return domain.CartItem{}, err
	}

	return s.cartRepo.FindItem(ctx, userID, itemID)
}

func (s *cartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (domain.CartItem, error) {
	if quantity < 1 {
		return domain.CartItem{}, domain.NewValidationError("quantity must be at least 1")
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		item, err := s.cartRepo.FindItem(ctx, userID, itemID)
		if err != nil {
			return err
		}

		product, err := s.lockProduct(ctx, item.ProductID)
		if err != nil {
			return err
		}

		if product.Stock < quantity {
			return insufficient(product)
		}

		return s.cartRepo.UpdateQuantity(ctx, userID, itemID, quantity)
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindInternal {
			logger.Error("Failed to update cart item", err)
		}
		return domain.CartItem{}, err
	}

	return s.cartRepo.FindItem(ctx, userID, itemID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if err := s.cartRepo.Delete(ctx, userID, itemID); err != nil {
		if !domain.IsNotFound(err) {
			logger.Error("Failed to remove cart item", err)
		}
		return err
	}

	return nil
}

func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		logger.Error("Failed to clear cart", err)
		return err
	}

	return nil
}

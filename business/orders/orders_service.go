package orders

import (
	"context"
	"fmt"
	"misikaMarket/business/notification"
	"misikaMarket/domain"
	"misikaMarket/pkg/logger"
	"misikaMarket/pkg/metrics"
	"misikaMarket/pkg/utils"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// OrdersRepository contract interface
type OrdersRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByUser(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]domain.Order, int64, error)
	FindOwned(ctx context.Context, userID, orderID uuid.UUID) (domain.Order, error)
	FindByID(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	Lock(ctx context.Context, userID *uuid.UUID, orderID uuid.UUID) (domain.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error
}

// CartRepository contract interface
type CartRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// ProductRepository contract interface
type ProductRepository interface {
	LockByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Product, error)
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) error
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) error
}

// AddressRepository contract interface
type AddressRepository interface {
	FindOwned(ctx context.Context, userID, id uuid.UUID) (domain.Address, error)
}

// UserRepository contract interface
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.User, error)
}

// Notifier contract interface
type Notifier interface {
	Enqueue(n domain.Notification)
}

// Transactor contract interface
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

const DefaultPageSize = 10

type OrdersService struct {
	orderRepo   OrdersRepository
	cartRepo    CartRepository
	productRepo ProductRepository
	addressRepo AddressRepository
	userRepo    UserRepository
	notifier    Notifier
	tx          Transactor
	now         func() time.Time
}

func NewOrdersService(
	orderRepo OrdersRepository,
	cartRepo CartRepository,
	productRepo ProductRepository,
	addressRepo AddressRepository,
	userRepo UserRepository,
	notifier Notifier,
	tx Transactor,
) *OrdersService {
	return &OrdersService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		addressRepo: addressRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		tx:          tx,
		now:         time.Now,
	}
}

func unavailable(p domain.Product) error {
	return domain.ErrProductUnavailable.WithMessage(fmt.Sprintf("product %s is no longer available", p.Name))
}

func insufficient(p domain.Product) error {
	return domain.ErrInsufficientStock.WithMessage(fmt.Sprintf("insufficient stock for %s", p.Name))
}

// priceLines checks every line against its product and prices it at the
// current effective price.
func priceLines(items []domain.CartItem, products map[uuid.UUID]domain.Product) ([]domain.PriceLine, error) {
	lines := make([]domain.PriceLine, 0, len(items))

	for _, item := range items {
		p, ok := products[item.ProductID]
		if !ok {
			return nil, domain.ErrProductUnavailable
		}
		if !p.IsActive {
			return nil, unavailable(p)
		}
		if p.Stock < item.Quantity {
			return nil, insufficient(p)
		}

		lines = append(lines, domain.PriceLine{UnitPrice: p.EffectivePrice(), Quantity: item.Quantity})
	}

	return lines, nil
}

func (s *OrdersService) ownedAddress(ctx context.Context, userID, addressID uuid.UUID) (domain.Address, error) {
	address, err := s.addressRepo.FindOwned(ctx, userID, addressID)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.Address{}, domain.ErrInvalidAddress
		}
		return domain.Address{}, err
	}

	return address, nil
}

func validatePaymentMethod(method string) error {
	if !domain.IsPaymentMethod(method) {
		return domain.NewValidationError("paymentMethod must be one of COD, STRIPE, UPI, NET_BANKING")
	}
	return nil
}

// Preview quotes the current cart without writing anything.
func (s *OrdersService) Preview(ctx context.Context, userID, addressID uuid.UUID, paymentMethod string) (domain.OrderPreview, error) {
	if err := validatePaymentMethod(paymentMethod); err != nil {
		return domain.OrderPreview{}, err
	}

	items, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		logger.Error("Failed to load cart for checkout", err)
		return domain.OrderPreview{}, err
	}

	if len(items) == 0 {
		return domain.OrderPreview{}, domain.ErrEmptyCart
	}

	products := make(map[uuid.UUID]domain.Product, len(items))
	for _, item := range items {
		if item.Product != nil {
			products[item.ProductID] = *item.Product
		}
	}

	lines, err := priceLines(items, products)
	if err != nil {
		return domain.OrderPreview{}, err
	}

	address, err := s.ownedAddress(ctx, userID, addressID)
	if err != nil {
		return domain.OrderPreview{}, err
	}

	preview := domain.NewOrderPreview(items, domain.PriceCart(lines))
	snapshot := address.Snapshot()
	preview.Address = &snapshot
	preview.PaymentMethod = paymentMethod

	return preview, nil
}

// PlaceOrder turns the cart into an order in one transaction. Product rows
// are locked in id order before stock is checked and decremented, so two
// checkouts racing for the last unit cannot both succeed.
func (s *OrdersService) PlaceOrder(ctx context.Context, userID uuid.UUID, input domain.PlaceOrderInput) (domain.Order, error) {
	if err := validatePaymentMethod(input.PaymentMethod); err != nil {
		return domain.Order{}, err
	}

	var order domain.Order
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		items, err := s.cartRepo.FindByUser(ctx, userID)
		if err != nil {
			return err
		}

		if len(items) == 0 {
			return domain.ErrEmptyCart
		}

		ids := make([]uuid.UUID, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.ProductID)
		}

		products, err := s.productRepo.LockByIDs(ctx, ids)
		if err != nil {
			return err
		}

		lines, err := priceLines(items, products)
		if err != nil {
			return err
		}

		address, err := s.ownedAddress(ctx, userID, input.AddressID)
		if err != nil {
			return err
		}

		orderNumber, err := utils.GenerateOrderNumber(s.now())
		if err != nil {
			return domain.NewInternalError("failed to generate order number", err)
		}

		totals := domain.PriceCart(lines)
		order = buildOrder(userID, address, orderNumber, input, items, products, lines, totals)

		if err := s.orderRepo.Create(ctx, &order); err != nil {
			return err
		}

		for _, item := range items {
			if err := s.productRepo.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		return s.cartRepo.Clear(ctx, userID)
	})
	if err != nil {
		metrics.CheckoutTotal.WithLabelValues(checkoutResult(err)).Inc()
		if domain.KindOf(err) == domain.KindInternal {
			logger.Error("Failed to create order", err)
		}
		return domain.Order{}, err
	}

	metrics.CheckoutTotal.WithLabelValues("success").Inc()
	logger.Info("order created", "order_number", order.OrderNumber, "user_id", userID, "total", order.Total.StringFixed(2))

	s.notifyUser(ctx, userID, func(u domain.User) domain.Notification {
		return notification.OrderConfirmation(u.FirstName, u.Email, order)
	})

	return order, nil
}

func buildOrder(
	userID uuid.UUID,
	address domain.Address,
	orderNumber string,
	input domain.PlaceOrderInput,
	items []domain.CartItem,
	products map[uuid.UUID]domain.Product,
	lines []domain.PriceLine,
	totals domain.Totals,
) domain.Order {
	status, paymentStatus := domain.OrderPending, domain.PaymentStatusPending
	if input.PaymentMethod == domain.PaymentCOD {
		status, paymentStatus = domain.OrderConfirmed, domain.PaymentStatusCompleted
	}

	orderItems := make([]domain.OrderItem, 0, len(items))
	for i, item := range items {
		orderItems = append(orderItems, domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: products[item.ProductID].Name,
			Quantity:    item.Quantity,
			Price:       lines[i].UnitPrice,
			Total:       lines[i].Total(),
		})
	}

	var gatewayID *string
	if input.PaymentIntentID != "" {
		id := input.PaymentIntentID
		gatewayID = &id
	}

	addressID := address.ID

	return domain.Order{
		UserID:          userID,
		AddressID:       &addressID,
		ShippingAddress: datatypes.NewJSONType(address.Snapshot()),
		OrderNumber:     orderNumber,
		PaymentMethod:   input.PaymentMethod,
		Subtotal:        totals.Subtotal,
		ShippingCost:    totals.ShippingCost,
		Tax:             totals.Tax,
		Total:           totals.Total,
		Status:          status,
		Notes:           input.Notes,
		Items:           orderItems,
		Payment: &domain.Payment{
			PaymentMethod:    input.PaymentMethod,
			Amount:           totals.Total,
			Status:           paymentStatus,
			GatewayPaymentID: gatewayID,
		},
	}
}

func checkoutResult(err error) string {
	switch domain.KindOf(err) {
	case domain.KindBusinessRule:
		return "rejected"
	case domain.KindValidation, domain.KindNotFound:
		return "invalid"
	}
	return "error"
}

func (s *OrdersService) notifyUser(ctx context.Context, userID uuid.UUID, build func(domain.User) domain.Notification) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		logger.Warn("order email skipped, user lookup failed", "user_id", userID, "error", err)
		return
	}

	s.notifier.Enqueue(build(u))
}

func (s *OrdersService) GetOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.Order, domain.Pagination, error) {
	pr := domain.NewPageRequest(page, limit, DefaultPageSize)

	orders, total, err := s.orderRepo.FindByUser(ctx, userID, pr)
	if err != nil {
		logger.Error("Failed to list orders", err)
		return nil, domain.Pagination{}, err
	}

	return orders, domain.NewPagination(pr, total), nil
}

func (s *OrdersService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (domain.Order, error) {
	return s.orderRepo.FindOwned(ctx, userID, orderID)
}

// CancelOrder cancels the caller's order and puts every item back in stock.
func (s *OrdersService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) error {
	var order domain.Order

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.Lock(ctx, &userID, orderID)
		if err != nil {
			return err
		}

		if !order.Status.IsCancellable() {
			return domain.ErrOrderNotCancellable
		}

		return s.cancelLocked(ctx, order)
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindInternal {
			logger.Error("Failed to cancel order", err)
		}
		return err
	}

	logger.Info("order cancelled", "order_number", order.OrderNumber)

	s.notifyUser(ctx, userID, func(u domain.User) domain.Notification {
		return notification.OrderCancelled(u.FirstName, u.Email, order)
	})

	return nil
}

func (s *OrdersService) cancelLocked(ctx context.Context, order domain.Order) error {
	if err := s.orderRepo.UpdateStatus(ctx, order.ID, domain.OrderCancelled); err != nil {
		return err
	}

	for _, item := range order.Items {
		if err := s.productRepo.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}

	return nil
}

// UpdateStatus is the admin transition. Moving to CANCELLED restores stock
// the same way a customer cancellation does.
func (s *OrdersService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (domain.Order, error) {
	next, ok := domain.ParseOrderStatus(status)
	if !ok {
		return domain.Order{}, domain.NewValidationError("invalid order status")
	}

	var order domain.Order
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.Lock(ctx, nil, orderID)
		if err != nil {
			return err
		}

		if !order.Status.CanTransition(next) {
			return domain.ErrInvalidTransition.WithMessage(fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
		}

		if next == domain.OrderCancelled {
			return s.cancelLocked(ctx, order)
		}

		return s.orderRepo.UpdateStatus(ctx, orderID, next)
	})
	if err != nil {
		if domain.KindOf(err) == domain.KindInternal {
			logger.Error("Failed to update order status", err)
		}
		return domain.Order{}, err
	}

	logger.Info("order status updated", "order_number", order.OrderNumber, "from", order.Status, "to", next)

	if next == domain.OrderCancelled {
		s.notifyUser(ctx, order.UserID, func(u domain.User) domain.Notification {
			return notification.OrderCancelled(u.FirstName, u.Email, order)
		})
	}

	return s.orderRepo.FindByID(ctx, orderID)
}

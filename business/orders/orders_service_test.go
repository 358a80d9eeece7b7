package orders

import (
	"context"
	"errors"
	"misikaMarket/domain"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore backs every repository the service needs. WithinTransaction
// serializes callers and rolls the maps back when fn fails.
type memStore struct {
	txMu sync.Mutex

	products  map[uuid.UUID]domain.Product
	cart      map[uuid.UUID]domain.CartItem
	orders    map[uuid.UUID]domain.Order
	addresses map[uuid.UUID]domain.Address
}

func newMemStore() *memStore {
	return &memStore{
		products:  map[uuid.UUID]domain.Product{},
		cart:      map[uuid.UUID]domain.CartItem{},
		orders:    map[uuid.UUID]domain.Order{},
		addresses: map[uuid.UUID]domain.Address{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (m *memStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	products, cart, orders := cloneMap(m.products), cloneMap(m.cart), cloneMap(m.orders)
	if err := fn(ctx); err != nil {
		m.products, m.cart, m.orders = products, cart, orders
		return err
	}
	return nil
}

// cart

type memCart struct{ *memStore }

func (c memCart) FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.CartItem, error) {
	var out []domain.CartItem
	for _, it := range c.cart {
		if it.UserID == userID {
			p := c.products[it.ProductID]
			it.Product = &p
			out = append(out, it)
		}
	}
	return out, nil
}

func (c memCart) Clear(ctx context.Context, userID uuid.UUID) error {
	for id, it := range c.cart {
		if it.UserID == userID {
			delete(c.cart, id)
		}
	}
	return nil
}

// products

type memProducts struct{ *memStore }

func (p memProducts) LockByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Product, error) {
	out := map[uuid.UUID]domain.Product{}
	for _, id := range ids {
		if pr, ok := p.products[id]; ok {
			out[id] = pr
		}
	}
	return out, nil
}

func (p memProducts) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	pr := p.products[id]
	if pr.Stock < qty {
		return domain.ErrInsufficientStock
	}
	pr.Stock -= qty
	p.products[id] = pr
	return nil
}

func (p memProducts) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	pr := p.products[id]
	pr.Stock += qty
	p.products[id] = pr
	return nil
}

// addresses

type memAddresses struct{ *memStore }

func (a memAddresses) FindOwned(ctx context.Context, userID, id uuid.UUID) (domain.Address, error) {
	addr, ok := a.addresses[id]
	if !ok || addr.UserID != userID {
		return domain.Address{}, domain.NewNotFoundError("address")
	}
	return addr, nil
}

// orders

type memOrders struct {
	*memStore
	failCreate bool
}

func (o *memOrders) Create(ctx context.Context, order *domain.Order) error {
	if o.failCreate {
		return domain.NewInternalError("database error", errors.New("boom"))
	}
	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	o.orders[order.ID] = *order
	return nil
}

func (o *memOrders) FindByUser(ctx context.Context, userID uuid.UUID, page domain.PageRequest) ([]domain.Order, int64, error) {
	var out []domain.Order
	for _, ord := range o.orders {
		if ord.UserID == userID {
			out = append(out, ord)
		}
	}
	return out, int64(len(out)), nil
}

func (o *memOrders) FindOwned(ctx context.Context, userID, orderID uuid.UUID) (domain.Order, error) {
	ord, ok := o.orders[orderID]
	if !ok || ord.UserID != userID {
		return domain.Order{}, domain.NewNotFoundError("order")
	}
	return ord, nil
}

func (o *memOrders) FindByID(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	ord, ok := o.orders[orderID]
	if !ok {
		return domain.Order{}, domain.NewNotFoundError("order")
	}
	return ord, nil
}

func (o *memOrders) Lock(ctx context.Context, userID *uuid.UUID, orderID uuid.UUID) (domain.Order, error) {
	if userID != nil {
		return o.FindOwned(ctx, *userID, orderID)
	}
	return o.FindByID(ctx, orderID)
}

func (o *memOrders) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error {
	ord, ok := o.orders[orderID]
	if !ok {
		return domain.NewNotFoundError("order")
	}
	ord.Status = status
	o.orders[orderID] = ord
	return nil
}

type staticUsers map[uuid.UUID]domain.User

func (u staticUsers) FindByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	user, ok := u[id]
	if !ok {
		return domain.User{}, domain.NewNotFoundError("user")
	}
	return user, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (r *recordingNotifier) Enqueue(n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

func (r *recordingNotifier) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.sent {
		out = append(out, n.Kind)
	}
	return out
}

type fixture struct {
	svc      *OrdersService
	store    *memStore
	orders   *memOrders
	notifier *recordingNotifier
	user     domain.User
	address  domain.Address
}

func newFixture() *fixture {
	store := newMemStore()
	user := domain.User{ID: uuid.New(), Email: "asha@example.com", FirstName: "Asha"}
	address := domain.Address{ID: uuid.New(), UserID: user.ID, FirstName: "Asha", City: "Pune", PostalCode: "411001"}
	store.addresses[address.ID] = address

	orders := &memOrders{memStore: store}
	notifier := &recordingNotifier{}

	svc := NewOrdersService(orders, memCart{store}, memProducts{store}, memAddresses{store},
		staticUsers{user.ID: user}, notifier, store)

	return &fixture{svc: svc, store: store, orders: orders, notifier: notifier, user: user, address: address}
}

func (f *fixture) addProduct(name string, price string, stock int) domain.Product {
	p := domain.Product{ID: uuid.New(), Name: name, Price: decimal.RequireFromString(price), Stock: stock, IsActive: true}
	f.store.products[p.ID] = p
	return p
}

func (f *fixture) addToCart(userID uuid.UUID, p domain.Product, qty int) {
	item := domain.CartItem{ID: uuid.New(), UserID: userID, ProductID: p.ID, Quantity: qty}
	f.store.cart[item.ID] = item
}

func (f *fixture) place(method string) (domain.Order, error) {
	return f.svc.PlaceOrder(context.Background(), f.user.ID, domain.PlaceOrderInput{AddressID: f.address.ID, PaymentMethod: method})
}

func TestPlaceOrderCOD(t *testing.T) {
	f := newFixture()
	shirt := f.addProduct("Shirt", "650", 5)
	f.addToCart(f.user.ID, shirt, 2)

	order, err := f.place(domain.PaymentCOD)
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if order.Status != domain.OrderConfirmed || order.Payment == nil || order.Payment.Status != domain.PaymentStatusCompleted {
		t.Fatalf("COD order should be confirmed and paid: %+v", order)
	}
	if order.Subtotal.StringFixed(2) != "1300.00" || order.ShippingCost.StringFixed(2) != "0.00" ||
		order.Tax.StringFixed(2) != "234.00" || order.Total.StringFixed(2) != "1534.00" {
		t.Fatalf("unexpected totals %s %s %s %s", order.Subtotal, order.ShippingCost, order.Tax, order.Total)
	}
	if !strings.HasPrefix(order.OrderNumber, "ORD") {
		t.Fatalf("unexpected order number %q", order.OrderNumber)
	}
	if order.ShippingAddress.Data().City != "Pune" {
		t.Fatalf("address not snapshotted: %+v", order.ShippingAddress.Data())
	}

	if got := f.store.products[shirt.ID].Stock; got != 3 {
		t.Fatalf("stock = %d, want 3", got)
	}
	if len(f.store.cart) != 0 {
		t.Fatal("cart should be cleared")
	}
	if kinds := f.notifier.kinds(); len(kinds) != 1 || kinds[0] != domain.NotifyOrderConfirmation {
		t.Fatalf("confirmation not enqueued: %v", kinds)
	}
}

func TestPlaceOrderSnapshotsPrices(t *testing.T) {
	f := newFixture()
	sale := decimal.RequireFromString("90")
	mug := f.addProduct("Mug", "100", 10)
	mug.SalePrice = &sale
	f.store.products[mug.ID] = mug
	f.addToCart(f.user.ID, mug, 3)

	order, err := f.place(domain.PaymentStripe)
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	item := order.Items[0]
	if item.Price.StringFixed(2) != "90.00" || item.Total.StringFixed(2) != "270.00" || item.ProductName != "Mug" {
		t.Fatalf("unexpected item snapshot %+v", item)
	}
	if order.Status != domain.OrderPending || order.Payment.Status != domain.PaymentStatusPending {
		t.Fatalf("non-COD order should be pending: %s / %s", order.Status, order.Payment.Status)
	}
	if order.ShippingCost.StringFixed(2) != "50.00" {
		t.Fatalf("expected flat shipping, got %s", order.ShippingCost)
	}

	// later price changes must not touch the stored order
	mug = f.store.products[mug.ID]
	mug.Price = decimal.RequireFromString("500")
	mug.SalePrice = nil
	f.store.products[mug.ID] = mug

	stored, _ := f.svc.GetOrder(context.Background(), f.user.ID, order.ID)
	if stored.Items[0].Price.StringFixed(2) != "90.00" {
		t.Fatalf("stored price changed: %s", stored.Items[0].Price)
	}
}

func TestPlaceOrderRejections(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		f := newFixture()
		if _, err := f.place(domain.PaymentCOD); !errors.Is(err, domain.ErrEmptyCart) {
			t.Fatalf("expected empty cart, got %v", err)
		}
	})

	t.Run("inactive product", func(t *testing.T) {
		f := newFixture()
		p := f.addProduct("Old", "10", 5)
		p.IsActive = false
		f.store.products[p.ID] = p
		f.addToCart(f.user.ID, p, 1)

		if _, err := f.place(domain.PaymentCOD); !errors.Is(err, domain.ErrProductUnavailable) {
			t.Fatalf("expected unavailable, got %v", err)
		}
	})

	t.Run("insufficient stock", func(t *testing.T) {
		f := newFixture()
		p := f.addProduct("Rare", "10", 1)
		f.addToCart(f.user.ID, p, 2)

		if _, err := f.place(domain.PaymentCOD); !errors.Is(err, domain.ErrInsufficientStock) {
			t.Fatalf("expected insufficient stock, got %v", err)
		}
		if len(f.store.cart) != 1 || f.store.products[p.ID].Stock != 1 {
			t.Fatal("rejected checkout must not mutate state")
		}
	})

	t.Run("foreign address", func(t *testing.T) {
		f := newFixture()
		p := f.addProduct("Cap", "10", 5)
		f.addToCart(f.user.ID, p, 1)
		other := domain.Address{ID: uuid.New(), UserID: uuid.New()}
		f.store.addresses[other.ID] = other

		_, err := f.svc.PlaceOrder(context.Background(), f.user.ID, domain.PlaceOrderInput{AddressID: other.ID, PaymentMethod: domain.PaymentCOD})
		if !errors.Is(err, domain.ErrInvalidAddress) {
			t.Fatalf("expected invalid address, got %v", err)
		}
	})

	t.Run("bad payment method", func(t *testing.T) {
		f := newFixture()
		if _, err := f.place("BITCOIN"); domain.KindOf(err) != domain.KindValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestPlaceOrderRollsBackOnWriteFailure(t *testing.T) {
	f := newFixture()
	p := f.addProduct("Lamp", "300", 4)
	f.addToCart(f.user.ID, p, 2)
	f.orders.failCreate = true

	if _, err := f.place(domain.PaymentCOD); domain.KindOf(err) != domain.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}

	if f.store.products[p.ID].Stock != 4 || len(f.store.cart) != 1 || len(f.store.orders) != 0 {
		t.Fatal("failed checkout left partial writes")
	}
	if len(f.notifier.kinds()) != 0 {
		t.Fatal("no email for a failed checkout")
	}
}

func TestConcurrentCheckoutForLastUnit(t *testing.T) {
	f := newFixture()
	last := f.addProduct("Last One", "100", 1)

	other := domain.User{ID: uuid.New(), Email: "b@example.com"}
	otherAddr := domain.Address{ID: uuid.New(), UserID: other.ID}
	f.store.addresses[otherAddr.ID] = otherAddr
	f.svc.userRepo = staticUsers{f.user.ID: f.user, other.ID: other}

	f.addToCart(f.user.ID, last, 1)
	f.addToCart(other.ID, last, 1)

	inputs := map[uuid.UUID]uuid.UUID{f.user.ID: f.address.ID, other.ID: otherAddr.ID}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for userID, addrID := range inputs {
		wg.Add(1)
		go func(userID, addrID uuid.UUID) {
			defer wg.Done()
			_, err := f.svc.PlaceOrder(context.Background(), userID, domain.PlaceOrderInput{AddressID: addrID, PaymentMethod: domain.PaymentCOD})
			errs <- err
		}(userID, addrID)
	}
	wg.Wait()
	close(errs)

	var ok, rejected int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}

	if ok != 1 || rejected != 1 {
		t.Fatalf("ok=%d rejected=%d, want 1 and 1", ok, rejected)
	}
	if f.store.products[last.ID].Stock != 0 {
		t.Fatalf("stock = %d, want 0", f.store.products[last.ID].Stock)
	}
}

func TestPreviewDoesNotMutate(t *testing.T) {
	f := newFixture()
	p := f.addProduct("Book", "499.50", 3)
	f.addToCart(f.user.ID, p, 2)

	preview, err := f.svc.Preview(context.Background(), f.user.ID, f.address.ID, domain.PaymentUPI)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}

	if preview.Subtotal != "999.00" || preview.ShippingCost != "0.00" || preview.Tax != "179.82" || preview.Total != "1178.82" {
		t.Fatalf("unexpected preview %+v", preview)
	}
	if preview.Address == nil || preview.PaymentMethod != domain.PaymentUPI {
		t.Fatalf("preview missing address or method: %+v", preview)
	}
	if len(f.store.orders) != 0 || len(f.store.cart) != 1 || f.store.products[p.ID].Stock != 3 {
		t.Fatal("preview must not write")
	}

	if _, err := f.svc.Preview(context.Background(), f.user.ID, uuid.New(), domain.PaymentUPI); !errors.Is(err, domain.ErrInvalidAddress) {
		t.Fatalf("expected invalid address, got %v", err)
	}
}

func TestCancelOrderRestoresStock(t *testing.T) {
	f := newFixture()
	p := f.addProduct("Pen", "20", 10)
	f.addToCart(f.user.ID, p, 4)

	order, err := f.place(domain.PaymentCOD)
	if err != nil {
		t.Fatalf("place: %v", err)
	}

	if err := f.svc.CancelOrder(context.Background(), uuid.New(), order.ID); !domain.IsNotFound(err) {
		t.Fatalf("other user cancel: %v", err)
	}

	if err := f.svc.CancelOrder(context.Background(), f.user.ID, order.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if f.store.orders[order.ID].Status != domain.OrderCancelled || f.store.products[p.ID].Stock != 10 {
		t.Fatalf("cancel did not restore: status=%s stock=%d", f.store.orders[order.ID].Status, f.store.products[p.ID].Stock)
	}

	if err := f.svc.CancelOrder(context.Background(), f.user.ID, order.ID); !errors.Is(err, domain.ErrOrderNotCancellable) {
		t.Fatalf("second cancel: %v", err)
	}
}

func TestCancelShippedOrder(t *testing.T) {
	f := newFixture()
	p := f.addProduct("Pen", "20", 10)
	f.addToCart(f.user.ID, p, 1)
	order, _ := f.place(domain.PaymentCOD)

	ord := f.store.orders[order.ID]
	ord.Status = domain.OrderShipped
	f.store.orders[order.ID] = ord

	if err := f.svc.CancelOrder(context.Background(), f.user.ID, order.ID); !errors.Is(err, domain.ErrOrderNotCancellable) {
		t.Fatalf("expected not cancellable, got %v", err)
	}
	if f.store.products[p.ID].Stock != 9 {
		t.Fatal("stock must not change")
	}
}

func TestAdminUpdateStatus(t *testing.T) {
	f := newFixture()
	p := f.addProduct("Pen", "20", 10)
	f.addToCart(f.user.ID, p, 2)
	order, _ := f.place(domain.PaymentCOD)
	ctx := context.Background()

	if _, err := f.svc.UpdateStatus(ctx, order.ID, "DELIVERED"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("skipping states must fail, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, order.ID, "LOST"); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("unknown status must fail validation, got %v", err)
	}

	updated, err := f.svc.UpdateStatus(ctx, order.ID, "PROCESSING")
	if err != nil || updated.Status != domain.OrderProcessing {
		t.Fatalf("processing: %+v %v", updated.Status, err)
	}

	if _, err := f.svc.UpdateStatus(ctx, order.ID, "CANCELLED"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("processing orders cannot be cancelled, got %v", err)
	}
}

func TestAdminCancelRestoresStock(t *testing.T) {
	f := newFixture()
	p := f.addProduct("Pen", "20", 10)
	f.addToCart(f.user.ID, p, 3)
	order, _ := f.place(domain.PaymentStripe)

	updated, err := f.svc.UpdateStatus(context.Background(), order.ID, "CANCELLED")
	if err != nil || updated.Status != domain.OrderCancelled {
		t.Fatalf("admin cancel: %+v %v", updated.Status, err)
	}
	if f.store.products[p.ID].Stock != 10 {
		t.Fatalf("stock = %d, want 10", f.store.products[p.ID].Stock)
	}
}

func TestGetOrdersPaginates(t *testing.T) {
	f := newFixture()
	p := f.addProduct("Pen", "20", 10)
	f.addToCart(f.user.ID, p, 1)
	_, _ = f.place(domain.PaymentCOD)

	orders, pg, err := f.svc.GetOrders(context.Background(), f.user.ID, 0, 0)
	if err != nil || len(orders) != 1 || pg.TotalItems != 1 || pg.CurrentPage != 1 {
		t.Fatalf("list: %d %+v %v", len(orders), pg, err)
	}
}

package admin

import (
	"context"
	"misikaMarket/domain"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeUsers struct {
	users  map[uuid.UUID]domain.User
	filter domain.UserFilter
}

func (f *fakeUsers) Count(ctx context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

func (f *fakeUsers) List(ctx context.Context, filter domain.UserFilter, page domain.PageRequest) ([]domain.AdminUser, int64, error) {
	f.filter = filter
	var out []domain.AdminUser
	for _, u := range f.users {
		out = append(out, domain.AdminUser{User: u})
	}
	return out, int64(len(out)), nil
}

func (f *fakeUsers) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.NewNotFoundError("user")
	}
	u.Status = status
	f.users[id] = u
	return u, nil
}

type fakeLegacy struct{}

func (fakeLegacy) Count(ctx context.Context) (int64, error) { return 7, nil }

func (fakeLegacy) Recent(ctx context.Context, limit int) ([]domain.LegacyUser, error) {
	return []domain.LegacyUser{{ID: 1, Name: "Meera"}}, nil
}

type fakeOrders struct {
	orders []domain.Order
	status string
}

func (f *fakeOrders) List(ctx context.Context, status string, page domain.PageRequest) ([]domain.Order, int64, error) {
	f.status = status
	return f.orders, int64(len(f.orders)), nil
}

func (f *fakeOrders) Recent(ctx context.Context, userID *uuid.UUID, limit int) ([]domain.Order, error) {
	if len(f.orders) > limit {
		return f.orders[:limit], nil
	}
	return f.orders, nil
}

func (f *fakeOrders) Count(ctx context.Context, userID *uuid.UUID, status string) (int64, error) {
	var n int64
	for _, o := range f.orders {
		if status == "" || string(o.Status) == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeOrders) Revenue(ctx context.Context, status domain.OrderStatus) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, o := range f.orders {
		if o.Status == status {
			sum = sum.Add(o.Total)
		}
	}
	return sum, nil
}

type fakeStats struct {
	threshold int
}

func (f *fakeStats) ProductCounts(ctx context.Context) (domain.ProductCounts, error) {
	return domain.ProductCounts{Total: 40, Active: 35, Featured: 6}, nil
}

func (f *fakeStats) InventoryCounts(ctx context.Context, threshold int) (domain.InventoryCounts, error) {
	f.threshold = threshold
	return domain.InventoryCounts{Total: 35, LowStock: 4, OutOfStock: 1}, nil
}

func (f *fakeStats) LowStockItems(ctx context.Context, threshold, limit int) ([]domain.InventoryItem, error) {
	return []domain.InventoryItem{{Name: "Tea", Stock: 0}, {Name: "Rice", Stock: 3}}, nil
}

func (f *fakeStats) ProductsByCategory(ctx context.Context) ([]domain.CategoryCount, error) {
	return []domain.CategoryCount{{Name: "Grocery", ProductCount: 12}}, nil
}

func (f *fakeStats) RecentProducts(ctx context.Context, limit int) ([]domain.Product, error) {
	return []domain.Product{{Name: "Tea"}}, nil
}

type fakeCategories struct{}

func (fakeCategories) CountActive(ctx context.Context) (int64, error) { return 5, nil }

type fakeUpdater struct {
	calls int
}

func (f *fakeUpdater) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (domain.Order, error) {
	f.calls++
	return domain.Order{ID: orderID, Status: domain.OrderStatus(status)}, nil
}

type fixture struct {
	svc     *adminService
	users   *fakeUsers
	orders  *fakeOrders
	stats   *fakeStats
	updater *fakeUpdater
}

func newFixture() *fixture {
	f := &fixture{
		users: &fakeUsers{users: map[uuid.UUID]domain.User{}},
		orders: &fakeOrders{orders: []domain.Order{
			{Status: domain.OrderDelivered, Total: decimal.RequireFromString("1534.00")},
			{Status: domain.OrderDelivered, Total: decimal.RequireFromString("100.50")},
			{Status: domain.OrderPending, Total: decimal.RequireFromString("999.00")},
			{Status: domain.OrderCancelled, Total: decimal.RequireFromString("50.00")},
			{Status: domain.OrderShipped, Total: decimal.RequireFromString("10.00")},
			{Status: domain.OrderConfirmed, Total: decimal.RequireFromString("20.00")},
		}},
		stats:   &fakeStats{},
		updater: &fakeUpdater{},
	}
	f.svc = NewAdminService(f.users, fakeLegacy{}, f.orders, f.stats, fakeCategories{}, f.updater)
	return f
}

func TestDashboardStats(t *testing.T) {
	f := newFixture()
	f.users.users[uuid.New()] = domain.User{}
	f.users.users[uuid.New()] = domain.User{}

	stats, err := f.svc.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	if stats.TotalUsers != 2 || stats.TotalLegacyUsers != 7 || stats.TotalOrders != 6 || stats.PendingOrders != 1 {
		t.Fatalf("unexpected counts %+v", stats)
	}
	if stats.TotalRevenue.StringFixed(2) != "1634.50" {
		t.Fatalf("revenue = %s, want delivered only", stats.TotalRevenue)
	}
	if stats.TotalProducts != 40 || len(stats.RecentOrders) != 5 {
		t.Fatalf("products=%d recent=%d", stats.TotalProducts, len(stats.RecentOrders))
	}
}

func TestSetUserStatus(t *testing.T) {
	f := newFixture()
	admin, target := uuid.New(), uuid.New()
	f.users.users[target] = domain.User{ID: target, Status: domain.UserStatusActive}
	ctx := context.Background()

	u, err := f.svc.SetUserStatus(ctx, admin, target, domain.UserStatusSuspended)
	if err != nil || u.Status != domain.UserStatusSuspended {
		t.Fatalf("suspend: %+v %v", u, err)
	}

	if _, err := f.svc.SetUserStatus(ctx, admin, target, "banned"); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("bad status: %v", err)
	}
	if _, err := f.svc.SetUserStatus(ctx, admin, admin, domain.UserStatusSuspended); domain.KindOf(err) != domain.KindBusinessRule {
		t.Fatalf("self suspend: %v", err)
	}
	if _, err := f.svc.SetUserStatus(ctx, admin, uuid.New(), domain.UserStatusActive); !domain.IsNotFound(err) {
		t.Fatalf("unknown user: %v", err)
	}
}

func TestListUsersAndOrders(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, _, err := f.svc.ListUsers(ctx, domain.UserFilter{Role: "ROOT"}, 1, 10); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("bad role: %v", err)
	}
	if _, _, err := f.svc.ListUsers(ctx, domain.UserFilter{Search: "asha", Role: domain.RoleAdmin}, 1, 10); err != nil {
		t.Fatalf("list users: %v", err)
	}
	if f.users.filter.Search != "asha" {
		t.Fatal("filter not passed through")
	}

	if _, _, err := f.svc.ListOrders(ctx, "LOST", 1, 10); domain.KindOf(err) != domain.KindValidation {
		t.Fatalf("bad status: %v", err)
	}
	orders, pg, err := f.svc.ListOrders(ctx, "PENDING", 1, 10)
	if err != nil || len(orders) != 6 || pg.TotalItems != 6 || f.orders.status != "PENDING" {
		t.Fatalf("list orders: %d %+v %v", len(orders), pg, err)
	}
}

func TestUpdateOrderStatusDelegates(t *testing.T) {
	f := newFixture()

	order, err := f.svc.UpdateOrderStatus(context.Background(), uuid.New(), "SHIPPED")
	if err != nil || order.Status != domain.OrderShipped || f.updater.calls != 1 {
		t.Fatalf("update: %+v %v", order, err)
	}
}

func TestInventoryAndStats(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	inv, err := f.svc.Inventory(ctx)
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	if inv.LowStockCount != 4 || inv.OutOfStockCount != 1 || len(inv.LowStockItems) != 2 || f.stats.threshold != LowStockThreshold {
		t.Fatalf("unexpected inventory %+v", inv)
	}

	catalog, err := f.svc.CatalogStats(ctx)
	if err != nil || catalog.TotalCategories != 5 || catalog.FeaturedProducts != 6 || len(catalog.RecentLegacyUsers) != 1 {
		t.Fatalf("catalog: %+v %v", catalog, err)
	}

	ps, err := f.svc.ProductStats(ctx)
	if err != nil || len(ps.ByCategory) != 1 || ps.LowStockCutoff != 10 {
		t.Fatalf("product stats: %+v %v", ps, err)
	}
}

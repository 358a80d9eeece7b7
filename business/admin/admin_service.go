package admin

import (
	"context"
	"misikaMarket/domain"
	"misikaMarket/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRepository contract interface
type UserRepository interface {
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, filter domain.UserFilter, page domain.PageRequest) ([]domain.AdminUser, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (domain.User, error)
}

// LegacyUserRepository contract interface
type LegacyUserRepository interface {
	Count(ctx context.Context) (int64, error)
	Recent(ctx context.Context, limit int) ([]domain.LegacyUser, error)
}

// OrdersRepository contract interface
type OrdersRepository interface {
	List(ctx context.Context, status string, page domain.PageRequest) ([]domain.Order, int64, error)
	Recent(ctx context.Context, userID *uuid.UUID, limit int) ([]domain.Order, error)
	Count(ctx context.Context, userID *uuid.UUID, status string) (int64, error)
	Revenue(ctx context.Context, status domain.OrderStatus) (decimal.Decimal, error)
}

// StatsRepository contract interface
type StatsRepository interface {
	ProductCounts(ctx context.Context) (domain.ProductCounts, error)
	InventoryCounts(ctx context.Context, threshold int) (domain.InventoryCounts, error)
	LowStockItems(ctx context.Context, threshold, limit int) ([]domain.InventoryItem, error)
	ProductsByCategory(ctx context.Context) ([]domain.CategoryCount, error)
	RecentProducts(ctx context.Context, limit int) ([]domain.Product, error)
}

// CategoryRepository contract interface
type CategoryRepository interface {
	CountActive(ctx context.Context) (int64, error)
}

// OrderStatusUpdater contract interface
type OrderStatusUpdater interface {
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (domain.Order, error)
}

const (
	LowStockThreshold = 10
	lowStockListLimit = 10
	recentLimit       = 5
	defaultPageSize   = 20
)

type adminService struct {
	userRepo     UserRepository
	legacyRepo   LegacyUserRepository
	orderRepo    OrdersRepository
	statsRepo    StatsRepository
	categoryRepo CategoryRepository
	orders       OrderStatusUpdater
}

func NewAdminService(
	userRepo UserRepository,
	legacyRepo LegacyUserRepository,
	orderRepo OrdersRepository,
	statsRepo StatsRepository,
	categoryRepo CategoryRepository,
	orders OrderStatusUpdater,
) *adminService {
	return &adminService{
		userRepo:     userRepo,
		legacyRepo:   legacyRepo,
		orderRepo:    orderRepo,
		statsRepo:    statsRepo,
		categoryRepo: categoryRepo,
		orders:       orders,
	}
}

// DashboardStats counts users in both stores. Revenue only includes
// delivered orders.
func (s *adminService) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	var stats domain.DashboardStats
	var err error

	if stats.TotalUsers, err = s.userRepo.Count(ctx); err != nil {
		logger.Error("Failed to count users", err)
		return domain.DashboardStats{}, err
	}

	if stats.TotalLegacyUsers, err = s.legacyRepo.Count(ctx); err != nil {
		logger.Error("Failed to count legacy users", err)
		return domain.DashboardStats{}, err
	}

	if stats.TotalOrders, err = s.orderRepo.Count(ctx, nil, ""); err != nil {
		logger.Error("Failed to count orders", err)
		return domain.DashboardStats{}, err
	}

	if stats.PendingOrders, err = s.orderRepo.Count(ctx, nil, string(domain.OrderPending)); err != nil {
		logger.Error("Failed to count pending orders", err)
		return domain.DashboardStats{}, err
	}

	products, err := s.statsRepo.ProductCounts(ctx)
	if err != nil {
		logger.Error("Failed to count products", err)
		return domain.DashboardStats{}, err
	}
	stats.TotalProducts = products.Total

	if stats.TotalRevenue, err = s.orderRepo.Revenue(ctx, domain.OrderDelivered); err != nil {
		logger.Error("Failed to sum revenue", err)
		return domain.DashboardStats{}, err
	}

	if stats.RecentOrders, err = s.orderRepo.Recent(ctx, nil, recentLimit); err != nil {
		logger.Error("Failed to load recent orders", err)
		return domain.DashboardStats{}, err
	}

	return stats, nil
}

func (s *adminService) ListUsers(ctx context.Context, filter domain.UserFilter, page, limit int) ([]domain.AdminUser, domain.Pagination, error) {
	if filter.Role != "" && filter.Role != domain.RoleUser && filter.Role != domain.RoleAdmin {
		return nil, domain.Pagination{}, domain.NewValidationError("role must be USER or ADMIN")
	}

	pr := domain.NewPageRequest(page, limit, defaultPageSize)

	users, total, err := s.userRepo.List(ctx, filter, pr)
	if err != nil {
		logger.Error("Failed to list users", err)
		return nil, domain.Pagination{}, err
	}

	return users, domain.NewPagination(pr, total), nil
}

// SetUserStatus suspends or reactivates an account. Admins cannot suspend
// themselves.
func (s *adminService) SetUserStatus(ctx context.Context, actorID, userID uuid.UUID, status string) (domain.User, error) {
	if status != domain.UserStatusActive && status != domain.UserStatusSuspended {
		return domain.User{}, domain.NewValidationError("status must be active or suspended")
	}

	if actorID == userID && status == domain.UserStatusSuspended {
		return domain.User{}, domain.NewBusinessError("you cannot suspend your own account")
	}

	user, err := s.userRepo.UpdateStatus(ctx, userID, status)
	if err != nil {
		if !domain.IsNotFound(err) {
			logger.Error("Failed to update user status", err)
		}
		return domain.User{}, err
	}

	logger.Info("user status changed", "user_id", userID, "status", status, "by", actorID)
	return user, nil
}

func (s *adminService) ListOrders(ctx context.Context, status string, page, limit int) ([]domain.Order, domain.Pagination, error) {
	if status != "" {
		if _, ok := domain.ParseOrderStatus(status); !ok {
			return nil, domain.Pagination{}, domain.NewValidationError("invalid order status")
		}
	}

	pr := domain.NewPageRequest(page, limit, defaultPageSize)

	orders, total, err := s.orderRepo.List(ctx, status, pr)
	if err != nil {
		logger.Error("Failed to list orders", err)
		return nil, domain.Pagination{}, err
	}

	return orders, domain.NewPagination(pr, total), nil
}

func (s *adminService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) (domain.Order, error) {
	return s.orders.UpdateStatus(ctx, orderID, status)
}

// Inventory reports stock levels of active products. Out-of-stock products
// are also counted as low stock.
func (s *adminService) Inventory(ctx context.Context) (domain.InventoryReport, error) {
	counts, err := s.statsRepo.InventoryCounts(ctx, LowStockThreshold)
	if err != nil {
		logger.Error("Failed to count inventory", err)
		return domain.InventoryReport{}, err
	}

	items, err := s.statsRepo.LowStockItems(ctx, LowStockThreshold, lowStockListLimit)
	if err != nil {
		logger.Error("Failed to list low stock items", err)
		return domain.InventoryReport{}, err
	}

	return domain.InventoryReport{
		TotalProducts:   counts.Total,
		LowStockCount:   counts.LowStock,
		OutOfStockCount: counts.OutOfStock,
		LowStockItems:   items,
	}, nil
}

func (s *adminService) CatalogStats(ctx context.Context) (domain.CatalogStats, error) {
	var stats domain.CatalogStats
	var err error

	if stats.TotalCategories, err = s.categoryRepo.CountActive(ctx); err != nil {
		logger.Error("Failed to count categories", err)
		return domain.CatalogStats{}, err
	}

	products, err := s.statsRepo.ProductCounts(ctx)
	if err != nil {
		logger.Error("Failed to count products", err)
		return domain.CatalogStats{}, err
	}
	stats.TotalProducts = products.Total
	stats.ActiveProducts = products.Active
	stats.FeaturedProducts = products.Featured

	if stats.TotalLegacyUsers, err = s.legacyRepo.Count(ctx); err != nil {
		logger.Error("Failed to count legacy users", err)
		return domain.CatalogStats{}, err
	}

	if stats.RecentLegacyUsers, err = s.legacyRepo.Recent(ctx, recentLimit); err != nil {
		logger.Error("Failed to load recent legacy users", err)
		return domain.CatalogStats{}, err
	}

	if stats.RecentProducts, err = s.statsRepo.RecentProducts(ctx, recentLimit); err != nil {
		logger.Error("Failed to load recent products", err)
		return domain.CatalogStats{}, err
	}

	return stats, nil
}

func (s *adminService) ProductStats(ctx context.Context) (domain.ProductStats, error) {
	byCategory, err := s.statsRepo.ProductsByCategory(ctx)
	if err != nil {
		logger.Error("Failed to count products by category", err)
		return domain.ProductStats{}, err
	}

	lowStock, err := s.statsRepo.LowStockItems(ctx, LowStockThreshold, lowStockListLimit)
	if err != nil {
		logger.Error("Failed to list low stock products", err)
		return domain.ProductStats{}, err
	}

	return domain.ProductStats{
		ByCategory:     byCategory,
		LowStock:       lowStock,
		LowStockCutoff: LowStockThreshold,
	}, nil
}

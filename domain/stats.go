package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DashboardStats struct {
	TotalUsers       int64           `json:"totalUsers"`
	TotalLegacyUsers int64           `json:"totalLegacyUsers"`
	TotalOrders      int64           `json:"totalOrders"`
	TotalProducts    int64           `json:"totalProducts"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	PendingOrders    int64           `json:"pendingOrders"`
	RecentOrders     []Order         `json:"recentOrders"`
}

type ProductCounts struct {
	Total    int64
	Active   int64
	Featured int64
}

type InventoryCounts struct {
	Total      int64
	LowStock   int64
	OutOfStock int64
}

type InventoryItem struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	SKU          string    `json:"sku"`
	Stock        int       `json:"stock"`
	CategoryName string    `json:"categoryName"`
}

type InventoryReport struct {
	TotalProducts   int64           `json:"totalProducts"`
	LowStockCount   int64           `json:"lowStockCount"`
	OutOfStockCount int64           `json:"outOfStockCount"`
	LowStockItems   []InventoryItem `json:"lowStockItems"`
}

type CatalogStats struct {
	TotalCategories   int64        `json:"totalCategories"`
	TotalProducts     int64        `json:"totalProducts"`
	ActiveProducts    int64        `json:"activeProducts"`
	FeaturedProducts  int64        `json:"featuredProducts"`
	TotalLegacyUsers  int64        `json:"totalUsers"`
	RecentLegacyUsers []LegacyUser `json:"recentUsers"`
	RecentProducts    []Product    `json:"recentProducts"`
}

type CategoryCount struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ProductCount int64     `json:"productCount"`
}

type ProductStats struct {
	ByCategory     []CategoryCount `json:"productsByCategory"`
	LowStock       []InventoryItem `json:"lowStockProducts"`
	LowStockCutoff int             `json:"lowStockThreshold"`
}

type UserDashboard struct {
	TotalOrders   int64   `json:"totalOrders"`
	CartItemCount int64   `json:"cartItemCount"`
	RecentOrders  []Order `json:"recentOrders"`
}

type UserFilter struct {
	Search string
	Role   string
	Status string
}

// AdminUser is a user row for the admin list with its order count.
type AdminUser struct {
	User
	OrderCount int64 `json:"orderCount"`
}

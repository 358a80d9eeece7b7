package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const LowStockThreshold = 10

type Product struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string                      `gorm:"column:name;not null" json:"name"`
	Slug        string                      `gorm:"column:slug;uniqueIndex;not null" json:"slug"`
	SKU         string                      `gorm:"column:sku;uniqueIndex;not null" json:"sku"`
	Description string                      `gorm:"column:description;type:text" json:"description"`
	Price       decimal.Decimal             `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	SalePrice   *decimal.Decimal            `gorm:"column:sale_price;type:numeric(12,2)" json:"salePrice"`
	Stock       int                         `gorm:"column:stock;not null;default:0;check:stock >= 0" json:"stock"`
	Images      datatypes.JSONSlice[string] `gorm:"column:images" json:"images"`
	IsActive    bool                        `gorm:"column:is_active;default:true;not null" json:"isActive"`
	IsFeatured  bool                        `gorm:"column:is_featured;default:false;not null" json:"isFeatured"`
	CategoryID  uuid.UUID                   `gorm:"type:uuid;column:category_id;not null;index" json:"categoryId"`
	Category    *Category                   `gorm:"constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// EffectivePrice is the sale price when it is set, positive and lower than
// the list price; otherwise the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil && p.SalePrice.IsPositive() && p.SalePrice.LessThan(p.Price) {
		return *p.SalePrice
	}
	return p.Price
}

// ProductPatch carries the fields present in a partial update. A nil field is
// left unchanged; ClearSalePrice removes the sale price.
type ProductPatch struct {
	Name           *string
	SKU            *string
	Description    *string
	Price          *decimal.Decimal
	SalePrice      *decimal.Decimal
	ClearSalePrice bool
	Stock          *int
	Images         []string
	IsActive       *bool
	IsFeatured     *bool
	CategoryID     *uuid.UUID
}

type ProductFilter struct {
	CategorySlug string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Search       string
	Featured     *bool
	SortBy       string
	SortOrder    string
	Page         int
	Limit        int
}

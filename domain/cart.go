package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;column:user_id;not null;uniqueIndex:idx_cart_user_product" json:"userId"`
	ProductID uuid.UUID `gorm:"type:uuid;column:product_id;not null;uniqueIndex:idx_cart_user_product" json:"productId"`
	Quantity  int       `gorm:"column:quantity;not null;check:quantity > 0" json:"quantity"`
	Product   *Product  `gorm:"constraint:OnDelete:CASCADE" json:"product,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Cart struct {
	Items     []CartItem `json:"items"`
	ItemCount int        `json:"itemCount"`
	Subtotal  string     `json:"subtotal"`
}

// NewCart totals the lines at their current effective price.
func NewCart(items []CartItem) Cart {
	lines := make([]PriceLine, 0, len(items))
	count := 0
	for _, it := range items {
		count += it.Quantity
		if it.Product != nil {
			lines = append(lines, PriceLine{UnitPrice: it.Product.EffectivePrice(), Quantity: it.Quantity})
		}
	}
	if items == nil {
		items = []CartItem{}
	}

	return Cart{
		Items:     items,
		ItemCount: count,
		Subtotal:  Subtotal(lines).StringFixed(2),
	}
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderConfirmed, OrderCancelled},
	OrderConfirmed:  {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped},
	OrderShipped:    {OrderDelivered},
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(s)
	switch st {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return st, true
	}
	return "", false
}

// CanTransition reports whether an order may move from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsCancellable() bool {
	return s == OrderPending || s == OrderConfirmed
}

const (
	PaymentCOD        = "COD"
	PaymentStripe     = "STRIPE"
	PaymentUPI        = "UPI"
	PaymentNetBanking = "NET_BANKING"
)

func IsPaymentMethod(m string) bool {
	switch m {
	case PaymentCOD, PaymentStripe, PaymentUPI, PaymentNetBanking:
		return true
	}
	return false
}

type Order struct {
	ID              uuid.UUID                           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID                           `gorm:"type:uuid;column:user_id;not null;index" json:"userId"`
	AddressID       *uuid.UUID                          `gorm:"type:uuid;column:address_id" json:"addressId"`
	Address         *Address                            `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	ShippingAddress datatypes.JSONType[AddressSnapshot] `gorm:"column:shipping_address" json:"shippingAddress"`
	OrderNumber     string                              `gorm:"column:order_number;uniqueIndex;not null" json:"orderNumber"`
	PaymentMethod   string                              `gorm:"column:payment_method;not null" json:"paymentMethod"`
	Subtotal        decimal.Decimal                     `gorm:"column:subtotal;type:numeric(12,2);not null" json:"subtotal"`
	ShippingCost    decimal.Decimal                     `gorm:"column:shipping_cost;type:numeric(12,2);not null" json:"shippingCost"`
	Tax             decimal.Decimal                     `gorm:"column:tax;type:numeric(12,2);not null" json:"tax"`
	Total           decimal.Decimal                     `gorm:"column:total;type:numeric(12,2);not null" json:"total"`
	Status          OrderStatus                         `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	Notes           string                              `gorm:"column:notes;type:text" json:"notes,omitempty"`
	Items           []OrderItem                         `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Payment         *Payment                            `gorm:"constraint:OnDelete:CASCADE" json:"payment,omitempty"`
	User            *User                               `json:"user,omitempty"`
	CreatedAt       time.Time                           `json:"createdAt"`
	UpdatedAt       time.Time                           `json:"updatedAt"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is written once at checkout. Price and Total are the values at
// that instant and never follow later product changes.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;column:order_id;not null;index" json:"orderId"`
	ProductID   uuid.UUID       `gorm:"type:uuid;column:product_id;not null;index" json:"productId"`
	ProductName string          `gorm:"column:product_name;not null" json:"productName"`
	Quantity    int             `gorm:"column:quantity;not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Total       decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null" json:"total"`
	Product     *Product        `gorm:"constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// OrderPreview is the read-only checkout quote.
type OrderPreview struct {
	Items         []CartItem       `json:"items"`
	Subtotal      string           `json:"subtotal"`
	ShippingCost  string           `json:"shippingCost"`
	Tax           string           `json:"tax"`
	Total         string           `json:"total"`
	PaymentMethod string           `json:"paymentMethod,omitempty"`
	Address       *AddressSnapshot `json:"address,omitempty"`
}

func NewOrderPreview(items []CartItem, t Totals) OrderPreview {
	return OrderPreview{
		Items:        items,
		Subtotal:     t.Subtotal.StringFixed(2),
		ShippingCost: t.ShippingCost.StringFixed(2),
		Tax:          t.Tax.StringFixed(2),
		Total:        t.Total.StringFixed(2),
	}
}

type PlaceOrderInput struct {
	AddressID       uuid.UUID
	PaymentMethod   string
	PaymentIntentID string
	Notes           string
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Address struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;column:user_id;not null;index" json:"userId"`
	FirstName    string    `gorm:"column:first_name;not null" json:"firstName"`
	LastName     string    `gorm:"column:last_name;not null" json:"lastName"`
	Phone        string    `gorm:"column:phone;not null" json:"phone"`
	AddressLine1 string    `gorm:"column:address_line1;not null" json:"addressLine1"`
	AddressLine2 string    `gorm:"column:address_line2" json:"addressLine2,omitempty"`
	City         string    `gorm:"column:city;not null" json:"city"`
	State        string    `gorm:"column:state;not null" json:"state"`
	PostalCode   string    `gorm:"column:postal_code;not null" json:"postalCode"`
	Country      string    `gorm:"column:country;not null;default:India" json:"country"`
	IsDefault    bool      `gorm:"column:is_default;not null;default:false" json:"isDefault"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Address) TableName() string {
	return "addresses"
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Snapshot copies the postal fields an order keeps after the address is
// edited or deleted.
func (a Address) Snapshot() AddressSnapshot {
	return AddressSnapshot{
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Phone:        a.Phone,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
	}
}

type AddressSnapshot struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
}

type AddressPatch struct {
	FirstName    *string
	LastName     *string
	Phone        *string
	AddressLine1 *string
	AddressLine2 *string
	City         *string
	State        *string
	PostalCode   *string
	Country      *string
	IsDefault    *bool
}

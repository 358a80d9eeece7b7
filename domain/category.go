package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Slug        string    `gorm:"column:slug;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"column:description;type:text" json:"description,omitempty"`
	Image       string    `gorm:"column:image" json:"image,omitempty"`
	IsActive    bool      `gorm:"column:is_active;default:true;not null" json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	ProductCount int64 `gorm:"->;-:migration" json:"productCount"`
}

func (Category) TableName() string {
	return "categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CategoryPatch carries the fields present in a partial update.
type CategoryPatch struct {
	Name        *string
	Description *string
	Image       *string
	IsActive    *bool
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reserved identifying names of the sentinel rows and the default category
const (
	DeletedProductName  = "deleted_product"
	DeletedCategoryName = "deleted_category"
	DeletedUsername     = "deleted_user"
	DeletedUserEmail    = "deleted_user@deleted.invalid"

	DefaultCategoryName        = "Unknown"
	DefaultCategoryDescription = "Unknown category. Reference for products with no category assigned."
)

// Product represents a stocked item
type Product struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	UUID          string    `json:"uuid" gorm:"type:varchar(36);uniqueIndex;not null"`
	Name          string    `json:"name" gorm:"type:varchar(50);uniqueIndex;not null"`
	Description   string    `json:"description" gorm:"type:text"`
	CategoryID    uint      `json:"category_id" gorm:"index"`
	PurchasePrice float64   `json:"purchase_price" gorm:"not null;default:0"`
	RestockPrice  float64   `json:"restock_price" gorm:"not null;default:0"`
	Currency      string    `json:"currency" gorm:"type:varchar(3);not null"`
	Quantity      int       `json:"quantity" gorm:"not null;default:0"`
	CreationDate  time.Time `json:"creation_date" gorm:"not null"`
	ChangedDate   time.Time `json:"changed_date" gorm:"not null"`
}

// BeforeCreate fills identity and timestamps not supplied by the caller
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.NewString()
	}
	now := time.Now()
	if p.CreationDate.IsZero() {
		p.CreationDate = now
	}
	if p.ChangedDate.IsZero() {
		p.ChangedDate = now
	}
	return nil
}

// Category represents a node in the category tree. A nil ParentID means top-level.
type Category struct {
	ID          uint   `json:"id" gorm:"primarykey"`
	Name        string `json:"name" gorm:"type:varchar(50);uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`
	ParentID    *uint  `json:"parent_id" gorm:"index"`
}

// IsTopLevel reports whether the category has no parent
func (c *Category) IsTopLevel() bool {
	return c.ParentID == nil
}

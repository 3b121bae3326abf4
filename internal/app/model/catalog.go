package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CategoryStatus string

const (
	CategoryStatusActive     CategoryStatus = "active"
	CategoryStatusComingSoon CategoryStatus = "coming-soon"
)

func (s CategoryStatus) IsValid() bool {
	return s == CategoryStatusActive || s == CategoryStatusComingSoon
}

type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "active"
	ProductStatusComingSoon ProductStatus = "coming-soon"
	ProductStatusArchived   ProductStatus = "archived"
)

func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusActive, ProductStatusComingSoon, ProductStatusArchived:
		return true
	}
	return false
}

// Category is a storefront collection such as "professionalAthletes".
type Category struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Key         string         `gorm:"uniqueIndex;size:100;not null" json:"key"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	HeroImage   string         `json:"hero_image"`
	Status      CategoryStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	Products []Product `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"products"`
}

func (Category) TableName() string {
	return "categories"
}

type Product struct {
	ID          uint                   `gorm:"primarykey" json:"id"`
	CategoryID  uint                   `gorm:"not null;index" json:"category_id"`
	Position    int                    `gorm:"default:0" json:"position"` // order within the category
	Title       string                 `gorm:"not null" json:"title"`
	Description string                 `gorm:"type:text" json:"description"`
	Price       decimal.Decimal        `gorm:"type:decimal(12,2);not null" json:"price"`
	Currency    string                 `gorm:"type:varchar(3);default:'USD'" json:"currency"`
	Status      ProductStatus          `gorm:"type:varchar(20);default:'active'" json:"status"`
	Inventory   int                    `gorm:"default:0" json:"inventory"`
	ImageURL    string                 `json:"image_url"`
	Featured    bool                   `json:"featured"`
	Metadata    map[string]interface{} `gorm:"serializer:json" json:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// IsPurchasable reports whether the product can be added to a cart.
func (p *Product) IsPurchasable() bool {
	return p.Status == ProductStatusActive
}

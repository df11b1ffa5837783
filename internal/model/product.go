package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a vehicle in the dealership inventory.
type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Brand     string          `gorm:"not null"`
	Model     string          `gorm:"not null"`
	Year      int             `gorm:"not null"`
	Plate     *string         `gorm:"type:varchar(10);uniqueIndex"`
	Chassi    string          `gorm:"type:varchar(40);uniqueIndex;not null"`
	Km        int             `gorm:"not null;default:0"`
	Color     string          `gorm:"not null"`
	CostPrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SalePrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status    ProductStatus   `gorm:"type:varchar(20);not null;default:IN_STOCK;index"`

	PurchaseSellerName    *string
	PurchaseSellerPhone   *string `gorm:"type:varchar(20)"`
	PurchaseSellerCPF     *string `gorm:"type:varchar(11)"`
	PurchaseSellerAddress *string

	Images    []ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Label is the short vehicle description used in messages.
func (p *Product) Label() string {
	return fmt.Sprintf("%s %s (%d)", p.Brand, p.Model, p.Year)
}

// CoverImage returns the lowest-position image, or nil.
func (p *Product) CoverImage() *ProductImage {
	var cover *ProductImage
	for i := range p.Images {
		img := &p.Images[i]
		if img.URL == "" {
			continue
		}
		if cover == nil || img.Position < cover.Position {
			cover = img
		}
	}
	return cover
}

// ProductImage points at an object-storage key or an absolute URL.
type ProductImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	URL       string    `gorm:"not null"`
	Position  int       `gorm:"not null;default:0"`
	CreatedAt time.Time
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale records one vehicle sold to one client. The product_* columns are a
// snapshot taken at sale time and never follow later product edits.
type Sale struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PublicID    string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	ClientID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Client      *Client   `gorm:"foreignKey:ClientID"`
	SellerID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Product     *Product  `gorm:"foreignKey:ProductID"`

	ProductBrand     string          `gorm:"not null"`
	ProductModel     string          `gorm:"not null"`
	ProductYear      int             `gorm:"not null"`
	ProductPlate     *string         `gorm:"type:varchar(10)"`
	ProductChassi    string          `gorm:"type:varchar(40);not null"`
	ProductColor     string          `gorm:"not null"`
	ProductKm        int             `gorm:"not null"`
	ProductCostPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ProductSalePrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	PurchaseSellerName    *string
	PurchaseSellerPhone   *string `gorm:"type:varchar(20)"`
	PurchaseSellerCPF     *string `gorm:"type:varchar(11)"`
	PurchaseSellerAddress *string

	Total              decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	EntryAmount        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	EntryPaymentMethod *EntryMethod    `gorm:"type:varchar(20)"`
	PaymentType        PaymentType     `gorm:"type:varchar(20);not null"`
	Status             SaleStatus      `gorm:"type:varchar(20);not null;default:DRAFT;index"`

	Promissory *Promissory `gorm:"foreignKey:SaleID"`
	CreatedAt  time.Time   `gorm:"index"`
	UpdatedAt  time.Time
}

// SnapshotProduct copies the product fields the sale must keep.
func (s *Sale) SnapshotProduct(p *Product) {
	s.ProductID = p.ID
	s.ProductBrand = p.Brand
	s.ProductModel = p.Model
	s.ProductYear = p.Year
	s.ProductPlate = p.Plate
	s.ProductChassi = p.Chassi
	s.ProductColor = p.Color
	s.ProductKm = p.Km
	s.ProductCostPrice = p.CostPrice
	s.ProductSalePrice = p.SalePrice
	s.PurchaseSellerName = p.PurchaseSellerName
	s.PurchaseSellerPhone = p.PurchaseSellerPhone
	s.PurchaseSellerCPF = p.PurchaseSellerCPF
	s.PurchaseSellerAddress = p.PurchaseSellerAddress
}

// NetTotal is total minus discount.
func (s *Sale) NetTotal() decimal.Decimal {
	return s.Total.Sub(s.Discount)
}

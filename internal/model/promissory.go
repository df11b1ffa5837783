package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Promissory is the installment plan backing a sale, or a standalone
// note when SaleID is nil.
type Promissory struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PublicID    string           `gorm:"type:varchar(20);uniqueIndex;not null"`
	SaleID      *uuid.UUID       `gorm:"type:uuid;uniqueIndex"`
	Sale        *Sale            `gorm:"foreignKey:SaleID"`
	ClientID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	Client      *Client          `gorm:"foreignKey:ClientID"`
	ProductID   *uuid.UUID       `gorm:"type:uuid;index"`
	Product     *Product         `gorm:"foreignKey:ProductID"`
	Total       decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	EntryAmount decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	DailyFee    decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	Status      PromissoryStatus `gorm:"type:varchar(20);not null;default:DRAFT;index"`
	IssuedAt    *time.Time
	Snapshot    datatypes.JSON `gorm:"type:jsonb"`

	Installments []Installment `gorm:"foreignKey:PromissoryID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PromissorySnapshot is serialised into Promissory.Snapshot at creation.
type PromissorySnapshot struct {
	SalePublicID     string `json:"sale_public_id,omitempty"`
	ClientName       string `json:"client_name"`
	ClientPhone      string `json:"client_phone"`
	ProductLabel     string `json:"product_label,omitempty"`
	Principal        string `json:"principal"`
	InstallmentCount int    `json:"installment_count"`
}

// ResolveProduct returns the product directly on the promissory or via its sale.
func (p *Promissory) ResolveProduct() *Product {
	if p.Product != nil {
		return p.Product
	}
	if p.Sale != nil {
		return p.Sale.Product
	}
	return nil
}

// AllInstallmentsPaid reports whether the plan is fully settled.
func (p *Promissory) AllInstallmentsPaid() bool {
	if len(p.Installments) == 0 {
		return false
	}
	for _, inst := range p.Installments {
		if inst.Status != InstallmentPaid {
			return false
		}
	}
	return true
}

// HasPaidInstallment reports whether any installment is already settled.
func (p *Promissory) HasPaidInstallment() bool {
	for _, inst := range p.Installments {
		if inst.Status == InstallmentPaid {
			return true
		}
	}
	return false
}

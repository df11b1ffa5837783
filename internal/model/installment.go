package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Installment is one scheduled payment of a promissory. It carries three
// independent notification channels.
type Installment struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PromissoryID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_installment_number"`
	Promissory   *Promissory       `gorm:"foreignKey:PromissoryID"`
	Number       int               `gorm:"not null;uniqueIndex:idx_installment_number"`
	DueDate      time.Time         `gorm:"type:date;not null;index"`
	Amount       decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	Status       InstallmentStatus `gorm:"type:varchar(20);not null;default:PENDING;index"`
	PaidAt       *time.Time
	PaidAmount   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Note         *string          `gorm:"type:text"`
	LateDays     int              `gorm:"not null;default:0"`
	LateFee      decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`

	DueSoon  SendState `gorm:"embedded;embeddedPrefix:wa_due_"`
	DueToday SendState `gorm:"embedded;embeddedPrefix:wa_today_"`
	Overdue  SendState `gorm:"embedded;embeddedPrefix:wa_overdue_"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// State returns the SendState block for a channel, or nil for a foreign one.
func (i *Installment) State(ch Channel) *SendState {
	switch ch.Name {
	case ChannelInstallmentDueSoon.Name:
		return &i.DueSoon
	case ChannelInstallmentDueToday.Name:
		return &i.DueToday
	case ChannelInstallmentOverdue.Name:
		return &i.Overdue
	}
	return nil
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Finance is an account payable. Creating one queues an owner notice.
type Finance struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Company     string          `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DueDate     time.Time       `gorm:"type:date;not null;index"`
	Status      FinanceStatus   `gorm:"type:varchar(20);not null;default:PENDING;index"`
	Description *string
	Notes       *string `gorm:"type:text"`
	PaidAt      *time.Time

	Notice SendState `gorm:"embedded;embeddedPrefix:wpp_"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

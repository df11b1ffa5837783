package model

import (
	"time"

	"github.com/google/uuid"
)

// Client is a buyer. Phone and CPF are stored as digits only.
type Client struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	Phone     string    `gorm:"type:varchar(20);not null;index"`
	CPF       *string   `gorm:"type:varchar(11);uniqueIndex"`
	Address   *string
	Notes     *string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

package dto

import "github.com/shopspring/decimal"

// CreatePromissoryRequest creates a promissory without a sale.
type CreatePromissoryRequest struct {
	ClientID          string          `json:"client_id"          validate:"required,uuid"`
	ProductID         *string         `json:"product_id"         validate:"omitempty,uuid"`
	Principal         decimal.Decimal `json:"principal"          validate:"required,gt=0"`
	EntryAmount       decimal.Decimal `json:"entry_amount"       validate:"min=0"`
	InstallmentsCount int             `json:"installments_count" validate:"required,min=1,max=120"`
	FirstDueDate      *string         `json:"first_due_date"     validate:"omitempty,datetime=2006-01-02"`
	DailyFee          decimal.Decimal `json:"daily_fee"          validate:"min=0"`
	Issue             bool            `json:"issue"`
}

type PromissoryFilter struct {
	Status   string `form:"status"    validate:"omitempty,oneof=DRAFT ISSUED CANCELED PAID"`
	ClientID string `form:"client_id" validate:"omitempty,uuid"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type PromissoryResponse struct {
	ID           string                `json:"id"`
	PublicID     string                `json:"public_id"`
	SaleID       *string               `json:"sale_id"`
	ClientID     string                `json:"client_id"`
	ProductID    *string               `json:"product_id"`
	Total        decimal.Decimal       `json:"total"`
	EntryAmount  decimal.Decimal       `json:"entry_amount"`
	DailyFee     decimal.Decimal       `json:"daily_fee"`
	Status       string                `json:"status"`
	IssuedAt     *string               `json:"issued_at"`
	Installments []InstallmentResponse `json:"installments"`
	CreatedAt    string                `json:"created_at"`
}

type PromissoryListResponse struct {
	Data  []PromissoryResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

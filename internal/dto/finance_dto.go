package dto

import "github.com/shopspring/decimal"

type CreateFinanceRequest struct {
	Company     string          `json:"company"     validate:"required,max=120"`
	Amount      decimal.Decimal `json:"amount"      validate:"required,gt=0"`
	DueDate     string          `json:"due_date"    validate:"required,datetime=2006-01-02"`
	Description *string         `json:"description" validate:"omitempty,max=255"`
	Notes       *string         `json:"notes"`
}

// UpdateFinanceRequest edits a payable. Status changes go through the
// transition table.
type UpdateFinanceRequest struct {
	Company     *string          `json:"company"     validate:"omitempty,max=120"`
	Amount      *decimal.Decimal `json:"amount"`
	DueDate     *string          `json:"due_date"    validate:"omitempty,datetime=2006-01-02"`
	Status      *string          `json:"status"      validate:"omitempty,oneof=PENDING PAID CANCELED"`
	Description *string          `json:"description" validate:"omitempty,max=255"`
	Notes       *string          `json:"notes"`
}

type FinanceFilter struct {
	Status  string `form:"status"   validate:"omitempty,oneof=PENDING PAID CANCELED"`
	DueFrom string `form:"due_from" validate:"omitempty,datetime=2006-01-02"`
	DueTo   string `form:"due_to"   validate:"omitempty,datetime=2006-01-02"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type FinanceResponse struct {
	ID          string            `json:"id"`
	Company     string            `json:"company"`
	Amount      decimal.Decimal   `json:"amount"`
	DueDate     string            `json:"due_date"`
	Status      string            `json:"status"`
	Description *string           `json:"description"`
	Notes       *string           `json:"notes"`
	PaidAt      *string           `json:"paid_at"`
	Notice      SendStateResponse `json:"wpp"`
	CreatedAt   string            `json:"created_at"`
}

type FinanceListResponse struct {
	Data  []FinanceResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

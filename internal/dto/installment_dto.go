package dto

import "github.com/shopspring/decimal"

type PayInstallmentRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	Note   *string          `json:"note" validate:"omitempty,max=500"`
}

type InstallmentFilter struct {
	Status       string `form:"status"        validate:"omitempty,oneof=PENDING PAID CANCELED"`
	PromissoryID string `form:"promissory_id" validate:"omitempty,uuid"`
	DueFrom      string `form:"due_from"      validate:"omitempty,datetime=2006-01-02"`
	DueTo        string `form:"due_to"        validate:"omitempty,datetime=2006-01-02"`
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=50" validate:"min=1,max=500"`
}

type SendStateResponse struct {
	Status      string  `json:"status"`
	Tries       int     `json:"tries"`
	LastError   *string `json:"last_error"`
	SentAt      *string `json:"sent_at"`
	NextRetryAt *string `json:"next_retry_at"`
}

type InstallmentResponse struct {
	ID           string            `json:"id"`
	PromissoryID string            `json:"promissory_id"`
	Number       int               `json:"number"`
	DueDate      string            `json:"due_date"`
	Amount       decimal.Decimal   `json:"amount"`
	Status       string            `json:"status"`
	PaidAt       *string           `json:"paid_at"`
	PaidAmount   *decimal.Decimal  `json:"paid_amount"`
	Note         *string           `json:"note"`
	LateDays     int               `json:"late_days"`
	LateFee      decimal.Decimal   `json:"late_fee"`
	DueSoon      SendStateResponse `json:"wa_due"`
	DueToday     SendStateResponse `json:"wa_today"`
	Overdue      SendStateResponse `json:"wa_overdue"`
}

type InstallmentListResponse struct {
	Data  []InstallmentResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

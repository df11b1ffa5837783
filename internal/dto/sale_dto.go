package dto

import "github.com/shopspring/decimal"

// CreateSaleRequest registers a sale. When PaymentType is PROMISSORY the
// installment plan fields are required and a promissory is created in the
// same transaction.
type CreateSaleRequest struct {
	ClientID           string          `json:"client_id"            validate:"required,uuid"`
	ProductID          string          `json:"product_id"           validate:"required,uuid"`
	Total              decimal.Decimal `json:"total"                validate:"required,gt=0"`
	Discount           decimal.Decimal `json:"discount"             validate:"min=0"`
	EntryAmount        decimal.Decimal `json:"entry_amount"         validate:"min=0"`
	EntryPaymentMethod *string         `json:"entry_payment_method" validate:"omitempty,oneof=CASH PIX CARD"`
	PaymentType        string          `json:"payment_type"         validate:"required,oneof=CASH PIX CARD PROMISSORY FINANCING"`

	InstallmentsCount *int             `json:"installments_count" validate:"omitempty,min=1,max=120"`
	FirstDueDate      *string          `json:"first_due_date"     validate:"omitempty,datetime=2006-01-02"`
	DailyFee          decimal.Decimal  `json:"daily_fee"          validate:"min=0"`
	Principal         *decimal.Decimal `json:"principal"`
}

type UpdateSaleStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=DRAFT CONFIRMED CANCELED"`
}

type SaleFilter struct {
	Status    string `form:"status"     validate:"omitempty,oneof=DRAFT CONFIRMED CANCELED all"`
	ClientID  string `form:"client_id"  validate:"omitempty,uuid"`
	DateFrom  string `form:"date_from"  validate:"omitempty,datetime=2006-01-02"`
	DateTo    string `form:"date_to"    validate:"omitempty,datetime=2006-01-02"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type SaleProductSnapshot struct {
	Brand     string          `json:"brand"`
	Model     string          `json:"model"`
	Year      int             `json:"year"`
	Plate     *string         `json:"plate"`
	Chassi    string          `json:"chassi"`
	Color     string          `json:"color"`
	Km        int             `json:"km"`
	CostPrice decimal.Decimal `json:"cost_price"`
	SalePrice decimal.Decimal `json:"sale_price"`
}

type SaleResponse struct {
	ID                 string              `json:"id"`
	PublicID           string              `json:"public_id"`
	ClientID           string              `json:"client_id"`
	SellerID           string              `json:"seller_id"`
	ProductID          string              `json:"product_id"`
	Product            SaleProductSnapshot `json:"product"`
	Total              decimal.Decimal     `json:"total"`
	Discount           decimal.Decimal     `json:"discount"`
	EntryAmount        decimal.Decimal     `json:"entry_amount"`
	EntryPaymentMethod *string             `json:"entry_payment_method"`
	PaymentType        string              `json:"payment_type"`
	Status             string              `json:"status"`
	Promissory         *PromissoryResponse `json:"promissory,omitempty"`
	CreatedAt          string              `json:"created_at"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

package dto

import "github.com/shopspring/decimal"

type CreateProductRequest struct {
	Brand     string          `json:"brand"      validate:"required,max=60"`
	Model     string          `json:"model"      validate:"required,max=80"`
	Year      int             `json:"year"       validate:"required,min=1950,max=2100"`
	Plate     *string         `json:"plate"      validate:"omitempty,max=10"`
	Chassi    string          `json:"chassi"     validate:"required,max=40"`
	Km        int             `json:"km"         validate:"min=0"`
	Color     string          `json:"color"      validate:"required,max=40"`
	CostPrice decimal.Decimal `json:"cost_price" validate:"min=0"`
	SalePrice decimal.Decimal `json:"sale_price" validate:"required,gt=0"`

	PurchaseSellerName    *string `json:"purchase_seller_name"`
	PurchaseSellerPhone   *string `json:"purchase_seller_phone"`
	PurchaseSellerCPF     *string `json:"purchase_seller_cpf"`
	PurchaseSellerAddress *string `json:"purchase_seller_address"`
}

type AddProductImageRequest struct {
	URL      string `json:"url"      validate:"required,max=1024"`
	Position int    `json:"position" validate:"min=0"`
}

type ProductFilter struct {
	Status string `form:"status" validate:"omitempty,oneof=IN_STOCK RESERVED SOLD"`
	Query  string `form:"q"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ProductImageResponse struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

type ProductResponse struct {
	ID        string                 `json:"id"`
	Brand     string                 `json:"brand"`
	Model     string                 `json:"model"`
	Year      int                    `json:"year"`
	Plate     *string                `json:"plate"`
	Chassi    string                 `json:"chassi"`
	Km        int                    `json:"km"`
	Color     string                 `json:"color"`
	CostPrice decimal.Decimal        `json:"cost_price"`
	SalePrice decimal.Decimal        `json:"sale_price"`
	Status    string                 `json:"status"`
	Images    []ProductImageResponse `json:"images"`
	CreatedAt string                 `json:"created_at"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

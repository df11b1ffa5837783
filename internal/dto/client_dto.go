package dto

type ClientRequest struct {
	Name    string  `json:"name"    validate:"required,min=2,max=120"`
	Phone   string  `json:"phone"   validate:"required,min=8,max=20"`
	CPF     *string `json:"cpf"     validate:"omitempty,min=11,max=14"`
	Address *string `json:"address" validate:"omitempty,max=255"`
	Notes   *string `json:"notes"`
}

type ClientFilter struct {
	Query string `form:"q"`
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ClientResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	CPF       *string `json:"cpf"`
	Address   *string `json:"address"`
	Notes     *string `json:"notes"`
	CreatedAt string  `json:"created_at"`
}

type ClientListResponse struct {
	Data  []ClientResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

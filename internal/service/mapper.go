package service

import (
	"time"

	"github.com/leodymann/wi-api/internal/dto"
	"github.com/leodymann/wi-api/internal/model"

	"github.com/google/uuid"
)

func fmtTime(t time.Time) string { return t.Format(time.RFC3339) }

func fmtTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := fmtTime(*t)
	return &s
}

func idPtr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func userToResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:     u.ID.String(),
		Name:   u.Name,
		Email:  u.Email,
		Role:   string(u.Role),
		Active: u.Active,
	}
}

func clientToResponse(c *model.Client) dto.ClientResponse {
	return dto.ClientResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Phone:     c.Phone,
		CPF:       c.CPF,
		Address:   c.Address,
		Notes:     c.Notes,
		CreatedAt: fmtTime(c.CreatedAt),
	}
}

func productToResponse(p *model.Product) dto.ProductResponse {
	images := make([]dto.ProductImageResponse, len(p.Images))
	for i, img := range p.Images {
		images[i] = dto.ProductImageResponse{ID: img.ID.String(), URL: img.URL, Position: img.Position}
	}
	return dto.ProductResponse{
		ID:        p.ID.String(),
		Brand:     p.Brand,
		Model:     p.Model,
		Year:      p.Year,
		Plate:     p.Plate,
		Chassi:    p.Chassi,
		Km:        p.Km,
		Color:     p.Color,
		CostPrice: p.CostPrice,
		SalePrice: p.SalePrice,
		Status:    string(p.Status),
		Images:    images,
		CreatedAt: fmtTime(p.CreatedAt),
	}
}

func sendStateToResponse(s model.SendState) dto.SendStateResponse {
	return dto.SendStateResponse{
		Status:      string(s.Status),
		Tries:       s.Tries,
		LastError:   s.LastError,
		SentAt:      fmtTimePtr(s.SentAt),
		NextRetryAt: fmtTimePtr(s.NextRetryAt),
	}
}

func installmentToResponse(i *model.Installment) dto.InstallmentResponse {
	return dto.InstallmentResponse{
		ID:           i.ID.String(),
		PromissoryID: i.PromissoryID.String(),
		Number:       i.Number,
		DueDate:      i.DueDate.Format("2006-01-02"),
		Amount:       i.Amount,
		Status:       string(i.Status),
		PaidAt:       fmtTimePtr(i.PaidAt),
		PaidAmount:   i.PaidAmount,
		Note:         i.Note,
		LateDays:     i.LateDays,
		LateFee:      i.LateFee,
		DueSoon:      sendStateToResponse(i.DueSoon),
		DueToday:     sendStateToResponse(i.DueToday),
		Overdue:      sendStateToResponse(i.Overdue),
	}
}

func promissoryToResponse(p *model.Promissory) dto.PromissoryResponse {
	insts := make([]dto.InstallmentResponse, len(p.Installments))
	for i := range p.Installments {
		insts[i] = installmentToResponse(&p.Installments[i])
	}
	return dto.PromissoryResponse{
		ID:           p.ID.String(),
		PublicID:     p.PublicID,
		SaleID:       idPtr(p.SaleID),
		ClientID:     p.ClientID.String(),
		ProductID:    idPtr(p.ProductID),
		Total:        p.Total,
		EntryAmount:  p.EntryAmount,
		DailyFee:     p.DailyFee,
		Status:       string(p.Status),
		IssuedAt:     fmtTimePtr(p.IssuedAt),
		Installments: insts,
		CreatedAt:    fmtTime(p.CreatedAt),
	}
}

func saleToResponse(s *model.Sale) dto.SaleResponse {
	var method *string
	if s.EntryPaymentMethod != nil {
		m := string(*s.EntryPaymentMethod)
		method = &m
	}
	resp := dto.SaleResponse{
		ID:        s.ID.String(),
		PublicID:  s.PublicID,
		ClientID:  s.ClientID.String(),
		SellerID:  s.SellerID.String(),
		ProductID: s.ProductID.String(),
		Product: dto.SaleProductSnapshot{
			Brand:     s.ProductBrand,
			Model:     s.ProductModel,
			Year:      s.ProductYear,
			Plate:     s.ProductPlate,
			Chassi:    s.ProductChassi,
			Color:     s.ProductColor,
			Km:        s.ProductKm,
			CostPrice: s.ProductCostPrice,
			SalePrice: s.ProductSalePrice,
		},
		Total:              s.Total,
		Discount:           s.Discount,
		EntryAmount:        s.EntryAmount,
		EntryPaymentMethod: method,
		PaymentType:        string(s.PaymentType),
		Status:             string(s.Status),
		CreatedAt:          fmtTime(s.CreatedAt),
	}
	if s.Promissory != nil {
		p := promissoryToResponse(s.Promissory)
		resp.Promissory = &p
	}
	return resp
}

func financeToResponse(f *model.Finance) dto.FinanceResponse {
	return dto.FinanceResponse{
		ID:          f.ID.String(),
		Company:     f.Company,
		Amount:      f.Amount,
		DueDate:     f.DueDate.Format("2006-01-02"),
		Status:      string(f.Status),
		Description: f.Description,
		Notes:       f.Notes,
		PaidAt:      fmtTimePtr(f.PaidAt),
		Notice:      sendStateToResponse(f.Notice),
		CreatedAt:   fmtTime(f.CreatedAt),
	}
}

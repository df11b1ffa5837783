package model

// Status enums are stored as their name in varchar columns. Each type owns
// its transition table; CanTransition is the only place edges are declared.

type SaleStatus string

const (
	SaleDraft     SaleStatus = "DRAFT"
	SaleConfirmed SaleStatus = "CONFIRMED"
	SaleCanceled  SaleStatus = "CANCELED"
)

func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleDraft, SaleConfirmed, SaleCanceled:
		return true
	}
	return false
}

func (s SaleStatus) CanTransition(to SaleStatus) bool {
	switch s {
	case SaleDraft:
		return to == SaleConfirmed || to == SaleCanceled
	case SaleConfirmed, SaleCanceled:
		return false
	}
	return false
}

type PromissoryStatus string

const (
	PromissoryDraft    PromissoryStatus = "DRAFT"
	PromissoryIssued   PromissoryStatus = "ISSUED"
	PromissoryCanceled PromissoryStatus = "CANCELED"
	PromissoryPaid     PromissoryStatus = "PAID"
)

func (s PromissoryStatus) IsValid() bool {
	switch s {
	case PromissoryDraft, PromissoryIssued, PromissoryCanceled, PromissoryPaid:
		return true
	}
	return false
}

func (s PromissoryStatus) CanTransition(to PromissoryStatus) bool {
	switch s {
	case PromissoryDraft:
		return to == PromissoryIssued || to == PromissoryCanceled
	case PromissoryIssued:
		return to == PromissoryCanceled || to == PromissoryPaid
	case PromissoryCanceled, PromissoryPaid:
		return false
	}
	return false
}

type InstallmentStatus string

const (
	InstallmentPending  InstallmentStatus = "PENDING"
	InstallmentPaid     InstallmentStatus = "PAID"
	InstallmentCanceled InstallmentStatus = "CANCELED"
)

func (s InstallmentStatus) IsValid() bool {
	switch s {
	case InstallmentPending, InstallmentPaid, InstallmentCanceled:
		return true
	}
	return false
}

func (s InstallmentStatus) CanTransition(to InstallmentStatus) bool {
	switch s {
	case InstallmentPending:
		return to == InstallmentPaid || to == InstallmentCanceled
	case InstallmentPaid, InstallmentCanceled:
		return false
	}
	return false
}

type FinanceStatus string

const (
	FinancePending  FinanceStatus = "PENDING"
	FinancePaid     FinanceStatus = "PAID"
	FinanceCanceled FinanceStatus = "CANCELED"
)

func (s FinanceStatus) IsValid() bool {
	switch s {
	case FinancePending, FinancePaid, FinanceCanceled:
		return true
	}
	return false
}

func (s FinanceStatus) CanTransition(to FinanceStatus) bool {
	switch s {
	case FinancePending:
		return to == FinancePaid || to == FinanceCanceled
	case FinancePaid, FinanceCanceled:
		return false
	}
	return false
}

type ProductStatus string

const (
	ProductInStock  ProductStatus = "IN_STOCK"
	ProductReserved ProductStatus = "RESERVED"
	ProductSold     ProductStatus = "SOLD"
)

func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductInStock, ProductReserved, ProductSold:
		return true
	}
	return false
}

// Sellable reports whether a sale may be registered for the product.
func (s ProductStatus) Sellable() bool {
	return s == ProductInStock || s == ProductReserved
}

type PaymentType string

const (
	PaymentCash       PaymentType = "CASH"
	PaymentPix        PaymentType = "PIX"
	PaymentCard       PaymentType = "CARD"
	PaymentPromissory PaymentType = "PROMISSORY"
	PaymentFinancing  PaymentType = "FINANCING"
)

func (p PaymentType) IsValid() bool {
	switch p {
	case PaymentCash, PaymentPix, PaymentCard, PaymentPromissory, PaymentFinancing:
		return true
	}
	return false
}

// EntryMethod is how the down payment was received.
type EntryMethod string

const (
	EntryCash EntryMethod = "CASH"
	EntryPix  EntryMethod = "PIX"
	EntryCard EntryMethod = "CARD"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
)

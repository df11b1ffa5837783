package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/leodymann/wi-api/internal/apperr"
	"github.com/leodymann/wi-api/internal/model"
	"github.com/leodymann/wi-api/internal/money"

	"github.com/shopspring/decimal"
)

// Payment asks to settle one installment of a loaded promissory.
type Payment struct {
	InstallmentID uuid.UUID
	// Amount overrides the scheduled amount when set.
	Amount *decimal.Decimal
	Note   *string
	Now    time.Time
	// Location decides the local calendar day used for late-day counting.
	Location *time.Location
}

// PaymentResult reports what ApplyPayment changed so the caller persists
// only dirty rows.
type PaymentResult struct {
	Installment       *model.Installment
	AlreadyPaid       bool
	PromissoryChanged bool
	SaleChanged       bool
}

// ApplyPayment settles an installment and cascades to the promissory and
// sale. The promissory must carry all of its installments, and its sale when
// it has one. Paying an already-paid installment is a no-op.
func ApplyPayment(p *model.Promissory, pay Payment) (*PaymentResult, error) {
	const op = "billing.pay"
	if p == nil {
		return nil, apperr.NotFound(op, "promissória não encontrada")
	}

	var inst *model.Installment
	for i := range p.Installments {
		if p.Installments[i].ID == pay.InstallmentID {
			inst = &p.Installments[i]
			break
		}
	}
	if inst == nil {
		return nil, apperr.NotFound(op, "parcela não encontrada")
	}
	if p.Status == model.PromissoryCanceled {
		return nil, apperr.Conflict(op, "promissória cancelada")
	}

	switch inst.Status {
	case model.InstallmentPaid:
		return &PaymentResult{Installment: inst, AlreadyPaid: true}, nil
	case model.InstallmentCanceled:
		return nil, apperr.Conflict(op, "parcela cancelada")
	}

	amount := inst.Amount
	if pay.Amount != nil {
		amount = *pay.Amount
	}
	amount = money.Round2(amount)
	if amount.IsNegative() {
		return nil, apperr.InvalidArgument(op, "valor pago não pode ser negativo")
	}

	loc := pay.Location
	if loc == nil {
		loc = time.Local
	}
	paidAt := pay.Now
	lateDays := money.DaysBetween(inst.DueDate, paidAt.In(loc))
	if lateDays < 0 {
		lateDays = 0
	}

	inst.Status = model.InstallmentPaid
	inst.PaidAt = &paidAt
	inst.PaidAmount = &amount
	inst.LateDays = lateDays
	inst.LateFee = money.Round2(p.DailyFee.Mul(decimal.NewFromInt(int64(lateDays))))
	if pay.Note != nil {
		inst.Note = pay.Note
	}

	res := &PaymentResult{Installment: inst}
	if !p.AllInstallmentsPaid() {
		return res, nil
	}

	if p.Status == model.PromissoryDraft {
		issueAt := paidAt
		p.Status = model.PromissoryIssued
		p.IssuedAt = &issueAt
	}
	if p.Status.CanTransition(model.PromissoryPaid) {
		p.Status = model.PromissoryPaid
		res.PromissoryChanged = true
	}

	if p.Sale != nil && p.Sale.Status != model.SaleCanceled && p.Sale.Status != model.SaleConfirmed {
		p.Sale.Status = model.SaleConfirmed
		res.SaleChanged = true
	}
	return res, nil
}

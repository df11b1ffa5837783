package billing

import (
	"time"

	"github.com/leodymann/wi-api/internal/apperr"
	"github.com/leodymann/wi-api/internal/model"
)

// IssuePromissory moves a DRAFT promissory to ISSUED. Returns false when
// nothing changed (already ISSUED or PAID).
func IssuePromissory(p *model.Promissory, now time.Time) (bool, error) {
	const op = "billing.issue"
	switch p.Status {
	case model.PromissoryIssued, model.PromissoryPaid:
		return false, nil
	case model.PromissoryCanceled:
		return false, apperr.Conflict(op, "promissória cancelada não pode ser emitida")
	}
	if !p.Status.CanTransition(model.PromissoryIssued) {
		return false, apperr.InvalidTransition(op, "transição %s -> %s não permitida", p.Status, model.PromissoryIssued)
	}
	t := now
	p.Status = model.PromissoryIssued
	p.IssuedAt = &t
	return true, nil
}

// CancelPromissory cancels the promissory and every pending installment.
// Cancelling twice is a no-op; a PAID promissory or one with a paid
// installment is a conflict. Returns the installments that changed.
func CancelPromissory(p *model.Promissory) (bool, []*model.Installment, error) {
	const op = "billing.cancel"
	switch p.Status {
	case model.PromissoryCanceled:
		return false, nil, nil
	case model.PromissoryPaid:
		return false, nil, apperr.Conflict(op, "promissória já paga")
	}
	if p.HasPaidInstallment() {
		return false, nil, apperr.Conflict(op, "promissória possui parcelas pagas")
	}
	if !p.Status.CanTransition(model.PromissoryCanceled) {
		return false, nil, apperr.InvalidTransition(op, "transição %s -> %s não permitida", p.Status, model.PromissoryCanceled)
	}

	p.Status = model.PromissoryCanceled
	var changed []*model.Installment
	for i := range p.Installments {
		inst := &p.Installments[i]
		if inst.Status == model.InstallmentPending {
			inst.Status = model.InstallmentCanceled
			changed = append(changed, inst)
		}
	}
	return true, changed, nil
}

// TransitionSale applies a requested sale status. Requesting the current
// status is a no-op.
func TransitionSale(s *model.Sale, to model.SaleStatus) (bool, error) {
	const op = "billing.sale_status"
	if !to.IsValid() {
		return false, apperr.InvalidArgument(op, "status inválido: %s", to)
	}
	if s.Status == to {
		return false, nil
	}
	if !s.Status.CanTransition(to) {
		return false, apperr.InvalidTransition(op, "transição %s -> %s não permitida", s.Status, to)
	}
	s.Status = to
	return true, nil
}

// TransitionFinance applies a requested payable status.
func TransitionFinance(f *model.Finance, to model.FinanceStatus, now time.Time) (bool, error) {
	const op = "billing.finance_status"
	if !to.IsValid() {
		return false, apperr.InvalidArgument(op, "status inválido: %s", to)
	}
	if f.Status == to {
		return false, nil
	}
	if !f.Status.CanTransition(to) {
		return false, apperr.InvalidTransition(op, "transição %s -> %s não permitida", f.Status, to)
	}
	f.Status = to
	if to == model.FinancePaid {
		t := now
		f.PaidAt = &t
	}
	return true, nil
}

// PayFinance marks a payable as paid. Paying twice is a no-op and paying a
// canceled payable is a conflict. The notice state is left untouched.
func PayFinance(f *model.Finance, now time.Time) (bool, error) {
	switch f.Status {
	case model.FinancePaid:
		return false, nil
	case model.FinanceCanceled:
		return false, apperr.Conflict("billing.finance_pay", "conta cancelada")
	}
	return TransitionFinance(f, model.FinancePaid, now)
}

// Package billing holds the pure billing rules: the amortization schedule,
// payment application and the status transitions of sales, promissories,
// installments and payables. Nothing here touches the database; services
// load the aggregate, call into billing, and persist what changed.
package billing

import (
	"time"

	"github.com/leodymann/wi-api/internal/apperr"
	"github.com/leodymann/wi-api/internal/money"

	"github.com/shopspring/decimal"
)

// Plan is the input of the amortization engine.
type Plan struct {
	SaleDate     time.Time
	Total        decimal.Decimal
	Discount     decimal.Decimal
	Entry        decimal.Decimal
	Installments int
	FirstDue     *time.Time
	// Principal overrides total - discount - entry when set.
	Principal *decimal.Decimal
	DailyFee  decimal.Decimal
}

// Line is one scheduled installment.
type Line struct {
	Number  int
	DueDate time.Time
	Amount  decimal.Decimal
}

// Schedule is the priced result of a Plan. Sum(Lines.Amount) == Principal.
type Schedule struct {
	Principal decimal.Decimal
	Lines     []Line
}

// Validate checks the plan's monetary invariants.
func (p Plan) Validate() error {
	const op = "billing.plan"
	switch {
	case p.Installments < 1:
		return apperr.InvalidArgument(op, "número de parcelas deve ser >= 1")
	case !p.Total.IsPositive():
		return apperr.InvalidArgument(op, "total deve ser maior que zero")
	case p.Discount.IsNegative():
		return apperr.InvalidArgument(op, "desconto não pode ser negativo")
	case p.Entry.IsNegative():
		return apperr.InvalidArgument(op, "entrada não pode ser negativa")
	case p.Entry.GreaterThan(p.Total):
		return apperr.InvalidArgument(op, "entrada não pode ser maior que o total")
	case p.DailyFee.IsNegative():
		return apperr.InvalidArgument(op, "juros diário não pode ser negativo")
	}
	if p.Principal != nil && p.Principal.IsNegative() {
		return apperr.InvalidArgument(op, "valor financiado não pode ser negativo")
	}
	return nil
}

// PrincipalAmount resolves the financed value, rounded to cents.
func (p Plan) PrincipalAmount() decimal.Decimal {
	if p.Principal != nil {
		return money.Round2(*p.Principal)
	}
	return money.Round2(p.Total.Sub(p.Discount).Sub(p.Entry))
}

// FirstDueDate defaults to one calendar month after the sale date.
func (p Plan) FirstDueDate() time.Time {
	if p.FirstDue != nil {
		return money.DateOf(*p.FirstDue)
	}
	return money.AddMonths(money.DateOf(p.SaleDate), 1)
}

// BuildSchedule splits the principal into equal installments rounded to
// cents; the rounding remainder lands on the last installment. Installment k
// is due k-1 months after the first due date, clamped to the month end.
func BuildSchedule(p Plan) (*Schedule, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	principal := p.PrincipalAmount()
	if principal.IsNegative() {
		return nil, apperr.InvalidArgument("billing.plan", "desconto e entrada excedem o total")
	}

	n := decimal.NewFromInt(int64(p.Installments))
	per := money.Round2(principal.Div(n))
	diff := principal.Sub(per.Mul(n))
	first := p.FirstDueDate()

	lines := make([]Line, p.Installments)
	for k := 1; k <= p.Installments; k++ {
		amount := per
		if k == p.Installments {
			amount = money.Round2(per.Add(diff))
		}
		lines[k-1] = Line{
			Number:  k,
			DueDate: money.AddMonths(first, k-1),
			Amount:  amount,
		}
	}
	return &Schedule{Principal: principal, Lines: lines}, nil
}

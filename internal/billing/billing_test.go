package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leodymann/wi-api/internal/apperr"
	"github.com/leodymann/wi-api/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

// ── Amortization ─────────────────────────────────────────────────────────────

func TestBuildSchedule_WorkedExample(t *testing.T) {
	first := date(2024, time.February, 1)
	s, err := BuildSchedule(Plan{
		SaleDate:     date(2024, time.January, 10),
		Total:        dec("2000"),
		Entry:        dec("200"),
		Installments: 3,
		FirstDue:     &first,
	})
	require.NoError(t, err)

	assert.Equal(t, "1800.00", s.Principal.StringFixed(2))
	require.Len(t, s.Lines, 3)
	wantDue := []time.Time{date(2024, 2, 1), date(2024, 3, 1), date(2024, 4, 1)}
	for i, l := range s.Lines {
		assert.Equal(t, i+1, l.Number)
		assert.Equal(t, "600.00", l.Amount.StringFixed(2))
		assert.Equal(t, wantDue[i], l.DueDate)
	}
}

func TestBuildSchedule_RemainderOnLast(t *testing.T) {
	p := dec("1000")
	s, err := BuildSchedule(Plan{SaleDate: date(2024, 1, 1), Total: dec("1000"), Installments: 3, Principal: &p})
	require.NoError(t, err)

	got := []string{s.Lines[0].Amount.StringFixed(2), s.Lines[1].Amount.StringFixed(2), s.Lines[2].Amount.StringFixed(2)}
	assert.Equal(t, []string{"333.33", "333.33", "333.34"}, got)
}

func TestBuildSchedule_SumEqualsPrincipal(t *testing.T) {
	principals := []string{"0", "0.01", "99.99", "1000", "1234.57", "15999.90", "100000.01"}
	for _, ps := range principals {
		for n := 1; n <= 48; n++ {
			p := dec(ps)
			s, err := BuildSchedule(Plan{SaleDate: date(2024, 1, 31), Total: dec("200000"), Installments: n, Principal: &p})
			require.NoError(t, err)
			sum := decimal.Zero
			for _, l := range s.Lines {
				sum = sum.Add(l.Amount)
			}
			assert.True(t, sum.Equal(p), "principal=%s n=%d sum=%s", ps, n, sum)
		}
	}
}

func TestBuildSchedule_DefaultsAndClamping(t *testing.T) {
	s, err := BuildSchedule(Plan{
		SaleDate:     time.Date(2024, time.January, 31, 15, 30, 0, 0, time.UTC),
		Total:        dec("1200"),
		Discount:     dec("100"),
		Entry:        dec("100"),
		Installments: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "1000.00", s.Principal.StringFixed(2), "principal subtracts discount and entry")
	assert.Equal(t, date(2024, 2, 29), s.Lines[0].DueDate)
	assert.Equal(t, date(2024, 3, 29), s.Lines[1].DueDate, "months are added to the clamped first due date")
	assert.Equal(t, date(2024, 4, 29), s.Lines[2].DueDate)
	assert.Equal(t, date(2024, 5, 29), s.Lines[3].DueDate)
}

func TestBuildSchedule_InvalidPlans(t *testing.T) {
	neg := dec("-1")
	plans := map[string]Plan{
		"zero installments": {Total: dec("100"), Installments: 0},
		"zero total":        {Total: dec("0"), Installments: 1},
		"entry over total":  {Total: dec("100"), Entry: dec("101"), Installments: 1},
		"negative discount": {Total: dec("100"), Discount: dec("-1"), Installments: 1},
		"negative principal": {Total: dec("100"), Principal: &neg, Installments: 1},
		"discount+entry":    {Total: dec("100"), Discount: dec("60"), Entry: dec("50"), Installments: 1},
		"negative fee":      {Total: dec("100"), DailyFee: dec("-0.5"), Installments: 1},
	}
	for name, p := range plans {
		_, err := BuildSchedule(p)
		require.Error(t, err, name)
		assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err), name)
	}
}

// ── Payment application ──────────────────────────────────────────────────────

func newPromissory(n int, status model.PromissoryStatus) *model.Promissory {
	p := &model.Promissory{
		ID:       uuid.New(),
		Status:   status,
		DailyFee: dec("2.50"),
		Sale:     &model.Sale{ID: uuid.New(), Status: model.SaleDraft},
	}
	for k := 1; k <= n; k++ {
		p.Installments = append(p.Installments, model.Installment{
			ID:      uuid.New(),
			Number:  k,
			DueDate: date(2024, time.Month(k+1), 1),
			Amount:  dec("100"),
			Status:  model.InstallmentPending,
		})
	}
	return p
}

func TestApplyPayment_SingleInstallmentCascades(t *testing.T) {
	p := newPromissory(1, model.PromissoryDraft)
	now := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

	res, err := ApplyPayment(p, Payment{InstallmentID: p.Installments[0].ID, Now: now, Location: time.UTC})
	require.NoError(t, err)

	assert.Equal(t, model.InstallmentPaid, res.Installment.Status)
	assert.Equal(t, "100.00", res.Installment.PaidAmount.StringFixed(2))
	assert.True(t, res.PromissoryChanged)
	assert.True(t, res.SaleChanged)
	assert.Equal(t, model.PromissoryPaid, p.Status)
	assert.NotNil(t, p.IssuedAt, "draft passes through ISSUED")
	assert.Equal(t, model.SaleConfirmed, p.Sale.Status)
}

func TestApplyPayment_ThreeInstallmentsCascadeOnlyAtEnd(t *testing.T) {
	p := newPromissory(3, model.PromissoryIssued)
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		res, err := ApplyPayment(p, Payment{InstallmentID: p.Installments[i].ID, Now: now, Location: time.UTC})
		require.NoError(t, err)
		assert.False(t, res.PromissoryChanged)
		assert.Equal(t, model.PromissoryIssued, p.Status)
		assert.Equal(t, model.SaleDraft, p.Sale.Status)
	}

	res, err := ApplyPayment(p, Payment{InstallmentID: p.Installments[2].ID, Now: now, Location: time.UTC})
	require.NoError(t, err)
	assert.True(t, res.PromissoryChanged)
	assert.Equal(t, model.PromissoryPaid, p.Status)
	assert.Equal(t, model.SaleConfirmed, p.Sale.Status)
}

func TestApplyPayment_Idempotent(t *testing.T) {
	p := newPromissory(2, model.PromissoryIssued)
	now := time.Date(2024, 2, 5, 10, 0, 0, 0, time.UTC)
	id := p.Installments[0].ID

	first, err := ApplyPayment(p, Payment{InstallmentID: id, Now: now, Location: time.UTC})
	require.NoError(t, err)
	paidAt := *first.Installment.PaidAt

	second, err := ApplyPayment(p, Payment{InstallmentID: id, Now: now.Add(48 * time.Hour), Location: time.UTC})
	require.NoError(t, err)
	assert.True(t, second.AlreadyPaid)
	assert.Equal(t, paidAt, *second.Installment.PaidAt)
	assert.Equal(t, 4, second.Installment.LateDays)
	assert.Equal(t, model.PromissoryIssued, p.Status)
}

func TestApplyPayment_LateFee(t *testing.T) {
	p := newPromissory(2, model.PromissoryIssued)
	amount := dec("105.555")
	now := time.Date(2024, 2, 11, 9, 0, 0, 0, time.UTC)

	res, err := ApplyPayment(p, Payment{InstallmentID: p.Installments[0].ID, Amount: &amount, Now: now, Location: time.UTC})
	require.NoError(t, err)
	assert.Equal(t, 10, res.Installment.LateDays)
	assert.Equal(t, "25.00", res.Installment.LateFee.StringFixed(2))
	assert.Equal(t, "105.56", res.Installment.PaidAmount.StringFixed(2))
}

func TestApplyPayment_EarlyPaymentHasNoLateDays(t *testing.T) {
	p := newPromissory(1, model.PromissoryIssued)
	res, err := ApplyPayment(p, Payment{InstallmentID: p.Installments[0].ID, Now: date(2024, 1, 20), Location: time.UTC})
	require.NoError(t, err)
	assert.Zero(t, res.Installment.LateDays)
	assert.True(t, res.Installment.LateFee.IsZero())
}

func TestApplyPayment_Conflicts(t *testing.T) {
	p := newPromissory(2, model.PromissoryCanceled)
	_, err := ApplyPayment(p, Payment{InstallmentID: p.Installments[0].ID, Now: time.Now()})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	p = newPromissory(2, model.PromissoryIssued)
	p.Installments[1].Status = model.InstallmentCanceled
	_, err = ApplyPayment(p, Payment{InstallmentID: p.Installments[1].ID, Now: time.Now()})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	_, err = ApplyPayment(p, Payment{InstallmentID: uuid.New(), Now: time.Now()})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	neg := dec("-1")
	_, err = ApplyPayment(p, Payment{InstallmentID: p.Installments[0].ID, Amount: &neg, Now: time.Now()})
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))
}

func TestApplyPayment_CanceledSaleStaysCanceled(t *testing.T) {
	p := newPromissory(1, model.PromissoryIssued)
	p.Sale.Status = model.SaleCanceled
	res, err := ApplyPayment(p, Payment{InstallmentID: p.Installments[0].ID, Now: date(2024, 2, 1)})
	require.NoError(t, err)
	assert.False(t, res.SaleChanged)
	assert.Equal(t, model.SaleCanceled, p.Sale.Status)
	assert.Equal(t, model.PromissoryPaid, p.Status)
}

// ── Transitions ──────────────────────────────────────────────────────────────

func TestCancelPromissory(t *testing.T) {
	p := newPromissory(3, model.PromissoryIssued)
	p.Installments[0].Status = model.InstallmentPaid
	_, _, err := CancelPromissory(p)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	p = newPromissory(3, model.PromissoryIssued)
	changed, insts, err := CancelPromissory(p)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Len(t, insts, 3)
	for _, inst := range p.Installments {
		assert.Equal(t, model.InstallmentCanceled, inst.Status)
	}

	changed, _, err = CancelPromissory(p)
	require.NoError(t, err)
	assert.False(t, changed, "second cancel is a no-op")

	p = newPromissory(1, model.PromissoryPaid)
	_, _, err = CancelPromissory(p)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestIssuePromissory(t *testing.T) {
	p := newPromissory(1, model.PromissoryDraft)
	changed, err := IssuePromissory(p, time.Now())
	require.NoError(t, err)
	assert.True(t, changed)
	assert.NotNil(t, p.IssuedAt)

	changed, err = IssuePromissory(p, time.Now())
	require.NoError(t, err)
	assert.False(t, changed)

	p.Status = model.PromissoryCanceled
	_, err = IssuePromissory(p, time.Now())
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestTransitionSale(t *testing.T) {
	s := &model.Sale{Status: model.SaleConfirmed}
	_, err := TransitionSale(s, model.SaleCanceled)
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))

	changed, err := TransitionSale(s, model.SaleConfirmed)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = TransitionSale(s, model.SaleStatus("LOST"))
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestPayFinance(t *testing.T) {
	f := &model.Finance{Status: model.FinancePending, Notice: model.SendState{Status: model.SendPending}}
	changed, err := PayFinance(f, time.Now())
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, model.SendPending, f.Notice.Status, "notice untouched")

	changed, err = PayFinance(f, time.Now())
	require.NoError(t, err)
	assert.False(t, changed)

	f.Status = model.FinanceCanceled
	_, err = PayFinance(f, time.Now())
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

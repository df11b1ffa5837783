package dispatch

import (
	"context"
	"time"

	"github.com/leodymann/wi-api/internal/model"
	"github.com/leodymann/wi-api/internal/money"

	"github.com/rs/zerolog/log"
)

// InstallmentSource returns PENDING installments whose channel state is
// eligible at now, with Promissory.Client, Promissory.Product and
// Promissory.Sale.Product loaded, ordered by due date then id.
type InstallmentSource interface {
	InstallmentsDueOn(ctx context.Context, ch model.Channel, day, now time.Time, limit int) ([]model.Installment, error)
	InstallmentsDueBefore(ctx context.Context, ch model.Channel, day, now time.Time, limit int) ([]model.Installment, error)
}

// FinanceSource returns PENDING payables due on or before day whose notice
// is eligible at now.
type FinanceSource interface {
	FinancesDueBy(ctx context.Context, ch model.Channel, day, now time.Time, limit int) ([]model.Finance, error)
}

// Settings configures the four billing categories.
type Settings struct {
	OwnerTo         string
	Location        *time.Location
	ReminderDays    int
	FinanceLimit    int
	DueSoonLimit    int
	DueTodayLimit   int
	OverdueLimit    int
	DueTodayEnabled bool
	Pix             PixSettings
}

// Today returns the local calendar day of now as a UTC midnight value,
// the form date columns are compared against.
func (s Settings) Today(now time.Time) time.Time {
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ── finance-due ──────────────────────────────────────────────────────────────

type financeDue struct {
	src FinanceSource
	s   Settings
}

// NewFinanceDue notifies the owner of payables due today or earlier.
func NewFinanceDue(src FinanceSource, s Settings) Category { return &financeDue{src: src, s: s} }

func (c *financeDue) Name() string           { return "finance_due" }
func (c *financeDue) Channel() model.Channel { return model.ChannelFinanceNotice }

func (c *financeDue) Candidates(ctx context.Context, now time.Time) ([]Item, error) {
	rows, err := c.src.FinancesDueBy(ctx, c.Channel(), c.s.Today(now), now, c.s.FinanceLimit)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(rows))
	for i := range rows {
		f := &rows[i]
		items = append(items, Item{ID: f.ID, State: f.Notice, To: c.s.OwnerTo, Text: FinanceNoticeText(f)})
	}
	return items, nil
}

// ── installment-due-soon ─────────────────────────────────────────────────────

type dueSoon struct {
	src InstallmentSource
	s   Settings
}

// NewDueSoon reminds the owner ReminderDays before an installment is due.
func NewDueSoon(src InstallmentSource, s Settings) Category { return &dueSoon{src: src, s: s} }

func (c *dueSoon) Name() string           { return "installment_due_soon" }
func (c *dueSoon) Channel() model.Channel { return model.ChannelInstallmentDueSoon }

func (c *dueSoon) Candidates(ctx context.Context, now time.Time) ([]Item, error) {
	target := c.s.Today(now).AddDate(0, 0, c.s.ReminderDays)
	rows, err := c.src.InstallmentsDueOn(ctx, c.Channel(), target, now, c.s.DueSoonLimit)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(rows))
	for i := range rows {
		inst := &rows[i]
		items = append(items, Item{ID: inst.ID, State: inst.DueSoon, To: c.s.OwnerTo, Text: DueSoonText(inst)})
	}
	return items, nil
}

// ── installment-due-today (to client) ────────────────────────────────────────

type dueToday struct {
	src InstallmentSource
	s   Settings
}

// NewDueToday messages the client on the due date with PIX payment data.
// It produces nothing when disabled or when no PIX key is configured.
func NewDueToday(src InstallmentSource, s Settings) Category { return &dueToday{src: src, s: s} }

func (c *dueToday) Name() string           { return "installment_due_today" }
func (c *dueToday) Channel() model.Channel { return model.ChannelInstallmentDueToday }

func (c *dueToday) Candidates(ctx context.Context, now time.Time) ([]Item, error) {
	if !c.s.DueTodayEnabled {
		return nil, nil
	}
	if c.s.Pix.Key == "" {
		log.Debug().Msg("dispatch: PIX_KEY not configured, skipping due-today messages")
		return nil, nil
	}
	rows, err := c.src.InstallmentsDueOn(ctx, c.Channel(), c.s.Today(now), now, c.s.DueTodayLimit)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(rows))
	for i := range rows {
		inst := &rows[i]
		if inst.Promissory == nil || inst.Promissory.Client == nil {
			continue
		}
		to := money.WhatsAppNumber(inst.Promissory.Client.Phone)
		if to == "" {
			continue
		}
		items = append(items, Item{ID: inst.ID, State: inst.DueToday, To: to, Text: DueTodayText(inst, c.s.Pix)})
	}
	return items, nil
}

// ── installment-overdue ──────────────────────────────────────────────────────

type overdue struct {
	src InstallmentSource
	s   Settings
}

// NewOverdue alerts the owner once per installment that passed its due date.
func NewOverdue(src InstallmentSource, s Settings) Category { return &overdue{src: src, s: s} }

func (c *overdue) Name() string           { return "installment_overdue" }
func (c *overdue) Channel() model.Channel { return model.ChannelInstallmentOverdue }

func (c *overdue) Candidates(ctx context.Context, now time.Time) ([]Item, error) {
	rows, err := c.src.InstallmentsDueBefore(ctx, c.Channel(), c.s.Today(now), now, c.s.OverdueLimit)
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(rows))
	for i := range rows {
		inst := &rows[i]
		items = append(items, Item{ID: inst.ID, State: inst.Overdue, To: c.s.OwnerTo, Text: OverdueText(inst)})
	}
	return items, nil
}

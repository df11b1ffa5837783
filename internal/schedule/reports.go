package schedule

import (
	"bytes"
	"context"
	"time"

	"github.com/leodymann/wi-api/internal/money"
)

const (
	WeeklyReportKey  = "weekly_report_sent"
	MonthlyReportKey = "monthly_report_sent"
)

// Period identifies one report run.
type Period struct {
	Label string
	Start time.Time
	End   time.Time
}

// WeeklyPeriod is Monday..Sunday of the week containing today.
func WeeklyPeriod(today time.Time) Period {
	start, end := money.WeekBounds(today)
	return Period{
		Label: start.Format("2006-01-02") + "_" + end.Format("2006-01-02"),
		Start: start,
		End:   end,
	}
}

// MonthlyPeriod is the calendar month containing today.
func MonthlyPeriod(today time.Time) Period {
	d := money.DateOf(today)
	start := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
	end := time.Date(d.Year(), d.Month(), money.DaysIn(d.Year(), d.Month()), 0, 0, 0, 0, d.Location())
	return Period{Label: d.Format("2006-01"), Start: start, End: end}
}

// ReportGate decides when a periodic report is due and remembers the last
// delivered label.
type ReportGate struct {
	store StateStore
	key   string
	due   func(now time.Time) bool
	label func(now time.Time) Period
}

func atOrAfter(now time.Time, hour, minute int) bool {
	return now.Hour() > hour || (now.Hour() == hour && now.Minute() >= minute)
}

// NewWeeklyGate runs on weekday at or after hour:minute.
func NewWeeklyGate(store StateStore, weekday time.Weekday, hour, minute int) *ReportGate {
	return &ReportGate{
		store: store,
		key:   WeeklyReportKey,
		due: func(now time.Time) bool {
			return now.Weekday() == weekday && atOrAfter(now, hour, minute)
		},
		label: WeeklyPeriod,
	}
}

// NewMonthlyGate runs on the last day of the month at or after hour:minute.
func NewMonthlyGate(store StateStore, hour, minute int) *ReportGate {
	return &ReportGate{
		store: store,
		key:   MonthlyReportKey,
		due: func(now time.Time) bool {
			return money.IsLastDayOfMonth(now) && atOrAfter(now, hour, minute)
		},
		label: MonthlyPeriod,
	}
}

// Due returns the pending period and true when the report should run now.
func (g *ReportGate) Due(ctx context.Context, now time.Time) (Period, bool, error) {
	if !g.due(now) {
		return Period{}, false, nil
	}
	p := g.label(now)
	last, ok, err := g.store.Get(ctx, g.key)
	if err != nil {
		return Period{}, false, err
	}
	if ok && string(bytes.TrimSpace(last)) == p.Label {
		return Period{}, false, nil
	}
	return p, true, nil
}

// MarkSent persists the delivered label. Call only after a successful send.
func (g *ReportGate) MarkSent(ctx context.Context, p Period) error {
	return g.store.Put(ctx, g.key, []byte(p.Label))
}

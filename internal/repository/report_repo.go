package repository

import (
	"context"
	"time"

	"github.com/leodymann/wi-api/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesSummary aggregates CONFIRMED sales created in a period.
type SalesSummary struct {
	Count    int64
	Gross    decimal.Decimal
	Discount decimal.Decimal
	Entries  decimal.Decimal
	Profit   decimal.Decimal
	Canceled int64
}

// InstallmentSummary aggregates installments paid in a period.
type InstallmentSummary struct {
	Count   int64
	Paid    decimal.Decimal
	Nominal decimal.Decimal
}

// FinanceSummary covers payables created in a period plus all-time totals
// per status.
type FinanceSummary struct {
	CreatedCount int64
	CreatedTotal decimal.Decimal
	Pending      decimal.Decimal
	Paid         decimal.Decimal
	Canceled     decimal.Decimal
}

// ReportRepository runs the read-only aggregates behind periodic reports.
// Ranges are half-open: start <= t < end.
type ReportRepository interface {
	SalesSummary(ctx context.Context, start, end time.Time) (SalesSummary, error)
	NetByPaymentType(ctx context.Context, start, end time.Time) (map[model.PaymentType]decimal.Decimal, error)
	InstallmentSummary(ctx context.Context, start, end time.Time) (InstallmentSummary, error)
	FinanceSummary(ctx context.Context, start, end time.Time) (FinanceSummary, error)
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) SalesSummary(ctx context.Context, start, end time.Time) (SalesSummary, error) {
	var s SalesSummary
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select(`COUNT(id) AS count,
			COALESCE(SUM(total), 0) AS gross,
			COALESCE(SUM(discount), 0) AS discount,
			COALESCE(SUM(entry_amount), 0) AS entries,
			COALESCE(SUM(total - discount - COALESCE(product_cost_price, 0)), 0) AS profit`).
		Where("status = ? AND created_at >= ? AND created_at < ?", model.SaleConfirmed, start, end).
		Scan(&s).Error
	if err != nil {
		return s, err
	}
	err = r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("status = ? AND created_at >= ? AND created_at < ?", model.SaleCanceled, start, end).
		Count(&s.Canceled).Error
	return s, err
}

func (r *reportRepo) NetByPaymentType(ctx context.Context, start, end time.Time) (map[model.PaymentType]decimal.Decimal, error) {
	var rows []struct {
		PaymentType model.PaymentType
		Net         decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select("payment_type, COALESCE(SUM(total - discount), 0) AS net").
		Where("status = ? AND created_at >= ? AND created_at < ?", model.SaleConfirmed, start, end).
		Group("payment_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[model.PaymentType]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[row.PaymentType] = row.Net
	}
	return out, nil
}

func (r *reportRepo) InstallmentSummary(ctx context.Context, start, end time.Time) (InstallmentSummary, error) {
	var s InstallmentSummary
	err := r.db.WithContext(ctx).Model(&model.Installment{}).
		Select(`COUNT(id) AS count,
			COALESCE(SUM(paid_amount), 0) AS paid,
			COALESCE(SUM(amount), 0) AS nominal`).
		Where("status = ? AND paid_at IS NOT NULL AND paid_at >= ? AND paid_at < ?", model.InstallmentPaid, start, end).
		Scan(&s).Error
	return s, err
}

func (r *reportRepo) FinanceSummary(ctx context.Context, start, end time.Time) (FinanceSummary, error) {
	var s FinanceSummary
	err := r.db.WithContext(ctx).Model(&model.Finance{}).
		Select("COUNT(id) AS created_count, COALESCE(SUM(amount), 0) AS created_total").
		Where("created_at >= ? AND created_at < ?", start, end).
		Scan(&s).Error
	if err != nil {
		return s, err
	}
	var rows []struct {
		Status model.FinanceStatus
		Total  decimal.Decimal
	}
	err = r.db.WithContext(ctx).Model(&model.Finance{}).
		Select("status, COALESCE(SUM(amount), 0) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return s, err
	}
	for _, row := range rows {
		switch row.Status {
		case model.FinancePending:
			s.Pending = row.Total
		case model.FinancePaid:
			s.Paid = row.Total
		case model.FinanceCanceled:
			s.Canceled = row.Total
		}
	}
	return s, nil
}

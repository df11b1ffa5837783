package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/leodymann/wi-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationRepository owns the SendState columns of every channel. It is
// the only writer of those columns; billing writes never touch them.
type NotificationRepository interface {
	Claim(ctx context.Context, ch model.Channel, id uuid.UUID, now time.Time) (bool, error)
	Save(ctx context.Context, ch model.Channel, id uuid.UUID, st model.SendState) error
	// ReapStale moves SENDING claims older than cutoff back to FAILED with an
	// immediate retry. It returns the number of rows changed over all channels.
	ReapStale(ctx context.Context, cutoff, now time.Time) (int64, error)

	InstallmentsDueOn(ctx context.Context, ch model.Channel, day, now time.Time, limit int) ([]model.Installment, error)
	InstallmentsDueBefore(ctx context.Context, ch model.Channel, day, now time.Time, limit int) ([]model.Installment, error)
	FinancesDueBy(ctx context.Context, ch model.Channel, day, now time.Time, limit int) ([]model.Finance, error)
}

type notificationRepo struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

// eligible is the SQL form of SendState.Eligible for one channel.
func eligible(ch model.Channel) string {
	return fmt.Sprintf("(%[1]s = '%[3]s' OR (%[1]s = '%[4]s' AND %[2]s IS NOT NULL AND %[2]s <= ?))",
		ch.Column("status"), ch.Column("next_retry_at"), model.SendPending, model.SendFailed)
}

func (r *notificationRepo) Claim(ctx context.Context, ch model.Channel, id uuid.UUID, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Table(ch.Table).
		Where("id = ?", id).
		Where("status = ?", ch.BillingPending).
		Where(eligible(ch), now).
		Updates(map[string]any{
			ch.Column("status"):     model.SendSending,
			ch.Column("claimed_at"): now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *notificationRepo) Save(ctx context.Context, ch model.Channel, id uuid.UUID, st model.SendState) error {
	return r.db.WithContext(ctx).Table(ch.Table).
		Where("id = ?", id).
		Updates(map[string]any{
			ch.Column("status"):        st.Status,
			ch.Column("tries"):         st.Tries,
			ch.Column("last_error"):    st.LastError,
			ch.Column("sent_at"):       st.SentAt,
			ch.Column("next_retry_at"): st.NextRetryAt,
			ch.Column("claimed_at"):    st.ClaimedAt,
		}).Error
}

func (r *notificationRepo) ReapStale(ctx context.Context, cutoff, now time.Time) (int64, error) {
	var total int64
	for _, ch := range model.Channels {
		claimed := ch.Column("claimed_at")
		res := r.db.WithContext(ctx).Table(ch.Table).
			Where(ch.Column("status")+" = ?", model.SendSending).
			Where(fmt.Sprintf("(%[1]s IS NULL OR %[1]s < ?)", claimed), cutoff).
			Updates(map[string]any{
				ch.Column("status"):        model.SendFailed,
				ch.Column("tries"):         gorm.Expr(ch.Column("tries") + " + 1"),
				ch.Column("last_error"):    "stale claim",
				ch.Column("next_retry_at"): now,
				claimed:                    nil,
			})
		if res.Error != nil {
			return total, fmt.Errorf("reap %s: %w", ch.Name, res.Error)
		}
		total += res.RowsAffected
	}
	return total, nil
}

func (r *notificationRepo) installments(ctx context.Context, ch model.Channel, now time.Time, limit int) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Promissory.Client").
		Preload("Promissory.Product").
		Preload("Promissory.Sale.Product").
		Where("status = ?", model.InstallmentPending).
		Where(eligible(ch), now).
		Order("due_date ASC").Order("id ASC").
		Limit(limit)
}

func (r *notificationRepo) InstallmentsDueOn(ctx context.Context, ch model.Channel, d, now time.Time, limit int) ([]model.Installment, error) {
	var items []model.Installment
	err := r.installments(ctx, ch, now, limit).Where("due_date = ?", day(d)).Find(&items).Error
	return items, err
}

func (r *notificationRepo) InstallmentsDueBefore(ctx context.Context, ch model.Channel, d, now time.Time, limit int) ([]model.Installment, error) {
	var items []model.Installment
	err := r.installments(ctx, ch, now, limit).Where("due_date < ?", day(d)).Find(&items).Error
	return items, err
}

func (r *notificationRepo) FinancesDueBy(ctx context.Context, ch model.Channel, d, now time.Time, limit int) ([]model.Finance, error) {
	var items []model.Finance
	err := r.db.WithContext(ctx).
		Where("status = ?", model.FinancePending).
		Where("due_date <= ?", day(d)).
		Where(eligible(ch), now).
		Order("due_date ASC").Order("id ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

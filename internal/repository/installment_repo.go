package repository

import (
	"context"

	"github.com/leodymann/wi-api/internal/dto"
	"github.com/leodymann/wi-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InstallmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Installment, error)
	List(ctx context.Context, filter dto.InstallmentFilter) ([]model.Installment, int64, error)
	// SaveBilling writes the payment and status columns only. Send-state
	// columns belong to the dispatcher and are never touched here.
	SaveBilling(ctx context.Context, tx *gorm.DB, inst *model.Installment) error
}

type installmentRepo struct{ db *gorm.DB }

func NewInstallmentRepository(db *gorm.DB) InstallmentRepository { return &installmentRepo{db: db} }

func (r *installmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Installment, error) {
	var inst model.Installment
	err := r.db.WithContext(ctx).First(&inst, "id = ?", id).Error
	return &inst, err
}

func (r *installmentRepo) List(ctx context.Context, filter dto.InstallmentFilter) ([]model.Installment, int64, error) {
	var items []model.Installment
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Installment{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PromissoryID != "" {
		q = q.Where("promissory_id = ?", filter.PromissoryID)
	}
	if filter.DueFrom != "" {
		q = q.Where("due_date >= ?", filter.DueFrom)
	}
	if filter.DueTo != "" {
		q = q.Where("due_date <= ?", filter.DueTo)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("due_date ASC").Order("number ASC").
		Offset(offset(filter.Page, filter.Limit)).Limit(filter.Limit).
		Find(&items).Error
	return items, total, err
}

func (r *installmentRepo) SaveBilling(ctx context.Context, tx *gorm.DB, inst *model.Installment) error {
	return on(ctx, r.db, tx).Model(&model.Installment{}).
		Where("id = ?", inst.ID).
		Updates(map[string]any{
			"status":      inst.Status,
			"paid_at":     inst.PaidAt,
			"paid_amount": inst.PaidAmount,
			"note":        inst.Note,
			"late_days":   inst.LateDays,
			"late_fee":    inst.LateFee,
		}).Error
}

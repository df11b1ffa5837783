package repository

import (
	"context"

	"github.com/leodymann/wi-api/internal/dto"
	"github.com/leodymann/wi-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FinanceRepository interface {
	Create(ctx context.Context, f *model.Finance) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Finance, error)
	List(ctx context.Context, filter dto.FinanceFilter) ([]model.Finance, int64, error)
	// Update writes the business columns. The wpp_* notice columns are left
	// to the dispatcher.
	Update(ctx context.Context, f *model.Finance) error
}

type financeRepo struct{ db *gorm.DB }

func NewFinanceRepository(db *gorm.DB) FinanceRepository { return &financeRepo{db: db} }

func (r *financeRepo) Create(ctx context.Context, f *model.Finance) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *financeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Finance, error) {
	var f model.Finance
	err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error
	return &f, err
}

func (r *financeRepo) List(ctx context.Context, filter dto.FinanceFilter) ([]model.Finance, int64, error) {
	var items []model.Finance
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Finance{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
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
	err := q.Order("due_date ASC").Order("id ASC").
		Offset(offset(filter.Page, filter.Limit)).Limit(filter.Limit).
		Find(&items).Error
	return items, total, err
}

func (r *financeRepo) Update(ctx context.Context, f *model.Finance) error {
	return r.db.WithContext(ctx).Model(&model.Finance{}).
		Where("id = ?", f.ID).
		Updates(map[string]any{
			"company":     f.Company,
			"amount":      f.Amount,
			"due_date":    day(f.DueDate),
			"status":      f.Status,
			"description": f.Description,
			"notes":       f.Notes,
			"paid_at":     f.PaidAt,
		}).Error
}

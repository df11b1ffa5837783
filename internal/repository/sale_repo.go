package repository

import (
	"context"

	"github.com/leodymann/wi-api/internal/dto"
	"github.com/leodymann/wi-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	PublicIDExists(ctx context.Context, publicID string) (bool, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status model.SaleStatus) error
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error {
	// Promissory rows are written by the promissory repository in the same tx.
	return on(ctx, r.db, tx).Omit("Promissory", "Client", "Product").Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).
		Preload("Promissory.Installments", func(db *gorm.DB) *gorm.DB { return db.Order("number ASC") }).
		First(&s, "id = ?", id).Error
	return &s, err
}

func (r *saleRepo) PublicIDExists(ctx context.Context, publicID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Sale{}).Where("public_id = ?", publicID).Count(&n).Error
	return n > 0, err
}

func (r *saleRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status model.SaleStatus) error {
	return on(ctx, r.db, tx).Model(&model.Sale{}).Where("id = ?", id).Update("status", status).Error
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Sale{})

	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if filter.DateFrom != "" {
		q = q.Where("DATE(created_at) >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		q = q.Where("DATE(created_at) <= ?", filter.DateTo)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Promissory").
		Order("created_at DESC").
		Offset(offset(filter.Page, filter.Limit)).Limit(filter.Limit).
		Find(&sales).Error

	return sales, total, err
}

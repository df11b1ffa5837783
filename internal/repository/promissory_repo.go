package repository

import (
	"context"

	"github.com/leodymann/wi-api/internal/dto"
	"github.com/leodymann/wi-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PromissoryRepository interface {
	// Create inserts the promissory together with its installments.
	Create(ctx context.Context, tx *gorm.DB, p *model.Promissory) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Promissory, error)
	PublicIDExists(ctx context.Context, publicID string) (bool, error)
	List(ctx context.Context, filter dto.PromissoryFilter) ([]model.Promissory, int64, error)

	// LockWithInstallments takes a row lock on the promissory and loads its
	// installments and sale. Concurrent payments of sibling installments
	// serialise on this lock.
	LockWithInstallments(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Promissory, error)
	SaveStatus(ctx context.Context, tx *gorm.DB, p *model.Promissory) error

	DB() *gorm.DB
}

type promissoryRepo struct{ db *gorm.DB }

func NewPromissoryRepository(db *gorm.DB) PromissoryRepository { return &promissoryRepo{db: db} }

func (r *promissoryRepo) DB() *gorm.DB { return r.db }

func byNumber(db *gorm.DB) *gorm.DB { return db.Order("number ASC") }

func (r *promissoryRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Promissory) error {
	return on(ctx, r.db, tx).Omit("Sale", "Client", "Product").Create(p).Error
}

func (r *promissoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Promissory, error) {
	var p model.Promissory
	err := r.db.WithContext(ctx).
		Preload("Installments", byNumber).
		Preload("Client").
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *promissoryRepo) PublicIDExists(ctx context.Context, publicID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Promissory{}).Where("public_id = ?", publicID).Count(&n).Error
	return n > 0, err
}

func (r *promissoryRepo) List(ctx context.Context, filter dto.PromissoryFilter) ([]model.Promissory, int64, error) {
	var items []model.Promissory
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Promissory{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Installments", byNumber).
		Order("created_at DESC").
		Offset(offset(filter.Page, filter.Limit)).Limit(filter.Limit).
		Find(&items).Error
	return items, total, err
}

func (r *promissoryRepo) LockWithInstallments(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Promissory, error) {
	var p model.Promissory
	db := on(ctx, r.db, tx)
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := db.Where("promissory_id = ?", p.ID).Order("number ASC").Find(&p.Installments).Error; err != nil {
		return nil, err
	}
	if p.SaleID != nil {
		var s model.Sale
		if err := db.First(&s, "id = ?", *p.SaleID).Error; err != nil {
			return nil, err
		}
		p.Sale = &s
	}
	return &p, nil
}

func (r *promissoryRepo) SaveStatus(ctx context.Context, tx *gorm.DB, p *model.Promissory) error {
	return on(ctx, r.db, tx).Model(&model.Promissory{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{"status": p.Status, "issued_at": p.IssuedAt}).Error
}

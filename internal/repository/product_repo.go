package repository

import (
	"context"

	"github.com/leodymann/wi-api/internal/dto"
	"github.com/leodymann/wi-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository defines the data access contract for vehicles in stock.
// Services depend on this interface, not on the concrete GORM implementation.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	AddImage(ctx context.Context, img *model.ProductImage) error

	// Used inside transactions: callers pass the tx instance.
	LockForSale(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status model.ProductStatus) error

	// OfferCandidates returns the newest IN_STOCK products that have at least
	// one image, with images loaded.
	OfferCandidates(ctx context.Context, limit int) ([]model.Product, error)

	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		q = q.Where("brand ILIKE ? OR model ILIKE ? OR plate ILIKE ? OR chassi ILIKE ?", like, like, like, like)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC").
		Offset(offset(filter.Page, filter.Limit)).Limit(filter.Limit).
		Find(&products).Error
	return products, total, err
}

func (r *productRepo) AddImage(ctx context.Context, img *model.ProductImage) error {
	return r.db.WithContext(ctx).Create(img).Error
}

func (r *productRepo) LockForSale(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := on(ctx, r.db, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status model.ProductStatus) error {
	return on(ctx, r.db, tx).Model(&model.Product{}).Where("id = ?", id).Update("status", status).Error
}

func (r *productRepo) OfferCandidates(ctx context.Context, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("status = ?", model.ProductInStock).
		Where("EXISTS (SELECT 1 FROM product_images pi WHERE pi.product_id = products.id AND pi.url <> '')").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("created_at DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

package service_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/leodymann/wi-api/internal/dto"
	"github.com/leodymann/wi-api/internal/model"
	"github.com/leodymann/wi-api/internal/repository"
	"github.com/leodymann/wi-api/internal/service"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── In-memory store ───────────────────────────────────────────────────────────

// memStore backs every stub repository so cross-aggregate lookups (a sale
// and its promissory) see the same rows.
type memStore struct {
	users        map[uuid.UUID]*model.User
	clients      map[uuid.UUID]*model.Client
	products     map[uuid.UUID]*model.Product
	sales        map[uuid.UUID]*model.Sale
	promissories map[uuid.UUID]*model.Promissory
	finances     map[uuid.UUID]*model.Finance

	billingSaves int
	statusSaves  int
	failSale     error
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[uuid.UUID]*model.User),
		clients:      make(map[uuid.UUID]*model.Client),
		products:     make(map[uuid.UUID]*model.Product),
		sales:        make(map[uuid.UUID]*model.Sale),
		promissories: make(map[uuid.UUID]*model.Promissory),
		finances:     make(map[uuid.UUID]*model.Finance),
	}
}

func (m *memStore) addClient(name, phone string) *model.Client {
	c := &model.Client{ID: uuid.New(), Name: name, Phone: phone}
	m.clients[c.ID] = c
	return c
}

func (m *memStore) addProduct(status model.ProductStatus) *model.Product {
	p := &model.Product{
		ID: uuid.New(), Brand: "Honda", Model: "CG 160", Year: 2022,
		Chassi: "9C2KC2200NR000001", Km: 12000, Color: "Vermelha", Status: status,
	}
	m.products[p.ID] = p
	return p
}

func (m *memStore) promissoryOfSale(id uuid.UUID) *model.Promissory {
	for _, p := range m.promissories {
		if p.SaleID != nil && *p.SaleID == id {
			return p
		}
	}
	return nil
}

// ── Users ─────────────────────────────────────────────────────────────────────

type stubUserRepo struct{ s *memStore }

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.s.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) && u.Active {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.s.users[u.ID] = u
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

// ── Clients ───────────────────────────────────────────────────────────────────

type stubClientRepo struct{ s *memStore }

func (r *stubClientRepo) Create(_ context.Context, c *model.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.s.clients[c.ID] = c
	return nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := r.s.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubClientRepo) List(_ context.Context, _ dto.ClientFilter) ([]model.Client, int64, error) {
	var out []model.Client
	for _, c := range r.s.clients {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubClientRepo) Update(_ context.Context, c *model.Client) error {
	r.s.clients[c.ID] = c
	return nil
}

var _ repository.ClientRepository = (*stubClientRepo)(nil)

// ── Products ──────────────────────────────────────────────────────────────────

type stubProductRepo struct{ s *memStore }

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.s.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.s.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) AddImage(_ context.Context, img *model.ProductImage) error {
	p, ok := r.s.products[img.ProductID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	img.ID = uuid.New()
	p.Images = append(p.Images, *img)
	return nil
}

func (r *stubProductRepo) LockForSale(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *stubProductRepo) UpdateStatus(_ context.Context, _ *gorm.DB, id uuid.UUID, status model.ProductStatus) error {
	p, ok := r.s.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = status
	return nil
}

func (r *stubProductRepo) OfferCandidates(_ context.Context, _ int) ([]model.Product, error) {
	return nil, nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── Sales ─────────────────────────────────────────────────────────────────────

type stubSaleRepo struct{ s *memStore }

func (r *stubSaleRepo) Create(_ context.Context, _ *gorm.DB, sale *model.Sale) error {
	if r.s.failSale != nil {
		return r.s.failSale
	}
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	r.s.sales[sale.ID] = sale
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	sale, ok := r.s.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	sale.Promissory = r.s.promissoryOfSale(id)
	return sale, nil
}

func (r *stubSaleRepo) PublicIDExists(_ context.Context, publicID string) (bool, error) {
	for _, sale := range r.s.sales {
		if sale.PublicID == publicID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubSaleRepo) UpdateStatus(_ context.Context, _ *gorm.DB, id uuid.UUID, status model.SaleStatus) error {
	sale, ok := r.s.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sale.Status = status
	return nil
}

func (r *stubSaleRepo) List(_ context.Context, _ dto.SaleFilter) ([]model.Sale, int64, error) {
	var out []model.Sale
	for _, sale := range r.s.sales {
		out = append(out, *sale)
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

// ── Promissories ──────────────────────────────────────────────────────────────

type stubPromissoryRepo struct{ s *memStore }

func (r *stubPromissoryRepo) Create(_ context.Context, _ *gorm.DB, p *model.Promissory) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for i := range p.Installments {
		p.Installments[i].ID = uuid.New()
		p.Installments[i].PromissoryID = p.ID
	}
	r.s.promissories[p.ID] = p
	return nil
}

func (r *stubPromissoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Promissory, error) {
	p, ok := r.s.promissories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubPromissoryRepo) PublicIDExists(_ context.Context, publicID string) (bool, error) {
	for _, p := range r.s.promissories {
		if p.PublicID == publicID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubPromissoryRepo) List(_ context.Context, _ dto.PromissoryFilter) ([]model.Promissory, int64, error) {
	var out []model.Promissory
	for _, p := range r.s.promissories {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubPromissoryRepo) LockWithInstallments(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Promissory, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.SaleID != nil {
		p.Sale = r.s.sales[*p.SaleID]
	}
	return p, nil
}

func (r *stubPromissoryRepo) SaveStatus(_ context.Context, _ *gorm.DB, p *model.Promissory) error {
	r.s.statusSaves++
	r.s.promissories[p.ID].Status = p.Status
	r.s.promissories[p.ID].IssuedAt = p.IssuedAt
	return nil
}

func (r *stubPromissoryRepo) DB() *gorm.DB { return nil }

var _ repository.PromissoryRepository = (*stubPromissoryRepo)(nil)

// ── Installments ──────────────────────────────────────────────────────────────

type stubInstallmentRepo struct{ s *memStore }

func (r *stubInstallmentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Installment, error) {
	for _, p := range r.s.promissories {
		for i := range p.Installments {
			if p.Installments[i].ID == id {
				return &p.Installments[i], nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubInstallmentRepo) List(_ context.Context, _ dto.InstallmentFilter) ([]model.Installment, int64, error) {
	var out []model.Installment
	for _, p := range r.s.promissories {
		out = append(out, p.Installments...)
	}
	return out, int64(len(out)), nil
}

func (r *stubInstallmentRepo) SaveBilling(_ context.Context, _ *gorm.DB, _ *model.Installment) error {
	r.s.billingSaves++
	return nil
}

var _ repository.InstallmentRepository = (*stubInstallmentRepo)(nil)

// ── Finance ───────────────────────────────────────────────────────────────────

type stubFinanceRepo struct{ s *memStore }

func (r *stubFinanceRepo) Create(_ context.Context, f *model.Finance) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	r.s.finances[f.ID] = f
	return nil
}

func (r *stubFinanceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Finance, error) {
	f, ok := r.s.finances[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return f, nil
}

func (r *stubFinanceRepo) List(_ context.Context, _ dto.FinanceFilter) ([]model.Finance, int64, error) {
	var out []model.Finance
	for _, f := range r.s.finances {
		out = append(out, *f)
	}
	return out, int64(len(out)), nil
}

func (r *stubFinanceRepo) Update(_ context.Context, f *model.Finance) error {
	r.s.finances[f.ID] = f
	return nil
}

var _ repository.FinanceRepository = (*stubFinanceRepo)(nil)

// ── ID reserver ───────────────────────────────────────────────────────────────

type stubReserver struct {
	mu       sync.Mutex
	held     map[string]bool
	released []string
}

func newStubReserver() *stubReserver { return &stubReserver{held: make(map[string]bool)} }

func (r *stubReserver) Reserve(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.held[id] {
		return false, nil
	}
	r.held[id] = true
	return true, nil
}

func (r *stubReserver) Release(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.held, id)
	r.released = append(r.released, id)
	return nil
}

var _ service.IDReserver = (*stubReserver)(nil)

// fixedClock pins service time.
func fixedClock(t time.Time) service.Clock { return func() time.Time { return t } }

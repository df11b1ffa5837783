package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/leodymann/wi-api/internal/apperr"
	"github.com/leodymann/wi-api/internal/billing"
	"github.com/leodymann/wi-api/internal/dto"
	"github.com/leodymann/wi-api/internal/model"
	"github.com/leodymann/wi-api/internal/money"
	"github.com/leodymann/wi-api/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// IDReserver holds a public id while the transaction that inserts it is
// open, so concurrent creators never draw the same value. Release is called
// when the transaction rolls back.
type IDReserver interface {
	Reserve(ctx context.Context, id string) (bool, error)
	Release(ctx context.Context, id string) error
}

type SaleService interface {
	Create(ctx context.Context, sellerID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	Get(ctx context.Context, id string) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	UpdateStatus(ctx context.Context, id string, req dto.UpdateSaleStatusRequest) (*dto.SaleResponse, error)
}

type saleService struct {
	repo       repository.SaleRepository
	products   repository.ProductRepository
	clients    repository.ClientRepository
	promissory repository.PromissoryRepository
	reserver   IDReserver
	clock      Clock
}

// NewSaleService wires the sale unit of work. reserver may be nil.
func NewSaleService(
	repo repository.SaleRepository,
	products repository.ProductRepository,
	clients repository.ClientRepository,
	promissory repository.PromissoryRepository,
	reserver IDReserver,
	clock Clock,
) SaleService {
	return &saleService{
		repo:       repo,
		products:   products,
		clients:    clients,
		promissory: promissory,
		reserver:   reserver,
		clock:      clock,
	}
}

// ── Create ────────────────────────────────────────────────────────────────────
// One transaction:
//   1. lock the product row and check it can be sold
//   2. snapshot the product onto the sale
//   3. insert the sale, and for PROMISSORY the promissory and its schedule
//   4. mark the product SOLD
// Public ids reserved outside the database are released if anything fails.

func (s *saleService) Create(ctx context.Context, sellerID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	const op = "sale.create"

	clientID, err := parseID(op, "client_id", req.ClientID)
	if err != nil {
		return nil, err
	}
	productID, err := parseID(op, "product_id", req.ProductID)
	if err != nil {
		return nil, err
	}
	paymentType := model.PaymentType(req.PaymentType)
	if !paymentType.IsValid() {
		return nil, apperr.InvalidArgument(op, "payment_type inválido")
	}
	firstDue, err := parseDate(op, "first_due_date", req.FirstDueDate)
	if err != nil {
		return nil, err
	}

	total := money.Round2(req.Total)
	discount := money.Round2(req.Discount)
	entry := money.Round2(req.EntryAmount)
	if err := validateSaleAmounts(op, total, discount, entry); err != nil {
		return nil, err
	}

	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, notFound(err, op, "cliente")
	}

	now := s.clock.now()

	var plan *billing.Plan
	if paymentType == model.PaymentPromissory {
		if req.InstallmentsCount == nil {
			return nil, apperr.InvalidArgument(op, "installments_count é obrigatório para PROMISSORY")
		}
		plan = &billing.Plan{
			SaleDate:     now,
			Total:        total,
			Discount:     discount,
			Entry:        entry,
			Installments: *req.InstallmentsCount,
			FirstDue:     firstDue,
			Principal:    req.Principal,
			DailyFee:     req.DailyFee,
		}
		if err := plan.Validate(); err != nil {
			return nil, err
		}
	}

	var comps compensations
	var saleID uuid.UUID
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		product, err := s.products.LockForSale(ctx, tx, productID)
		if err != nil {
			return notFound(err, op, "produto")
		}
		if !product.Status.Sellable() {
			return apperr.Conflict(op, "produto não está disponível (precisa estar IN_STOCK ou RESERVED)")
		}

		publicID, err := s.publicID(ctx, money.SalePrefix, s.repo.PublicIDExists, &comps)
		if err != nil {
			return err
		}

		sale := &model.Sale{
			PublicID:    publicID,
			ClientID:    clientID,
			SellerID:    sellerID,
			Total:       total,
			Discount:    discount,
			EntryAmount: entry,
			PaymentType: paymentType,
			Status:      model.SaleDraft,
		}
		if req.EntryPaymentMethod != nil {
			m := model.EntryMethod(*req.EntryPaymentMethod)
			sale.EntryPaymentMethod = &m
		}
		sale.SnapshotProduct(product)
		if err := s.repo.Create(ctx, tx, sale); err != nil {
			return apperr.Wrap(apperr.KindInternal, op, err)
		}
		saleID = sale.ID

		if plan != nil {
			p, err := s.buildPromissory(ctx, *plan, &comps)
			if err != nil {
				return err
			}
			p.SaleID = &sale.ID
			p.ClientID = clientID
			p.ProductID = &product.ID
			p.Snapshot = promissorySnapshot(sale.PublicID, client, product, p)
			if err := s.promissory.Create(ctx, tx, p); err != nil {
				return apperr.Wrap(apperr.KindInternal, op, err)
			}
		}

		return s.products.UpdateStatus(ctx, tx, product.ID, model.ProductSold)
	})
	if err != nil {
		comps.run(context.WithoutCancel(ctx))
		return nil, err
	}

	log.Info().Str("sale_id", saleID.String()).Str("payment_type", string(paymentType)).Msg("sale: created")
	return s.Get(ctx, saleID.String())
}

func (s *saleService) Get(ctx context.Context, id string) (*dto.SaleResponse, error) {
	const op = "sale.get"
	uid, err := parseID(op, "id", id)
	if err != nil {
		return nil, err
	}
	sale, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, notFound(err, op, "venda")
	}
	resp := saleToResponse(sale)
	return &resp, nil
}

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	sales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SaleResponse, len(sales))
	for i := range sales {
		data[i] = saleToResponse(&sales[i])
	}
	return &dto.SaleListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *saleService) UpdateStatus(ctx context.Context, id string, req dto.UpdateSaleStatusRequest) (*dto.SaleResponse, error) {
	const op = "sale.update_status"
	uid, err := parseID(op, "id", id)
	if err != nil {
		return nil, err
	}
	sale, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, notFound(err, op, "venda")
	}
	changed, err := billing.TransitionSale(sale, model.SaleStatus(req.Status))
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.repo.UpdateStatus(ctx, nil, sale.ID, sale.Status); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, op, err)
		}
	}
	resp := saleToResponse(sale)
	return &resp, nil
}

// buildPromissory prices plan into a DRAFT promissory with its installments.
func (s *saleService) buildPromissory(ctx context.Context, plan billing.Plan, comps *compensations) (*model.Promissory, error) {
	schedule, err := billing.BuildSchedule(plan)
	if err != nil {
		return nil, err
	}
	publicID, err := s.publicID(ctx, money.PromissoryPrefix, s.promissory.PublicIDExists, comps)
	if err != nil {
		return nil, err
	}
	return newPromissory(publicID, plan, schedule), nil
}

func (s *saleService) publicID(ctx context.Context, prefix string, exists money.ExistsFunc, comps *compensations) (string, error) {
	return reservePublicID(ctx, prefix, exists, s.reserver, comps)
}

// reservePublicID draws a unique public id. With a reserver the id is also
// held outside the database and a release is queued on comps.
func reservePublicID(ctx context.Context, prefix string, exists money.ExistsFunc, reserver IDReserver, comps *compensations) (string, error) {
	check := exists
	if reserver != nil {
		check = func(ctx context.Context, id string) (bool, error) {
			taken, err := exists(ctx, id)
			if err != nil || taken {
				return taken, err
			}
			ok, err := reserver.Reserve(ctx, id)
			if err != nil {
				return false, err
			}
			if ok {
				comps.add(func(ctx context.Context) error { return reserver.Release(ctx, id) })
			}
			return !ok, nil
		}
	}
	id, err := money.UniquePublicID(ctx, prefix, check)
	if errors.Is(err, money.ErrPublicIDExhausted) {
		return "", apperr.Conflict("public_id", "não foi possível gerar um código único para %s", prefix)
	}
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "public_id", err)
	}
	return id, nil
}

func newPromissory(publicID string, plan billing.Plan, schedule *billing.Schedule) *model.Promissory {
	p := &model.Promissory{
		PublicID:     publicID,
		Total:        schedule.Principal,
		EntryAmount:  money.Round2(plan.Entry),
		DailyFee:     money.Round2(plan.DailyFee),
		Status:       model.PromissoryDraft,
		Installments: make([]model.Installment, len(schedule.Lines)),
	}
	for i, line := range schedule.Lines {
		p.Installments[i] = model.Installment{
			Number:   line.Number,
			DueDate:  line.DueDate,
			Amount:   line.Amount,
			Status:   model.InstallmentPending,
			LateFee:  decimal.Zero,
			DueSoon:  model.NewSendState(),
			DueToday: model.NewSendState(),
			Overdue:  model.NewSendState(),
		}
	}
	return p
}

func promissorySnapshot(salePublicID string, client *model.Client, product *model.Product, p *model.Promissory) datatypes.JSON {
	snap := model.PromissorySnapshot{
		SalePublicID:     salePublicID,
		ClientName:       client.Name,
		ClientPhone:      client.Phone,
		Principal:        p.Total.StringFixed(2),
		InstallmentCount: len(p.Installments),
	}
	if product != nil {
		snap.ProductLabel = product.Label()
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func validateSaleAmounts(op string, total, discount, entry decimal.Decimal) error {
	switch {
	case !total.IsPositive():
		return apperr.InvalidArgument(op, "total deve ser maior que zero")
	case discount.IsNegative():
		return apperr.InvalidArgument(op, "desconto não pode ser negativo")
	case entry.IsNegative():
		return apperr.InvalidArgument(op, "entrada não pode ser negativa")
	case entry.GreaterThan(total):
		return apperr.InvalidArgument(op, "entrada maior que o total")
	case discount.GreaterThan(total):
		return apperr.InvalidArgument(op, "desconto maior que o total")
	}
	return nil
}

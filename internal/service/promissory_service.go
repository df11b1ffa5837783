package service

import (
	"context"

	"github.com/leodymann/wi-api/internal/apperr"
	"github.com/leodymann/wi-api/internal/billing"
	"github.com/leodymann/wi-api/internal/dto"
	"github.com/leodymann/wi-api/internal/model"
	"github.com/leodymann/wi-api/internal/money"
	"github.com/leodymann/wi-api/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type PromissoryService interface {
	Create(ctx context.Context, req dto.CreatePromissoryRequest) (*dto.PromissoryResponse, error)
	Get(ctx context.Context, id string) (*dto.PromissoryResponse, error)
	List(ctx context.Context, filter dto.PromissoryFilter) (*dto.PromissoryListResponse, error)
	Issue(ctx context.Context, id string) (*dto.PromissoryResponse, error)
	Cancel(ctx context.Context, id string) (*dto.PromissoryResponse, error)
}

type promissoryService struct {
	repo         repository.PromissoryRepository
	installments repository.InstallmentRepository
	clients      repository.ClientRepository
	products     repository.ProductRepository
	reserver     IDReserver
	clock        Clock
}

func NewPromissoryService(
	repo repository.PromissoryRepository,
	installments repository.InstallmentRepository,
	clients repository.ClientRepository,
	products repository.ProductRepository,
	reserver IDReserver,
	clock Clock,
) PromissoryService {
	return &promissoryService{
		repo:         repo,
		installments: installments,
		clients:      clients,
		products:     products,
		reserver:     reserver,
		clock:        clock,
	}
}

// Create registers a promissory that is not backed by a sale. The explicit
// principal is what gets split into installments.
func (s *promissoryService) Create(ctx context.Context, req dto.CreatePromissoryRequest) (*dto.PromissoryResponse, error) {
	const op = "promissory.create"

	clientID, err := parseID(op, "client_id", req.ClientID)
	if err != nil {
		return nil, err
	}
	firstDue, err := parseDate(op, "first_due_date", req.FirstDueDate)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, notFound(err, op, "cliente")
	}

	var product *model.Product
	if req.ProductID != nil && *req.ProductID != "" {
		pid, err := parseID(op, "product_id", *req.ProductID)
		if err != nil {
			return nil, err
		}
		if product, err = s.products.FindByID(ctx, pid); err != nil {
			return nil, notFound(err, op, "produto")
		}
	}

	now := s.clock.now()
	principal := money.Round2(req.Principal)
	entry := money.Round2(req.EntryAmount)
	if entry.GreaterThan(principal) {
		return nil, apperr.InvalidArgument(op, "entrada maior que o principal")
	}
	plan := billing.Plan{
		SaleDate:     now,
		Total:        principal.Add(entry),
		Entry:        entry,
		Installments: req.InstallmentsCount,
		FirstDue:     firstDue,
		Principal:    &principal,
		DailyFee:     req.DailyFee,
	}
	schedule, err := billing.BuildSchedule(plan)
	if err != nil {
		return nil, err
	}

	var comps compensations
	var created *model.Promissory
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		publicID, err := reservePublicID(ctx, money.PromissoryPrefix, s.repo.PublicIDExists, s.reserver, &comps)
		if err != nil {
			return err
		}
		p := newPromissory(publicID, plan, schedule)
		p.ClientID = clientID
		if product != nil {
			p.ProductID = &product.ID
		}
		p.Snapshot = promissorySnapshot("", client, product, p)
		if req.Issue {
			if _, err := billing.IssuePromissory(p, now); err != nil {
				return err
			}
		}
		if err := s.repo.Create(ctx, tx, p); err != nil {
			return apperr.Wrap(apperr.KindInternal, op, err)
		}
		created = p
		return nil
	})
	if err != nil {
		comps.run(context.WithoutCancel(ctx))
		return nil, err
	}

	log.Info().Str("promissory_id", created.ID.String()).Int("installments", len(created.Installments)).Msg("promissory: created")
	return s.Get(ctx, created.ID.String())
}

func (s *promissoryService) Get(ctx context.Context, id string) (*dto.PromissoryResponse, error) {
	const op = "promissory.get"
	uid, err := parseID(op, "id", id)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, notFound(err, op, "promissória")
	}
	resp := promissoryToResponse(p)
	return &resp, nil
}

func (s *promissoryService) List(ctx context.Context, filter dto.PromissoryFilter) (*dto.PromissoryListResponse, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.PromissoryResponse, len(items))
	for i := range items {
		data[i] = promissoryToResponse(&items[i])
	}
	return &dto.PromissoryListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *promissoryService) Issue(ctx context.Context, id string) (*dto.PromissoryResponse, error) {
	const op = "promissory.issue"
	uid, err := parseID(op, "id", id)
	if err != nil {
		return nil, err
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.LockWithInstallments(ctx, tx, uid)
		if err != nil {
			return notFound(err, op, "promissória")
		}
		changed, err := billing.IssuePromissory(p, s.clock.now())
		if err != nil || !changed {
			return err
		}
		return s.repo.SaveStatus(ctx, tx, p)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Cancel cancels the promissory and its pending installments together.
func (s *promissoryService) Cancel(ctx context.Context, id string) (*dto.PromissoryResponse, error) {
	const op = "promissory.cancel"
	uid, err := parseID(op, "id", id)
	if err != nil {
		return nil, err
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.LockWithInstallments(ctx, tx, uid)
		if err != nil {
			return notFound(err, op, "promissória")
		}
		changed, insts, err := billing.CancelPromissory(p)
		if err != nil || !changed {
			return err
		}
		for _, inst := range insts {
			if err := s.installments.SaveBilling(ctx, tx, inst); err != nil {
				return apperr.Wrap(apperr.KindInternal, op, err)
			}
		}
		return s.repo.SaveStatus(ctx, tx, p)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("promissory_id", uid.String()).Msg("promissory: canceled")
	return s.Get(ctx, id)
}

package service

import (
	"context"
	"strings"

	"github.com/leodymann/wi-api/internal/apperr"
	"github.com/leodymann/wi-api/internal/billing"
	"github.com/leodymann/wi-api/internal/dto"
	"github.com/leodymann/wi-api/internal/model"
	"github.com/leodymann/wi-api/internal/money"
	"github.com/leodymann/wi-api/internal/repository"
)

// FinanceService manages payables. The wpp notice state is owned by the
// dispatcher; edits here never reset it.
type FinanceService interface {
	Create(ctx context.Context, req dto.CreateFinanceRequest) (*dto.FinanceResponse, error)
	Get(ctx context.Context, id string) (*dto.FinanceResponse, error)
	List(ctx context.Context, filter dto.FinanceFilter) (*dto.FinanceListResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateFinanceRequest) (*dto.FinanceResponse, error)
	Pay(ctx context.Context, id string) (*dto.FinanceResponse, error)
}

type financeService struct {
	repo  repository.FinanceRepository
	clock Clock
}

func NewFinanceService(repo repository.FinanceRepository, clock Clock) FinanceService {
	return &financeService{repo: repo, clock: clock}
}

func (s *financeService) Create(ctx context.Context, req dto.CreateFinanceRequest) (*dto.FinanceResponse, error) {
	const op = "finance.create"
	due, err := parseDate(op, "due_date", &req.DueDate)
	if err != nil {
		return nil, err
	}
	if due == nil {
		return nil, apperr.InvalidArgument(op, "due_date é obrigatório")
	}
	if !req.Amount.IsPositive() {
		return nil, apperr.InvalidArgument(op, "valor deve ser maior que zero")
	}
	f := &model.Finance{
		Company:     strings.TrimSpace(req.Company),
		Amount:      money.Round2(req.Amount),
		DueDate:     *due,
		Status:      model.FinancePending,
		Description: req.Description,
		Notes:       req.Notes,
		Notice:      model.NewSendState(),
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, op, err)
	}
	resp := financeToResponse(f)
	return &resp, nil
}

func (s *financeService) Get(ctx context.Context, id string) (*dto.FinanceResponse, error) {
	f, err := s.load(ctx, "finance.get", id)
	if err != nil {
		return nil, err
	}
	resp := financeToResponse(f)
	return &resp, nil
}

func (s *financeService) List(ctx context.Context, filter dto.FinanceFilter) (*dto.FinanceListResponse, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.FinanceResponse, len(items))
	for i := range items {
		data[i] = financeToResponse(&items[i])
	}
	return &dto.FinanceListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *financeService) Update(ctx context.Context, id string, req dto.UpdateFinanceRequest) (*dto.FinanceResponse, error) {
	const op = "finance.update"
	f, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}

	if req.Company != nil {
		f.Company = strings.TrimSpace(*req.Company)
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, apperr.InvalidArgument(op, "valor deve ser maior que zero")
		}
		f.Amount = money.Round2(*req.Amount)
	}
	if req.DueDate != nil {
		due, err := parseDate(op, "due_date", req.DueDate)
		if err != nil {
			return nil, err
		}
		if due != nil {
			f.DueDate = *due
		}
	}
	if req.Description != nil {
		f.Description = req.Description
	}
	if req.Notes != nil {
		f.Notes = req.Notes
	}
	if req.Status != nil {
		if _, err := billing.TransitionFinance(f, model.FinanceStatus(strings.ToUpper(*req.Status)), s.clock.now()); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, f); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, op, err)
	}
	resp := financeToResponse(f)
	return &resp, nil
}

// Pay is idempotent: paying a PAID payable returns it unchanged.
func (s *financeService) Pay(ctx context.Context, id string) (*dto.FinanceResponse, error) {
	const op = "finance.pay"
	f, err := s.load(ctx, op, id)
	if err != nil {
		return nil, err
	}
	changed, err := billing.PayFinance(f, s.clock.now())
	if err != nil {
		return nil, err
	}
	if changed {
		if err := s.repo.Update(ctx, f); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, op, err)
		}
	}
	resp := financeToResponse(f)
	return &resp, nil
}

func (s *financeService) load(ctx context.Context, op, id string) (*model.Finance, error) {
	uid, err := parseID(op, "id", id)
	if err != nil {
		return nil, err
	}
	f, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, notFound(err, op, "conta")
	}
	return f, nil
}

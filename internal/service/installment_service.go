package service

import (
	"context"
	"time"

	"github.com/leodymann/wi-api/internal/apperr"
	"github.com/leodymann/wi-api/internal/billing"
	"github.com/leodymann/wi-api/internal/dto"
	"github.com/leodymann/wi-api/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type InstallmentService interface {
	Pay(ctx context.Context, id string, req dto.PayInstallmentRequest) (*dto.InstallmentResponse, error)
	List(ctx context.Context, filter dto.InstallmentFilter) (*dto.InstallmentListResponse, error)
}

type installmentService struct {
	repo       repository.InstallmentRepository
	promissory repository.PromissoryRepository
	sales      repository.SaleRepository
	loc        *time.Location
	clock      Clock
}

// NewInstallmentService builds the payment path. loc decides the local
// calendar day used for late-day counting.
func NewInstallmentService(
	repo repository.InstallmentRepository,
	promissory repository.PromissoryRepository,
	sales repository.SaleRepository,
	loc *time.Location,
	clock Clock,
) InstallmentService {
	return &installmentService{repo: repo, promissory: promissory, sales: sales, loc: loc, clock: clock}
}

// ── Pay ───────────────────────────────────────────────────────────────────────
// The promissory row is locked for the whole transaction so payments of
// sibling installments serialise and the cascade sees every installment.

func (s *installmentService) Pay(ctx context.Context, id string, req dto.PayInstallmentRequest) (*dto.InstallmentResponse, error) {
	const op = "installment.pay"
	uid, err := parseID(op, "id", id)
	if err != nil {
		return nil, err
	}
	inst, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, notFound(err, op, "parcela")
	}

	var resp dto.InstallmentResponse
	err = runTx(ctx, s.promissory.DB(), func(tx *gorm.DB) error {
		p, err := s.promissory.LockWithInstallments(ctx, tx, inst.PromissoryID)
		if err != nil {
			return notFound(err, op, "promissória")
		}
		res, err := billing.ApplyPayment(p, billing.Payment{
			InstallmentID: uid,
			Amount:        req.Amount,
			Note:          req.Note,
			Now:           s.clock.now(),
			Location:      s.loc,
		})
		if err != nil {
			return err
		}
		resp = installmentToResponse(res.Installment)
		if res.AlreadyPaid {
			return nil
		}

		if err := s.repo.SaveBilling(ctx, tx, res.Installment); err != nil {
			return apperr.Wrap(apperr.KindInternal, op, err)
		}
		if res.PromissoryChanged {
			if err := s.promissory.SaveStatus(ctx, tx, p); err != nil {
				return apperr.Wrap(apperr.KindInternal, op, err)
			}
		}
		if res.SaleChanged && p.Sale != nil {
			if err := s.sales.UpdateStatus(ctx, tx, p.Sale.ID, p.Sale.Status); err != nil {
				return apperr.Wrap(apperr.KindInternal, op, err)
			}
		}

		log.Info().
			Str("installment_id", uid.String()).
			Str("promissory_id", p.ID.String()).
			Int("late_days", res.Installment.LateDays).
			Bool("promissory_paid", res.PromissoryChanged).
			Bool("sale_confirmed", res.SaleChanged).
			Msg("installment: paid")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *installmentService) List(ctx context.Context, filter dto.InstallmentFilter) (*dto.InstallmentListResponse, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.InstallmentResponse, len(items))
	for i := range items {
		data[i] = installmentToResponse(&items[i])
	}
	return &dto.InstallmentListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

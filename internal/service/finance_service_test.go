package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/leodymann/wi-api/internal/apperr"
	"github.com/leodymann/wi-api/internal/dto"
	"github.com/leodymann/wi-api/internal/model"
	"github.com/leodymann/wi-api/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createFinance(t *testing.T, svc service.FinanceService) *dto.FinanceResponse {
	t.Helper()
	desc := "Boleto fornecedor"
	resp, err := svc.Create(context.Background(), dto.CreateFinanceRequest{
		Company:     "Moto Peças LTDA",
		Amount:      decimal.RequireFromString("1250.456"),
		DueDate:     "2024-03-10",
		Description: &desc,
	})
	require.NoError(t, err)
	return resp
}

func TestFinanceCreate(t *testing.T) {
	st := newMemStore()
	svc := service.NewFinanceService(&stubFinanceRepo{st}, fixedClock(saleDay))

	resp := createFinance(t, svc)
	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, "1250.46", resp.Amount.String())
	assert.Equal(t, "2024-03-10", resp.DueDate)
	assert.Equal(t, "PENDING", resp.Notice.Status)

	_, err := svc.Create(context.Background(), dto.CreateFinanceRequest{
		Company: "X", Amount: decimal.NewFromInt(10), DueDate: "10/03/2024",
	})
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestFinancePay_IdempotentAndKeepsNotice(t *testing.T) {
	st := newMemStore()
	svc := service.NewFinanceService(&stubFinanceRepo{st}, fixedClock(saleDay))
	created := createFinance(t, svc)

	f := st.finances[uuid.MustParse(created.ID)]
	sentAt := saleDay.Add(-time.Hour)
	f.Notice.MarkSent(sentAt)

	first, err := svc.Pay(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "PAID", first.Status)
	require.NotNil(t, first.PaidAt)
	assert.Equal(t, "SENT", first.Notice.Status)

	second, err := svc.Pay(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, first.PaidAt, second.PaidAt)
}

func TestFinanceUpdate_StatusThroughTransitions(t *testing.T) {
	st := newMemStore()
	svc := service.NewFinanceService(&stubFinanceRepo{st}, fixedClock(saleDay))
	created := createFinance(t, svc)

	canceled := "CANCELED"
	company := "Outra Empresa"
	resp, err := svc.Update(context.Background(), created.ID, dto.UpdateFinanceRequest{Status: &canceled, Company: &company})
	require.NoError(t, err)
	assert.Equal(t, "CANCELED", resp.Status)
	assert.Equal(t, "Outra Empresa", resp.Company)

	paid := "PAID"
	_, err = svc.Update(context.Background(), created.ID, dto.UpdateFinanceRequest{Status: &paid})
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))

	_, err = svc.Pay(context.Background(), created.ID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, model.FinanceCanceled, st.finances[uuid.MustParse(created.ID)].Status)
}

func TestFinanceGet_NotFound(t *testing.T) {
	svc := service.NewFinanceService(&stubFinanceRepo{newMemStore()}, nil)
	_, err := svc.Get(context.Background(), uuid.NewString())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

package service_test

import (
	"context"
	"errors"
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

var saleDay = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func buildSaleSvc(st *memStore, reserver service.IDReserver) service.SaleService {
	return service.NewSaleService(
		&stubSaleRepo{st}, &stubProductRepo{st}, &stubClientRepo{st}, &stubPromissoryRepo{st},
		reserver, fixedClock(saleDay),
	)
}

func promissorySale(client, product uuid.UUID, n int) dto.CreateSaleRequest {
	return dto.CreateSaleRequest{
		ClientID:          client.String(),
		ProductID:         product.String(),
		Total:             decimal.NewFromInt(2000),
		EntryAmount:       decimal.NewFromInt(200),
		PaymentType:       string(model.PaymentPromissory),
		InstallmentsCount: &n,
	}
}

func TestSaleCreate_PromissoryScheduleAndSnapshot(t *testing.T) {
	st := newMemStore()
	client := st.addClient("Maria", "85999990000")
	product := st.addProduct(model.ProductInStock)
	svc := buildSaleSvc(st, nil)

	resp, err := svc.Create(context.Background(), uuid.New(), promissorySale(client.ID, product.ID, 3))
	require.NoError(t, err)

	assert.Equal(t, string(model.SaleDraft), resp.Status)
	assert.Regexp(t, `^VEN-[2-9A-HJ-NP-Z]{8}$`, resp.PublicID)
	assert.Equal(t, "CG 160", resp.Product.Model)
	assert.Equal(t, model.ProductSold, st.products[product.ID].Status)

	require.NotNil(t, resp.Promissory)
	p := resp.Promissory
	assert.Equal(t, string(model.PromissoryDraft), p.Status)
	assert.Regexp(t, `^PROM-`, p.PublicID)
	assert.True(t, p.Total.Equal(decimal.NewFromInt(1800)))
	require.Len(t, p.Installments, 3)
	for i, want := range []string{"2024-02-01", "2024-03-01", "2024-04-01"} {
		assert.Equal(t, want, p.Installments[i].DueDate)
		assert.True(t, p.Installments[i].Amount.Equal(decimal.NewFromInt(600)))
		assert.Equal(t, string(model.SendPending), p.Installments[i].DueSoon.Status)
	}
}

func TestSaleCreate_CashHasNoPromissory(t *testing.T) {
	st := newMemStore()
	client := st.addClient("João", "85988887777")
	product := st.addProduct(model.ProductReserved)
	svc := buildSaleSvc(st, nil)

	resp, err := svc.Create(context.Background(), uuid.New(), dto.CreateSaleRequest{
		ClientID:    client.ID.String(),
		ProductID:   product.ID.String(),
		Total:       decimal.NewFromInt(15000),
		PaymentType: string(model.PaymentPix),
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Promissory)
	assert.Empty(t, st.promissories)
}

func TestSaleCreate_SoldProductConflict(t *testing.T) {
	st := newMemStore()
	client := st.addClient("Ana", "85977776666")
	product := st.addProduct(model.ProductSold)
	svc := buildSaleSvc(st, nil)

	_, err := svc.Create(context.Background(), uuid.New(), promissorySale(client.ID, product.ID, 2))
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Empty(t, st.sales)
}

func TestSaleCreate_InvalidAmounts(t *testing.T) {
	st := newMemStore()
	client := st.addClient("Ana", "85977776666")
	product := st.addProduct(model.ProductInStock)
	svc := buildSaleSvc(st, nil)

	req := promissorySale(client.ID, product.ID, 2)
	req.EntryAmount = decimal.NewFromInt(5000)
	_, err := svc.Create(context.Background(), uuid.New(), req)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	req = promissorySale(client.ID, product.ID, 0)
	_, err = svc.Create(context.Background(), uuid.New(), req)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	req = promissorySale(client.ID, product.ID, 2)
	req.InstallmentsCount = nil
	_, err = svc.Create(context.Background(), uuid.New(), req)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	assert.Equal(t, model.ProductInStock, st.products[product.ID].Status)
}

func TestSaleCreate_ReleasesReservedIDsOnFailure(t *testing.T) {
	st := newMemStore()
	st.failSale = errors.New("insert failed")
	client := st.addClient("Ana", "85977776666")
	product := st.addProduct(model.ProductInStock)
	reserver := newStubReserver()
	svc := buildSaleSvc(st, reserver)

	_, err := svc.Create(context.Background(), uuid.New(), promissorySale(client.ID, product.ID, 2))
	require.Error(t, err)
	require.Len(t, reserver.released, 1)
	assert.Regexp(t, `^VEN-`, reserver.released[0])
	assert.Empty(t, reserver.held)
}

func TestSaleCreate_KeepsReservationsOnSuccess(t *testing.T) {
	st := newMemStore()
	client := st.addClient("Ana", "85977776666")
	product := st.addProduct(model.ProductInStock)
	reserver := newStubReserver()
	svc := buildSaleSvc(st, reserver)

	_, err := svc.Create(context.Background(), uuid.New(), promissorySale(client.ID, product.ID, 2))
	require.NoError(t, err)
	assert.Len(t, reserver.held, 2)
	assert.Empty(t, reserver.released)
}

func TestSaleUpdateStatus(t *testing.T) {
	st := newMemStore()
	client := st.addClient("Ana", "85977776666")
	product := st.addProduct(model.ProductInStock)
	svc := buildSaleSvc(st, nil)

	created, err := svc.Create(context.Background(), uuid.New(), dto.CreateSaleRequest{
		ClientID: client.ID.String(), ProductID: product.ID.String(),
		Total: decimal.NewFromInt(9000), PaymentType: string(model.PaymentCash),
	})
	require.NoError(t, err)

	resp, err := svc.UpdateStatus(context.Background(), created.ID, dto.UpdateSaleStatusRequest{Status: "CONFIRMED"})
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", resp.Status)

	resp, err = svc.UpdateStatus(context.Background(), created.ID, dto.UpdateSaleStatusRequest{Status: "CONFIRMED"})
	require.NoError(t, err, "same status is a no-op")
	assert.Equal(t, "CONFIRMED", resp.Status)

	_, err = svc.UpdateStatus(context.Background(), created.ID, dto.UpdateSaleStatusRequest{Status: "CANCELED"})
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))

	_, err = svc.UpdateStatus(context.Background(), uuid.NewString(), dto.UpdateSaleStatusRequest{Status: "CANCELED"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

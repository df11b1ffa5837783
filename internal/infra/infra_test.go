package infra

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leodymann/wi-api/internal/apperr"
	"github.com/leodymann/wi-api/internal/model"
	"github.com/leodymann/wi-api/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── uazapi ───────────────────────────────────────────────────────────────────

func TestNewUazapiClient_MissingToken(t *testing.T) {
	_, err := NewUazapiClient(UazapiConfig{BaseURL: "http://x", Token: "  "})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConfiguration, apperr.KindOf(err))
}

func TestUazapi_SendText(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send/text", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("token"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c, err := NewUazapiClient(UazapiConfig{BaseURL: srv.URL + "/", Token: "secret"})
	require.NoError(t, err)
	require.NoError(t, c.SendText(context.Background(), "5588999990000", "olá"))
	assert.Equal(t, map[string]string{"number": "5588999990000", "text": "olá"}, got)
}

func TestUazapi_SendMediaPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send/media", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	c, err := NewUazapiClient(UazapiConfig{BaseURL: srv.URL, Token: "t"})
	require.NoError(t, err)
	err = c.SendMedia(context.Background(), "123@g.us", Media{
		Kind: "document", File: "data:application/pdf;base64,AAA", Caption: "cap",
		DocName: "r.pdf", MimeType: "application/pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "123@g.us", got["number"])
	assert.Equal(t, "document", got["type"])
	assert.Equal(t, "cap", got["text"])
	assert.Equal(t, "r.pdf", got["docName"])
	assert.Equal(t, "application/pdf", got["mimetype"])
}

func TestUazapi_HTTPErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "instance disconnected", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := NewUazapiClient(UazapiConfig{BaseURL: srv.URL, Token: "t"})
	require.NoError(t, err)
	err = c.SendText(context.Background(), "1", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrTransientSend))
	assert.Contains(t, err.Error(), "HTTP 503")
}

func TestUazapi_NetworkErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewUazapiClient(UazapiConfig{BaseURL: url, Token: "t", Timeout: time.Second})
	require.NoError(t, err)
	err = c.SendText(context.Background(), "1", "x")
	assert.Equal(t, apperr.KindTransientSend, apperr.KindOf(err))
}

// ── circuit breaker ──────────────────────────────────────────────────────────

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestCircuitBreaker_Lifecycle(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: time.Minute})
	cb.now = clk.now
	boom := errors.New("boom")

	assert.Equal(t, boom, cb.Execute(func() error { return boom }))
	assert.False(t, cb.IsOpen())
	assert.Equal(t, boom, cb.Execute(func() error { return boom }))
	assert.True(t, cb.IsOpen())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	clk.t = clk.t.Add(time.Minute)
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	clk := &fakeClock{t: time.Now()}
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Second})
	cb.now = clk.now

	_ = cb.Execute(func() error { return errors.New("x") })
	require.True(t, cb.IsOpen())
	clk.t = clk.t.Add(2 * time.Second)
	_ = cb.Execute(func() error { return errors.New("still down") })
	assert.True(t, cb.IsOpen())
}

// ── guarded messenger ────────────────────────────────────────────────────────

type countingMessenger struct {
	calls atomic.Int32
	err   error
}

func (m *countingMessenger) SendText(context.Context, string, string) error {
	m.calls.Add(1)
	return m.err
}

func (m *countingMessenger) SendMedia(context.Context, string, Media) error {
	m.calls.Add(1)
	return m.err
}

func TestGuardedMessenger_FailsFastWhenOpen(t *testing.T) {
	inner := &countingMessenger{err: apperr.New(apperr.KindTransientSend, "test", "down")}
	g := NewGuardedMessenger(inner, NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, OpenTimeout: time.Hour}))

	for i := 0; i < 2; i++ {
		require.Error(t, g.SendText(context.Background(), "1", "x"))
	}
	require.True(t, g.IsOpen())

	err := g.SendMedia(context.Background(), "1", Media{Kind: "image", File: "http://x/y.jpg"})
	assert.Equal(t, apperr.KindTransientSend, apperr.KindOf(err))
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), inner.calls.Load())
}

// ── pdf ──────────────────────────────────────────────────────────────────────

func TestRenderReportPDF(t *testing.T) {
	doc := &report.Document{
		Title:       "Relatório Semanal",
		StoreName:   "WI Motos",
		PeriodLabel: "11/03 a 17/03",
		GeneratedAt: "13/03/2024 09:30",
		KPIs:        []report.Row{{Label: "Vendas confirmadas", Value: "2"}, {Label: "Líquido vendido", Value: "R$29.000,00"}},
		Sections: []report.Section{
			{Title: "Vendas", Rows: []report.Row{{Label: "Quantidade", Value: "2"}}},
		},
		Filename: "Relatorio_Semanal_2024-03-11_a_2024-03-17.pdf",
		Footer:   "Gerado automaticamente pelo WI Motos.",
	}
	out, err := RenderReportPDF(doc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF-"))
	assert.Greater(t, len(out), 500)
}

// ── schema patches ───────────────────────────────────────────────────────────

func TestSchemaPatchSQL(t *testing.T) {
	sql := eligibleIndexSQL(model.ChannelInstallmentDueSoon)
	assert.Contains(t, sql, "idx_installments_wa_due_eligible")
	assert.Contains(t, sql, "wa_due_status IN ('PENDING', 'FAILED')")

	sql = staleIndexSQL(model.ChannelFinanceNotice)
	assert.Contains(t, sql, "ON finances (wpp_claimed_at) WHERE wpp_status = 'SENDING'")

	assert.Len(t, Models(), 8)
}

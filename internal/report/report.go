// Package report assembles the weekly and monthly business reports from
// repository aggregates. Rendering is left to infra.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/leodymann/wi-api/internal/model"
	"github.com/leodymann/wi-api/internal/money"
	"github.com/leodymann/wi-api/internal/repository"
	"github.com/leodymann/wi-api/internal/schedule"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	Weekly  Kind = "weekly"
	Monthly Kind = "monthly"
)

// Row is one label/value pair.
type Row struct {
	Label string
	Value string
}

type Section struct {
	Title string
	Rows  []Row
}

// Document is a renderer-independent report.
type Document struct {
	Kind        Kind
	Title       string
	StoreName   string
	PeriodLabel string
	GeneratedAt string
	KPIs        []Row
	Sections    []Section
	Filename    string
	Footer      string
}

// Caption is the text attached to the document when it is delivered.
func (d *Document) Caption() string {
	if d.Kind == Monthly {
		return fmt.Sprintf("📊 Relatório mensal (%s)", d.PeriodLabel)
	}
	return fmt.Sprintf("📊 Relatório semanal (%s)", d.PeriodLabel)
}

type Builder struct {
	repo      repository.ReportRepository
	storeName string
}

func NewBuilder(repo repository.ReportRepository, storeName string) *Builder {
	if storeName == "" {
		storeName = "WI Motos"
	}
	return &Builder{repo: repo, storeName: storeName}
}

// Build collects the aggregates for p. now is only used for the "generated
// at" stamp and should already be in the store's location.
func (b *Builder) Build(ctx context.Context, kind Kind, p schedule.Period, now time.Time) (*Document, error) {
	start := p.Start
	end := p.End.AddDate(0, 0, 1)

	sales, err := b.repo.SalesSummary(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("report: sales summary: %w", err)
	}
	byType, err := b.repo.NetByPaymentType(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("report: payment types: %w", err)
	}
	inst, err := b.repo.InstallmentSummary(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("report: installments: %w", err)
	}
	fin, err := b.repo.FinanceSummary(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("report: finance: %w", err)
	}

	net := money.Round2(sales.Gross.Sub(sales.Discount))
	profit := money.Round2(sales.Profit)
	received := inst.Paid
	if !received.IsPositive() {
		received = inst.Nominal
	}

	doc := &Document{
		Kind:        kind,
		StoreName:   b.storeName,
		GeneratedAt: now.Format("02/01/2006 15:04"),
		Footer:      "Gerado automaticamente pelo WI Motos.",
	}
	switch kind {
	case Monthly:
		doc.Title = "Relatório Mensal"
		doc.PeriodLabel = p.Start.Format("01/2006")
		doc.Filename = fmt.Sprintf("Relatorio_Mensal_%s.pdf", p.Start.Format("2006-01"))
	default:
		doc.Title = "Relatório Semanal"
		doc.PeriodLabel = fmt.Sprintf("%s a %s", p.Start.Format("02/01"), p.End.Format("02/01"))
		doc.Filename = fmt.Sprintf("Relatorio_Semanal_%s_a_%s.pdf", p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
	}

	brl := money.FormatBRL
	doc.KPIs = []Row{
		{"Vendas confirmadas", fmt.Sprint(sales.Count)},
		{"Líquido vendido", brl(net)},
		{"Lucro estimado", brl(profit)},
		{"Entradas", brl(sales.Entries)},
		{"Recebimentos (parcelas)", brl(received)},
		{"Financeiro pendente", brl(fin.Pending)},
	}

	pt := func(t model.PaymentType) string {
		v, ok := byType[t]
		if !ok {
			v = decimal.Zero
		}
		return brl(v)
	}

	doc.Sections = []Section{
		{
			Title: "Vendas",
			Rows: []Row{
				{"Quantidade", fmt.Sprint(sales.Count)},
				{"Bruto", brl(sales.Gross)},
				{"Descontos", brl(sales.Discount)},
				{"Líquido (bruto - desconto)", brl(net)},
				{"Entradas", brl(sales.Entries)},
				{"Lucro estimado", brl(profit)},
				{"Canceladas", fmt.Sprint(sales.Canceled)},
			},
		},
		{
			Title: "Por forma de pagamento (vendas - líquido)",
			Rows: []Row{
				{"Dinheiro", pt(model.PaymentCash)},
				{"Pix", pt(model.PaymentPix)},
				{"Cartão", pt(model.PaymentCard)},
				{"Promissória", pt(model.PaymentPromissory)},
				{"Financiamento", pt(model.PaymentFinancing)},
			},
		},
		{
			Title: "Parcelas",
			Rows: []Row{
				{"Parcelas pagas (qtd)", fmt.Sprint(inst.Count)},
				{"Total recebido", brl(received)},
			},
		},
		{
			Title: "Financeiro",
			Rows: []Row{
				{"Contas criadas no período (qtd)", fmt.Sprint(fin.CreatedCount)},
				{"Total criado no período", brl(fin.CreatedTotal)},
				{"Pendente (atual)", brl(fin.Pending)},
				{"Pago (atual)", brl(fin.Paid)},
				{"Cancelado (atual)", brl(fin.Canceled)},
			},
		},
	}
	return doc, nil
}

package worker

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/leodymann/wi-api/internal/report"
	"github.com/leodymann/wi-api/internal/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBuilder struct{ periods []schedule.Period }

func (b *fakeBuilder) Build(_ context.Context, kind report.Kind, p schedule.Period, _ time.Time) (*report.Document, error) {
	b.periods = append(b.periods, p)
	return &report.Document{
		Kind: kind, Title: "Relatório Semanal", StoreName: "WI Motos",
		PeriodLabel: "06/05/2024 a 12/05/2024", Filename: "Relatorio_Semanal.pdf",
	}, nil
}

type fakeQueue struct{ jobs []EmailJobPayload }

func (q *fakeQueue) EnqueueEmail(_ context.Context, p EmailJobPayload) error {
	q.jobs = append(q.jobs, p)
	return nil
}

func renderStub(*report.Document) ([]byte, error) { return []byte("%PDF-1.4 stub"), nil }

func TestReportTask_WeeklyOncePerLabel(t *testing.T) {
	store := schedule.NewMemoryStore()
	gate := schedule.NewWeeklyGate(store, time.Monday, 8, 0)
	builder := &fakeBuilder{}
	sender := &fakeMedia{}
	queue := &fakeQueue{}
	task := NewReportTask(report.Weekly, gate, builder, renderStub, sender, queue,
		ReportConfig{OwnerTo: "5585999990000", EmailTo: "dono@wimotos.com, ", Location: time.UTC})
	ctx := context.Background()
	monday := func(h, m int) time.Time { return time.Date(2024, 5, 13, h, m, 0, 0, time.UTC) }

	n, err := task.Run(ctx, monday(7, 59))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = task.Run(ctx, monday(8, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, sender.sent, 1)
	m := sender.sent[0].Media
	assert.Equal(t, "5585999990000", sender.sent[0].To)
	assert.Equal(t, "document", m.Kind)
	assert.Equal(t, "application/pdf", m.MimeType)
	assert.Equal(t, "Relatorio_Semanal.pdf", m.DocName)
	assert.Equal(t, "data:application/pdf;base64,"+base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 stub")), m.File)
	assert.True(t, strings.HasPrefix(m.Caption, "📊 Relatório semanal"))

	require.Len(t, builder.periods, 1)
	assert.Equal(t, "2024-05-13_2024-05-19", builder.periods[0].Label)

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, []string{"dono@wimotos.com"}, queue.jobs[0].To)
	assert.Equal(t, []byte("%PDF-1.4 stub"), queue.jobs[0].PDF)

	n, err = task.Run(ctx, monday(18, 0))
	require.NoError(t, err)
	assert.Zero(t, n, "label already sent")
	assert.Len(t, sender.sent, 1)
}

func TestReportTask_FailedSendKeepsLabelPending(t *testing.T) {
	store := schedule.NewMemoryStore()
	gate := schedule.NewMonthlyGate(store, 18, 0)
	sender := &fakeMedia{err: errors.New("provider down")}
	task := NewReportTask(report.Monthly, gate, &fakeBuilder{}, renderStub, sender, nil,
		ReportConfig{OwnerTo: "5585999990000", Location: time.UTC})
	lastDay := time.Date(2024, 2, 29, 18, 30, 0, 0, time.UTC)

	_, err := task.Run(context.Background(), lastDay)
	require.Error(t, err)

	_, ok, err := store.Get(context.Background(), schedule.MonthlyReportKey)
	require.NoError(t, err)
	assert.False(t, ok)

	sender.err = nil
	n, err := task.Run(context.Background(), lastDay.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	label, _, _ := store.Get(context.Background(), schedule.MonthlyReportKey)
	assert.Equal(t, "2024-02", string(label))
}

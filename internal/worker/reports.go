package worker

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/leodymann/wi-api/internal/infra"
	"github.com/leodymann/wi-api/internal/report"
	"github.com/leodymann/wi-api/internal/schedule"

	"github.com/rs/zerolog/log"
)

// ReportBuilder assembles a report for a period.
type ReportBuilder interface {
	Build(ctx context.Context, kind report.Kind, p schedule.Period, now time.Time) (*report.Document, error)
}

// Renderer turns a document into PDF bytes.
type Renderer func(doc *report.Document) ([]byte, error)

// ReportTask delivers one periodic report to the owner once per period.
type ReportTask struct {
	kind     report.Kind
	gate     *schedule.ReportGate
	builder  ReportBuilder
	render   Renderer
	sender   MediaSender
	ownerTo  string
	emails   EmailQueue
	emailTo  []string
	location *time.Location
}

type ReportConfig struct {
	OwnerTo  string
	EmailTo  string // comma separated; empty disables e-mail
	Location *time.Location
}

// NewReportTask wires a report. emails may be nil.
func NewReportTask(kind report.Kind, gate *schedule.ReportGate, builder ReportBuilder, render Renderer,
	sender MediaSender, emails EmailQueue, cfg ReportConfig) *ReportTask {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &ReportTask{
		kind:     kind,
		gate:     gate,
		builder:  builder,
		render:   render,
		sender:   sender,
		ownerTo:  cfg.OwnerTo,
		emails:   emails,
		emailTo:  splitList(cfg.EmailTo),
		location: loc,
	}
}

func (t *ReportTask) Task() Task { return Task{Name: string(t.kind) + "_report", Run: t.Run} }

func (t *ReportTask) Run(ctx context.Context, now time.Time) (int, error) {
	local := now.In(t.location)
	p, due, err := t.gate.Due(ctx, local)
	if err != nil || !due {
		return 0, err
	}

	doc, err := t.builder.Build(ctx, t.kind, p, local)
	if err != nil {
		return 0, err
	}
	pdf, err := t.render(doc)
	if err != nil {
		return 0, fmt.Errorf("%s report: render: %w", t.kind, err)
	}

	media := infra.Media{
		Kind:     "document",
		File:     "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(pdf),
		Caption:  doc.Caption(),
		DocName:  doc.Filename,
		MimeType: "application/pdf",
	}
	if err := t.sender.SendMedia(ctx, t.ownerTo, media); err != nil {
		return 0, fmt.Errorf("%s report: send: %w", t.kind, err)
	}
	if err := t.gate.MarkSent(ctx, p); err != nil {
		return 1, fmt.Errorf("%s report: persist label: %w", t.kind, err)
	}
	log.Info().Str("kind", string(t.kind)).Str("period", p.Label).Msg("worker: report sent")

	t.enqueueEmail(ctx, doc, pdf)
	return 1, nil
}

// enqueueEmail is best effort: the WhatsApp delivery already counts as sent.
func (t *ReportTask) enqueueEmail(ctx context.Context, doc *report.Document, pdf []byte) {
	if t.emails == nil || len(t.emailTo) == 0 {
		return
	}
	job := EmailJobPayload{
		To:       t.emailTo,
		Subject:  fmt.Sprintf("%s - %s (%s)", doc.StoreName, doc.Title, doc.PeriodLabel),
		Body:     doc.Caption() + "\n\nO relatório segue em anexo.",
		Filename: doc.Filename,
		PDF:      pdf,
	}
	if err := t.emails.EnqueueEmail(ctx, job); err != nil {
		log.Warn().Err(err).Str("kind", string(t.kind)).Msg("worker: failed to enqueue report e-mail")
	}
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

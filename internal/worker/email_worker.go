package worker

// email_worker.go
// Processes e-mail jobs from QueueEmail: report PDFs for the owner's inbox.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/leodymann/wi-api/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail. PDF travels as
// base64 inside the JSON.
type EmailJobPayload struct {
	To       []string `json:"to"`
	Subject  string   `json:"subject"`
	Body     string   `json:"body"`
	Filename string   `json:"filename,omitempty"`
	PDF      []byte   `json:"pdf,omitempty"`
}

// MailSender is satisfied by *infra.Mailer.
type MailSender interface {
	Send(to []string, subject, body string, files ...infra.Attachment) error
}

// EmailWorker sends queued e-mails over SMTP.
type EmailWorker struct {
	mailer MailSender
}

func NewEmailWorker(mailer MailSender) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process decodes and sends one job.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	return w.Send(payload)
}

func (w *EmailWorker) Send(payload EmailJobPayload) error {
	if len(payload.To) == 0 {
		log.Warn().Msg("email_worker: empty recipient list, skipping")
		return nil
	}
	var files []infra.Attachment
	if len(payload.PDF) > 0 {
		files = append(files, infra.Attachment{Filename: payload.Filename, ContentType: "application/pdf", Data: payload.PDF})
	}
	if err := w.mailer.Send(payload.To, payload.Subject, payload.Body, files...); err != nil {
		return fmt.Errorf("email_worker: %w", err)
	}
	log.Info().Strs("to", payload.To).Str("subject", payload.Subject).Msg("email_worker: e-mail sent")
	return nil
}

// InlineEmail sends immediately; used when redis is not configured.
type InlineEmail struct{ w *EmailWorker }

func NewInlineEmail(w *EmailWorker) *InlineEmail { return &InlineEmail{w: w} }

func (i *InlineEmail) EnqueueEmail(_ context.Context, payload EmailJobPayload) error {
	return i.w.Send(payload)
}

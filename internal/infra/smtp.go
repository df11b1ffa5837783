package infra

import (
	"bytes"
	"fmt"
	"net/smtp"

	"github.com/leodymann/wi-api/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending report e-mails.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Enabled reports whether an SMTP host is configured.
func (m *Mailer) Enabled() bool { return m.host != "" }

// Attachment is an in-memory file.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Send delivers a plain-text message with optional attachments.
func (m *Mailer) Send(to []string, subject, body string, files ...Attachment) error {
	e := m.build(to, subject, body)
	for _, f := range files {
		if _, err := e.Attach(bytes.NewReader(f.Data), f.Filename, f.ContentType); err != nil {
			return fmt.Errorf("mailer: attach %s: %w", f.Filename, err)
		}
	}
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	if err := e.Send(m.addr, auth); err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	return nil
}

func (m *Mailer) build(to []string, subject, body string) *email.Email {
	e := email.NewEmail()
	e.From = m.from
	e.To = to
	e.Subject = subject
	e.Text = []byte(body)
	return e
}

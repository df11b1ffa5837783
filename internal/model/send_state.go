package model

import "time"

type SendStatus string

const (
	SendPending SendStatus = "PENDING"
	SendSending SendStatus = "SENDING"
	SendSent    SendStatus = "SENT"
	SendFailed  SendStatus = "FAILED"
)

// MaxLastErrorLen bounds the stored failure text.
const MaxLastErrorLen = 500

// SendState tracks one outbound notification channel of an entity.
// It is embedded with a column prefix, one block per channel.
type SendState struct {
	Status      SendStatus `gorm:"column:status;type:varchar(20);not null;default:PENDING"`
	Tries       int        `gorm:"column:tries;not null;default:0"`
	LastError   *string    `gorm:"column:last_error;type:text"`
	SentAt      *time.Time `gorm:"column:sent_at"`
	NextRetryAt *time.Time `gorm:"column:next_retry_at"`
	ClaimedAt   *time.Time `gorm:"column:claimed_at"`
}

// NewSendState returns a fresh PENDING state.
func NewSendState() SendState {
	return SendState{Status: SendPending}
}

// Eligible reports whether a send may be attempted at now.
func (s SendState) Eligible(now time.Time) bool {
	switch s.Status {
	case SendPending:
		return true
	case SendFailed:
		return s.NextRetryAt != nil && !s.NextRetryAt.After(now)
	case SendSending, SendSent:
		return false
	}
	return false
}

// Claim moves the state to SENDING.
func (s *SendState) Claim(now time.Time) {
	s.Status = SendSending
	t := now
	s.ClaimedAt = &t
}

// MarkSent records a successful delivery.
func (s *SendState) MarkSent(now time.Time) {
	t := now
	s.Status = SendSent
	s.SentAt = &t
	s.LastError = nil
	s.NextRetryAt = nil
	s.ClaimedAt = nil
}

// MarkFailed records a failure. A nil nextRetry parks the state for good.
func (s *SendState) MarkFailed(reason string, nextRetry *time.Time) {
	s.Status = SendFailed
	s.Tries++
	msg := truncate(reason, MaxLastErrorLen)
	s.LastError = &msg
	s.NextRetryAt = nextRetry
	s.ClaimedAt = nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Channel locates one SendState block: the table it lives in and the
// column prefix of its embedded fields. BillingPending is the value of the
// row's billing status column while the row may still be notified.
type Channel struct {
	Name           string
	Table          string
	Prefix         string
	BillingPending string
}

// Column returns the physical column for a SendState field.
func (c Channel) Column(field string) string {
	return c.Prefix + field
}

var (
	ChannelFinanceNotice = Channel{
		Name: "finance_notice", Table: "finances", Prefix: "wpp_", BillingPending: string(FinancePending),
	}
	ChannelInstallmentDueSoon = Channel{
		Name: "installment_due_soon", Table: "installments", Prefix: "wa_due_", BillingPending: string(InstallmentPending),
	}
	ChannelInstallmentDueToday = Channel{
		Name: "installment_due_today", Table: "installments", Prefix: "wa_today_", BillingPending: string(InstallmentPending),
	}
	ChannelInstallmentOverdue = Channel{
		Name: "installment_overdue", Table: "installments", Prefix: "wa_overdue_", BillingPending: string(InstallmentPending),
	}
)

// Channels lists every channel; used for index patches and the stale sweep.
var Channels = []Channel{
	ChannelFinanceNotice,
	ChannelInstallmentDueSoon,
	ChannelInstallmentDueToday,
	ChannelInstallmentOverdue,
}

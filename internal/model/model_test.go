package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPromissoryTransitions(t *testing.T) {
	allowed := map[PromissoryStatus][]PromissoryStatus{
		PromissoryDraft:  {PromissoryIssued, PromissoryCanceled},
		PromissoryIssued: {PromissoryCanceled, PromissoryPaid},
	}
	all := []PromissoryStatus{PromissoryDraft, PromissoryIssued, PromissoryCanceled, PromissoryPaid}
	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestSaleTransitions_TerminalStates(t *testing.T) {
	assert.True(t, SaleDraft.CanTransition(SaleConfirmed))
	assert.True(t, SaleDraft.CanTransition(SaleCanceled))
	assert.False(t, SaleConfirmed.CanTransition(SaleCanceled))
	assert.False(t, SaleCanceled.CanTransition(SaleConfirmed))
	assert.False(t, SaleStatus("SHIPPED").IsValid())
}

func TestInstallmentAndFinanceTransitions(t *testing.T) {
	assert.True(t, InstallmentPending.CanTransition(InstallmentPaid))
	assert.False(t, InstallmentCanceled.CanTransition(InstallmentPaid))
	assert.False(t, InstallmentPaid.CanTransition(InstallmentPending))

	assert.True(t, FinancePending.CanTransition(FinanceCanceled))
	assert.False(t, FinancePaid.CanTransition(FinanceCanceled))
}

func TestSendState_Eligible(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.True(t, SendState{Status: SendPending}.Eligible(now))
	assert.False(t, SendState{Status: SendSending}.Eligible(now))
	assert.False(t, SendState{Status: SendSent}.Eligible(now))
	assert.True(t, SendState{Status: SendFailed, NextRetryAt: &past}.Eligible(now))
	assert.True(t, SendState{Status: SendFailed, NextRetryAt: &now}.Eligible(now))
	assert.False(t, SendState{Status: SendFailed, NextRetryAt: &future}.Eligible(now))
	assert.False(t, SendState{Status: SendFailed}.Eligible(now), "parked failure never retries")
}

func TestSendState_MarkFailedTruncates(t *testing.T) {
	s := NewSendState()
	now := time.Now()
	s.Claim(now)
	next := now.Add(time.Minute)
	s.MarkFailed(strings.Repeat("x", 900), &next)

	assert.Equal(t, SendFailed, s.Status)
	assert.Equal(t, 1, s.Tries)
	assert.Len(t, *s.LastError, MaxLastErrorLen)
	assert.Nil(t, s.ClaimedAt)
	assert.Equal(t, next, *s.NextRetryAt)

	s.MarkSent(now)
	assert.Equal(t, SendSent, s.Status)
	assert.Nil(t, s.LastError)
	assert.Nil(t, s.NextRetryAt)
	assert.NotNil(t, s.SentAt)
	assert.Equal(t, 1, s.Tries)
}

func TestChannelColumnAndInstallmentState(t *testing.T) {
	assert.Equal(t, "wa_today_status", ChannelInstallmentDueToday.Column("status"))
	assert.Equal(t, "wpp_next_retry_at", ChannelFinanceNotice.Column("next_retry_at"))

	inst := &Installment{}
	inst.Overdue.Status = SendSent
	assert.Equal(t, SendSent, inst.State(ChannelInstallmentOverdue).Status)
	assert.Nil(t, inst.State(ChannelFinanceNotice))
}

func TestChannelBillingPending(t *testing.T) {
	for _, ch := range Channels {
		switch ch.Table {
		case "installments":
			assert.Equal(t, string(InstallmentPending), ch.BillingPending, ch.Name)
			assert.True(t, InstallmentStatus(ch.BillingPending).IsValid(), ch.Name)
		case "finances":
			assert.Equal(t, string(FinancePending), ch.BillingPending, ch.Name)
			assert.True(t, FinanceStatus(ch.BillingPending).IsValid(), ch.Name)
		default:
			t.Fatalf("channel %s has unexpected table %s", ch.Name, ch.Table)
		}
	}
}

func TestProductCoverImage(t *testing.T) {
	p := &Product{Images: []ProductImage{{URL: "b.jpg", Position: 2}, {URL: "", Position: 0}, {URL: "a.jpg", Position: 1}}}
	assert.Equal(t, "a.jpg", p.CoverImage().URL)
	assert.Nil(t, (&Product{}).CoverImage())
}

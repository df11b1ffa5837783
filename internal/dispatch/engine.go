// Package dispatch turns due billing events into outbound WhatsApp messages.
//
// Each tick a category selects eligible rows, the engine claims each one
// with a conditional update committed before the network call, sends it and
// records the outcome on the row's SendState. The conditional claim is the
// only deduplication between concurrent workers.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/leodymann/wi-api/internal/model"

	"github.com/rs/zerolog/log"
)

// Item is one rendered notification ready to be claimed and sent.
type Item struct {
	ID    uuid.UUID
	State model.SendState
	To    string
	Text  string
}

// Category selects and renders candidates for one channel.
type Category interface {
	Name() string
	Channel() model.Channel
	// Candidates returns eligible items ordered by due date then id.
	Candidates(ctx context.Context, now time.Time) ([]Item, error)
}

// ClaimStore persists SendState for a channel row.
type ClaimStore interface {
	// Claim moves an eligible row to SENDING. It returns false when another
	// worker won the row or it is no longer eligible.
	Claim(ctx context.Context, ch model.Channel, id uuid.UUID, now time.Time) (bool, error)
	Save(ctx context.Context, ch model.Channel, id uuid.UUID, st model.SendState) error
}

// Sender delivers a text message.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
}

// DeadLetterSink receives sends that exhausted their retries.
type DeadLetterSink interface {
	DeadLetter(ctx context.Context, ch model.Channel, id uuid.UUID, st model.SendState) error
}

// Gate reports whether the messaging provider is currently rejecting calls.
type Gate interface {
	IsOpen() bool
}

// Result counts the outcomes of one category run.
type Result struct {
	Category   string
	Candidates int
	Claimed    int
	Sent       int
	Failed     int
	Skipped    int
	Parked     int
}

// Engine runs categories. It is safe to run from several processes at once.
type Engine struct {
	store  ClaimStore
	sender Sender
	policy RetryPolicy
	dlq    DeadLetterSink
	gate   Gate
}

// NewEngine wires the engine. dlq and gate may be nil.
func NewEngine(store ClaimStore, sender Sender, policy RetryPolicy, dlq DeadLetterSink, gate Gate) *Engine {
	return &Engine{store: store, sender: sender, policy: policy, dlq: dlq, gate: gate}
}

// Run processes one batch of a category. Per-item failures, including
// panics, are recorded and never abort the batch.
func (e *Engine) Run(ctx context.Context, cat Category, now time.Time) (Result, error) {
	res := Result{Category: cat.Name()}
	if e.gate != nil && e.gate.IsOpen() {
		log.Debug().Str("category", cat.Name()).Msg("dispatch: circuit breaker is open, skipping tick")
		return res, nil
	}

	items, err := cat.Candidates(ctx, now)
	if err != nil {
		return res, fmt.Errorf("dispatch: %s candidates: %w", cat.Name(), err)
	}
	res.Candidates = len(items)

	for i := range items {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if e.gate != nil && e.gate.IsOpen() {
			log.Debug().Str("category", cat.Name()).Msg("dispatch: circuit breaker opened mid-batch, stopping")
			return res, nil
		}
		e.dispatchOne(ctx, cat.Channel(), items[i], now, &res)
	}
	return res, nil
}

func (e *Engine) dispatchOne(ctx context.Context, ch model.Channel, item Item, now time.Time, res *Result) {
	// sending is true between a won claim and the send outcome; a panic in
	// that window is recorded as a failed attempt so the row leaves SENDING.
	var st model.SendState
	sending := false
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("channel", ch.Name).
				Str("id", item.ID.String()).
				Interface("panic", r).
				Msg("dispatch: panic while sending, continuing batch")
			if sending {
				e.recordFailure(ctx, ch, item.ID, &st, fmt.Errorf("panic: %v", r), now, res)
				return
			}
			res.Failed++
		}
	}()

	if !item.State.Eligible(now) || item.To == "" {
		res.Skipped++
		return
	}

	won, err := e.store.Claim(ctx, ch, item.ID, now)
	if err != nil {
		res.Failed++
		log.Error().Err(err).Str("channel", ch.Name).Str("id", item.ID.String()).Msg("dispatch: claim failed")
		return
	}
	if !won {
		res.Skipped++
		return
	}
	res.Claimed++

	st = item.State
	st.Claim(now)

	sending = true
	sendErr := e.sender.SendText(ctx, item.To, item.Text)
	sending = false
	if sendErr != nil {
		e.recordFailure(ctx, ch, item.ID, &st, sendErr, now, res)
		return
	}

	st.MarkSent(now)
	if err := e.store.Save(ctx, ch, item.ID, st); err != nil {
		// The message went out; a failed save leaves the row SENDING until
		// the stale-claim sweep picks it up.
		log.Error().Err(err).Str("channel", ch.Name).Str("id", item.ID.String()).Msg("dispatch: failed to record sent state")
	}
	res.Sent++
	log.Info().Str("channel", ch.Name).Str("id", item.ID.String()).Msg("dispatch: sent")
}

func (e *Engine) recordFailure(ctx context.Context, ch model.Channel, id uuid.UUID, st *model.SendState, sendErr error, now time.Time, res *Result) {
	res.Failed++
	next := e.policy.NextRetry(st.Tries+1, now)
	st.MarkFailed(sendErr.Error(), next)

	if err := e.store.Save(ctx, ch, id, *st); err != nil {
		log.Error().Err(err).Str("channel", ch.Name).Str("id", id.String()).Msg("dispatch: failed to record failure")
	}

	if next == nil {
		res.Parked++
		log.Error().
			Str("channel", ch.Name).
			Str("id", id.String()).
			Int("tries", st.Tries).
			Msg("dispatch: max tries exceeded, moving to dead letter")
		if e.dlq != nil {
			if err := e.dlq.DeadLetter(ctx, ch, id, *st); err != nil {
				log.Error().Err(err).Str("channel", ch.Name).Msg("dispatch: dead letter push failed")
			}
		}
		return
	}
	log.Warn().
		Err(sendErr).
		Str("channel", ch.Name).
		Str("id", id.String()).
		Int("tries", st.Tries).
		Time("next_retry_at", *next).
		Msg("dispatch: send failed, scheduled next attempt")
}

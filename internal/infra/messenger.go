package infra

import (
	"context"
	"errors"

	"github.com/leodymann/wi-api/internal/apperr"

	"github.com/rs/zerolog/log"
)

// Messenger is the outbound WhatsApp surface used by the worker.
type Messenger interface {
	SendText(ctx context.Context, to, body string) error
	SendMedia(ctx context.Context, to string, m Media) error
}

// GuardedMessenger routes every call through a circuit breaker.
type GuardedMessenger struct {
	next Messenger
	cb   *CircuitBreaker
}

func NewGuardedMessenger(next Messenger, cb *CircuitBreaker) *GuardedMessenger {
	return &GuardedMessenger{next: next, cb: cb}
}

// IsOpen lets the dispatcher skip a tick while the provider is down.
func (g *GuardedMessenger) IsOpen() bool { return g.cb.IsOpen() }

func (g *GuardedMessenger) SendText(ctx context.Context, to, body string) error {
	return g.guard("send text", func() error { return g.next.SendText(ctx, to, body) })
}

func (g *GuardedMessenger) SendMedia(ctx context.Context, to string, m Media) error {
	return g.guard("send media", func() error { return g.next.SendMedia(ctx, to, m) })
}

func (g *GuardedMessenger) guard(op string, fn func() error) error {
	before := g.cb.State()
	err := g.cb.Execute(fn)
	if errors.Is(err, ErrCircuitOpen) {
		return apperr.Wrap(apperr.KindTransientSend, "messenger "+op, err)
	}
	if after := g.cb.State(); after != before {
		log.Warn().Str("from", before.String()).Str("to", after.String()).Msg("messenger: circuit breaker state changed")
	}
	return err
}

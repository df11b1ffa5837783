package service

import (
	"context"
	"errors"
	"time"

	"github.com/leodymann/wi-api/internal/apperr"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// compensations collects undo actions for side effects a unit of work
// performs outside the database. They run in reverse order when the
// transaction fails.
type compensations []func(ctx context.Context) error

func (c *compensations) add(fn func(ctx context.Context) error) { *c = append(*c, fn) }

func (c compensations) run(ctx context.Context) {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](ctx); err != nil {
			log.Warn().Err(err).Msg("service: compensation failed")
		}
	}
}

// notFound maps gorm.ErrRecordNotFound to a not-found error and passes
// anything else through wrapped as internal.
func notFound(err error, op, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(op, "%s não encontrado(a)", what)
	}
	if apperr.KindOf(err) != apperr.KindInternal {
		return err
	}
	return apperr.Wrap(apperr.KindInternal, op, err)
}

func parseID(op, field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.InvalidArgument(op, "%s inválido", field)
	}
	return id, nil
}

// parseDate reads a YYYY-MM-DD value as a UTC midnight date.
func parseDate(op, field string, raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, apperr.InvalidArgument(op, "%s deve estar no formato AAAA-MM-DD", field)
	}
	return &t, nil
}

// Clock is shared by services that stamp times; tests replace it.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

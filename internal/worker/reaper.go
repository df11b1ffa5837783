package worker

// reaper.go
// Periodically frees notifications stuck in SENDING: a worker that crashed
// between claim and save leaves the row claimed forever otherwise.

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// StaleReaper is implemented by the notification repository.
type StaleReaper interface {
	ReapStale(ctx context.Context, cutoff, now time.Time) (int64, error)
}

type Reaper struct {
	repo       StaleReaper
	staleAfter time.Duration
	now        func() time.Time
}

func NewReaper(repo StaleReaper, staleAfter time.Duration) *Reaper {
	if staleAfter <= 0 {
		staleAfter = 15 * time.Minute
	}
	return &Reaper{repo: repo, staleAfter: staleAfter, now: time.Now}
}

// Reap runs one sweep and returns how many claims were released.
func (r *Reaper) Reap(ctx context.Context) (int64, error) {
	now := r.now()
	n, err := r.repo.ReapStale(ctx, now.Add(-r.staleAfter), now)
	if err != nil {
		return n, err
	}
	if n > 0 {
		log.Warn().Int64("released", n).Dur("stale_after", r.staleAfter).Msg("reaper: stale claims released")
	}
	return n, nil
}

// Start schedules Reap on spec (cron syntax or @every) until ctx is done.
func (r *Reaper) Start(ctx context.Context, spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := r.Reap(ctx); err != nil {
			log.Error().Err(err).Msg("reaper: sweep failed")
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	log.Info().Str("schedule", spec).Msg("reaper: started")

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		log.Info().Msg("reaper: shutting down")
	}()
	return nil
}

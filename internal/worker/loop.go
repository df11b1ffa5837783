package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/leodymann/wi-api/internal/logger"

	"github.com/rs/zerolog"
)

// Task is one step of a worker tick. It returns how many messages went out.
type Task struct {
	Name string
	Run  func(ctx context.Context, now time.Time) (int, error)
}

// Loop runs its tasks in order once per interval until ctx is cancelled.
type Loop struct {
	tasks    []Task
	interval time.Duration
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration)
	log      zerolog.Logger
}

func NewLoop(interval time.Duration, tasks ...Task) *Loop {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Loop{tasks: tasks, interval: interval, now: time.Now, sleep: sleepCtx, log: logger.WithComponent("worker")}
}

// Run blocks until ctx is done. Cancellation is honoured between ticks.
func (l *Loop) Run(ctx context.Context) {
	l.log.Info().Dur("interval", l.interval).Int("tasks", len(l.tasks)).Msg("worker: loop started")
	for {
		if ctx.Err() != nil {
			l.log.Info().Msg("worker: loop shutting down")
			return
		}
		started := l.now()
		l.Tick(ctx)

		wait := l.interval - l.now().Sub(started)
		if wait < time.Second {
			wait = time.Second
		}
		l.sleep(ctx, wait)
	}
}

// Tick runs every task once. A failing or panicking task never stops the
// others.
func (l *Loop) Tick(ctx context.Context) map[string]int {
	sent := make(map[string]int, len(l.tasks))
	total := 0
	for _, t := range l.tasks {
		if ctx.Err() != nil {
			break
		}
		n, err := runTask(ctx, t, l.now())
		if err != nil {
			l.log.Error().Err(err).Str("task", t.Name).Msg("worker: task failed")
		}
		sent[t.Name] = n
		total += n
	}
	if total > 0 {
		ev := l.log.Info()
		for name, n := range sent {
			ev = ev.Int(name, n)
		}
		ev.Msg("worker: tick sent")
	}
	return sent
}

func runTask(ctx context.Context, t Task, now time.Time) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return t.Run(ctx, now)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

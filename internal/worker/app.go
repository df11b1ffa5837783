package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/leodymann/wi-api/internal/apperr"
	"github.com/leodymann/wi-api/internal/config"
	"github.com/leodymann/wi-api/internal/dispatch"
	"github.com/leodymann/wi-api/internal/infra"
	"github.com/leodymann/wi-api/internal/report"
	"github.com/leodymann/wi-api/internal/repository"
	"github.com/leodymann/wi-api/internal/schedule"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// App is the assembled worker process.
type App struct {
	Loop   *Loop
	Reaper *Reaper
	DLQ    *DeadLetters // nil without redis
	jobs   *Dispatcher
	email  *EmailWorker
	cfg    *config.Config
}

// New builds the worker from configuration. It fails with a configuration
// error when the messaging provider or the owner number is missing.
// rdb may be nil: dead letters and the e-mail queue are then disabled and
// scheduler state must use the file backend.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*App, error) {
	owner := strings.TrimSpace(cfg.OwnerTo)
	if owner == "" {
		return nil, apperr.New(apperr.KindConfiguration, "worker", "UAZAPI_DEFAULT_TO is not configured")
	}
	policy, err := cfg.RetryPolicy()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, "worker", err)
	}

	client, err := infra.NewUazapiClient(infra.UazapiConfig{
		BaseURL: cfg.UazapiBaseURL,
		Token:   cfg.UazapiToken,
		Timeout: time.Duration(cfg.UazapiTimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}
	messenger := infra.NewGuardedMessenger(client, infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		FailureThreshold: cfg.MessagingCBFailures,
		OpenTimeout:      time.Duration(cfg.MessagingCBOpenSecs) * time.Second,
	}))

	store, err := stateStore(cfg, rdb)
	if err != nil {
		return nil, err
	}

	mailer := infra.NewMailer(cfg)
	app := &App{cfg: cfg, email: NewEmailWorker(mailer)}
	var sink dispatch.DeadLetterSink
	var emails EmailQueue
	if rdb != nil {
		app.DLQ = NewDeadLetters(rdb)
		app.jobs = NewDispatcher(rdb)
		sink = app.DLQ
		emails = app.jobs
	} else {
		emails = NewInlineEmail(app.email)
	}
	if !mailer.Enabled() {
		emails = nil
	}

	notifications := repository.NewNotificationRepository(db)
	engine := dispatch.NewEngine(notifications, messenger, policy, sink, messenger)
	loc := cfg.Location()
	settings := dispatch.Settings{
		OwnerTo:         owner,
		Location:        loc,
		ReminderDays:    cfg.ReminderDays,
		FinanceLimit:    cfg.FinanceBatchLimit,
		DueSoonLimit:    cfg.DueSoonBatchLimit,
		DueTodayLimit:   cfg.DueTodayBatchLimit,
		OverdueLimit:    cfg.OverdueBatchLimit,
		DueTodayEnabled: cfg.DueTodayEnabled,
		Pix: dispatch.PixSettings{
			Key:           cfg.PixKey,
			ReceiverName:  cfg.PixReceiverName,
			MessagePrefix: cfg.PixMessagePrefix,
		},
	}

	tasks := []Task{
		DispatchTask(engine, dispatch.NewFinanceDue(notifications, settings)),
		DispatchTask(engine, dispatch.NewDueSoon(notifications, settings)),
		DispatchTask(engine, dispatch.NewDueToday(notifications, settings)),
		DispatchTask(engine, dispatch.NewOverdue(notifications, settings)),
	}

	builder := report.NewBuilder(repository.NewReportRepository(db), cfg.PDFStoreName)
	reportCfg := ReportConfig{OwnerTo: owner, EmailTo: cfg.ReportEmailTo, Location: loc}
	if cfg.WeeklyReportEnabled {
		gate := schedule.NewWeeklyGate(store, isoWeekday(cfg.WeeklyReportWeekday), cfg.WeeklyReportHour, cfg.WeeklyReportMinute)
		tasks = append(tasks, NewReportTask(report.Weekly, gate, builder, infra.RenderReportPDF, messenger, emails, reportCfg).Task())
	}
	if cfg.MonthlyReportEnabled {
		gate := schedule.NewMonthlyGate(store, cfg.MonthlyReportHour, cfg.MonthlyReportMinute)
		tasks = append(tasks, NewReportTask(report.Monthly, gate, builder, infra.RenderReportPDF, messenger, emails, reportCfg).Task())
	}

	if cfg.OffersEnabled {
		groups := ParseGroupIDs(cfg.ProductsGroupTo)
		if len(groups) == 0 {
			return nil, apperr.New(apperr.KindConfiguration, "worker",
				`UAZAPI_PRODUCTS_GROUP_TO has no valid group id (ex: 1203...@g.us,1203...@g.us or ["..."])`)
		}
		limiter := schedule.NewCampaignLimiter(store, time.Duration(cfg.OffersMinSpacingMinutes)*time.Minute)
		offers := NewOfferTask(repository.NewProductRepository(db), messenger, limiter, OfferConfig{
			Groups:        groups,
			StartHour:     cfg.OffersStartHour,
			EndHour:       cfg.OffersEndHour,
			Limit:         cfg.ProductsOfferLimit,
			PublicBaseURL: cfg.MediaPublicBaseURL,
			Location:      loc,
		})
		tasks = append(tasks, offers.Task())
	}

	app.Loop = NewLoop(time.Duration(cfg.WorkerIntervalSeconds)*time.Second, tasks...)
	app.Reaper = NewReaper(notifications, time.Duration(cfg.SendingStaleMinutes)*time.Minute)

	log.Info().
		Str("owner", owner).
		Int("tasks", len(tasks)).
		Int("reminder_days", cfg.ReminderDays).
		Str("state_backend", cfg.SchedulerStateBackend).
		Bool("redis", rdb != nil).
		Msg("worker: configured")
	return app, nil
}

// Run starts the reaper and the e-mail pool, then blocks in the loop.
func (a *App) Run(ctx context.Context) error {
	if err := a.Reaper.Start(ctx, a.cfg.ReaperSchedule); err != nil {
		return fmt.Errorf("reaper schedule %q: %w", a.cfg.ReaperSchedule, err)
	}
	if a.jobs != nil {
		StartWorkerPool(ctx, a.jobs, a.DLQ, &WorkerHandlers{Email: a.email}, a.cfg.WorkerPoolSize)
	}
	a.Loop.Run(ctx)
	return nil
}

func stateStore(cfg *config.Config, rdb *redis.Client) (schedule.StateStore, error) {
	if cfg.SchedulerStateBackend == "redis" {
		if rdb == nil {
			return nil, apperr.New(apperr.KindConfiguration, "worker", "SCHEDULER_STATE_BACKEND=redis requires REDIS_URL")
		}
		return schedule.NewRedisStore(rdb, 0), nil
	}
	return schedule.NewFileStore(cfg.SchedulerStateDir)
}

// isoWeekday maps 0 = Monday .. 6 = Sunday to time.Weekday.
func isoWeekday(d int) time.Weekday { return time.Weekday((d + 1) % 7) }

package config

import (
	"fmt"
	"time"

	"github.com/leodymann/wi-api/internal/dispatch"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field maps 1:1 to an env var; every key has a default so that
// viper.AutomaticEnv picks it up on Unmarshal.
type Config struct {
	// Server
	Port      int    `mapstructure:"PORT"`
	Env       string `mapstructure:"APP_ENV"` // development | production
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"` // console | json
	Timezone  string `mapstructure:"APP_TIMEZONE"`

	// Database
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	AutoMigrate bool   `mapstructure:"AUTO_MIGRATE"`

	// Redis
	RedisURL string `mapstructure:"REDIS_URL"`

	// Auth
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`
	JWTRefreshHours    int    `mapstructure:"JWT_REFRESH_HOURS"`

	// Messaging provider
	UazapiBaseURL        string `mapstructure:"UAZAPI_BASE_URL"`
	UazapiToken          string `mapstructure:"UAZAPI_TOKEN"`
	UazapiTimeoutSeconds int    `mapstructure:"UAZAPI_TIMEOUT_SECONDS"`
	OwnerTo              string `mapstructure:"UAZAPI_DEFAULT_TO"`
	ProductsGroupTo      string `mapstructure:"UAZAPI_PRODUCTS_GROUP_TO"`
	MessagingCBFailures  int    `mapstructure:"MESSAGING_CB_FAILURES"`
	MessagingCBOpenSecs  int    `mapstructure:"MESSAGING_CB_OPEN_SECONDS"`

	// Worker
	WorkerIntervalSeconds int    `mapstructure:"WORKER_INTERVAL_SECONDS"`
	WorkerPoolSize        int    `mapstructure:"WORKER_POOL_SIZE"`
	ReminderDays          int    `mapstructure:"PROMISSORY_REMINDER_DAYS"`
	FinanceBatchLimit     int    `mapstructure:"FINANCE_BATCH_LIMIT"`
	DueSoonBatchLimit     int    `mapstructure:"DUE_SOON_BATCH_LIMIT"`
	DueTodayBatchLimit    int    `mapstructure:"DUE_TODAY_BATCH_LIMIT"`
	OverdueBatchLimit     int    `mapstructure:"OVERDUE_BATCH_LIMIT"`
	SendBackoff           string `mapstructure:"SEND_BACKOFF"`
	SendMaxTries          int    `mapstructure:"SEND_MAX_TRIES"`
	SendingStaleMinutes   int    `mapstructure:"SENDING_STALE_MINUTES"`
	ReaperSchedule        string `mapstructure:"REAPER_SCHEDULE"`

	// Due-today client message
	DueTodayEnabled  bool   `mapstructure:"DUE_TODAY_SEND_ENABLED"`
	PixKey           string `mapstructure:"PIX_KEY"`
	PixReceiverName  string `mapstructure:"PIX_RECEIVER_NAME"`
	PixMessagePrefix string `mapstructure:"PIX_MESSAGE_PREFIX"`

	// Offers campaign
	OffersEnabled           bool   `mapstructure:"OFFERS_ENABLED"`
	OffersStartHour         int    `mapstructure:"OFFERS_START_HOUR"`
	OffersEndHour           int    `mapstructure:"OFFERS_END_HOUR"`
	OffersMinSpacingMinutes int    `mapstructure:"OFFERS_MIN_SPACING_MINUTES"`
	ProductsOfferLimit      int    `mapstructure:"PRODUCTS_OFFER_LIMIT"`
	MediaPublicBaseURL      string `mapstructure:"MEDIA_PUBLIC_BASE_URL"`

	// Reports
	WeeklyReportEnabled  bool   `mapstructure:"WEEKLY_REPORT_ENABLED"`
	WeeklyReportWeekday  int    `mapstructure:"WEEKLY_REPORT_WEEKDAY"` // 0 = Monday .. 6 = Sunday
	WeeklyReportHour     int    `mapstructure:"WEEKLY_REPORT_HOUR"`
	WeeklyReportMinute   int    `mapstructure:"WEEKLY_REPORT_MINUTE"`
	MonthlyReportEnabled bool   `mapstructure:"MONTHLY_REPORT_ENABLED"`
	MonthlyReportHour    int    `mapstructure:"MONTHLY_REPORT_HOUR"`
	MonthlyReportMinute  int    `mapstructure:"MONTHLY_REPORT_MINUTE"`
	PDFStoreName         string `mapstructure:"PDF_STORE_NAME"`
	ReportEmailTo        string `mapstructure:"REPORT_EMAIL_TO"`

	// Scheduler state
	SchedulerStateBackend string `mapstructure:"SCHEDULER_STATE_BACKEND"` // file | redis
	SchedulerStateDir     string `mapstructure:"SCHEDULER_STATE_DIR"`

	// SMTP
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`
}

var defaults = map[string]any{
	"PORT":         8000,
	"APP_ENV":      "development",
	"LOG_LEVEL":    "info",
	"LOG_FORMAT":   "console",
	"APP_TIMEZONE": "America/Fortaleza",

	"DATABASE_URL": "postgres://wi:wi@localhost:5432/wi?sslmode=disable",
	"AUTO_MIGRATE": true,
	"REDIS_URL":    "redis://localhost:6379/0",

	"JWT_SECRET":           "",
	"JWT_EXPIRATION_HOURS": 8,
	"JWT_REFRESH_HOURS":    24,

	"UAZAPI_BASE_URL":           "https://free.uazapi.com",
	"UAZAPI_TOKEN":              "",
	"UAZAPI_TIMEOUT_SECONDS":    30,
	"UAZAPI_DEFAULT_TO":         "",
	"UAZAPI_PRODUCTS_GROUP_TO":  "",
	"MESSAGING_CB_FAILURES":     5,
	"MESSAGING_CB_OPEN_SECONDS": 60,

	"WORKER_INTERVAL_SECONDS":  30,
	"WORKER_POOL_SIZE":         2,
	"PROMISSORY_REMINDER_DAYS": 5,
	"FINANCE_BATCH_LIMIT":      50,
	"DUE_SOON_BATCH_LIMIT":     200,
	"DUE_TODAY_BATCH_LIMIT":    300,
	"OVERDUE_BATCH_LIMIT":      100,
	"SEND_BACKOFF":             "1m,5m,15m,60m,6h",
	"SEND_MAX_TRIES":           12,
	"SENDING_STALE_MINUTES":    15,
	"REAPER_SCHEDULE":          "@every 1m",

	"DUE_TODAY_SEND_ENABLED": true,
	"PIX_KEY":                "",
	"PIX_RECEIVER_NAME":      "",
	"PIX_MESSAGE_PREFIX":     "",

	"OFFERS_ENABLED":             true,
	"OFFERS_START_HOUR":          8,
	"OFFERS_END_HOUR":            20,
	"OFFERS_MIN_SPACING_MINUTES": 0,
	"PRODUCTS_OFFER_LIMIT":       50,
	"MEDIA_PUBLIC_BASE_URL":      "",

	"WEEKLY_REPORT_ENABLED":  true,
	"WEEKLY_REPORT_WEEKDAY":  0,
	"WEEKLY_REPORT_HOUR":     8,
	"WEEKLY_REPORT_MINUTE":   0,
	"MONTHLY_REPORT_ENABLED": true,
	"MONTHLY_REPORT_HOUR":    18,
	"MONTHLY_REPORT_MINUTE":  0,
	"PDF_STORE_NAME":         "WI Motos",
	"REPORT_EMAIL_TO":        "",

	"SCHEDULER_STATE_BACKEND": "file",
	"SCHEDULER_STATE_DIR":     "./data",

	"SMTP_HOST":     "",
	"SMTP_PORT":     587,
	"SMTP_USER":     "",
	"SMTP_PASSWORD": "",
	"SMTP_FROM":     "",
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	// Optional .env file for local development, missing is fine
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location resolves APP_TIMEZONE. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// RetryPolicy builds the send retry policy from SEND_BACKOFF and SEND_MAX_TRIES.
func (c *Config) RetryPolicy() (dispatch.RetryPolicy, error) {
	steps, err := dispatch.ParseBackoff(c.SendBackoff)
	if err != nil {
		return dispatch.RetryPolicy{}, fmt.Errorf("SEND_BACKOFF: %w", err)
	}
	p, err := dispatch.NewRetryPolicy(steps, c.SendMaxTries)
	if err != nil {
		return dispatch.RetryPolicy{}, fmt.Errorf("SEND_BACKOFF: %w", err)
	}
	return p, nil
}

// Validate checks the values that would otherwise fail deep inside the worker.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	if _, err := c.RetryPolicy(); err != nil {
		return err
	}
	if c.SendMaxTries < 0 {
		return fmt.Errorf("SEND_MAX_TRIES must be >= 0")
	}
	if !validHour(c.OffersStartHour) || !validHour(c.OffersEndHour) || c.OffersStartHour > c.OffersEndHour {
		return fmt.Errorf("offer window %d..%d is invalid", c.OffersStartHour, c.OffersEndHour)
	}
	if c.WeeklyReportWeekday < 0 || c.WeeklyReportWeekday > 6 {
		return fmt.Errorf("WEEKLY_REPORT_WEEKDAY must be 0..6")
	}
	for name, hm := range map[string][2]int{
		"WEEKLY_REPORT":  {c.WeeklyReportHour, c.WeeklyReportMinute},
		"MONTHLY_REPORT": {c.MonthlyReportHour, c.MonthlyReportMinute},
	} {
		if !validHour(hm[0]) || hm[1] < 0 || hm[1] > 59 {
			return fmt.Errorf("%s time %02d:%02d is invalid", name, hm[0], hm[1])
		}
	}
	switch c.SchedulerStateBackend {
	case "file", "redis":
	default:
		return fmt.Errorf("SCHEDULER_STATE_BACKEND must be file or redis")
	}
	return nil
}

func validHour(h int) bool { return h >= 0 && h <= 23 }

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 12, cfg.SendMaxTries)
	assert.Equal(t, "@every 1m", cfg.ReaperSchedule)
	assert.Equal(t, 5, cfg.ReminderDays)
	assert.True(t, cfg.DueTodayEnabled)
	require.NoError(t, cfg.Validate())

	p, err := cfg.RetryPolicy()
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour, p.Delay(5))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SEND_BACKOFF", "30s,2m")
	t.Setenv("OFFERS_START_HOUR", "9")
	t.Setenv("DUE_TODAY_SEND_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.OffersStartHour)
	assert.False(t, cfg.DueTodayEnabled)

	p, err := cfg.RetryPolicy()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, p.Delay(1))
	assert.Equal(t, 2*time.Minute, p.Delay(9))
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	cases := map[string]func(c *Config){
		"bad timezone":       func(c *Config) { c.Timezone = "Mars/Olympus" },
		"decreasing backoff": func(c *Config) { c.SendBackoff = "5m,1m" },
		"bad duration":       func(c *Config) { c.SendBackoff = "soon" },
		"window inverted":    func(c *Config) { c.OffersStartHour, c.OffersEndHour = 20, 8 },
		"weekday":            func(c *Config) { c.WeeklyReportWeekday = 7 },
		"minute":             func(c *Config) { c.MonthlyReportMinute = 60 },
		"state backend":      func(c *Config) { c.SchedulerStateBackend = "s3" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLocation(t *testing.T) {
	c := &Config{Timezone: "America/Sao_Paulo"}
	assert.Equal(t, "America/Sao_Paulo", c.Location().String())
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://localhost/team?sslmode=disable")
	t.Setenv("ADMIN_TELEGRAM_ID", "100")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	for _, name := range []string{"COACH_TELEGRAM_IDS", "LOG_LEVEL", "ENVIRONMENT", "REDIS_URL", "DRAFT_TTL",
		"FETCH_TIMEOUT", "SAVE_TIMEOUT", "MIGRATIONS_DIR", "CRON_SPEC_SESSION_REMINDER"} {
		t.Setenv(name, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(100), cfg.AdminTelegramID)
	assert.Empty(t, cfg.CoachTelegramIDs)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 12*time.Hour, cfg.DraftTTL)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 15*time.Second, cfg.SaveTimeout)
	assert.Equal(t, "./migrations", cfg.MigrationsDir)
	assert.Equal(t, "0 21 * * *", cfg.CronSpecReminder)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("COACH_TELEGRAM_IDS", "200, 300,")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SAVE_TIMEOUT", "5s")
	t.Setenv("METRICS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []int64{200, 300}, cfg.CoachTelegramIDs)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.SaveTimeout)
	assert.Empty(t, cfg.MetricsAddr, "explicitly empty disables the metrics server")
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "missing token", key: "TELEGRAM_TOKEN", value: ""},
		{name: "missing database", key: "DATABASE_URL", value: ""},
		{name: "bad admin id", key: "ADMIN_TELEGRAM_ID", value: "abc"},
		{name: "bad coach list", key: "COACH_TELEGRAM_IDS", value: "1,x"},
		{name: "bad timeout", key: "FETCH_TIMEOUT", value: "soon"},
		{name: "negative ttl", key: "DRAFT_TTL", value: "-1m"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestAppConfig_Roles(t *testing.T) {
	cfg := &AppConfig{AdminTelegramID: 1, CoachTelegramIDs: []int64{2, 1, 3}}

	assert.True(t, cfg.IsCoach(1))
	assert.True(t, cfg.IsCoach(3))
	assert.False(t, cfg.IsCoach(4))
	assert.Equal(t, []int64{1, 2, 3}, cfg.Recipients())
}

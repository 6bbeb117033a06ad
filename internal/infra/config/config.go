package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken    string
	DatabaseURL      string
	AdminTelegramID  int64
	CoachTelegramIDs []int64
	LogLevel         string
	Environment      string
	RedisURL         string // Empty keeps open attendance sheets in memory
	DraftTTL         time.Duration
	FetchTimeout     time.Duration
	SaveTimeout      time.Duration
	MigrationsDir    string
	MetricsAddr      string
	CronSpecReminder string // Daily check for sessions without attendance
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.CoachTelegramIDs, err = parseIDList(os.Getenv("COACH_TELEGRAM_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid COACH_TELEGRAM_IDS: %w", err)
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.RedisURL = os.Getenv("REDIS_URL")

	if cfg.DraftTTL, err = durationEnv("DRAFT_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	// Same budgets the mobile client raced its queries against.
	if cfg.FetchTimeout, err = durationEnv("FETCH_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.SaveTimeout, err = durationEnv("SAVE_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}

	cfg.MigrationsDir = os.Getenv("MIGRATIONS_DIR")
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = "./migrations"
	}

	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")
	if _, set := os.LookupEnv("METRICS_ADDR"); !set {
		cfg.MetricsAddr = ":9090"
	}

	cfg.CronSpecReminder = os.Getenv("CRON_SPEC_SESSION_REMINDER")
	if cfg.CronSpecReminder == "" {
		cfg.CronSpecReminder = "0 21 * * *" // Default: 9 PM daily
	}

	return cfg, nil
}

// IsCoach reports whether the Telegram user may take attendance. The admin always can.
func (c *AppConfig) IsCoach(telegramID int64) bool {
	if telegramID == c.AdminTelegramID {
		return true
	}
	for _, id := range c.CoachTelegramIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

// Recipients returns every chat that receives session reminders, admin first.
func (c *AppConfig) Recipients() []int64 {
	ids := []int64{c.AdminTelegramID}
	for _, id := range c.CoachTelegramIDs {
		if id != c.AdminTelegramID {
			ids = append(ids, id)
		}
	}
	return ids
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", name)
	}
	return d, nil
}

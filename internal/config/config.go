package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the server and the cron runner.
type Config struct {
	HTTPAddr    string
	DatabaseURL string
	BaseURL     string // public URL of the web client, for deep links

	// Pre-shared sweep secrets. Each endpoint checks its own.
	OverdueSecret  string
	ReminderSecret string

	// Email provider (overdue channel).
	EmailAPIURL     string
	EmailAPIKey     string
	EmailFrom       string
	EmailTemplateID string

	// Push provider (upcoming-reminder channel).
	PushAPIURL string
	PushAPIKey string

	// Cron runner.
	SweepInterval time.Duration
	ServerURL     string

	Development bool
}

// Load reads configuration from environment variables with sane defaults.
// A .env file is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load() // optional in production

	cfg := Config{
		HTTPAddr:        getEnvOrDefault("HTTP_ADDR", ":8080"),
		DatabaseURL:     getEnvOrDefault("DATABASE_URL", "todo_planner.db"),
		BaseURL:         getEnvOrDefault("BASE_URL", "http://localhost:3000"),
		OverdueSecret:   strings.TrimSpace(os.Getenv("OVERDUE_SECRET")),
		ReminderSecret:  strings.TrimSpace(os.Getenv("REMINDER_SECRET")),
		EmailAPIURL:     getEnvOrDefault("EMAIL_API_URL", "https://api.sendgrid.com/v3/mail/send"),
		EmailAPIKey:     strings.TrimSpace(os.Getenv("EMAIL_API_KEY")),
		EmailFrom:       strings.TrimSpace(os.Getenv("EMAIL_FROM")),
		EmailTemplateID: strings.TrimSpace(os.Getenv("EMAIL_TEMPLATE_ID")),
		PushAPIURL:      strings.TrimSpace(os.Getenv("PUSH_API_URL")),
		PushAPIKey:      strings.TrimSpace(os.Getenv("PUSH_API_KEY")),
		SweepInterval:   parseInterval(strings.TrimSpace(os.Getenv("SWEEP_INTERVAL_MINUTES"))),
		ServerURL:       getEnvOrDefault("SERVER_URL", "http://localhost:8080"),
		Development:     os.Getenv("DEVELOPMENT") == "true",
	}

	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = 15 * time.Minute
	}

	if cfg.OverdueSecret == "" || cfg.ReminderSecret == "" {
		return cfg, fmt.Errorf("OVERDUE_SECRET and REMINDER_SECRET are required")
	}

	return cfg, nil
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	minutes, err := time.ParseDuration(raw + "m")
	if err != nil || minutes <= 0 {
		return 0
	}
	return minutes
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

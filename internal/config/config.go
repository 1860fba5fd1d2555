package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs from the environment.
// Required values missing at startup are a hard error (we would rather
// fail fast than discover a missing credential mid-sweep).
type Config struct {
	// Record store
	AirtableToken  string
	AirtableBaseID string
	RemindersTable string
	CompaniesTable string

	// Mail relay
	SMTPHost     string
	SMTPPort     int
	SMTPEmail    string
	SMTPPassword string
	AdminEmail   string

	// Login
	AuthUsername string
	AuthPassword string

	// Server
	Port           string
	AllowedOrigins []string

	// Sweep worker
	SweepWorkerEnabled bool
	SweepInterval      time.Duration

	// Read-through list cache
	CacheTTL time.Duration
}

// Load reads configuration from the environment. A .env file is loaded
// first if present (development convenience, same as production when the
// platform injects real env vars).
func Load() (*Config, error) {
	// Ignore the error: a missing .env file is normal outside development.
	_ = godotenv.Load()

	cfg := &Config{
		SMTPHost:           getEnvDefault("SMTP_SERVER", "smtp.gmail.com"),
		Port:               getEnvDefault("PORT", "8080"),
		AuthUsername:       getEnvDefault("AUTH_USERNAME", "admin"),
		RemindersTable:     getEnvDefault("AIRTABLE_TABLE_NAME", "Reminders"),
		CompaniesTable:     getEnvDefault("AIRTABLE_COMPANIES_TABLE", "Companies"),
		SweepWorkerEnabled: os.Getenv("SWEEP_WORKER") == "true",
	}

	var err error
	if cfg.AirtableToken, err = getEnvRequired("AIRTABLE_PERSONAL_ACCESS_TOKEN"); err != nil {
		return nil, err
	}
	if cfg.AirtableBaseID, err = getEnvRequired("AIRTABLE_BASE_ID"); err != nil {
		return nil, err
	}
	if cfg.SMTPEmail, err = getEnvRequired("SMTP_EMAIL"); err != nil {
		return nil, err
	}
	if cfg.SMTPPassword, err = getEnvRequired("SMTP_PASSWORD"); err != nil {
		return nil, err
	}
	if cfg.AdminEmail, err = getEnvRequired("ADMIN_EMAIL"); err != nil {
		return nil, err
	}
	if cfg.AuthPassword, err = getEnvRequired("AUTH_PASSWORD"); err != nil {
		return nil, err
	}

	cfg.SMTPPort, err = getEnvInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	if cfg.SMTPPort != 587 && cfg.SMTPPort != 465 {
		return nil, fmt.Errorf("SMTP_PORT must be 587 (STARTTLS) or 465 (implicit TLS), got %d", cfg.SMTPPort)
	}

	cfg.SweepInterval, err = getEnvDuration("SWEEP_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.CacheTTL, err = getEnvDuration("LIST_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, err
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, strings.TrimSpace(origin))
		}
	}

	return cfg, nil
}

// getEnvRequired gets an environment variable or returns an error naming it
func getEnvRequired(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return value, nil
}

func getEnvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 5m or 30s: %w", key, err)
	}
	return d, nil
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL     string
	DatabaseDriver  string
	Timezone        string
	StripeAPIKey    string
	BusinessName    string
	LogLevel        slog.Level
	InvoiceCacheTTL time.Duration
	WeeklyMonths    int
	WeekAnchor      time.Weekday

	// TaskRetention is how long done tasks are kept; zero keeps them forever.
	TaskRetention time.Duration
	BackupDir     string
}

// Load reads .env (when present) and the environment. Explicit arguments win over the
// environment; empty arguments fall through to it.
func Load(dbConn, dbDriver string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	if dbConn == "" {
		dbConn = getEnv("DATABASE_URL", "./paca.db")
	}

	if dbDriver == "" {
		dbDriver = getEnv("DATABASE_DRIVER", "sqlite3")
	}

	level, err := ParseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(getEnv("INVOICE_CACHE_TTL", "2m"))
	if err != nil {
		return nil, fmt.Errorf("invalid INVOICE_CACHE_TTL: %w", err)
	}

	months, err := strconv.Atoi(getEnv("WEEKLY_MONTHS", "6"))
	if err != nil || months <= 0 {
		return nil, fmt.Errorf("WEEKLY_MONTHS must be a positive integer")
	}

	anchor, err := ParseWeekday(getEnv("WEEK_ANCHOR", "sunday"))
	if err != nil {
		return nil, err
	}

	retentionDays, err := strconv.Atoi(getEnv("TASK_RETENTION_DAYS", "3"))
	if err != nil || retentionDays < 0 {
		return nil, fmt.Errorf("TASK_RETENTION_DAYS must be a non-negative integer")
	}

	cfg := &Config{
		DatabaseURL:     dbConn,
		DatabaseDriver:  dbDriver,
		Timezone:        getEnv("PACA_TIMEZONE", ""),
		StripeAPIKey:    getEnv("STRIPE_API_KEY", ""),
		BusinessName:    getEnv("BUSINESS_NAME", ""),
		LogLevel:        level,
		InvoiceCacheTTL: ttl,
		WeeklyMonths:    months,
		WeekAnchor:      anchor,
		TaskRetention:   time.Duration(retentionDays) * 24 * time.Hour,
		BackupDir:       getEnv("BACKUP_DIR", "./backups"),
	}

	return cfg, nil
}

func (c *Config) Dump() {
	fmt.Printf("Database URL: %s\n", c.DatabaseURL)
	fmt.Printf("Database Driver: %s\n", c.DatabaseDriver)
	fmt.Printf("Timezone: %s\n", valueOr(c.Timezone, "(from settings)"))
	fmt.Printf("Stripe API Key: %s\n", mask(c.StripeAPIKey))
	fmt.Printf("Business Name: %s\n", c.BusinessName)
	fmt.Printf("Log Level: %s\n", c.LogLevel)
	fmt.Printf("Invoice Cache TTL: %s\n", c.InvoiceCacheTTL)
	fmt.Printf("Weekly Months: %d\n", c.WeeklyMonths)
	fmt.Printf("Week Anchor: %s\n", c.WeekAnchor)
	fmt.Printf("Task Retention: %s\n", c.TaskRetention)
	fmt.Printf("Backup Directory: %s\n", c.BackupDir)
}

// NewLogger builds the process logger; output goes to stderr so command output stays clean.
func (c *Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel}))
}

func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func mask(secret string) string {
	if len(secret) <= 8 {
		if secret == "" {
			return "(not set)"
		}
		return "********"
	}
	return "****" + secret[len(secret)-4:]
}

package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var ErrMissingSecret = errors.New("SESSION_SECRET is required")

// Config agrupa todo lo que el server lee del ambiente.
// DBDSN vacío => repos in-memory (dev). AdminEmail/AdminPasswordHash vacíos
// => no hay sesión admin posible (los endpoints /admin devuelven 401 siempre).
type Config struct {
	Addr string

	DBDSN string

	SessionSecret string

	AdminEmail        string
	AdminPasswordHash string // bcrypt

	LogLevel  string
	LogFormat string

	// rate limit de login, por IP
	LoginRPS   float64
	LoginBurst int

	// opcional: webhook para recordatorios de refill
	ReminderWebhookURL string
}

// Load lee .env si existe y luego el ambiente.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:               ":" + env("PORT", "8080"),
		DBDSN:              os.Getenv("DB_DSN"),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		AdminEmail:         strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
		AdminPasswordHash:  os.Getenv("ADMIN_PASSWORD_HASH"),
		LogLevel:           env("LOG_LEVEL", "info"),
		LogFormat:          env("LOG_FORMAT", "text"),
		LoginRPS:           envFloat("LOGIN_RPS", 5),
		LoginBurst:         envInt("LOGIN_BURST", 10),
		ReminderWebhookURL: os.Getenv("REMINDER_WEBHOOK_URL"),
	}

	if strings.TrimSpace(cfg.SessionSecret) == "" {
		return Config{}, ErrMissingSecret
	}
	return cfg, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

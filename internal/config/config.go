package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr         = ":8080"
	defaultDatabaseURL      = "vehiclerent.db"
	defaultJWTSecret        = "change-me-jwt-secret"
	defaultJWTAccessTTL     = "24h"
	defaultSequenceStrategy = "counter"
	defaultAllocAttempts    = "5"
	defaultAllocBackoff     = "100ms"
	defaultVehicleLock      = "true"
	defaultSMTPPort         = "587"
	defaultMailFrom         = "no-reply@vehiclerent.local"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string

	JWTSecret    string
	JWTAccessTTL time.Duration

	CORSAllowedOrigins []string

	// identifier allocation
	SequenceStrategy  string
	AllocMaxAttempts  int
	AllocMaxBackoff   time.Duration
	VehicleLockOnBook bool
	AutoStartInterval time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}

	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.SequenceStrategy = strings.ToLower(strings.TrimSpace(getEnv("CODE_SEQUENCE_STRATEGY", defaultSequenceStrategy)))
	cfg.VehicleLockOnBook = parseBoolEnv("VEHICLE_LOCK_ON_BOOKING", defaultVehicleLock)
	cfg.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	cfg.SMTPHost = strings.TrimSpace(os.Getenv("SMTP_HOST"))
	cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.MailFrom = strings.TrimSpace(getEnv("MAIL_FROM", defaultMailFrom))

	var err error
	cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL)
	if err != nil {
		return nil, err
	}

	cfg.AllocMaxBackoff, err = parseDurationEnv("CODE_ALLOC_MAX_BACKOFF", defaultAllocBackoff)
	if err != nil {
		return nil, err
	}

	cfg.AllocMaxAttempts, err = parseIntEnv("CODE_ALLOC_MAX_ATTEMPTS", defaultAllocAttempts)
	if err != nil {
		return nil, err
	}

	cfg.SMTPPort, err = parseIntEnv("SMTP_PORT", defaultSMTPPort)
	if err != nil {
		return nil, err
	}

	if raw := strings.TrimSpace(os.Getenv("BOOKING_AUTOSTART_INTERVAL")); raw != "" {
		cfg.AutoStartInterval, err = parseDurationEnv("BOOKING_AUTOSTART_INTERVAL", raw)
		if err != nil {
			return nil, err
		}
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s addr=%s sequence=%s vehicle_lock=%t smtp=%t",
		cfg.AppEnv, cfg.HTTPAddr, cfg.SequenceStrategy, cfg.VehicleLockOnBook, cfg.SMTPHost != "")

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.AllocMaxAttempts < 1 {
		return fmt.Errorf("CODE_ALLOC_MAX_ATTEMPTS must be >= 1")
	}
	if cfg.AllocMaxBackoff < 0 {
		return fmt.Errorf("CODE_ALLOC_MAX_BACKOFF must be >= 0")
	}
	if cfg.AutoStartInterval < 0 {
		return fmt.Errorf("BOOKING_AUTOSTART_INTERVAL must be > 0 when set")
	}
	if cfg.SequenceStrategy != "counter" && cfg.SequenceStrategy != "scan" {
		return fmt.Errorf("CODE_SEQUENCE_STRATEGY must be one of: counter, scan")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
	}

	return nil
}

func (c *Config) IsProd() bool { return isProdLike(c.AppEnv) }

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

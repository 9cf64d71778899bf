// Package config loads application configuration from environment
// variables.  A .env file, when present, is loaded by the caller before
// Load runs.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string
	DBPass         string // optional
	DBHost         string
	DBPort         string
	DBName         string
	DBMigrate      bool // apply the embedded schema at startup
	JWTSecret      string
	AccessTTLMin   int // access token time-to-live in minutes
	RefreshTTLDays int // refresh token time-to-live in days
	BcryptCost     int

	LogLevel string
	LogFile  string // empty means stdout only

	RabbitURL string

	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	MailFrom   string
	SiteDomain string

	AdminEmail    string // bootstrap system admin, optional
	AdminPassword string

	BookingLockRetries int
}

// Load reads configuration values from environment variables.  Missing
// required variables are fatal.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		DBMigrate:      envBool("DB_MIGRATE", true),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		LogLevel: envStr("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		RabbitURL: rabbitURL(),

		SMTPHost:   os.Getenv("SMTP_HOST"),
		SMTPPort:   envInt("SMTP_PORT", 587),
		SMTPUser:   os.Getenv("SMTP_USER"),
		SMTPPass:   os.Getenv("SMTP_PASS"),
		MailFrom:   envStr("MAIL_FROM", "no-reply@hotel-booking.local"),
		SiteDomain: envStr("SITE_DOMAIN", "localhost"),

		AdminEmail:    strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		BookingLockRetries: envInt("BOOKING_LOCK_RETRIES", 3),
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + c.Port }

// Validate checks cross-field constraints that Load cannot express.
func (c Config) Validate() error {
	if c.BookingLockRetries < 1 {
		return fmt.Errorf("BOOKING_LOCK_RETRIES must be at least 1, got %d", c.BookingLockRetries)
	}
	if c.AccessTTLMin <= 0 || c.RefreshTTLDays <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	return nil
}

func rabbitURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	MediaDriverR2    = "r2"
	MediaDriverLocal = "local"

	MailDriverResend = "resend"
	MailDriverLog    = "log"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Media       MediaConfig
	Mail        MailConfig
	Redis       RedisConfig
	Leads       LeadConfig
	Admin       AdminConfig
}

type ServerConfig struct {
	Port               string
	CORSAllowedOrigins []string
}

type DatabaseConfig struct {
	URL string
}

type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
}

type MediaConfig struct {
	Driver string

	R2AccountID string
	R2AccessKey string
	R2SecretKey string
	R2Bucket    string
	R2PublicURL string

	LocalDir string
	LocalURL string
}

type MailConfig struct {
	Driver       string
	ResendAPIKey string
	From         string
}

type RedisConfig struct {
	Addr     string
	Password string
}

type LeadConfig struct {
	RateLimit      int
	RateWindow     time.Duration
	RateBlock      time.Duration
	DigestSchedule string
}

type AdminConfig struct {
	Email    string
	Password string
}

// Load reads the environment (and an optional .env file) once. Every missing
// required value is reported in the returned error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	expiresIn, err := parseDuration(getEnv("JWT_EXPIRES_IN", "7d"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}

	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Port:               getEnv("PORT", "3000"),
			CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"}),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		JWT: JWTConfig{
			Secret:    os.Getenv("JWT_SECRET"),
			ExpiresIn: expiresIn,
		},
		Media: MediaConfig{
			Driver:      strings.ToLower(getEnv("MEDIA_DRIVER", MediaDriverR2)),
			R2AccountID: os.Getenv("R2_ACCOUNT_ID"),
			R2AccessKey: os.Getenv("R2_ACCESS_KEY"),
			R2SecretKey: os.Getenv("R2_SECRET_KEY"),
			R2Bucket:    os.Getenv("R2_BUCKET_NAME"),
			R2PublicURL: strings.TrimRight(os.Getenv("R2_PUBLIC_URL"), "/"),
			LocalDir:    getEnv("LOCAL_MEDIA_DIR", "./uploads"),
			LocalURL:    strings.TrimRight(getEnv("LOCAL_MEDIA_URL", "/uploads"), "/"),
		},
		Mail: MailConfig{
			Driver:       strings.ToLower(getEnv("MAIL_DRIVER", MailDriverResend)),
			ResendAPIKey: os.Getenv("RESEND_API_KEY"),
			From:         getEnv("MAIL_FROM", "Realty <noreply@realty-app.com>"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Leads: LeadConfig{
			RateLimit:      getInt("LEAD_RATE_LIMIT", 5),
			RateWindow:     getDuration("LEAD_RATE_WINDOW", time.Hour),
			RateBlock:      getDuration("LEAD_RATE_BLOCK", time.Hour),
			DigestSchedule: lookupEnv("LEAD_DIGEST_SCHEDULE", "0 8 * * *"),
		},
		Admin: AdminConfig{
			Email:    os.Getenv("ADMIN_EMAIL"),
			Password: os.Getenv("ADMIN_PASSWORD"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values every code path depends on.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWT.ExpiresIn <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN must be positive"))
	}

	switch c.Media.Driver {
	case MediaDriverR2:
		for _, required := range []struct{ key, value string }{
			{"R2_ACCOUNT_ID", c.Media.R2AccountID},
			{"R2_ACCESS_KEY", c.Media.R2AccessKey},
			{"R2_SECRET_KEY", c.Media.R2SecretKey},
			{"R2_BUCKET_NAME", c.Media.R2Bucket},
			{"R2_PUBLIC_URL", c.Media.R2PublicURL},
		} {
			if required.value == "" {
				errs = append(errs, fmt.Errorf("%s is required when MEDIA_DRIVER=r2", required.key))
			}
		}
	case MediaDriverLocal:
	default:
		errs = append(errs, fmt.Errorf("unknown MEDIA_DRIVER %q", c.Media.Driver))
	}

	switch c.Mail.Driver {
	case MailDriverResend:
		if c.Mail.ResendAPIKey == "" {
			errs = append(errs, errors.New("RESEND_API_KEY is required when MAIL_DRIVER=resend"))
		}
	case MailDriverLog:
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_DRIVER %q", c.Mail.Driver))
	}

	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// lookupEnv keeps an explicitly empty value, which some settings use to mean
// "off".
func lookupEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := parseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func getList(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		var cleaned []string
		for _, p := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			return cleaned
		}
	}
	return def
}

// parseDuration accepts Go durations plus a whole-day form such as "7d".
func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if days, ok := strings.CutSuffix(v, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", v)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(v)
}

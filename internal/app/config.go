package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/odyssey-erp/masterdesk/internal/i18n"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`
	RateLimit         int           `envconfig:"RATE_LIMIT" default:"300"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// PGDSN enables the audit trail. Empty disables it.
	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"12h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	BackendBaseURL string        `envconfig:"BACKEND_BASE_URL" required:"true"`
	BackendLocale  string        `envconfig:"BACKEND_LOCALE" default:"VIET"`
	BackendTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"20s"`

	DefaultLanguage string `envconfig:"DEFAULT_LANGUAGE" default:"vi"`

	// ExportDir saves exports on the server. Empty serves them behind
	// download links instead.
	ExportDir           string        `envconfig:"EXPORT_DIR"`
	DownloadTTL         time.Duration `envconfig:"DOWNLOAD_TTL" default:"10m"`
	DownloadRevokeAfter time.Duration `envconfig:"DOWNLOAD_REVOKE_AFTER" default:"1m"`

	// WorkerMetricsAddr serves the worker's /metrics. Empty disables it.
	WorkerMetricsAddr string `envconfig:"WORKER_METRICS_ADDR" default:":9091"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if _, ok := i18n.Parse(cfg.DefaultLanguage); !ok {
		return nil, errors.New("default language must be one of en, vi, ko")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Language returns the configured default interface language.
func (c *Config) Language() i18n.Lang {
	if c == nil {
		return i18n.Default
	}
	return i18n.Resolve(c.DefaultLanguage, i18n.Default)
}

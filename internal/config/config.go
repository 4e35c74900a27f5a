// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
// It is built once at process start and passed explicitly to the components that need it;
// guard and routing code never read the environment themselves.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// SessionPublicKey is the PEM-encoded public key (or path to file) used to verify session tokens.
	SessionPublicKey string `mapstructure:"SESSION_PUBLIC_KEY"`
	// SessionPrivateKey is the PEM-encoded private key (or path). Only cmd/seed uses it to mint dev tokens.
	SessionPrivateKey string `mapstructure:"SESSION_PRIVATE_KEY"`
	// SessionIssuer is the expected iss claim of session tokens.
	SessionIssuer string `mapstructure:"SESSION_ISSUER"`
	// SessionAudience is the expected aud claim of session tokens.
	SessionAudience string `mapstructure:"SESSION_AUDIENCE"`
	// SessionTTL is the lifetime of tokens minted by cmd/seed (e.g. "12h").
	SessionTTL string `mapstructure:"SESSION_TTL"`
	// SessionCookieName is the cookie carrying the session token (default __session).
	SessionCookieName string `mapstructure:"SESSION_COOKIE_NAME"`
	// UserTypeCookieName is the client-readable surface hint cookie (default x-user-type).
	UserTypeCookieName string `mapstructure:"USER_TYPE_COOKIE_NAME"`
	// RoutesFile optionally replaces the embedded route table (YAML).
	RoutesFile string `mapstructure:"ROUTES_FILE"`
	// AutoProvisionOrg creates an organization and ADMIN membership for signed-in users with no membership.
	AutoProvisionOrg bool `mapstructure:"AUTO_PROVISION_ORG"`
	// AllowProdProvisioning must be set to enable AutoProvisionOrg when Env is production.
	AllowProdProvisioning bool `mapstructure:"ALLOW_PROD_PROVISIONING"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint; empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces a plaintext connection to the collector.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// ServiceName is reported as service.name on telemetry.
	ServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// RateLimitRPS and RateLimitBurst bound API requests per client IP.
	RateLimitRPS   int `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int `mapstructure:"RATE_LIMIT_BURST"`

	// ShutdownTimeoutRaw is how long in-flight requests get on shutdown (e.g. "15s").
	ShutdownTimeoutRaw string `mapstructure:"SHUTDOWN_TIMEOUT"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SESSION_PUBLIC_KEY", "")
	v.SetDefault("SESSION_PRIVATE_KEY", "")
	v.SetDefault("SESSION_ISSUER", "skyscraper-auth")
	v.SetDefault("SESSION_AUDIENCE", "skyscraper-web")
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("SESSION_COOKIE_NAME", "__session")
	v.SetDefault("USER_TYPE_COOKIE_NAME", "x-user-type")
	v.SetDefault("ROUTES_FILE", "")
	v.SetDefault("AUTO_PROVISION_ORG", false)
	v.SetDefault("ALLOW_PROD_PROVISIONING", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "skyscraper")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field combinations Load cannot express as defaults.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return errors.New("config: HTTP_ADDR must be set")
	}
	if c.AutoProvisionOrg && c.IsProduction() && !c.AllowProdProvisioning {
		return errors.New("config: AUTO_PROVISION_ORG requires ALLOW_PROD_PROVISIONING when APP_ENV=production")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("config: RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("config: LOG_LEVEL must be one of debug, info, warn, error")
	}
	if c.SessionCookieName == "" || c.UserTypeCookieName == "" {
		return errors.New("config: cookie names must not be empty")
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// SessionLifetime parses SessionTTL. Returns 12h if unset or invalid.
func (c *Config) SessionLifetime() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return 12 * time.Hour
	}
	return d
}

// ShutdownTimeout parses ShutdownTimeoutRaw. Returns 15s if unset or invalid.
func (c *Config) ShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.ShutdownTimeoutRaw)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

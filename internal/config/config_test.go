package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.SessionIssuer != "skyscraper-auth" {
		t.Errorf("SessionIssuer = %q, want %q", cfg.SessionIssuer, "skyscraper-auth")
	}
	if cfg.SessionAudience != "skyscraper-web" {
		t.Errorf("SessionAudience = %q, want %q", cfg.SessionAudience, "skyscraper-web")
	}
	if cfg.SessionCookieName != "__session" {
		t.Errorf("SessionCookieName = %q, want %q", cfg.SessionCookieName, "__session")
	}
	if cfg.UserTypeCookieName != "x-user-type" {
		t.Errorf("UserTypeCookieName = %q, want %q", cfg.UserTypeCookieName, "x-user-type")
	}
	if cfg.AutoProvisionOrg {
		t.Error("AutoProvisionOrg should default to false")
	}
	if cfg.RateLimitRPS != 20 || cfg.RateLimitBurst != 40 {
		t.Errorf("rate limit = %d/%d, want 20/40", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("SESSION_ISSUER", "custom-issuer")
	os.Setenv("AUTO_PROVISION_ORG", "true")
	os.Setenv("RATE_LIMIT_RPS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.SessionIssuer != "custom-issuer" {
		t.Errorf("SessionIssuer = %q, want %q", cfg.SessionIssuer, "custom-issuer")
	}
	if !cfg.AutoProvisionOrg {
		t.Error("AutoProvisionOrg should be true")
	}
	if cfg.RateLimitRPS != 5 {
		t.Errorf("RateLimitRPS = %d, want 5", cfg.RateLimitRPS)
	}
}

func TestLoad_AutoProvisionProduction(t *testing.T) {
	os.Clearenv()
	os.Setenv("AUTO_PROVISION_ORG", "true")
	os.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load should return error when AUTO_PROVISION_ORG=true in production")
	}
	if cfg != nil {
		t.Error("Load should return nil config on error")
	}

	os.Setenv("ALLOW_PROD_PROVISIONING", "true")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load with ALLOW_PROD_PROVISIONING: %v", err)
	}
	if !cfg.AutoProvisionOrg {
		t.Error("AutoProvisionOrg should be true")
	}
}

func TestLoad_Validation(t *testing.T) {
	testCases := []struct {
		name string
		key  string
		val  string
	}{
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"zero rps", "RATE_LIMIT_RPS", "0"},
		{"negative burst", "RATE_LIMIT_BURST", "-1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv(tc.key, tc.val)

			if _, err := Load(); err == nil {
				t.Fatalf("Load should fail for %s=%s", tc.key, tc.val)
			}
		})
	}
}

func TestSessionLifetime(t *testing.T) {
	testCases := []struct {
		raw  string
		want time.Duration
	}{
		{"30m", 30 * time.Minute},
		{"invalid", 12 * time.Hour},
		{"0", 12 * time.Hour},
		{"-1h", 12 * time.Hour},
	}
	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			c := &Config{SessionTTL: tc.raw}
			if got := c.SessionLifetime(); got != tc.want {
				t.Errorf("SessionLifetime = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestShutdownTimeout(t *testing.T) {
	if got := (&Config{ShutdownTimeoutRaw: "3s"}).ShutdownTimeout(); got != 3*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 3s", got)
	}
	if got := (&Config{ShutdownTimeoutRaw: "soon"}).ShutdownTimeout(); got != 15*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 15s (default)", got)
	}
}

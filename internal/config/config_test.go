package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		App:    AppConfig{Env: "local", Port: 8080, PublicBaseURL: "https://dialer.example.com"},
		DB:     DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "dialer"},
		Redis:  RedisConfig{Host: "localhost", Port: 6379},
		Auth:   AuthConfig{JWTSecret: "secret", OperatorPassword: "hunter2"},
		Telnyx: TelnyxConfig{APIKey: "key", ConnectionID: "conn-1", FromNumber: "+15550000000"},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_AcceptsMinimalConfig(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_FillsDefaults(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if c.Dialer.Pacing != 2*time.Second {
		t.Fatalf("expected 2s pacing default, got %v", c.Dialer.Pacing)
	}
	if c.Dialer.AMDFallback != 8*time.Second {
		t.Fatalf("expected 8s AMD fallback default, got %v", c.Dialer.AMDFallback)
	}
	if c.Dialer.EventDedupeTTL != 10*time.Minute {
		t.Fatalf("expected 10m dedupe TTL default, got %v", c.Dialer.EventDedupeTTL)
	}
	if c.Auth.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("expected 15m access TTL default, got %v", c.Auth.AccessTokenTTL)
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validConfig()
	c.App.Env = "production"
	c.DB.SSLMode = ""
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_RejectsMissingTelnyxCredentials(t *testing.T) {
	c := validConfig()
	c.Telnyx = TelnyxConfig{}
	err := c.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"TELNYX_API_KEY", "TELNYX_CONNECTION_ID", "TELNYX_FROM_NUMBER"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error should mention %s: %v", want, err)
		}
	}
}

func TestValidate_RejectsRefreshShorterThanAccess(t *testing.T) {
	c := validConfig()
	c.Auth.AccessTokenTTL = time.Hour
	c.Auth.RefreshTokenTTL = time.Minute
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestWebhookURL_DerivedFromBaseURL(t *testing.T) {
	c := validConfig()
	if got := c.WebhookURL(); got != "https://dialer.example.com/webhooks/telnyx" {
		t.Fatalf("webhook url = %q", got)
	}
}

func TestPostgresDSN_IncludesSSLMode(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	dsn := c.PostgresDSN()
	for _, want := range []string{"host=localhost", "dbname=dialer", "sslmode=disable"} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("dsn missing %q: %s", want, dsn)
		}
	}
}

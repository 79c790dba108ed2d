package config

import (
	"errors"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("SHOP_DOMAIN", "acme.myshopify.com")
	t.Setenv("SHOP_ACCESS_TOKEN", "shpat_test")
	t.Setenv("BUCKET_URL", "file:///tmp/bundles")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.APIVersion != "2024-01" {
		t.Errorf("APIVersion = %q, want %q", cfg.APIVersion, "2024-01")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.LogPretty {
		t.Error("LogPretty = true, want false")
	}
	if cfg.RedisAddr != "" {
		t.Errorf("RedisAddr = %q, want empty", cfg.RedisAddr)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SHOP_API_VERSION", "2024-07")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want %q", cfg.Port, "9090")
	}
	if cfg.APIVersion != "2024-07" {
		t.Errorf("APIVersion = %q, want %q", cfg.APIVersion, "2024-07")
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q, want %q", cfg.RedisAddr, "localhost:6379")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if !cfg.LogPretty {
		t.Error("LogPretty = false, want true")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"missing shop domain", "SHOP_DOMAIN"},
		{"missing access token", "SHOP_ACCESS_TOKEN"},
		{"missing bucket URL", "BUCKET_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			if err == nil {
				t.Fatal("Expected error for missing configuration")
			}
			if !errors.Is(err, ErrMissingConfig) {
				t.Errorf("Expected ErrMissingConfig, got: %v", err)
			}
		})
	}
}

func TestBaseURL(t *testing.T) {
	cfg := Config{ShopDomain: "acme.myshopify.com", APIVersion: "2024-01"}

	want := "https://acme.myshopify.com/admin/api/2024-01"
	if got := cfg.BaseURL(); got != want {
		t.Errorf("BaseURL() = %q, want %q", got, want)
	}
}

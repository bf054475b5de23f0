package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

const defaultMaxFileSize int64 = 50 * 1024 * 1024

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PORT", "SERVER_PORT", "MAX_FILE_SIZE", "LOG_LEVEL", "LOG_FORMAT", "TEMP_ROOT",
		"CORS_ALLOWED_ORIGINS", "RATE_LIMIT_RPM", "RATE_LIMIT_BURST",
		"SUPABASE_URL", "SUPABASE_ANON_KEY", "SHUTDOWN_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := NewConfig()

	if cfg.GetServerPort() != "8080" {
		t.Fatalf("expected default server port 8080, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxFileSize() != defaultMaxFileSize {
		t.Fatalf("expected default max file size %d, got %d", defaultMaxFileSize, cfg.GetMaxFileSize())
	}
	if cfg.GetLogLevel() != "info" {
		t.Fatalf("expected default log level info, got %s", cfg.GetLogLevel())
	}
	if cfg.GetLogFormat() != "text" {
		t.Fatalf("expected default log format text, got %s", cfg.GetLogFormat())
	}
	if cfg.GetTempRoot() != os.TempDir() {
		t.Fatalf("expected default temp root %s, got %s", os.TempDir(), cfg.GetTempRoot())
	}
	if !reflect.DeepEqual(cfg.GetCORSAllowedOrigins(), defaultAllowedOrigins) {
		t.Fatalf("unexpected default origins: %v", cfg.GetCORSAllowedOrigins())
	}
	if cfg.GetRateLimitRPM() != 60 || cfg.GetRateLimitBurst() != 10 {
		t.Fatalf("unexpected rate limit defaults: %d/%d", cfg.GetRateLimitRPM(), cfg.GetRateLimitBurst())
	}
	if cfg.GetShutdownTimeout() != 15*time.Second {
		t.Fatalf("expected default shutdown timeout 15s, got %s", cfg.GetShutdownTimeout())
	}
	if AuthEnabled(cfg) {
		t.Fatalf("expected auth to be disabled without supabase credentials")
	}
}

func TestNewConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("MAX_FILE_SIZE", "12345")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("TEMP_ROOT", "/var/tmp/pdftools")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://pdf.example.com, https://www.example.com,")
	t.Setenv("RATE_LIMIT_RPM", "0")
	t.Setenv("SUPABASE_URL", "http://localhost:54321")
	t.Setenv("SUPABASE_ANON_KEY", "test-key")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9090" {
		t.Fatalf("expected server port 9090, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxFileSize() != 12345 {
		t.Fatalf("expected max file size 12345, got %d", cfg.GetMaxFileSize())
	}
	if cfg.GetLogLevel() != "debug" || cfg.GetLogFormat() != "json" {
		t.Fatalf("unexpected log settings %s/%s", cfg.GetLogLevel(), cfg.GetLogFormat())
	}
	if cfg.GetTempRoot() != "/var/tmp/pdftools" {
		t.Fatalf("expected temp root override, got %s", cfg.GetTempRoot())
	}
	want := []string{"https://pdf.example.com", "https://www.example.com"}
	if !reflect.DeepEqual(cfg.GetCORSAllowedOrigins(), want) {
		t.Fatalf("expected origins %v, got %v", want, cfg.GetCORSAllowedOrigins())
	}
	if cfg.GetRateLimitRPM() != 0 {
		t.Fatalf("expected rate limiting disabled, got %d", cfg.GetRateLimitRPM())
	}
	if cfg.GetShutdownTimeout() != 3*time.Second {
		t.Fatalf("expected shutdown timeout 3s, got %s", cfg.GetShutdownTimeout())
	}
	if !AuthEnabled(cfg) {
		t.Fatalf("expected auth to be enabled with supabase credentials")
	}
}

func TestNewConfig_Fallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9091")
	t.Setenv("MAX_FILE_SIZE", "not-a-number")
	t.Setenv("RATE_LIMIT_BURST", "-4")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9091" {
		t.Fatalf("expected server port 9091, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxFileSize() != defaultMaxFileSize {
		t.Fatalf("expected default max file size %d, got %d", defaultMaxFileSize, cfg.GetMaxFileSize())
	}
	if cfg.GetRateLimitBurst() != 10 {
		t.Fatalf("expected negative burst to fall back to 10, got %d", cfg.GetRateLimitBurst())
	}
}

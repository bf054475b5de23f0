package supabase

import (
	"testing"
	"time"
)

type stubConfig struct {
	url, key string
}

func (c stubConfig) GetServerPort() string { return "8080" }
func (c stubConfig) GetMaxFileSize() int64 { return 1 << 20 }
func (c stubConfig) GetLogLevel() string { return "info" }
func (c stubConfig) GetLogFormat() string { return "text" }
func (c stubConfig) GetTempRoot() string { return "" }
func (c stubConfig) GetCORSAllowedOrigins() []string { return nil }
func (c stubConfig) GetRateLimitRPM() int { return 0 }
func (c stubConfig) GetRateLimitBurst() int { return 0 }
func (c stubConfig) GetSupabaseURL() string { return c.url }
func (c stubConfig) GetSupabaseKey() string { return c.key }
func (c stubConfig) GetShutdownTimeout() time.Duration { return time.Second }

type nopLogger struct{}

func (nopLogger) Info(msg string, fields ...interface{}) {}
func (nopLogger) Error(msg string, err error, fields ...interface{}) {}
func (nopLogger) Debug(msg string, fields ...interface{}) {}
func (nopLogger) Warn(msg string, fields ...interface{}) {}

func TestInitialize_RequiresCredentials(t *testing.T) {
	client := NewSupabaseClient(stubConfig{}, nopLogger{})
	if err := client.Initialize(); err == nil {
		t.Fatalf("expected error when url and key are missing")
	}
}

func TestValidateToken_NotInitialized(t *testing.T) {
	client := NewSupabaseClient(stubConfig{url: "http://localhost:54321", key: "anon"}, nopLogger{})
	if _, err := client.ValidateToken("token"); err == nil {
		t.Fatalf("expected error before Initialize")
	}
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"pdf-tools-server/internal/domain"
)

var defaultAllowedOrigins = []string{
	"http://localhost:5173", // SvelteKit dev server
	"http://localhost:4173", // SvelteKit preview
	"http://localhost:3000", // Alternative dev port
}

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort      string
	MaxFileSize     int64
	LogLevel        string
	LogFormat       string
	TempRoot        string
	AllowedOrigins  []string
	RateLimitRPM    int
	RateLimitBurst  int
	SupabaseURL     string
	SupabaseKey     string
	ShutdownTimeout time.Duration
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:      getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		MaxFileSize:     getEnvInt64OrDefault("MAX_FILE_SIZE", 50*1024*1024), // 50MB default
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       getEnvOrDefault("LOG_FORMAT", "text"),
		TempRoot:        getEnvOrDefault("TEMP_ROOT", os.TempDir()),
		AllowedOrigins:  getEnvListOrDefault("CORS_ALLOWED_ORIGINS", defaultAllowedOrigins),
		RateLimitRPM:    int(getEnvInt64OrDefault("RATE_LIMIT_RPM", 60)),
		RateLimitBurst:  int(getEnvInt64OrDefault("RATE_LIMIT_BURST", 10)),
		SupabaseURL:     getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:     getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		ShutdownTimeout: time.Duration(getEnvInt64OrDefault("SHUTDOWN_TIMEOUT_SECONDS", 15)) * time.Second,
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetMaxFileSize returns the maximum allowed upload size in bytes
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetLogFormat returns the log output format (text or json)
func (c *AppConfig) GetLogFormat() string {
	return c.LogFormat
}

// GetTempRoot returns the directory scratch workspaces are created in
func (c *AppConfig) GetTempRoot() string {
	return c.TempRoot
}

// GetCORSAllowedOrigins returns the browser origins allowed to call the API
func (c *AppConfig) GetCORSAllowedOrigins() []string {
	return c.AllowedOrigins
}

// GetRateLimitRPM returns the per-client request budget per minute (0 disables)
func (c *AppConfig) GetRateLimitRPM() int {
	return c.RateLimitRPM
}

// GetRateLimitBurst returns the per-client burst size
func (c *AppConfig) GetRateLimitBurst() int {
	return c.RateLimitBurst
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetShutdownTimeout returns how long in-flight requests get on shutdown
func (c *AppConfig) GetShutdownTimeout() time.Duration {
	return c.ShutdownTimeout
}

// AuthEnabled reports whether Supabase credentials are configured
func AuthEnabled(c domain.Config) bool {
	return c.GetSupabaseURL() != "" && c.GetSupabaseKey() != ""
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil && intValue >= 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

package domain

import (
	"context"
	"time"
)

// PDFProcessor runs named operations through the ephemeral processing pipeline
type PDFProcessor interface {
	Process(ctx context.Context, operation string, upload *Upload, params Params) (*Result, error)
	Operations() []*Operation
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetMaxFileSize() int64
	GetLogLevel() string
	GetLogFormat() string
	GetTempRoot() string
	GetCORSAllowedOrigins() []string
	GetRateLimitRPM() int
	GetRateLimitBurst() int
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetShutdownTimeout() time.Duration
}

package config

import (
	"fmt"
	"net/http"
	"time"

	"pdf-tools-server/internal/domain"
	"pdf-tools-server/internal/infra/supabase"
	"pdf-tools-server/internal/service"
	"pdf-tools-server/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// staleWorkspaceAge is how old a leftover workspace must be before the
// startup sweep removes it.
const staleWorkspaceAge = time.Hour

// Container holds all application dependencies
type Container struct {
	Config         domain.Config
	Logger         domain.Logger
	SupabaseClient domain.SupabaseClient
	AuthService    domain.AuthService
	Workspaces     *service.WorkspaceManager
	PDFProcessor   domain.PDFProcessor
	Registry       *prometheus.Registry
	MetricsHandler http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	config := NewConfig()
	appLogger := logger.NewLogger(config.GetLogLevel(), config.GetLogFormat())
	return NewContainerWith(config, appLogger)
}

// NewContainerWith wires the container from an explicit config and logger.
func NewContainerWith(config domain.Config, appLogger domain.Logger) (*Container, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	observer, err := service.NewPrometheusObserver("pdftools", registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	workspaces := service.NewWorkspaceManager(config.GetTempRoot(), service.OSFileSystem{}, observer, appLogger)
	if err := workspaces.EnsureRoot(); err != nil {
		return nil, err
	}
	if removed, err := workspaces.SweepStale(staleWorkspaceAge); err != nil {
		appLogger.Warn("Stale workspace sweep failed", "root", workspaces.Root(), "error", err)
	} else if removed > 0 {
		appLogger.Info("Stale workspaces removed", "root", workspaces.Root(), "count", removed)
	}

	pipeline := service.NewPipeline(workspaces, observer, appLogger, service.DefaultOperations()...)

	container := &Container{
		Config:         config,
		Logger:         appLogger,
		Workspaces:     workspaces,
		PDFProcessor:   pipeline,
		Registry:       registry,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	}

	// Authentication is optional; without credentials the tool routes are public.
	if AuthEnabled(config) {
		supabaseClient := supabase.NewSupabaseClient(config, appLogger)
		if err := supabaseClient.Initialize(); err != nil {
			return nil, fmt.Errorf("failed to initialize supabase: %w", err)
		}
		container.SupabaseClient = supabaseClient
		container.AuthService = service.NewAuthService(supabaseClient, appLogger)
	} else {
		appLogger.Warn("Supabase credentials not configured; authentication disabled")
	}

	return container, nil
}

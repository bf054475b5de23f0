package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// RouterConfig carries the handlers and middleware the router mounts.
type RouterConfig struct {
	ToolHandler    *ToolHandler
	AuthHandler    *AuthHandler
	MetricsHandler http.Handler
	AllowedOrigins []string

	// AuthMiddleware guards the API routes. Nil leaves them public.
	AuthMiddleware func(http.Handler) http.Handler
	// RateLimit throttles the tool routes. Nil disables it.
	RateLimit func(http.Handler) http.Handler
	// Logging wraps every route. Nil disables request logging.
	Logging func(http.Handler) http.Handler
}

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	router := mux.NewRouter()
	router.Use(RequestIDMiddleware)
	if cfg.Logging != nil {
		router.Use(cfg.Logging)
	}

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"pdf-tools-server"}`))
	}).Methods("GET")

	if cfg.MetricsHandler != nil {
		router.Handle("/metrics", cfg.MetricsHandler).Methods("GET")
	}

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware)
	}

	api.HandleFunc("/operations", cfg.ToolHandler.ListOperations).Methods("GET")
	if cfg.AuthHandler != nil && cfg.AuthMiddleware != nil {
		api.HandleFunc("/auth/validate", cfg.AuthHandler.ValidateToken).Methods("GET")
	}

	// Tool routes run after auth so the limiter can key on the user
	tools := api.PathPrefix("").Subrouter()
	if cfg.RateLimit != nil {
		tools.Use(cfg.RateLimit)
	}
	tools.HandleFunc("/{operation}", cfg.ToolHandler.Process).Methods("POST")

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{
			"http://localhost:5173", // SvelteKit dev server
			"http://localhost:4173", // SvelteKit preview
			"http://localhost:3000", // Alternative dev port
		}
	}

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-CSRF-Token",
			requestIDHeader,
		},
		ExposedHeaders: []string{
			"Content-Disposition",
			requestIDHeader,
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}

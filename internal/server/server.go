// Package server provides the HTTP server and routing for the analysis
// engine.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/brvalue/fleuriet/internal/config"
	"github.com/brvalue/fleuriet/internal/modules/analysis"
	"github.com/brvalue/fleuriet/internal/modules/universe"
)

// Config holds server configuration.
type Config struct {
	Log       zerolog.Logger
	Cfg       *config.Config
	Analysis  *analysis.Service
	Results   *analysis.Repository
	Companies *universe.CompanyRepository
	Port      int
	DevMode   bool
}

// Server represents the HTTP server.
type Server struct {
	router    *chi.Mux
	server    *http.Server
	log       zerolog.Logger
	cfg       *config.Config
	analysis  *analysis.Service
	results   *analysis.Repository
	companies *universe.CompanyRepository
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cfg:       cfg.Cfg,
		analysis:  cfg.Analysis,
		results:   cfg.Results,
		companies: cfg.Companies,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // a full analysis run can take a while
		IdleTimeout:  120 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Timeout(5 * time.Minute))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/analysis", func(r chi.Router) {
			r.Get("/", s.handleLatestAnalysis)
			r.Post("/run", s.handleRunAnalysis)
		})

		r.Get("/companies", s.handleListCompanies)
		r.Get("/companies/{ticker}", s.handleCompany)
		r.Get("/rankings/{metric}", s.handleRanking)
	})
}

// Start starts the HTTP server (blocking).
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Router exposes the router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

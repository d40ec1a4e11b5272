package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/casereport/internal/analysis"
	"github.com/dgallion1/casereport/internal/config"
	"github.com/dgallion1/casereport/internal/pipeline"
	"github.com/dgallion1/casereport/internal/report"
)

// Server is the HTTP API server for casereport.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	exporter     *report.Exporter
	stats        *analysis.Stats
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil.
func NewServer(orch *pipeline.Orchestrator, exporter *report.Exporter, stats *analysis.Stats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		exporter:     exporter,
		stats:        stats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/cases", s.handleUpload)
		r.Post("/api/cases/import", s.handleImport)
		r.Get("/api/cases", s.handleListCases)
		r.Get("/api/cases/{caseID}", s.handleGetCase)
		r.Delete("/api/cases/{caseID}", s.handleDeleteCase)
		r.Get("/api/cases/{caseID}/summary", s.handleSummary)
		r.Get("/api/cases/{caseID}/report", s.handleCaseReport)
		r.Get("/api/reports/batch", s.handleBatchReport)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/stats/analysis", s.handleAnalysisStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

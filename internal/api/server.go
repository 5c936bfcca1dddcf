package api

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/dgallion1/docvoice/internal/config"
	"github.com/dgallion1/docvoice/internal/pipeline"
	"github.com/dgallion1/docvoice/internal/stats"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed static
var staticFiles embed.FS

// StatsSource is a provider whose calls are reported at /api/stats.
type StatsSource interface {
	Name() string
	Model() string
	Stats() *stats.Recorder
}

// Server is the HTTP API server for docvoice.
type Server struct {
	router    chi.Router
	pipeline  *pipeline.Pipeline
	providers []StatsSource
	log       *slog.Logger
	cfg       config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(pipe *pipeline.Pipeline, log *slog.Logger, cfg config.Config, providers ...StatsSource) *Server {
	s := &Server{
		pipeline:  pipe,
		providers: providers,
		log:       log,
		cfg:       cfg,
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

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(CORS)

		r.Options("/query", s.handleQueryPreflight)
		r.Post("/query", s.handleQuery)
		r.Get("/stats", s.handleStats)
	})

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/*", http.FileServerFS(static))

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"NewsRecommender/internal/ports"
	"NewsRecommender/internal/recommend"
)

// Options carries the request-level defaults handlers fall back to.
type Options struct {
	Addr           string
	AllowedOrigins []string
	DefaultTopN    int
	DefaultMode    recommend.Mode
	MaxPageSize    int
}

// Server exposes the recommendation engine over HTTP.
type Server struct {
	service      *recommend.Service
	articles     ports.ArticleStore
	interactions ports.InteractionStore
	reload       func(context.Context) error
	opts         Options
	logger       *slog.Logger

	http *http.Server
}

func NewServer(
	service *recommend.Service,
	articles ports.ArticleStore,
	interactions ports.InteractionStore,
	reload func(context.Context) error,
	opts Options,
	logger *slog.Logger,
) *Server {
	if opts.DefaultTopN <= 0 {
		opts.DefaultTopN = 5
	}
	if opts.DefaultMode == "" {
		opts.DefaultMode = recommend.ModeHybrid
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = 100
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		service:      service,
		articles:     articles,
		interactions: interactions,
		reload:       reload,
		opts:         opts,
		logger:       logger,
	}
	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router assembles the route table. Exposed separately so tests can drive
// handlers without a listening socket.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.handleIndex)
		r.Get("/articles", s.handleListArticles)
		r.Get("/articles/{id}", s.handleGetArticle)
		r.Get("/recommend/{id}", s.handleRecommend)
		r.Get("/stats", s.handleStats)
		r.Post("/track", s.handleTrack)
		r.Post("/admin/reload", s.handleReload)
	})
	return r
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "addr", s.opts.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/dropscope/internal/importer"
	"github.com/roach88/dropscope/internal/metrics"
	"github.com/roach88/dropscope/internal/model"
	"github.com/roach88/dropscope/internal/query"
	"github.com/roach88/dropscope/internal/store"
)

// Store is the read side the adapter needs. *store.Store satisfies it.
type Store interface {
	List(ctx context.Context, f query.Filter) ([]model.RankedAirdrop, error)
	Counts(ctx context.Context) (store.Counts, error)
	EnsureReady(ctx context.Context) error
}

// Importer applies import batches. *importer.Importer satisfies it.
type Importer interface {
	Import(ctx context.Context, items []model.ImportItem) (importer.Result, error)
}

// Config configures the adapter.
type Config struct {
	// AllowOrigins lists CORS origins. Empty allows any origin.
	AllowOrigins []string

	// Registry receives the adapter's collectors and backs /metrics.
	// Nil creates a private registry.
	Registry *prometheus.Registry

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Server routes HTTP requests to the core.
type Server struct {
	store    Store
	importer Importer
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	log      *slog.Logger

	readyMu sync.Mutex
	ready   bool

	engine *gin.Engine
}

// New builds the server and registers its collectors.
func New(st Store, im Importer, cfg Config) (*Server, error) {
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	m := metrics.New()
	if err := m.Register(cfg.Registry); err != nil {
		return nil, err
	}

	s := &Server{
		store:    st,
		importer: im,
		metrics:  m,
		registry: cfg.Registry,
		log:      cfg.Logger,
	}
	s.engine = s.routes(cfg)
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *metrics.Metrics {
	return s.metrics
}

func (s *Server) routes(cfg Config) *gin.Engine {
	g := gin.New()
	g.Use(gin.Recovery(), s.requestLogger(), s.observe())
	g.Use(cors.New(corsConfig(cfg.AllowOrigins)))

	g.GET("/healthz", s.health)
	g.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := g.Group("/api", s.requireReady())
	{
		api.GET("/airdrops", s.listAirdrops)
		api.POST("/import", s.importBatch)
	}
	return g
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	return cc
}

// ensureReady runs store.EnsureReady until it first succeeds. Later calls
// are free, so request handlers can call it unconditionally.
func (s *Server) ensureReady(ctx context.Context) error {
	s.readyMu.Lock()
	defer s.readyMu.Unlock()
	if s.ready {
		return nil
	}
	if err := s.store.EnsureReady(ctx); err != nil {
		return err
	}
	s.ready = true
	return nil
}

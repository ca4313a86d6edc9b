package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/GriffinCanCode/seolint/internal/checker"
	"github.com/GriffinCanCode/seolint/internal/config"
	"github.com/GriffinCanCode/seolint/internal/document"
	"github.com/GriffinCanCode/seolint/internal/logging"
	"github.com/GriffinCanCode/seolint/internal/monitoring"
	"github.com/GriffinCanCode/seolint/internal/ruleset"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxRequestBody leaves room for JSON escaping around a maximum-size page.
const maxRequestBody = 2*document.MaxHTMLSize + 4096

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l.Component("server")
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithFetcher enables auditing URLs.
func WithFetcher(f document.Fetcher) Option {
	return func(s *Server) {
		s.fetcher = f
	}
}

// Server is the HTTP audit service.
type Server struct {
	router   *gin.Engine
	config   *config.Config
	rules    *ruleset.Set
	defaults *checker.Checker
	fetcher  document.Fetcher
	loader   *document.Loader
	logger   *logging.Logger
	metrics  *monitoring.Metrics
}

// New builds the router. The rule set is compiled up front so a broken set
// fails at startup instead of on the first request.
func New(cfg *config.Config, rules *ruleset.Set, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if rules == nil {
		rules = ruleset.Default()
	}

	s := &Server{
		config:  cfg,
		rules:   rules,
		logger:  logging.NewNop(),
		metrics: monitoring.NewMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}

	engine, err := document.ParseEngine(cfg.Audit.Engine)
	if err != nil {
		return nil, err
	}
	s.loader = document.NewLoader(s.fetcher).WithEngine(engine)

	compiled, err := rules.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}
	s.defaults = s.newChecker(compiled)

	router := gin.New()
	router.Use(Recovery(s.logger))
	router.Use(RequestID())
	router.Use(AccessLog(s.logger))
	router.Use(monitoring.Middleware(s.metrics))
	router.Use(CORS(DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		s.logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(RateLimit(RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	router.GET("/health", s.Health)
	router.GET("/rules", s.ListRules)
	router.POST("/audit", LimitBody(maxRequestBody), s.Audit)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	s.router = router
	return s, nil
}

func (s *Server) newChecker(rules []checker.Rule) *checker.Checker {
	return checker.New(rules,
		checker.WithLogger(s.logger),
		checker.WithRecorder(s.metrics),
		checker.WithLoader(s.loader),
	)
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.Addr())
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/getmockd/apisim/pkg/admin"
	"github.com/getmockd/apisim/pkg/config"
	"github.com/getmockd/apisim/pkg/engine"
	"github.com/getmockd/apisim/pkg/logging"
	"github.com/getmockd/apisim/pkg/metrics"
	"github.com/getmockd/apisim/pkg/ratelimit"
	"github.com/getmockd/apisim/pkg/requestlog"
	"github.com/getmockd/apisim/pkg/store"
	"github.com/getmockd/apisim/pkg/template"
)

// ReadHeaderTimeout bounds how long a client may take to send headers.
// There is no write timeout because mocks may delay their responses.
const ReadHeaderTimeout = 10 * time.Second

// Server serves the management API and the mock gateway.
type Server struct {
	cfg        *config.Config
	store      store.Store
	logs       *requestlog.AsyncLogger
	limiter    *ratelimit.PerIPLimiter
	metrics    *metrics.Registry
	startedAt  time.Time
	handler    http.Handler
	httpServer *http.Server
	log        *slog.Logger

	shutdownOnce sync.Once
	shutdownErr  error
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// New wires a server over st. The server owns st from here on and closes it
// during Shutdown.
func New(cfg *config.Config, st store.Store, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{
		cfg:   cfg,
		store:     st,
		log:       logging.Nop(),
		metrics:   metrics.NewRegistry(),
		startedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logs = requestlog.NewAsyncLogger(requestlog.StoreWriter(st),
		requestlog.WithLogger(s.log),
		requestlog.WithQueueSize(cfg.LogQueueSize),
	)
	s.limiter = ratelimit.NewPerIPLimiter(ratelimit.PerIPConfig{
		Rate:  cfg.RateLimit.RPS,
		Burst: cfg.RateLimit.Burst,
	})
	s.handler = s.routes(template.New())
	s.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: ReadHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}
	return s
}

func (s *Server) routes(tpl *template.Engine) http.Handler {
	api := admin.NewAPI(s.store,
		admin.WithLogger(s.log),
		admin.WithTemplateEngine(tpl),
	)
	gateway := engine.NewHandler(s.store,
		engine.WithLogger(s.log),
		engine.WithRequestLog(s.logs),
		engine.WithTemplateEngine(tpl),
	)

	httpMetrics := s.registerMetrics()

	prefix := s.MockPrefix()
	mux := http.NewServeMux()
	mux.Handle(prefix+"/", chain(http.StripPrefix(prefix, gateway),
		httpMetrics.Middleware(metrics.SurfaceMock),
	))
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.Handle("/", chain(api.Handler(),
		httpMetrics.Middleware(metrics.SurfaceAdmin),
		ratelimit.Middleware(s.limiter),
	))

	return chain(mux,
		middleware.RequestID,
		requestIDHeader,
		accessLog(s.log),
		recoverer(s.log),
		corsHandler(s.cfg.CORSOrigins),
	)
}

func (s *Server) registerMetrics() *metrics.HTTP {
	s.metrics.NewGaugeFunc("apisim_uptime_seconds", "Seconds since the server started.", func() float64 {
		return time.Since(s.startedAt).Seconds()
	})
	s.metrics.NewCounterFunc("apisim_request_log_written_total", "Request log entries persisted.", func() float64 {
		return float64(s.logs.Written())
	})
	s.metrics.NewCounterFunc("apisim_request_log_dropped_total", "Request log entries dropped because the queue was full or closed.", func() float64 {
		return float64(s.logs.Dropped())
	})
	return metrics.NewHTTP(s.metrics)
}

// MockPrefix returns the path prefix of the gateway, e.g. "/mock".
func (s *Server) MockPrefix() string {
	return "/" + strings.Trim(s.cfg.MockPrefix, "/")
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		_ = s.Shutdown(context.Background())
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// within the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log.Info("apisim listening",
		"addr", ln.Addr().String(),
		"mockPrefix", s.MockPrefix(),
		"backend", s.cfg.Backend,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		_ = s.Shutdown(context.Background())
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down", "timeout", s.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	err := s.Shutdown(shutdownCtx)
	<-errCh
	return err
}

// Shutdown stops accepting requests, waits for in-flight ones, drains the
// request log queue and closes the store. Only the first call does work.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		var errs []error
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
		}
		if s.limiter != nil {
			s.limiter.Stop()
		}
		// After the HTTP server stops no handler can enqueue more entries.
		if err := s.logs.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("request log drain: %w", err))
		}
		if dropped := s.logs.Dropped(); dropped > 0 {
			s.log.Warn("request log entries were dropped", "dropped", dropped)
		}
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store close: %w", err))
		}
		s.shutdownErr = errors.Join(errs...)
	})
	return s.shutdownErr
}

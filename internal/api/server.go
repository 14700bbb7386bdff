package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/pf-verify-go/internal/buildinfo"
	"github.com/MJE43/pf-verify-go/internal/games"
	"github.com/MJE43/pf-verify-go/internal/scan"
)

const defaultHistoryPage = 50

// Options configures a Server. Zero values fall back to defaults.
type Options struct {
	Logger         *log.Logger
	Clock          quartz.Clock
	Scanner        *scan.Scanner
	DefaultRTP     int
	HistoryPage    int
	RequestTimeout time.Duration
}

// Server handles HTTP requests
type Server struct {
	scanner        *scan.Scanner
	errorHandler   *ErrorHandler
	logger         *log.Logger
	securityLogger *SecurityLogger
	clock          quartz.Clock
	startTime      time.Time
	defaultRTP     int
	historyPage    int
	requestTimeout time.Duration
	httpServer     *http.Server
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	clock := opts.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	scanner := opts.Scanner
	if scanner == nil {
		scanner = scan.NewScanner(scan.WithLogger(logger))
	}
	rtp := opts.DefaultRTP
	if rtp == 0 {
		rtp = games.DefaultRTP
	}
	page := opts.HistoryPage
	if page == 0 {
		page = defaultHistoryPage
	}

	securityLogger := NewSecurityLogger(logger)
	server := &Server{
		scanner:        scanner,
		errorHandler:   NewErrorHandler(logger, securityLogger, func() time.Time { return clock.Now() }),
		logger:         logger,
		securityLogger: securityLogger,
		clock:          clock,
		startTime:      clock.Now(),
		defaultRTP:     rtp,
		historyPage:    page,
		requestTimeout: opts.RequestTimeout,
	}

	logger.Info("system_startup",
		"games_available", len(games.ListGames()),
		"default_rtp", rtp,
		"engine_version", buildinfo.Version,
	)
	return server
}

// Routes sets up the HTTP routes with proper middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.SecurityLoggingMiddleware)
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(s.CORSMiddleware)

	// Scans run under the scanner's timeout and return partial results.
	r.Post("/api/v1/scan", s.handleScan)

	r.Group(func(r chi.Router) {
		if s.requestTimeout > 0 {
			r.Use(middleware.Timeout(s.requestTimeout))
		}

		r.Get("/health", s.handleHealthCheck)
		r.Get("/health/ready", s.handleReadiness)
		r.Get("/health/live", s.handleLiveness)

		r.Get("/api/v1/games", s.handleListGames)
		r.Post("/api/v1/verify", s.handleVerify)
		r.Post("/api/v1/seed/hash", s.handleSeedHash)
		r.Post("/api/v1/chain", s.handleChain)
	})

	return r
}

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", buildinfo.Version)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("response_encode_failed", "err", err)
	}
}

// Start binds addr and serves the API in a goroutine. It returns once the
// socket is listening, with the bound address.
func (s *Server) Start(addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	s.httpServer = &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          s.logger.StandardLog(),
	}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http_serve_failed", "err", err)
		}
	}()

	s.logger.Info("listening", "addr", ln.Addr().String())
	return ln.Addr(), nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("system_shutdown", "uptime", s.uptime().String(), "engine_version", buildinfo.Version)
	return s.httpServer.Shutdown(ctx)
}

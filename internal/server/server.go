// Package server exposes the rebuild, extraction and wiki-editing helpers
// over HTTP, plus a WebSocket channel for live rebuilds while editing.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/FocuswithJustin/WikiruKit/internal/cache"
	"github.com/FocuswithJustin/WikiruKit/internal/logging"
)

// Config holds server configuration.
type Config struct {
	Port              int
	AllowedOrigins    []string      // CORS and WebSocket origins (empty = allow all)
	RateLimitRequests int           // requests per minute per client (0 = disabled)
	RateLimitBurst    int           // burst size
	CacheTTL          time.Duration // rebuild result lifetime
	CacheEntries      int           // maximum cached results
}

// DefaultConfig returns the settings used by `wikiru serve`.
func DefaultConfig() Config {
	return Config{
		Port:         8080,
		CacheTTL:     10 * time.Minute,
		CacheEntries: 256,
	}
}

// Server routes API requests.
type Server struct {
	cfg     Config
	results *cache.TTLCache[string, *RebuildResponse]
	started time.Time
	limiter *RateLimiter
	clients atomic.Int64
}

// New builds a server from cfg.
func New(cfg Config) *Server {
	s := &Server{
		cfg:     cfg,
		results: cache.New[string, *RebuildResponse](cfg.CacheTTL, cfg.CacheEntries),
		started: time.Now(),
	}
	if cfg.RateLimitRequests > 0 {
		burst := cfg.RateLimitBurst
		if burst == 0 {
			burst = 10
		}
		s.limiter = NewRateLimiter(RateLimiterConfig{
			RequestsPerMinute: cfg.RateLimitRequests,
			BurstSize:         burst,
		})
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /variants", s.handleVariants)
	mux.HandleFunc("GET /profiles", s.handleProfiles)
	mux.HandleFunc("POST /flex/rebuild", s.handleRebuild)
	mux.HandleFunc("POST /extract", s.handleExtract)
	mux.HandleFunc("POST /wikitext/{op}", s.handleWikitext)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return mux
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var h http.Handler = SecurityHeaders(s.routes())
	if s.limiter != nil {
		h = s.limiter.Middleware(h)
	}
	h = CORS(s.cfg.AllowedOrigins, h)
	return logging.CombinedMiddleware(h)
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, cfg Config) error {
	s := New(cfg)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	logging.ServerStartup("rest_api", "http", cfg.Port,
		"websocket", "/ws",
		"cache_ttl", cfg.CacheTTL.String())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

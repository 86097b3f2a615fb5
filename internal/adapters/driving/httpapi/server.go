// Package httpapi exposes the geodata operations as a JSON HTTP API.
//
// Endpoints:
//   - GET  /api/weather?lat=&lon=
//   - GET  /api/places?lat=&lon=&radius=&category=
//   - POST /api/places/refresh?lat=&lon=&radius=&category=
//   - GET  /api/currency?base=&target=
//   - GET  /api/news?lat=&lon=&category=&limit=
//   - POST /api/news/refresh
//   - GET  /api/news/stats
//   - POST /api/news/clean
//   - GET  /healthz
//
// Invalid input maps to 400 and an exhausted provider chain to 503.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/custodia-labs/geocache/internal/core/ports/driving"
	"github.com/custodia-labs/geocache/internal/logger"
)

// ErrMissingService is returned when a required driving port is not provided.
var ErrMissingService = errors.New("httpapi: service is required")

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	Weather  driving.WeatherService
	Places   driving.PlacesService
	Currency driving.CurrencyService
	News     driving.NewsService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	switch {
	case p.Weather == nil:
		return fmt.Errorf("%w: weather", ErrMissingService)
	case p.Places == nil:
		return fmt.Errorf("%w: places", ErrMissingService)
	case p.Currency == nil:
		return fmt.Errorf("%w: currency", ErrMissingService)
	case p.News == nil:
		return fmt.Errorf("%w: news", ErrMissingService)
	}
	return nil
}

// Server serves the JSON API.
type Server struct {
	ports *Ports
	mux   *http.ServeMux

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a server with all API routes registered.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		mux:   http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /api/weather", s.handleWeather)
	s.mux.HandleFunc("GET /api/places", s.handlePlaces)
	s.mux.HandleFunc("POST /api/places/refresh", s.handlePlacesRefresh)
	s.mux.HandleFunc("GET /api/currency", s.handleCurrency)
	s.mux.HandleFunc("GET /api/news", s.handleNews)
	s.mux.HandleFunc("POST /api/news/refresh", s.handleNewsRefresh)
	s.mux.HandleFunc("GET /api/news/stats", s.handleNewsStats)
	s.mux.HandleFunc("POST /api/news/clean", s.handleNewsClean)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	return s, nil
}

// Mount registers an extra handler, e.g. the MCP streamable endpoint.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.mux.Handle(pattern, h)
}

// Handler returns the root handler with request logging.
func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("http: listening on %s", ln.Addr())

	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("http: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Addr returns the listener address. Only valid after Run has started.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("http: %s %s %d %s", r.Method, r.URL.RequestURI(), rec.status, time.Since(start))
	})
}

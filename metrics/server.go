package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lcx/mirror/log"
)

// Server exposes Registry over HTTP. Its IsStarted/Init/Shutdown lifecycle lets
// the diagnostics bridge bring the endpoint up on binding and tear it down on stop.
type Server struct {
	cfg        *Cfg
	mu         sync.Mutex
	srv        *http.Server
	ln         net.Listener
	started    atomic.Bool
	deregister func() error
}

// NewServer creates a stopped metrics server. A nil cfg uses DefaultCfg.
func NewServer(cfg *Cfg) *Server {
	if cfg == nil {
		cfg = DefaultCfg()
	}
	return &Server{cfg: cfg}
}

// IsStarted reports whether the endpoint is listening.
func (s *Server) IsStarted() bool {
	return s.started.Load()
}

// Addr returns the bound listen address, or nil when stopped.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Init starts listening. Calling Init on a started server is a no-op.
func (s *Server) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started.Load() {
		return nil
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		IncrCounterWithDimGroup("metrics", "server_start_error_total", 1, Dimension{"error_type": "listen"})
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(s.cfg.Path, Handler())
	s.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	s.ln = ln

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", ln.Addr().String()).Msg("metrics server stopped")
		}
	}(s.srv)

	if s.cfg.ConsulAddr != "" {
		deregister, err := RegisterScrapeTarget(s.cfg, ln.Addr())
		if err != nil {
			log.Warn().Err(err).Str("consul", s.cfg.ConsulAddr).Msg("metrics endpoint not registered in consul")
		} else {
			s.deregister = deregister
		}
	}

	s.started.Store(true)
	log.Info().Str("addr", ln.Addr().String()).Str("path", s.cfg.Path).Msg("metrics server started")
	return nil
}

// Shutdown stops the endpoint. Shutting down a stopped server is a no-op.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started.Load() {
		return
	}

	if s.deregister != nil {
		if err := s.deregister(); err != nil {
			log.Warn().Err(err).Msg("consul deregister failed")
		}
		s.deregister = nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("metrics server shutdown")
	}
	s.srv = nil
	s.ln = nil
	s.started.Store(false)
}

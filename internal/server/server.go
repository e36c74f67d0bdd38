package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agentdesk/agentdesk/internal/config"
	"github.com/rs/zerolog/log"
)

// App selects which front end the server exposes
type App string

const (
	Helpdesk App = "helpdesk"
	Research App = "research"
)

type Server struct {
	cfg     *config.Config
	app     App
	http    *http.Server
	closers []io.Closer // backend clients released on shutdown
}

// New builds the HTTP server for app from cfg. Dependencies that fail to
// construct abort startup; unreachable ones are only logged.
func New(ctx context.Context, cfg *config.Config, app App) (*Server, error) {
	s := &Server{cfg: cfg, app: app}

	router, err := s.setupRoutes(ctx)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("setup routes: %w", err)
	}

	// agent runs are bounded by AgentTimeout, not by the write deadline
	writeTimeout := time.Duration(cfg.AgentTimeout)*time.Second + 30*time.Second

	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Handler exposes the routed handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("app", string(s.app)).Str("addr", s.http.Addr).Msg("listening")
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("graceful shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := s.http.Shutdown(shutdownCtx)
		s.close()
		return err
	case err := <-errCh:
		s.close()
		return err
	}
}

func (s *Server) close() {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing backend client")
		}
	}
	s.closers = nil
}

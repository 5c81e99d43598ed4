package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type Server struct {
	server   *http.Server
	listener net.Listener
	logger   zerolog.Logger
}

func NewServer(addr string, handler *Handler, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	handler.SetupRoutes(mux)

	return &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger.With().Str("component", "web").Logger(),
	}
}

// SetListener serves on a pre-created listener, e.g. from socket activation.
func (s *Server) SetListener(ln net.Listener) {
	s.listener = ln
}

// Start serves until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	var err error
	if s.listener != nil {
		s.logger.Info().Str("addr", s.listener.Addr().String()).Msg("Starting control API on inherited socket")
		err = s.server.Serve(s.listener)
	} else {
		s.logger.Info().Str("addr", s.server.Addr).Msg("Starting control API")
		err = s.server.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down control API")
	return s.server.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.server.Addr
}

// Copyright 2026 The IFE Bill Tracker Authors
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Server owns the TCP listener and the HTTP server lifecycle.
type Server struct {
	listenAddress string
	handler       *Handler
	httpServer    *http.Server
	listener      net.Listener
	logger        *slog.Logger
}

// ServerConfig holds configuration for creating a new Server.
type ServerConfig struct {
	// ListenAddress is the TCP address to bind, e.g. "127.0.0.1:8791".
	// Use ":0" in tests to pick a free port.
	ListenAddress string

	// Handler routes all requests. Required.
	Handler *Handler

	Logger *slog.Logger
}

// NewServer creates a new proxy server.
func NewServer(config ServerConfig) (*Server, error) {
	if config.ListenAddress == "" {
		return nil, fmt.Errorf("listen address is required")
	}
	if config.Handler == nil {
		return nil, fmt.Errorf("handler is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		listenAddress: config.ListenAddress,
		handler:       config.Handler,
		httpServer: &http.Server{
			Handler:      config.Handler.Routes(),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		logger: logger,
	}, nil
}

// Start begins listening and serving. It returns once the listener is
// bound; serving continues on a background goroutine.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.listenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.listenAddress, err)
	}
	s.listener = listener

	s.logger.Info("proxy server started", "address", listener.Addr().String())

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address. Only valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully shuts down the server, waiting for in-flight
// requests up to the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down proxy server")
	return s.httpServer.Shutdown(ctx)
}

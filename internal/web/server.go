// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"labscan/internal/core"

	// Import formatters to register them
	_ "labscan/internal/formatters/csv"
	_ "labscan/internal/formatters/fhir"
	_ "labscan/internal/formatters/json"
	_ "labscan/internal/formatters/text"
	_ "labscan/internal/formatters/yaml"
)

// DefaultBodyLimit caps request bodies when no limit is configured
const DefaultBodyLimit = "12M"

const shutdownTimeout = 10 * time.Second

// Options configures a Server
type Options struct {
	// BodyLimit uses echo's size syntax, e.g. "12M"
	BodyLimit string

	// TempDir holds uploads while they are analyzed; empty means os.TempDir
	TempDir string
}

// Server exposes the analyzer over HTTP
type Server struct {
	echo     *echo.Echo
	analyzer *core.Analyzer
	logger   zerolog.Logger
	tempDir  string
}

// NewServer creates a new web server instance with routes and middleware registered
func NewServer(analyzer *core.Analyzer, logger zerolog.Logger, opts Options) *Server {
	if opts.BodyLimit == "" {
		opts.BodyLimit = DefaultBodyLimit
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:     e,
		analyzer: analyzer,
		logger:   logger,
		tempDir:  opts.TempDir,
	}

	e.Use(Recovery(logger))
	e.Use(echomw.RequestID())
	e.Use(Logger(logger))
	e.Use(echomw.BodyLimit(opts.BodyLimit))

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.handleHealth)

	api := s.echo.Group("/api")
	api.POST("/analyze", s.handleAnalyze)
	api.GET("/reference", s.handleReference)
	api.GET("/formats", s.handleFormats)
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("starting server")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info().Msg("server stopped")
	return nil
}

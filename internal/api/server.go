// Package api serves the operational HTTP endpoints: health, status and
// Prometheus metrics.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tusing/reddit-ffn-bot/internal/runner"
)

// StatusSource reports the state of the polling loop.
type StatusSource interface {
	Status() runner.Status
}

// Info is static session information included in /status.
type Info struct {
	Strategy   string   `json:"strategy"`
	Subreddits []string `json:"subreddits"`
	DryRun     bool     `json:"dry_run"`
}

type Server struct {
	status StatusSource
	info   Info
	echo   *echo.Echo
	logger *slog.Logger
}

func NewServer(status StatusSource, info Info, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("http request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
			)
			return nil
		},
	}))

	server := &Server{status: status, info: info, echo: e, logger: logger}
	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.echo.GET("/healthz", s.handleHealth)
	s.echo.GET("/status", s.handleStatus)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.echo.Shutdown(shutdownCtx)
	}()

	s.logger.Info("Serving ops endpoints", slog.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "ffnbot",
	})
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session": s.info,
		"runner":  s.status.Status(),
	})
}

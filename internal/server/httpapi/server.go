// Package httpapi exposes the upload workflow and the text-generation proxy
// as a JSON API over echo.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dmitrijs2005/productkeeper/internal/logging"
	"github.com/dmitrijs2005/productkeeper/internal/server/previews"
	"github.com/dmitrijs2005/productkeeper/internal/server/textgen"
	"github.com/dmitrijs2005/productkeeper/internal/server/workflow"
)

// Options configure a Server.
type Options struct {
	Address         string
	SecretKey       string
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration
	// Missing lists integrations that run as "not configured" stand-ins.
	Missing []string
}

type Server struct {
	address         string
	logger          logging.Logger
	echo            *echo.Echo
	sessions        *workflow.Registry
	enhancer        textgen.Enhancer
	previews        *previews.Registry
	jwtSecret       []byte
	maxUploadBytes  int64
	shutdownTimeout time.Duration
	missing         []string
}

func NewServer(opts Options, l logging.Logger, sessions *workflow.Registry, enhancer textgen.Enhancer, pr *previews.Registry) *Server {
	s := &Server{
		address:         opts.Address,
		logger:          l.With("module", "http_server"),
		sessions:        sessions,
		enhancer:        enhancer,
		previews:        pr,
		jwtSecret:       []byte(opts.SecretKey),
		maxUploadBytes:  opts.MaxUploadBytes,
		shutdownTimeout: opts.ShutdownTimeout,
		missing:         opts.Missing,
	}
	if s.maxUploadBytes <= 0 {
		s.maxUploadBytes = 20 << 20
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = 10 * time.Second
	}

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.requestLogger())

	e.GET("/healthz", s.health)

	e.POST("/api/ai/generate", s.generate, s.authenticate)

	v1 := e.Group("/v1", s.authenticate)
	v1.GET("/me", s.me)
	v1.POST("/sessions", s.openSession)
	v1.GET("/sessions/:id", s.getSession)
	v1.DELETE("/sessions/:id", s.closeSession)
	v1.POST("/sessions/:id/notice", s.dismissNotice)
	v1.POST("/sessions/:id/photos", s.addPhotos)
	v1.DELETE("/sessions/:id/photos/:photo", s.removePhoto)
	v1.GET("/sessions/:id/previews/:handle", s.preview)
	v1.PUT("/sessions/:id/description", s.setDescription)
	v1.POST("/sessions/:id/enhance", s.enhance)
	v1.POST("/sessions/:id/save", s.save)
	v1.POST("/sessions/:id/conflict", s.resolveConflict)
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		errc <- s.echo.Start(s.address)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug(c.Request().Context(), "request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String(),
				"request_id", v.RequestID,
			)
			return nil
		},
	})
}

type healthResponse struct {
	Status        string   `json:"status"`
	NotConfigured []string `json:"not_configured"`
}

func (s *Server) health(c echo.Context) error {
	missing := s.missing
	if missing == nil {
		missing = []string{}
	}
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", NotConfigured: missing})
}

// Package server provides the HTTP surface of replyhookd: the inbound
// reply webhook, the purchase event endpoint, read-only record views,
// the Prometheus metrics endpoint, and the basic-auth-gated admin pages.
package server

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/driftwoodlabs/replyhook/internal/config"
	"github.com/driftwoodlabs/replyhook/internal/metrics"
	"github.com/driftwoodlabs/replyhook/internal/store"
)

const (
	// recentDecisions is how many records the list views return.
	recentDecisions = 50
	// recentPurchases caps the purchase list views.
	recentPurchases = 200
)

// Server hosts all replyhookd HTTP endpoints.
type Server struct {
	echo      *echo.Echo
	cfg       *config.Config
	logger    *zap.Logger
	metrics   *metrics.Metrics
	decisions *store.DecisionStore
	purchases *store.PurchaseStore
}

// New creates the HTTP server and registers all routes.
func New(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics, decisions *store.DecisionStore, purchases *store.PurchaseStore) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if m == nil {
		return nil, fmt.Errorf("metrics collector is required")
	}
	if decisions == nil || purchases == nil {
		return nil, fmt.Errorf("record stores are required")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = newRenderer()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	s := &Server{
		echo:      e,
		cfg:       cfg,
		logger:    logger,
		metrics:   m,
		decisions: decisions,
		purchases: purchases,
	}

	e.Use(s.requestMiddleware())
	s.registerRoutes()

	return s, nil
}

// requestMiddleware logs every request and feeds the request counter.
func (s *Server) requestMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let echo resolve the status before recording it.
				c.Error(err)
			}
			status := c.Response().Status

			// The matched route template keeps label cardinality bounded.
			s.metrics.ObserveRequest(c.Request().Method, c.Path(), status)

			s.logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return nil
		}
	}
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	e := s.echo

	e.GET("/", s.handleRoot)
	e.GET("/healthz", s.handleHealthz)
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	e.POST("/inbound", s.handleInbound)
	e.POST("/event", s.handleEvent)
	e.GET("/decision/:token", s.handleGetDecision)

	auth := s.basicAuth()
	e.GET("/decisions.json", s.handleDecisionsJSON, auth)
	e.GET("/purchases.json", s.handlePurchasesJSON, auth)

	admin := e.Group("/admin", auth)
	admin.GET("", s.handleAdminDecisions)
	admin.GET("/live", s.handleAdminDecisionsLive)
	admin.GET("/purchases", s.handleAdminPurchases)
	admin.GET("/purchases/live", s.handleAdminPurchasesLive)
	admin.GET("/logs", s.handleAdminLogs)
}

// basicAuth gates the admin-facing routes. When either credential is
// unset the gate is disabled entirely.
func (s *Server) basicAuth() echo.MiddlewareFunc {
	admin := s.cfg.Admin
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Skipper: func(echo.Context) bool {
			return !admin.AuthEnabled()
		},
		Realm: "replyhook admin",
		Validator: func(user, pass string, c echo.Context) (bool, error) {
			userOK := subtle.ConstantTimeCompare([]byte(user), []byte(admin.User)) == 1
			passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(admin.Pass)) == 1
			return userOK && passOK, nil
		},
	})
}

// Start starts the HTTP server and blocks until ctx is cancelled, then
// performs graceful shutdown with the configured timeout. Returns
// http.ErrServerClosed on graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server start: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()

		s.logger.Info("shutting down http server")
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return http.ErrServerClosed
	}
}

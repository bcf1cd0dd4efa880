// Package server assembles the HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"canteen-system/internal/auth"
	"canteen-system/internal/logger"
	"canteen-system/internal/models"
	"canteen-system/internal/services/booking"
	"canteen-system/internal/services/cart"
	"canteen-system/internal/services/menu"
	"canteen-system/internal/services/order"
	"canteen-system/internal/services/timing"
	"canteen-system/internal/services/tracking"
	"canteen-system/internal/services/user"
	"canteen-system/internal/web"
)

const shutdownTimeout = 10 * time.Second

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers are the per-domain HTTP handlers mounted by the router
type Handlers struct {
	User     *user.Handler
	Menu     *menu.Handler
	Cart     *cart.Handler
	Order    *order.Handler
	Tracking *tracking.Handler
	Booking  *booking.Handler
	Timing   *timing.Handler
}

// Server is the canteen HTTP API
type Server struct {
	handlers       Handlers
	verifier       auth.Verifier
	health         Pinger
	logger         *logger.Logger
	requestTimeout time.Duration
}

// New creates a server
func New(handlers Handlers, verifier auth.Verifier, health Pinger, log *logger.Logger, requestTimeout time.Duration) *Server {
	return &Server{
		handlers:       handlers,
		verifier:       verifier,
		health:         health,
		logger:         log,
		requestTimeout: requestTimeout,
	}
}

// Router builds the route tree
func (s *Server) Router() http.Handler {
	h := s.handlers
	authenticate := auth.Authenticate(s.verifier, s.logger)
	requireAdmin := auth.RequireCapability(models.CapabilityAdmin, s.logger)

	r := chi.NewRouter()
	r.Use(web.WithLogging(s.logger))
	r.Use(web.Recover(s.logger))
	if s.requestTimeout > 0 {
		r.Use(web.WithTimeout(s.requestTimeout))
	}

	r.Get("/health", s.healthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/token/", h.User.Token)

		r.Route("/menu", func(r chi.Router) {
			r.Route("/customer", h.Menu.CustomerRoutes)
			r.With(authenticate, requireAdmin).Route("/admin", h.Menu.AdminRoutes)
		})

		r.Route("/timings", func(r chi.Router) {
			r.Get("/", h.Timing.Get)
			r.With(authenticate, requireAdmin).Put("/", h.Timing.Update)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Route("/cart", h.Cart.Routes)
			r.Route("/bookings", h.Booking.Routes)
			r.Route("/orders", func(r chi.Router) {
				r.With(requireAdmin).Route("/admin", h.Order.AdminRoutes)
				r.Get("/{id}/history/", h.Tracking.GetOrderHistory)
				h.Order.Routes(r)
			})
		})
	})

	return r
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			s.logger.Warn("health_check_failed", "Database unreachable", web.RequestID(r.Context()), map[string]interface{}{
				"error": err.Error(),
			})
			_ = web.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	_ = web.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Run serves on port until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("service_started", fmt.Sprintf("API listening on port %d", port), "", map[string]interface{}{
			"port": port,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("graceful_shutdown", "Shutting down HTTP server", "", nil)
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

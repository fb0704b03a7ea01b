// Package server exposes the policy validator over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/huangsam/storecheck/internal/contract"
	storecheckmiddleware "github.com/huangsam/storecheck/internal/server/middleware"
)

// DefaultShutdownTimeout bounds how long in-flight requests may run after a shutdown signal.
const DefaultShutdownTimeout = 10 * time.Second

// WebAPI is the HTTP surface of the validator.
type WebAPI struct {
	router          *chi.Mux
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

// Dependencies are the collaborators the handlers need.
type Dependencies struct {
	Config *contract.Config
	Stores contract.StoreManager
}

// Config configures the WebAPI.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

// NewWebAPI builds the router and the underlying http.Server.
func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	router := ConfigureRouter(logger, config.Dependencies)

	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: timeout,
	}
}

// ConfigureRouter wires the middlewares and routes.
func ConfigureRouter(logger zerolog.Logger, deps Dependencies) *chi.Mux {
	h := NewHandler(deps.Config, deps.Stores)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(storecheckmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", h.Health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/rules", h.Rules)
		r.Post("/validate", h.Validate)
		r.Post("/validate/upload", h.ValidateUpload)
	})

	return router
}

// Handler returns the root HTTP handler.
func (w *WebAPI) Handler() http.Handler {
	return w.router
}

// Start serves until ctx is canceled, SIGINT/SIGTERM arrives, or the listener fails.
func (w *WebAPI) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")
	case <-ctx.Done():
		w.logger.Info().Msg("context canceled, shutting down")
	}

	// Give outstanding requests a deadline for completion.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
	defer cancel()

	err := w.server.Shutdown(shutdownCtx)
	if err != nil {
		w.logger.Error().Err(err).Msg("graceful shutdown failed")
		err = w.server.Close()
	}
	return err
}

// Package rest serves the CloudDrop HTTP API: multipart upload, the
// one-time share endpoint, metadata lookup and payload download.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/namaniisc/CloudDrop/internal/logging"
)

// RESTServer wraps the chi router and the underlying http.Server.
type RESTServer struct {
	address string
	handler *Handler
	logger  logging.Logger
}

func NewRESTServer(address string, h *Handler, l logging.Logger) *RESTServer {
	return &RESTServer{
		address: address,
		handler: h,
		logger:  l.With("module", "rest_server"),
	}
}

func (s *RESTServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(s.logger))
	r.Use(metricsMiddleware)

	r.Post("/api/files", s.handler.Upload)
	r.Post("/api/files/send", s.handler.Send)
	r.Get("/files/{id}", s.handler.Get)
	r.Get("/files/download/{id}", s.handler.Download)
	r.Get("/ping", s.handler.Ping)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// Run starts the server and blocks until it stops. Cancelling ctx triggers
// a graceful shutdown.
func (s *RESTServer) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

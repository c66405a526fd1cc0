// Package api exposes a gateway.RecordSystem as a REST API.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexanderramin/casework/internal/gateway"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultMaxUploadBytes bounds a single uploaded file.
const DefaultMaxUploadBytes int64 = 5 << 20

// multipartOverhead is the slack allowed on top of the file for form fields
// and part headers.
const multipartOverhead int64 = 64 << 10

type Config struct {
	Logger         *slog.Logger
	Registry       *prometheus.Registry
	MaxUploadBytes int64
}

// Server is the casework REST server.
type Server struct {
	records   gateway.RecordSystem
	logger    *slog.Logger
	maxUpload int64
	router    *gin.Engine
	requests  *prometheus.CounterVec
}

// NewServer builds the router over records. A nil Registry gets a fresh one.
func NewServer(records gateway.RecordSystem, cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}

	s := &Server{
		records:   records,
		logger:    cfg.Logger,
		maxUpload: cfg.MaxUploadBytes,
		router:    gin.New(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "casework",
			Name:      "http_requests_total",
			Help:      "API requests by route and status.",
		}, []string{"method", "route", "status"}),
	}
	cfg.Registry.MustRegister(s.requests)

	s.router.Use(gin.Recovery(), s.requestLogger())

	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))

	api := s.router.Group("/api")
	{
		api.GET("/tasks/:id", s.handleGetTask)
		api.POST("/tasks", s.handleCreateTask)
		api.PUT("/tasks/:id", s.handleSaveTask)
		api.POST("/tasks/:id/phases", s.handleCreatePhase)
		api.POST("/tasks/:id/documents", s.handleUploadDocument)

		api.PUT("/phases/:id", s.handleUpdatePhase)
		api.GET("/phases/:id/invoice-number/latest", s.handleLatestInvoiceNumber)
		api.PUT("/phases/:id/invoice-number", s.handleRecordInvoiceNumber)

		api.GET("/case-types/:id/categories", s.handleListCategories)
		api.POST("/case-types/:id/categories", s.handleCreateCategory)

		api.DELETE("/documents/:id", s.handleDeleteDocument)

		api.POST("/customers", s.handleUpsertCustomer)
		api.PUT("/customers/:id", s.handleUpsertCustomer)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api_listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}

// requestLogger logs one line per request and counts it by route.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		s.requests.WithLabelValues(c.Request.Method, route, fmt.Sprint(status)).Inc()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
		}
		if status >= http.StatusInternalServerError {
			s.logger.Error("api_request", attrs...)
			return
		}
		s.logger.Info("api_request", attrs...)
	}
}

// Package http is the HTTP adapter: it translates requests into lifecycle
// controller calls. Identity arrives in the X-User-Email / X-User-Name
// headers; authentication itself happens upstream.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/expenseflow/ems-core/internal/attachment"
	"github.com/expenseflow/ems-core/internal/export"
	"github.com/expenseflow/ems-core/internal/lifecycle"
	"github.com/expenseflow/ems-core/internal/refdata"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MaxUploadSize caps attachment uploads in bytes; zero disables it.
	MaxUploadSize int64
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:          "0.0.0.0",
		Port:          8080,
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  30 * time.Second,
		MaxUploadSize: 10 << 20,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	logger     *zap.Logger
}

// NewServer creates the HTTP server over the lifecycle controller and its
// collaborators.
func NewServer(
	config ServerConfig,
	controller *lifecycle.Controller,
	reference *refdata.Cache,
	attachments *attachment.Manager,
	exporter *export.Exporter,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	server := &Server{
		config: config,
		router: router,
		logger: logger,
	}

	router.Use(gin.Recovery())
	router.Use(server.loggingMiddleware())

	handlers := NewHandlers(controller, reference, attachments, exporter, config.MaxUploadSize, logger)
	server.setupRoutes(handlers)
	return server
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

func (s *Server) setupRoutes(h *Handlers) {
	s.router.GET("/health", h.HealthCheck)

	api := s.router.Group("/api")
	{
		api.GET("/requests", h.ListRequests)
		api.POST("/requests/draft", h.SaveDraft)
		api.POST("/requests/submit", h.SubmitRequest)
		api.GET("/requests/:no", h.GetRequest)
		api.PUT("/requests/:no", h.UpdateRequest)
		api.DELETE("/requests/:no", h.DeleteRequest)
		api.GET("/requests/:no/edit", h.EditRequest)
		api.GET("/requests/:no/history", h.GetHistory)
		api.GET("/requests/:no/export", h.ExportRequest)
		api.POST("/requests/:no/approve", h.Approve)
		api.POST("/requests/:no/reject", h.Reject)
		api.POST("/requests/:no/revision", h.RequestRevision)

		api.GET("/approvals/pending", h.PendingApprovals)

		api.POST("/lines/:lineId/attachment", h.UploadAttachment)
		api.GET("/lines/:lineId/attachment", h.GetAttachmentMetadata)

		api.GET("/reference", h.GetReferenceData)
		api.POST("/reference/refresh", h.RefreshReferenceData)
	}
}

// Start runs the server until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

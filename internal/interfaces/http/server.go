// Package http provides the HTTP adapter for the application layer.
// Handlers translate requests into service calls and errors into status codes.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/application/authz"
	"github.com/garyjia/lecturer-claims/internal/application/service"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	Version         string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Version:         "1.0.0",
	}
}

// Services groups the application services the API exposes
type Services struct {
	Claims    service.ClaimService
	Documents service.DocumentService
	Users     service.UserService
	Reports   service.ReportService
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	tokens     TokenVerifier
	logger     *zap.Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, services Services, tokens TokenVerifier, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	useJSONFieldNames()

	router := gin.New()
	// uploads are capped at 5 MiB; leave room for the other form fields
	router.MaxMultipartMemory = 8 << 20

	server := &Server{
		config:   config,
		router:   router,
		services: services,
		tokens:   tokens,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(s.corsMiddleware())
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	h := NewHandlers(s.services, s.config.Version, s.logger)

	s.router.GET("/health", h.HealthCheck)

	api := s.router.Group("/api")
	api.POST("/auth/login", h.Login)

	secured := api.Group("", s.authenticate())
	{
		secured.GET("/me", s.authorize(authz.OpViewProfile), h.Me)

		secured.POST("/claims", s.authorize(authz.OpSubmitClaim), h.SubmitClaim)
		secured.GET("/claims/mine", s.authorize(authz.OpListOwnClaims), h.ListMyClaims)
		secured.GET("/claims/:id", s.authorize(authz.OpViewClaim), h.GetClaim)
		secured.GET("/claims/:id/history", s.authorize(authz.OpViewHistory), h.ClaimHistory)
		secured.POST("/claims/:id/documents", s.authorize(authz.OpAttachDocument), h.AttachDocument)
		secured.GET("/claims/:id/documents/:docID", s.authorize(authz.OpDownloadDocument), h.DownloadDocument)

		secured.GET("/queue/coordinator", s.authorize(authz.OpCoordinatorQueue), h.CoordinatorQueue)
		secured.POST("/claims/:id/coordinator-decision", s.authorize(authz.OpCoordinatorDecide), h.CoordinatorDecision)
		secured.GET("/queue/manager", s.authorize(authz.OpManagerQueue), h.ManagerQueue)
		secured.POST("/claims/:id/manager-decision", s.authorize(authz.OpManagerDecide), h.ManagerDecision)

		users := secured.Group("/users", s.authorize(authz.OpManageUsers))
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.PUT("/:id", h.UpdateUser)
		users.POST("/:id/activate", h.ActivateUser)
		users.POST("/:id/deactivate", h.DeactivateUser)

		reports := secured.Group("/reports", s.authorize(authz.OpViewReports))
		reports.GET("/claims", h.ClaimsReport)
		reports.GET("/claims.xlsx", h.ClaimsWorkbook)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	s.logger.Info("Stopping HTTP server")

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
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

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

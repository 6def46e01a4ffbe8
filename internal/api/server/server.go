package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "sensevoice-asr/docs" // Generated swagger docs
	apierrors "sensevoice-asr/internal/api/errors"
	"sensevoice-asr/internal/api/middleware"
	v1routes "sensevoice-asr/internal/api/v1/routes"
	"sensevoice-asr/internal/api/v1/services"
)

// Config represents API server configuration
type Config struct {
	Addr              string
	CORS              middleware.CORSConfig
	MaxUploadBytes    int64
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	Development       bool
}

// Server represents the API server
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	listener   net.Listener
	errCh      chan error
	logger     *zap.Logger
}

// NewServer creates a new API server
func NewServer(config Config, transcriber services.TranscriptionService, logger *zap.Logger) *Server {
	if config.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogging(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.CORS(config.CORS))

	v1routes.RegisterRoutes(router, &v1routes.ServiceContainer{
		TranscriptionService: transcriber,
		MaxUploadBytes:       config.MaxUploadBytes,
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":       "SenseVoice ASR API",
			"documentation": "/swagger/index.html",
			"endpoints": gin.H{
				"asr":     "/asr",
				"health":  "/health",
				"metrics": "/metrics",
			},
		})
	})

	router.NoRoute(func(c *gin.Context) {
		apiErr := apierrors.NewNotFoundError("not found")
		c.JSON(apiErr.HTTPStatus(), apiErr.Response())
	})

	httpServer := &http.Server{
		Addr:              config.Addr,
		Handler:           router,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		IdleTimeout:       config.IdleTimeout,
	}

	return &Server{
		config:     config,
		router:     router,
		httpServer: httpServer,
		errCh:      make(chan error, 1),
		logger:     logger,
	}
}

// Start binds the listen address and serves in the background. Bind errors
// are returned directly; later serve errors arrive on Errors.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	s.listener = ln

	s.logger.Info("API server started",
		zap.String("address", ln.Addr().String()),
		zap.Bool("development", s.config.Development),
		zap.Strings("cors_origins", s.config.CORS.AllowOrigins),
		zap.Bool("cors_allow_all", s.config.CORS.AllowAll))

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.errCh <- err
		}
		close(s.errCh)
	}()

	return nil
}

// Errors reports a fatal serve error. It is closed when serving stops.
func (s *Server) Errors() <-chan error {
	return s.errCh
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.config.Addr
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully shuts down the server, letting in-flight requests finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	s.logger.Info("API server shutdown complete")
	return nil
}

// Router returns the Gin router (useful for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

package ui

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"findash/adapters/excel"
	"findash/app"
	"findash/internal"
	"findash/internal/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
)

// defaultQueueWait is how long a chat waits for a free backend slot before 503
const defaultQueueWait = 10 * time.Second

// Server serves the task-pane API and static files
type Server struct {
	router *gin.Engine
	chat   *app.ChatService
	reader *excel.DataReader
	config config.ServerConfig

	// backend bounds concurrent text-generation calls
	backend   *semaphore.Weighted
	queueWait time.Duration
	logger    *internal.Logger
}

// NewServer creates a new web server instance
func NewServer(cfg config.ServerConfig, chat *app.ChatService, reader *excel.DataReader) *Server {
	if cfg.MaxConcurrentChats < 1 {
		cfg.MaxConcurrentChats = 1
	}
	if cfg.MaxUploadBytes < 1 {
		cfg.MaxUploadBytes = 10 << 20
	}

	s := &Server{
		router:    gin.Default(),
		chat:      chat,
		reader:    reader,
		config:    cfg,
		backend:   semaphore.NewWeighted(cfg.MaxConcurrentChats),
		queueWait: defaultQueueWait,
		logger:    internal.DefaultLogger.Named("Server"),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler exposes the router, e.g. for httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/options", s.handleOptions)

	s.router.POST("/chat", s.handleChat)
	s.router.POST("/analyze", s.handleAnalyze)
	s.router.POST("/normalize", s.handleNormalize)

	s.router.GET("/chats", s.handleRecentChats)
	s.router.GET("/usage", s.handleUsage)

	if info, err := os.Stat(s.config.StaticDir); err == nil && info.IsDir() {
		s.logger.Info("serving static files from %s", s.config.StaticDir)
		s.router.NoRoute(s.handleStatic)
	} else {
		s.logger.Warn("static directory %q not found, task pane disabled", s.config.StaticDir)
	}
}

// Start runs the server until it fails
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting Findash on http://%s", addr)
	return s.router.Run(addr)
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting Findash on http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

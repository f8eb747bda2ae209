package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"statcalc/internal"

	"github.com/gin-gonic/gin"
)

// Server is the HTTP front of the calculators.
type Server struct {
	router *gin.Engine
	logger *internal.Logger
}

// NewServer builds the gin engine in the given mode ("debug", "release", "test").
func NewServer(handler *CalculatorHandler, ginMode string, logger *internal.Logger) *Server {
	if ginMode != "" {
		gin.SetMode(ginMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	handler.RegisterRoutes(router)

	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Server{router: router, logger: logger}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("statcalc API listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down API server")
		return srv.Shutdown(shutdownCtx)
	}
}

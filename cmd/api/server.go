package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AfroSamurai-hub/OzzServe/pkg/container"
	"github.com/AfroSamurai-hub/OzzServe/pkg/logger"
)

// Server owns the HTTP listener lifecycle.
type Server struct {
	container *container.Container
	http      *http.Server
}

func NewServer(c *container.Container) *Server {
	return &Server{
		container: c,
		http: &http.Server{
			Addr:         ":" + c.Config.App.Port,
			Handler:      NewRouter(c),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		logger.Info("http server listening", map[string]interface{}{
			"addr": s.http.Addr,
			"env":  s.container.Config.App.Environment,
		})
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutdown signal received", map[string]interface{}{
			"signal": sig.String(),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return err
	}
	logger.Info("http server stopped", nil)
	return nil
}

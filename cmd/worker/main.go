package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/AfroSamurai-hub/OzzServe/internal/config"
	"github.com/AfroSamurai-hub/OzzServe/internal/infrastructure/queue"
	"github.com/AfroSamurai-hub/OzzServe/pkg/container"
	"github.com/AfroSamurai-hub/OzzServe/pkg/logger"
)

// The worker runs the scheduled maintenance: hourly sweep of stale unpaid
// bookings and the five-minute grace-window closer.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Init("development")
		logger.Fatal("invalid configuration", err)
	}

	logger.Init(cfg.App.Environment)

	c, err := container.New(context.Background(), cfg)
	if err != nil {
		logger.Fatal("failed to build application", err)
	}
	defer c.Close()

	mux := asynq.NewServeMux()
	c.BookingJobs.Register(mux)

	server := queue.NewServer(cfg)
	scheduler, err := queue.NewScheduler(cfg)
	if err != nil {
		logger.Fatal("failed to build scheduler", err)
	}

	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Fatal("scheduler terminated", err)
		}
	}()

	go func() {
		if err := server.Run(mux); err != nil {
			logger.Fatal("worker terminated", err)
		}
	}()

	logger.Info("worker running", map[string]interface{}{
		"sweep_cron":       cfg.Jobs.SweepCron,
		"grace_close_cron": cfg.Jobs.GraceCloseCron,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", map[string]interface{}{
		"signal": sig.String(),
	})

	scheduler.Shutdown()
	server.Shutdown()
}

package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/AfroSamurai-hub/OzzServe/internal/config"
	"github.com/AfroSamurai-hub/OzzServe/pkg/container"
	"github.com/AfroSamurai-hub/OzzServe/pkg/logger"
)

func main() {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Init("development")
		logger.Fatal("invalid configuration", err)
	}

	logger.Init(cfg.App.Environment)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	c, err := container.New(context.Background(), cfg)
	if err != nil {
		logger.Fatal("failed to build application", err)
	}
	defer c.Close()

	srv := NewServer(c)
	if err := srv.Run(); err != nil {
		logger.Fatal("server terminated", err)
	}
}

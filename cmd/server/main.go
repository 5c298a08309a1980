package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/eduxperience/eduxperience/internal/buildinfo"
	"github.com/eduxperience/eduxperience/internal/logging"
	"github.com/eduxperience/eduxperience/internal/server"
	"github.com/eduxperience/eduxperience/internal/server/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	logger := logging.New(os.Stdout, slog.LevelInfo, true)

	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	app.Run(ctx)
}

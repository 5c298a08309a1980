package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/eduxperience/eduxperience/internal/buildinfo"
	"github.com/eduxperience/eduxperience/internal/client/cli"
	"github.com/eduxperience/eduxperience/internal/client/config"
	"github.com/eduxperience/eduxperience/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, slog.LevelWarn, false)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}

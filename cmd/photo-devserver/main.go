package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/photostream/photostream/internal/devserver"
)

func main() {
	cfg, err := devserver.NewConfig()
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}
	logger := devserver.NewLogger("photo-devserver", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := devserver.Run(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("photo-devserver exited with error")
		os.Exit(1)
	}
}

// Command sporkfish-lichess runs the engine as a Lichess bot, the way the
// teacher's mains/lichess/main.go wires an engine into lichess.LichessClient.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/KYLChiu/sporkfish/internal/config"
	"github.com/KYLChiu/sporkfish/internal/engine"
	"github.com/KYLChiu/sporkfish/internal/lichess"
	"github.com/KYLChiu/sporkfish/internal/search"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional; defaults are used if omitted)")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	apiKey := os.Getenv("SPORKFISH_LICHESS_TOKEN")
	if apiKey == "" {
		logger.Fatal().Msg("SPORKFISH_LICHESS_TOKEN must be set")
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load config")
		}
		cfg = loaded
	}

	e, err := engine.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build engine")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bot := &lichess.Bot{
		Client:      lichess.NewClient(apiKey, logger),
		Engine:      e,
		TimeManager: search.NewTimeManager(cfg.TimeManager),
		Logger:      logger,
	}
	if err := bot.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("bot exited with an error")
	}
}

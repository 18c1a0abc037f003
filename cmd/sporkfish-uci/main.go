// Command sporkfish-uci runs the engine behind a Universal Chess Interface
// loop over stdin/stdout, the way the teacher's mains/uci/main.go does.
package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"

	"github.com/KYLChiu/sporkfish/internal/config"
	"github.com/KYLChiu/sporkfish/internal/engine"
	"github.com/KYLChiu/sporkfish/internal/search"
	"github.com/KYLChiu/sporkfish/internal/uci"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional; defaults are used if omitted)")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

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

	tm := search.NewTimeManager(cfg.TimeManager)
	loop := uci.NewLoop(e, tm, logger, os.Stdout)
	loop.Run(os.Stdin)
}

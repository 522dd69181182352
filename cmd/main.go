package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"kestrel/internal/sim"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := sim.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load config")
	}

	ctx := context.Background()
	if err := sim.RunDemo(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("demo failed")
	}

	if _, err := sim.RunBenchmark(cfg, "ONE", cfg.SmallOrders, cfg.QtyMax); err != nil {
		log.Fatal().Err(err).Msg("small benchmark failed")
	}
	if _, err := sim.RunBenchmark(cfg, "TWO", cfg.LargeOrders, cfg.QtyMax*10); err != nil {
		log.Fatal().Err(err).Msg("large benchmark failed")
	}
}

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pellmont/gridwar/internal/bot"
)

func main() {
	url := flag.String("url", "http://localhost:8013", "server base URL")
	callsign := flag.String("callsign", "bot", "callsign to connect with")
	strategyName := flag.String("strategy", "greedy", "bot strategy (hold, random, greedy, external, neural)")
	enginePath := flag.String("engine", "", "path to a GBI engine binary (external strategy)")
	modelDir := flag.String("model", "", "directory containing the policy model (neural strategy)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if *enginePath != "" {
		bot.ExternalEnginePath = *enginePath
	}
	if *modelDir != "" {
		bot.NeuralModelPath = *modelDir
	}
	strategy := bot.StrategyForName(*strategyName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("Received shutdown signal")
		cancel()
	}()

	orch := bot.NewOrchestrator(*url, *callsign, strategy)
	report, err := orch.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Bot game failed")
	}

	switch {
	case report.Won():
		log.Info().Str("side", string(report.Side)).Int("turns", report.Turns).Msg("Bot won")
	case report.Winner == "":
		log.Info().Str("side", string(report.Side)).Int("turns", report.Turns).Msg("Game drawn")
	default:
		log.Info().Str("side", string(report.Side)).Str("winner", string(report.Winner)).Int("turns", report.Turns).Msg("Bot lost")
	}
}

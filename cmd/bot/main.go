package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/trooper-tactics/api/internal/bot"
	"github.com/freeeve/trooper-tactics/api/internal/config"
	"github.com/freeeve/trooper-tactics/api/internal/logger"
	redisrepo "github.com/freeeve/trooper-tactics/api/internal/repository/redis"
)

func main() {
	url := flag.String("url", "http://localhost:8020", "game server base URL")
	matchID := flag.String("match", "", "match to join")
	name := flag.String("name", "trooper-bot", "bot name used to log in")
	strategyName := flag.String("strategy", "search", "bot strategy (search, hold, random)")
	weightsFile := flag.String("weights", "", "YAML planner weights (default built-in)")
	depth := flag.Int("depth", 8, "search depth in actions")
	deadline := flag.Duration("deadline", 0, "per-decision search time limit (0 = none)")
	seed := flag.Int64("seed", 0, "random seed (0 = random)")
	redisURL := flag.String("redis", "", "Redis URL for resumable planner state (optional)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	logger.Init("bot")
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *matchID == "" {
		log.Fatal().Msg("-match is required")
	}

	weights, err := config.LoadWeights(*weightsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid planner weights")
	}
	opts := bot.DefaultOptions()
	opts.MaxDepth = *depth
	opts.Deadline = *deadline

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	orch := bot.NewOrchestrator(*url, *name, *matchID, bot.StrategyFor(*strategyName), weights, opts)
	orch.SetSeed(*seed)

	if *redisURL != "" {
		rc, err := redisrepo.NewClient(ctx, *redisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		defer rc.Close()
		orch.SetCache(rc)
	}

	if err := orch.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Bot orchestrator failed")
	}
	log.Info().Str("matchId", *matchID).Msg("Bot match completed")
}

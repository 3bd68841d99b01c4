package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/trooper-tactics/api/internal/auth"
	"github.com/freeeve/trooper-tactics/api/internal/config"
	"github.com/freeeve/trooper-tactics/api/internal/handler"
	"github.com/freeeve/trooper-tactics/api/internal/logger"
	"github.com/freeeve/trooper-tactics/api/internal/repository/postgres"
	redisrepo "github.com/freeeve/trooper-tactics/api/internal/repository/redis"
	"github.com/freeeve/trooper-tactics/api/internal/service"
)

func main() {
	logger.Init("server")
	cfg := config.Load()
	log.Info().Str("port", cfg.Port).Str("strategy", cfg.Strategy).Int("maxDepth", cfg.SearchMaxDepth).Msg("Config loaded")

	params, err := config.LoadParams(cfg.ParamsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid game parameters")
	}
	weights, err := config.LoadWeights(cfg.WeightsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid planner weights")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()

	// Redis
	redisClient, err := redisrepo.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer redisClient.Close()

	matchRepo := postgres.NewMatchRepo(db)
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)
	wsHub := handler.NewHub()

	decisionSvc := service.NewDecisionService(matchRepo, redisClient, wsHub, params, weights, cfg.SearchOptions(), cfg.Strategy)

	router := handler.NewRouter(
		jwtMgr,
		handler.NewDecisionHandler(decisionSvc),
		handler.NewAuthHandler(jwtMgr),
		handler.NewWSHandler(wsHub, jwtMgr),
		"*",
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}

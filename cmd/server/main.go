package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/agenthands/companion/internal/app"
	"github.com/agenthands/companion/internal/config"
	"github.com/agenthands/companion/internal/logging"
	"github.com/agenthands/companion/internal/scheduler"
	"github.com/agenthands/companion/internal/server"
)

func main() {
	envErr := godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot := logging.Logger()
		boot.Fatal().Err(err).Str("path", cfgPath).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Caller: cfg.Log.Caller})
	log := logging.Component("main")
	if envErr != nil {
		log.Debug().Msg("no .env file found, using environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Connect(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("uri", cfg.Graph.URI).Msg("failed to connect to graph store")
	}
	if err := a.Driver.BuildIndices(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to build indices")
	}
	a.LoadEmbeddings()

	var sched *scheduler.Scheduler
	if cfg.Embedding.Schedule != "" {
		sched = scheduler.New(logging.Component("scheduler"), 0)
		if err := sched.Add("retrain-embeddings", cfg.Embedding.Schedule, a.Retrain); err != nil {
			log.Fatal().Err(err).Msg("failed to schedule retraining")
		}
		sched.Start()
	}

	srv := server.NewServer(a.Recommender, a.Matcher, a.Store, logging.Component("http"))
	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	if err := a.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("closing graph driver")
	}
}

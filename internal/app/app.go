// Package app wires the recommender components from configuration. Both
// the HTTP server and the CLI build on it.
package app

import (
	"context"
	"fmt"

	"github.com/agenthands/companion/internal/config"
	"github.com/agenthands/companion/internal/core"
	"github.com/agenthands/companion/internal/core/embedding"
	"github.com/agenthands/companion/internal/core/explain"
	"github.com/agenthands/companion/internal/core/model"
	"github.com/agenthands/companion/internal/core/rules"
	"github.com/agenthands/companion/internal/core/similarity"
	"github.com/agenthands/companion/internal/driver"
	"github.com/agenthands/companion/internal/logging"
)

type App struct {
	Config      *config.Config
	Driver      driver.GraphDriver
	Store       *embedding.FileStore
	Pipeline    *embedding.Pipeline
	Matcher     *similarity.Matcher
	Recommender *core.Recommender
}

// Connect opens the graph store and builds every component on top of it.
func Connect(ctx context.Context, cfg *config.Config) (*App, error) {
	d, err := driver.NewNeo4jDriver(ctx, cfg.Graph, logging.Component("driver"))
	if err != nil {
		return nil, err
	}
	a, err := New(cfg, d)
	if err != nil {
		_ = d.Close(ctx)
		return nil, err
	}
	return a, nil
}

// New builds the components on an already open driver. The embedding file
// is not loaded; call LoadEmbeddings.
func New(cfg *config.Config, d driver.GraphDriver) (*App, error) {
	strategy, err := model.ParseStrategy(cfg.Recommend.DefaultStrategy)
	if err != nil {
		return nil, fmt.Errorf("default strategy: %w", err)
	}

	resolver, err := similarity.NewGraphActivityResolver(d, cfg.Recommend.ActivityCacheSize)
	if err != nil {
		return nil, err
	}

	store := embedding.NewFileStore(cfg.Embedding.Path, logging.Component("embedding"))
	matcher := similarity.NewMatcher(resolver, logging.Component("similarity"))

	rec := core.NewRecommender(
		rules.NewMatcher(d, logging.Component("rules")),
		matcher,
		explain.NewExplainer(d, cfg.Explain.Strict, logging.Component("explain")),
		logging.Component("recommender"),
	)
	rec.DefaultLimit = cfg.Recommend.DefaultLimit
	rec.DefaultStrategy = strategy

	return &App{
		Config:      cfg,
		Driver:      d,
		Store:       store,
		Pipeline:    embedding.NewPipeline(d, store, cfg.Embedding.Dimensions, logging.Component("trainer")),
		Matcher:     matcher,
		Recommender: rec,
	}, nil
}

// LoadEmbeddings swaps the persisted space into the matcher.
func (a *App) LoadEmbeddings() bool {
	return a.Matcher.Load(a.Store)
}

// Retrain runs the training pipeline and then reloads the matcher.
func (a *App) Retrain(ctx context.Context) error {
	if _, err := a.Pipeline.Run(ctx); err != nil {
		return err
	}
	a.LoadEmbeddings()
	return nil
}

func (a *App) Close(ctx context.Context) error {
	return a.Driver.Close(ctx)
}

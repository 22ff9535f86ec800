package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/agenthands/companion/internal/driver"
	"github.com/agenthands/companion/internal/metrics"
)

// TrainReport summarizes one fetch/train/persist run.
type TrainReport struct {
	Nodes       int           `json:"nodes"`
	Edges       int           `json:"edges"`
	Components  int           `json:"components"`
	// Communities counts label-propagation clusters of two or more nodes.
	Communities int           `json:"communities"`
	Dimensions  int           `json:"dimensions"`
	Path        string        `json:"path"`
	Saved       bool          `json:"saved"`
	Duration    time.Duration `json:"duration"`
}

// Pipeline is the offline job: snapshot the store, train, persist.
type Pipeline struct {
	Driver     driver.GraphDriver
	Trainer    *Trainer
	Store      *FileStore
	Dimensions int

	logger zerolog.Logger
}

func NewPipeline(d driver.GraphDriver, store *FileStore, dimensions int, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		Driver:     d,
		Trainer:    NewTrainer(logger),
		Store:      store,
		Dimensions: dimensions,
		logger:     logger,
	}
}

func (p *Pipeline) Run(ctx context.Context) (*TrainReport, error) {
	start := time.Now()

	g, err := FetchSnapshot(ctx, p.Driver)
	if err != nil {
		return nil, err
	}

	components := g.ConnectedComponents()
	communities := g.LabelCommunities(0)
	p.logger.Info().
		Int("nodes", g.NumNodes()).
		Int("edges", g.NumEdges()).
		Int("components", len(components)).
		Int("communities", len(communities)).
		Msg("graph snapshot built")
	if len(components) > 1 {
		p.logger.Warn().Int("components", len(components)).
			Msg("graph is not fully connected, embeddings of separate components are not comparable")
	}

	space, err := p.Trainer.Train(g, p.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("training embeddings: %w", err)
	}

	if err := p.Store.Save(space); err != nil {
		return nil, fmt.Errorf("persisting embeddings: %w", err)
	}

	report := &TrainReport{
		Nodes:       space.Len(),
		Edges:       g.NumEdges(),
		Components:  len(components),
		Communities: len(communities),
		Dimensions:  p.Dimensions,
		Path:        p.Store.Path,
		Saved:       space.Len() > 0,
		Duration:    time.Since(start),
	}
	metrics.TrainingDuration.Observe(report.Duration.Seconds())
	metrics.EmbeddingNodes.Set(float64(report.Nodes))
	return report, nil
}

package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/agenthands/companion/internal/core/explain"
	"github.com/agenthands/companion/internal/core/model"
	"github.com/agenthands/companion/internal/core/rules"
	"github.com/agenthands/companion/internal/metrics"
)

const DefaultLimit = 5

// GraphBranch is the rule matcher's contract.
type GraphBranch interface {
	ActivitiesForUser(ctx context.Context, userID string, limit int) ([]model.Candidate, error)
	ActivitiesForStates(ctx context.Context, states []string, limit int) ([]model.Candidate, error)
}

// NeuralBranch is the similarity matcher's contract.
type NeuralBranch interface {
	Predict(ctx context.Context, userID string, limit int) ([]model.Candidate, error)
	PredictColdStart(ctx context.Context, states []string, limit int) ([]model.Candidate, error)
}

// PathExplainer renders the graph path between a user and an activity.
type PathExplainer interface {
	Explain(ctx context.Context, activityID, userID string) (string, error)
}

// Request is one recommendation query. A non-empty UserID takes precedence
// over Attributes.
type Request struct {
	UserID     string
	Attributes *model.Attributes
	Limit      int
	Strategy   model.Strategy
}

// Recommendation is a candidate with its explanation attached.
type Recommendation struct {
	model.Candidate
	Explanation string `json:"explanation"`
}

type Recommender struct {
	Graph     GraphBranch
	Neural    NeuralBranch
	Explainer PathExplainer

	DefaultLimit    int
	DefaultStrategy model.Strategy

	logger zerolog.Logger
}

func NewRecommender(graph GraphBranch, neural NeuralBranch, explainer PathExplainer, logger zerolog.Logger) *Recommender {
	return &Recommender{
		Graph:           graph,
		Neural:          neural,
		Explainer:       explainer,
		DefaultLimit:    DefaultLimit,
		DefaultStrategy: model.StrategyHybrid,
		logger:          logger,
	}
}

func (r *Recommender) GetRecommendations(ctx context.Context, req Request) ([]model.Candidate, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = r.DefaultLimit
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	requested := req.Strategy
	if requested == "" {
		requested = r.DefaultStrategy
	}
	strategy, err := model.ParseStrategy(string(requested))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		metrics.RecommendationsTotal.WithLabelValues(string(strategy)).Inc()
		metrics.RecommendationDuration.WithLabelValues(string(strategy)).Observe(time.Since(start).Seconds())
	}()

	var states []string
	if req.UserID == "" {
		states = rules.StatesForAttributes(req.Attributes)
	}

	var graphCands, neuralCands []model.Candidate

	if strategy == model.StrategyGraph || strategy == model.StrategyHybrid {
		if req.UserID != "" {
			graphCands, err = r.Graph.ActivitiesForUser(ctx, req.UserID, limit)
		} else {
			graphCands, err = r.Graph.ActivitiesForStates(ctx, states, limit)
		}
		if err != nil {
			return nil, fmt.Errorf("graph branch: %w", err)
		}
		metrics.BranchCandidates.WithLabelValues("graph").Observe(float64(len(graphCands)))
	}

	if strategy == model.StrategyNeural || strategy == model.StrategyHybrid {
		if req.UserID != "" {
			neuralCands, err = r.Neural.Predict(ctx, req.UserID, limit)
		} else {
			neuralCands, err = r.Neural.PredictColdStart(ctx, states, limit)
		}
		if err != nil {
			return nil, fmt.Errorf("neural branch: %w", err)
		}
		metrics.BranchCandidates.WithLabelValues("neural").Observe(float64(len(neuralCands)))
	}

	// A single branch still goes through Merge: a user whose states share
	// an activity gets that activity once per state from the store.
	out := Merge(graphCands, neuralCands, limit)

	r.logger.Debug().
		Str("user_id", req.UserID).
		Strs("states", states).
		Str("strategy", string(strategy)).
		Int("graph", len(graphCands)).
		Int("neural", len(neuralCands)).
		Int("returned", len(out)).
		Msg("recommendations computed")
	return out, nil
}

func (r *Recommender) ExplainRecommendation(ctx context.Context, activityID, userID string) (string, error) {
	return r.Explainer.Explain(ctx, activityID, userID)
}

// Annotate attaches an explanation to each candidate. With a user the
// explanation is re-derived from the graph; otherwise it comes from the
// candidate's reason category.
func (r *Recommender) Annotate(ctx context.Context, userID string, candidates []model.Candidate) ([]Recommendation, error) {
	out := make([]Recommendation, 0, len(candidates))
	for _, c := range candidates {
		var text string
		if userID != "" {
			var err error
			text, err = r.ExplainRecommendation(ctx, c.ID, userID)
			if err != nil {
				return nil, err
			}
		} else {
			text = explain.ForReason(c.ReasonCategory)
		}
		out = append(out, Recommendation{Candidate: c, Explanation: text})
	}
	return out, nil
}

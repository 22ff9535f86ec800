package rules

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"

	"github.com/agenthands/companion/internal/core/model"
	"github.com/agenthands/companion/internal/driver"
	"github.com/agenthands/companion/internal/metrics"
)

// Matcher finds activities that TREAT a state, either the states a known
// user EXPERIENCES or an explicit list. Rows come back in store order.
type Matcher struct {
	Driver driver.GraphDriver
	logger zerolog.Logger
}

func NewMatcher(d driver.GraphDriver, logger zerolog.Logger) *Matcher {
	return &Matcher{Driver: d, logger: logger}
}

func (m *Matcher) ActivitiesForUser(ctx context.Context, userID string, limit int) ([]model.Candidate, error) {
	if limit <= 0 || userID == "" {
		return nil, nil
	}

	start := time.Now()
	res, err := m.Driver.ExecuteQuery(ctx, driver.ActivitiesForUserQuery, map[string]interface{}{
		"uid":   userID,
		"limit": int64(limit),
	})
	metrics.ObserveGraphQuery("activities_for_user", start, err)
	if err != nil {
		return nil, fmt.Errorf("fetching activities for user %s: %w", userID, err)
	}

	candidates := candidatesFromRecords(res.Records)
	m.logger.Debug().Str("user_id", userID).Int("candidates", len(candidates)).Msg("rule match by user")
	return candidates, nil
}

func (m *Matcher) ActivitiesForStates(ctx context.Context, states []string, limit int) ([]model.Candidate, error) {
	if limit <= 0 || len(states) == 0 {
		return nil, nil
	}

	start := time.Now()
	res, err := m.Driver.ExecuteQuery(ctx, driver.ActivitiesForStatesQuery, map[string]interface{}{
		"states": states,
		"limit":  int64(limit),
	})
	metrics.ObserveGraphQuery("activities_for_states", start, err)
	if err != nil {
		return nil, fmt.Errorf("fetching activities for states %v: %w", states, err)
	}

	candidates := candidatesFromRecords(res.Records)
	m.logger.Debug().Strs("states", states).Int("candidates", len(candidates)).Msg("rule match by states")
	return candidates, nil
}

func candidatesFromRecords(records []*neo4j.Record) []model.Candidate {
	out := make([]model.Candidate, 0, len(records))
	for _, rec := range records {
		category := stringValue(rec, "category")
		if category == "" {
			category = model.CategoryActivity
		}
		out = append(out, model.Candidate{
			ID:             stringValue(rec, "id"),
			Title:          stringValue(rec, "title"),
			Type:           stringValue(rec, "type"),
			Category:       category,
			ReasonCategory: stringValue(rec, "reason_category"),
		})
	}
	return out
}

func stringValue(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

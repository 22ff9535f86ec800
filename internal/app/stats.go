package app

import (
	"context"
	"fmt"
	"time"

	"github.com/agenthands/companion/internal/driver"
	"github.com/agenthands/companion/internal/metrics"
)

// GraphStats counts the node and relationship types the recommender reads.
type GraphStats struct {
	Users       int64 `json:"users"`
	States      int64 `json:"states"`
	Activities  int64 `json:"activities"`
	Treats      int64 `json:"treats"`
	Experiences int64 `json:"experiences"`
}

func (a *App) Stats(ctx context.Context) (*GraphStats, error) {
	start := time.Now()
	res, err := a.Driver.ExecuteQuery(ctx, driver.GraphStatsQuery, nil)
	metrics.ObserveGraphQuery("graph_stats", start, err)
	if err != nil {
		return nil, fmt.Errorf("fetching graph stats: %w", err)
	}

	stats := &GraphStats{}
	if len(res.Records) == 0 {
		return stats, nil
	}
	rec := res.Records[0]
	stats.Users = count(rec.Get("users"))
	stats.States = count(rec.Get("states"))
	stats.Activities = count(rec.Get("activities"))
	stats.Treats = count(rec.Get("treats"))
	stats.Experiences = count(rec.Get("experiences"))
	return stats, nil
}

func count(v any, ok bool) int64 {
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

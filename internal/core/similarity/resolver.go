package similarity

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/agenthands/companion/internal/core/model"
	"github.com/agenthands/companion/internal/driver"
	"github.com/agenthands/companion/internal/metrics"
)

// ActivityResolver reports whether a node id is an Activity and returns its
// details. A nil activity with a nil error means "not an activity".
type ActivityResolver interface {
	ResolveActivity(ctx context.Context, id string) (*model.Activity, error)
}

// GraphActivityResolver looks activities up in the graph store. Answers,
// including negative ones, are cached until Purge.
type GraphActivityResolver struct {
	Driver driver.GraphDriver
	cache  *lru.Cache[string, *model.Activity]
}

func NewGraphActivityResolver(d driver.GraphDriver, cacheSize int) (*GraphActivityResolver, error) {
	cache, err := lru.New[string, *model.Activity](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating activity cache: %w", err)
	}
	return &GraphActivityResolver{Driver: d, cache: cache}, nil
}

func (r *GraphActivityResolver) ResolveActivity(ctx context.Context, id string) (*model.Activity, error) {
	if a, ok := r.cache.Get(id); ok {
		return a, nil
	}

	start := time.Now()
	res, err := r.Driver.ExecuteQuery(ctx, driver.ActivityByIDQuery, map[string]interface{}{"aid": id})
	metrics.ObserveGraphQuery("activity_by_id", start, err)
	if err != nil {
		return nil, fmt.Errorf("looking up activity %s: %w", id, err)
	}

	var activity *model.Activity
	if len(res.Records) > 0 {
		rec := res.Records[0]
		activity = &model.Activity{
			ID:       recordString(rec.Get("id")),
			Title:    recordString(rec.Get("title")),
			Type:     recordString(rec.Get("type")),
			Category: recordString(rec.Get("category")),
		}
	}
	r.cache.Add(id, activity)
	return activity, nil
}

// Purge drops cached answers, e.g. after a new embedding space is loaded.
func (r *GraphActivityResolver) Purge() {
	r.cache.Purge()
}

func recordString(v any, ok bool) string {
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

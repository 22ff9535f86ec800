package similarity

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/viterin/vek/vek32"

	"github.com/agenthands/companion/internal/core/embedding"
	"github.com/agenthands/companion/internal/core/model"
	"github.com/agenthands/companion/internal/metrics"
)

// Match is one activity ranked by cosine similarity.
type Match struct {
	Activity model.Activity
	Score    float64
}

// Matcher answers nearest-activity queries over the embedding space. The
// space is swapped atomically, so a reload never races with readers.
type Matcher struct {
	space    atomic.Pointer[embedding.Space]
	resolver ActivityResolver
	logger   zerolog.Logger
}

func NewMatcher(resolver ActivityResolver, logger zerolog.Logger) *Matcher {
	m := &Matcher{resolver: resolver, logger: logger}
	m.Swap(nil)
	return m
}

// Load reads the space from store. An absent or corrupt file leaves the
// matcher untrained; it never fails. Returns whether vectors were loaded.
func (m *Matcher) Load(store *embedding.FileStore) bool {
	space, err := store.Load()
	if err != nil {
		switch {
		case errors.Is(err, embedding.ErrNotTrained):
			m.logger.Warn().Str("path", store.Path).Msg("embedding file not found, similarity matching disabled")
		default:
			m.logger.Warn().Err(err).Str("path", store.Path).Msg("failed to load embeddings, similarity matching disabled")
		}
		m.Swap(nil)
		return false
	}

	m.Swap(space)
	m.logger.Info().Int("nodes", space.Len()).Int("dimensions", space.Dimensions()).Msg("loaded embeddings")
	return space.Len() > 0
}

// Swap installs a new space wholesale; nil means untrained.
func (m *Matcher) Swap(space *embedding.Space) {
	if space == nil {
		space = embedding.NewSpace(0)
	}
	m.space.Store(space)
	if p, ok := m.resolver.(interface{ Purge() }); ok {
		p.Purge()
	}
	metrics.SetSimilaritySpace(space.Len())
}

func (m *Matcher) Trained() bool { return m.space.Load().Len() > 0 }
func (m *Matcher) Size() int     { return m.space.Load().Len() }

// Nearest ranks every vector by cosine similarity to query and returns at
// most limit activities, best first. Equal scores keep space order. Ids in
// exclude are skipped, as is everything that does not resolve to an
// Activity.
func (m *Matcher) Nearest(ctx context.Context, query []float32, exclude map[model.NodeRef]struct{}, limit int) ([]Match, error) {
	return m.nearest(ctx, m.space.Load(), query, exclude, limit)
}

func (m *Matcher) nearest(ctx context.Context, space *embedding.Space, query []float32, exclude map[model.NodeRef]struct{}, limit int) ([]Match, error) {
	if limit <= 0 || space.Len() == 0 || len(query) != space.Dimensions() {
		return nil, nil
	}

	entries := space.Entries()
	queryNorm := norm(query)

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, len(entries))
	for i, e := range entries {
		ranked[i] = scored{idx: i, score: cosine(query, queryNorm, e.Vector)}
	}
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })

	var matches []Match
	for _, r := range ranked {
		ref := entries[r.idx].Ref
		if _, skip := exclude[ref]; skip {
			continue
		}
		if ref.Kind != model.KindActivity && ref.Kind != model.KindUnknown {
			continue
		}

		activity, err := m.resolver.ResolveActivity(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		if activity == nil {
			continue
		}

		matches = append(matches, Match{Activity: *activity, Score: r.score})
		if len(matches) >= limit {
			break
		}
	}
	return matches, nil
}

// Predict recommends activities close to the user's own vector. An
// untrained matcher or a user without a vector yields nothing.
func (m *Matcher) Predict(ctx context.Context, userID string, limit int) ([]model.Candidate, error) {
	space := m.space.Load()
	ref := model.UserRef(userID)
	vec, ok := space.Lookup(ref)
	if !ok {
		m.logger.Debug().Str("user_id", userID).Msg("no embedding for user")
		return nil, nil
	}

	matches, err := m.nearest(ctx, space, vec, map[model.NodeRef]struct{}{ref: {}}, limit)
	if err != nil {
		return nil, err
	}
	return toCandidates(matches), nil
}

// PredictColdStart averages the vectors of the given states and recommends
// activities close to that mean. States without a vector are ignored.
func (m *Matcher) PredictColdStart(ctx context.Context, stateNames []string, limit int) ([]model.Candidate, error) {
	space := m.space.Load()

	exclude := make(map[model.NodeRef]struct{}, len(stateNames))
	var vectors [][]float32
	for _, name := range stateNames {
		ref := model.StateRef(name)
		exclude[ref] = struct{}{}
		if vec, ok := space.Lookup(ref); ok {
			vectors = append(vectors, vec)
		}
	}
	if len(vectors) == 0 {
		m.logger.Debug().Strs("states", stateNames).Msg("no embeddings for any requested state")
		return nil, nil
	}

	matches, err := m.nearest(ctx, space, mean(vectors), exclude, limit)
	if err != nil {
		return nil, err
	}
	return toCandidates(matches), nil
}

func toCandidates(matches []Match) []model.Candidate {
	out := make([]model.Candidate, 0, len(matches))
	for _, match := range matches {
		c := match.Activity.Candidate(model.ReasonAIMatch)
		score := math.Round(match.Score*1000) / 1000
		c.Score = &score
		out = append(out, c)
	}
	return out
}

func mean(vectors [][]float32) []float32 {
	out := make([]float32, len(vectors[0]))
	for _, v := range vectors {
		vek32.Add_Inplace(out, v)
	}
	vek32.MulNumber_Inplace(out, 1/float32(len(vectors)))
	return out
}

func norm(v []float32) float64 {
	return math.Sqrt(float64(vek32.Dot(v, v)))
}

// cosine returns 0 when either vector has zero length.
func cosine(query []float32, queryNorm float64, v []float32) float64 {
	n := norm(v)
	if queryNorm == 0 || n == 0 {
		return 0
	}
	return float64(vek32.Dot(query, v)) / (queryNorm * n)
}

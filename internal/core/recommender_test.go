package core

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/companion/internal/core/model"
)

type branchCall struct {
	method string
	arg    any
	limit  int
}

type stubGraph struct {
	byUser   []model.Candidate
	byStates []model.Candidate
	err      error
	calls    []branchCall
}

func (s *stubGraph) ActivitiesForUser(ctx context.Context, userID string, limit int) ([]model.Candidate, error) {
	s.calls = append(s.calls, branchCall{"user", userID, limit})
	return s.byUser, s.err
}

func (s *stubGraph) ActivitiesForStates(ctx context.Context, states []string, limit int) ([]model.Candidate, error) {
	s.calls = append(s.calls, branchCall{"states", states, limit})
	return s.byStates, s.err
}

type stubNeural struct {
	byUser   []model.Candidate
	byStates []model.Candidate
	err      error
	calls    []branchCall
}

func (s *stubNeural) Predict(ctx context.Context, userID string, limit int) ([]model.Candidate, error) {
	s.calls = append(s.calls, branchCall{"user", userID, limit})
	return s.byUser, s.err
}

func (s *stubNeural) PredictColdStart(ctx context.Context, states []string, limit int) ([]model.Candidate, error) {
	s.calls = append(s.calls, branchCall{"states", states, limit})
	return s.byStates, s.err
}

type stubExplainer struct {
	text string
	err  error
}

func (s stubExplainer) Explain(ctx context.Context, activityID, userID string) (string, error) {
	return s.text + ":" + activityID, s.err
}

func newTestRecommender() (*Recommender, *stubGraph, *stubNeural) {
	g := &stubGraph{
		byUser:   cands("Stress", "A", "B", "C"),
		byStates: cands("WellBeing", "W1", "W2"),
	}
	n := &stubNeural{
		byUser:   cands(model.ReasonAIMatch, "X", "A", "Y"),
		byStates: cands(model.ReasonAIMatch, "W2", "Z"),
	}
	return NewRecommender(g, n, stubExplainer{text: "path"}, zerolog.Nop()), g, n
}

func TestGetRecommendations_Strategies(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		strategy model.Strategy
		want     []string
	}{
		{model.StrategyHybrid, []string{"A", "X", "B", "Y", "C"}},
		{"", []string{"A", "X", "B", "Y", "C"}},
		{model.StrategyGraph, []string{"A", "B", "C"}},
		{model.StrategyNeural, []string{"X", "A", "Y"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			r, g, n := newTestRecommender()
			got, err := r.GetRecommendations(ctx, Request{UserID: "U1", Strategy: tt.strategy})
			require.NoError(t, err)
			assert.Equal(t, tt.want, idsOf(got))

			switch tt.strategy {
			case model.StrategyGraph:
				assert.Empty(t, n.calls)
			case model.StrategyNeural:
				assert.Empty(t, g.calls)
			default:
				require.Len(t, g.calls, 1)
				require.Len(t, n.calls, 1)
				assert.Equal(t, branchCall{"user", "U1", DefaultLimit}, g.calls[0])
				assert.Equal(t, branchCall{"user", "U1", DefaultLimit}, n.calls[0])
			}
		})
	}
}

func TestGetRecommendations_UnknownStrategy(t *testing.T) {
	r, g, _ := newTestRecommender()
	_, err := r.GetRecommendations(context.Background(), Request{UserID: "U1", Strategy: "magic"})
	assert.ErrorIs(t, err, model.ErrUnknownStrategy)
	assert.Empty(t, g.calls)
}

func TestGetRecommendations_Limit(t *testing.T) {
	r, g, _ := newTestRecommender()

	got, err := r.GetRecommendations(context.Background(), Request{UserID: "U1", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "X"}, idsOf(got))
	assert.Equal(t, 2, g.calls[0].limit)

	got, err = r.GetRecommendations(context.Background(), Request{UserID: "U1", Strategy: model.StrategyNeural, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, idsOf(got))
}

func TestGetRecommendations_ColdStart(t *testing.T) {
	r, g, n := newTestRecommender()

	got, err := r.GetRecommendations(context.Background(), Request{
		Attributes: &model.Attributes{GrowingStress: "Yes", WorkInterest: "No"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"W1", "W2", "Z"}, idsOf(got))

	want := []string{"Stress", "WorkBurnout"}
	assert.Equal(t, branchCall{"states", want, DefaultLimit}, g.calls[0])
	assert.Equal(t, branchCall{"states", want, DefaultLimit}, n.calls[0])
}

func TestGetRecommendations_NilAttributesFallBack(t *testing.T) {
	r, g, n := newTestRecommender()

	_, err := r.GetRecommendations(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, []string{"WellBeing"}, g.calls[0].arg)
	assert.Equal(t, []string{"WellBeing"}, n.calls[0].arg)
}

func TestGetRecommendations_UserTakesPrecedence(t *testing.T) {
	r, g, _ := newTestRecommender()

	_, err := r.GetRecommendations(context.Background(), Request{
		UserID:     "U1",
		Attributes: &model.Attributes{GrowingStress: "Yes"},
		Strategy:   model.StrategyGraph,
	})
	require.NoError(t, err)
	assert.Equal(t, "user", g.calls[0].method)
}

func TestGetRecommendations_EmptyBranches(t *testing.T) {
	r, g, n := newTestRecommender()
	g.byUser, n.byUser = nil, nil

	got, err := r.GetRecommendations(context.Background(), Request{UserID: "ghost"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetRecommendations_BranchErrors(t *testing.T) {
	boom := errors.New("store down")

	r, g, n := newTestRecommender()
	g.err = boom
	_, err := r.GetRecommendations(context.Background(), Request{UserID: "U1"})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, n.calls, "branches run in order and stop at the first failure")

	r, _, n = newTestRecommender()
	n.err = boom
	_, err = r.GetRecommendations(context.Background(), Request{UserID: "U1", Strategy: model.StrategyNeural})
	assert.ErrorIs(t, err, boom)
}

func TestAnnotate(t *testing.T) {
	r, _, _ := newTestRecommender()
	ctx := context.Background()

	withUser, err := r.Annotate(ctx, "U1", cands("Stress", "A"))
	require.NoError(t, err)
	require.Len(t, withUser, 1)
	assert.Equal(t, "path:A", withUser[0].Explanation)
	assert.Equal(t, "A", withUser[0].ID)

	anonymous, err := r.Annotate(ctx, "", append(cands("Stress", "A"), cands(model.ReasonAIMatch, "B")...))
	require.NoError(t, err)
	assert.Equal(t, "Helps reduce reported stress.", anonymous[0].Explanation)
	assert.Equal(t, "This activity is popular among users with similar profiles to you.", anonymous[1].Explanation)

	r.Explainer = stubExplainer{err: errors.New("timeout")}
	_, err = r.Annotate(ctx, "U1", cands("Stress", "A"))
	assert.Error(t, err)
}

func TestExplainRecommendation(t *testing.T) {
	r, _, _ := newTestRecommender()
	text, err := r.ExplainRecommendation(context.Background(), "A9", "U1")
	require.NoError(t, err)
	assert.Equal(t, "path:A9", text)
}

func TestGetRecommendations_SingleBranchDeduplicates(t *testing.T) {
	r, g, n := newTestRecommender()
	// A1 treats both of the user's states, so the store returns it twice.
	g.byUser = append(cands("Stress", "A1"), append(cands("MoodSwings", "A1"), cands("Stress", "A2")...)...)
	n.byUser = cands(model.ReasonAIMatch, "X", "X", "Y")

	got, err := r.GetRecommendations(context.Background(), Request{UserID: "U1", Strategy: model.StrategyGraph})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, idsOf(got))
	assert.Equal(t, "Stress", got[0].ReasonCategory, "first row keeps its attribution")

	got, err = r.GetRecommendations(context.Background(), Request{UserID: "U1", Strategy: model.StrategyNeural})
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, idsOf(got))
}

func TestGetRecommendations_StrategyCaseInsensitive(t *testing.T) {
	tests := []struct {
		strategy model.Strategy
		want     []string
	}{
		{"Graph", []string{"A", "B", "C"}},
		{"NEURAL", []string{"X", "A", "Y"}},
		{" Hybrid ", []string{"A", "X", "B", "Y", "C"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			r, _, _ := newTestRecommender()
			got, err := r.GetRecommendations(context.Background(), Request{UserID: "U1", Strategy: tt.strategy})
			require.NoError(t, err)
			assert.Equal(t, tt.want, idsOf(got))
		})
	}

	r, g, n := newTestRecommender()
	r.DefaultStrategy = "Graph"
	got, err := r.GetRecommendations(context.Background(), Request{UserID: "U1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, idsOf(got))
	assert.Len(t, g.calls, 1)
	assert.Empty(t, n.calls)
}

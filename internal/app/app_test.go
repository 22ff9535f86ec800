package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/companion/internal/config"
	"github.com/agenthands/companion/internal/core/model"
	"github.com/agenthands/companion/internal/driver"
	"github.com/agenthands/companion/internal/driver/drivertest"
)

var snapshotKeys = []string{"source_id", "source_name", "source_labels", "target_id", "target_name", "target_labels", "type"}

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Embedding.Path = filepath.Join(t.TempDir(), "emb.json")
	cfg.Embedding.Dimensions = 2
	cfg.Recommend.DefaultLimit = 3
	cfg.Recommend.DefaultStrategy = "graph"
	return cfg
}

func TestNew_AppliesConfig(t *testing.T) {
	a, err := New(testConfig(t), drivertest.NewMockDriver())
	require.NoError(t, err)

	assert.Equal(t, 3, a.Recommender.DefaultLimit)
	assert.Equal(t, model.StrategyGraph, a.Recommender.DefaultStrategy)
	assert.Equal(t, 2, a.Pipeline.Dimensions)
	assert.False(t, a.LoadEmbeddings())
}

func TestNew_RejectsBadStrategy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Recommend.DefaultStrategy = "random"
	_, err := New(cfg, drivertest.NewMockDriver())
	assert.ErrorIs(t, err, model.ErrUnknownStrategy)
}

func TestRetrainReloadsMatcher(t *testing.T) {
	d := drivertest.NewMockDriver().Rows(driver.SnapshotEdgesQuery, snapshotKeys,
		[]any{"U1", nil, []any{"User"}, nil, "Stress", []any{"State"}, "EXPERIENCES"},
		[]any{"A1", nil, []any{"Activity"}, nil, "Stress", []any{"State"}, "TREATS"},
		[]any{"A2", nil, []any{"Activity"}, nil, "Stress", []any{"State"}, "TREATS"},
	)
	a, err := New(testConfig(t), d)
	require.NoError(t, err)

	require.NoError(t, a.Retrain(context.Background()))
	assert.True(t, a.Matcher.Trained())
	assert.Equal(t, 4, a.Matcher.Size())

	require.NoError(t, a.Close(context.Background()))
	assert.True(t, d.Closed)
}

func TestStats(t *testing.T) {
	d := drivertest.NewMockDriver().Rows(driver.GraphStatsQuery,
		[]string{"users", "states", "activities", "treats", "experiences"},
		[]any{int64(1000), int64(7), int64(24), int64(40), int64(2100)},
	)
	a, err := New(testConfig(t), d)
	require.NoError(t, err)

	stats, err := a.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &GraphStats{Users: 1000, States: 7, Activities: 24, Treats: 40, Experiences: 2100}, stats)
}

func TestStats_Empty(t *testing.T) {
	a, err := New(testConfig(t), drivertest.NewMockDriver())
	require.NoError(t, err)

	stats, err := a.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, *stats)
}

//go:build integration

package core_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/agenthands/companion/internal/app"
	"github.com/agenthands/companion/internal/config"
	"github.com/agenthands/companion/internal/core"
	"github.com/agenthands/companion/internal/core/model"
)

const (
	neo4jImage    = "neo4j:5"
	neo4jBolt     = "7687"
	neo4jPassword = "integration-pass"
)

// graphURI returns GRAPH_URI when set, otherwise starts a Neo4j container.
func graphURI(t *testing.T, ctx context.Context) (uri, user, password string) {
	t.Helper()
	if uri := os.Getenv("GRAPH_URI"); uri != "" {
		return uri, os.Getenv("GRAPH_USER"), os.Getenv("GRAPH_PASSWORD")
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        neo4jImage,
			ExposedPorts: []string{neo4jBolt + "/tcp"},
			Env:          map[string]string{"NEO4J_AUTH": "neo4j/" + neo4jPassword},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort(neo4jBolt+"/tcp"),
				wait.ForLog("Started."),
			).WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("neo4j container unavailable: %v", err)
	}
	t.Cleanup(func() { container.Terminate(context.Background()) }) //nolint:errcheck

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, neo4jBolt)
	require.NoError(t, err)

	return fmt.Sprintf("bolt://%s:%s", host, port.Port()), "neo4j", neo4jPassword
}

var seedQueries = []string{
	"MATCH (n) DETACH DELETE n",
	`UNWIND ['Stress','MoodSwings','SocialWeakness','Isolation','CopingIssues','WorkBurnout','WellBeing'] AS s
	 MERGE (:State {name: s})`,
	`UNWIND [
		{id: 'A1', name: 'Mindfulness Meditation', type: 'Meditation', state: 'Stress'},
		{id: 'A2', name: 'Breathing Exercise', type: 'Exercise', state: 'Stress'},
		{id: 'A3', name: 'Mood Journal', type: 'Self-care', state: 'MoodSwings'},
		{id: 'A4', name: 'Group Walk', type: 'Social', state: 'Isolation'},
		{id: 'A5', name: 'Gratitude List', type: 'Self-care', state: 'WellBeing'}
	 ] AS row
	 MATCH (s:State {name: row.state})
	 MERGE (a:Activity {id: row.id}) SET a.name = row.name, a.type = row.type
	 MERGE (a)-[:TREATS]->(s)`,
	`UNWIND [
		{id: 'U1', states: ['Stress', 'MoodSwings']},
		{id: 'U2', states: ['Stress']},
		{id: 'U3', states: ['Isolation', 'WellBeing']}
	 ] AS row
	 MERGE (u:User {id: row.id})
	 WITH u, row UNWIND row.states AS st
	 MATCH (s:State {name: st})
	 MERGE (u)-[:EXPERIENCES]->(s)`,
}

func TestEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg := config.Default()
	cfg.Graph.URI, cfg.Graph.User, cfg.Graph.Password = graphURI(t, ctx)
	cfg.Embedding.Path = filepath.Join(t.TempDir(), "embeddings.json")
	cfg.Embedding.Dimensions = 4

	a, err := app.Connect(ctx, cfg)
	require.NoError(t, err)
	defer a.Close(context.Background())

	require.NoError(t, a.Driver.BuildIndices(ctx))
	for _, q := range seedQueries {
		_, err := a.Driver.ExecuteQuery(ctx, q, nil)
		require.NoError(t, err)
	}

	stats, err := a.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Users)
	assert.Equal(t, int64(5), stats.Activities)

	// Graph-only works before any training.
	graphOnly, err := a.Recommender.GetRecommendations(ctx, core.Request{UserID: "U1", Strategy: model.StrategyGraph})
	require.NoError(t, err)
	assert.NotEmpty(t, graphOnly)
	for _, c := range graphOnly {
		assert.Contains(t, []string{"Stress", "MoodSwings"}, c.ReasonCategory)
	}

	neural, err := a.Recommender.GetRecommendations(ctx, core.Request{UserID: "U1", Strategy: model.StrategyNeural})
	require.NoError(t, err)
	assert.Empty(t, neural, "untrained matcher")

	require.NoError(t, a.Retrain(ctx))
	assert.True(t, a.Matcher.Trained())

	neural, err = a.Recommender.GetRecommendations(ctx, core.Request{UserID: "U1", Strategy: model.StrategyNeural})
	require.NoError(t, err)
	require.NotEmpty(t, neural)
	for _, c := range neural {
		assert.Equal(t, model.ReasonAIMatch, c.ReasonCategory)
		assert.NotEqual(t, "U1", c.ID)
	}

	hybrid, err := a.Recommender.GetRecommendations(ctx, core.Request{
		Attributes: &model.Attributes{GrowingStress: "Yes"},
		Limit:      3,
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(hybrid), 3)
	seen := map[string]bool{}
	for _, c := range hybrid {
		assert.False(t, seen[c.ID])
		seen[c.ID] = true
	}

	text, err := a.Recommender.ExplainRecommendation(ctx, "A1", "U1")
	require.NoError(t, err)
	assert.Equal(t, "Recommended because you indicated signs of growing stress.", text)

	text, err = a.Recommender.ExplainRecommendation(ctx, "A4", "U1")
	require.NoError(t, err)
	assert.Equal(t, "Recommended based on your profile.", text)
}

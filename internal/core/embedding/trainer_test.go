package embedding

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/companion/internal/core/model"
)

func starGraph() *Graph {
	g := NewGraph()
	g.AddEdge(model.UserRef("U1"), model.StateRef("Stress"))
	g.AddEdge(model.ActivityRef("A1"), model.StateRef("Stress"))
	return g
}

// Two triangles joined by the edge 3-4.
func barbellGraph() *Graph {
	g := NewGraph()
	n := func(id string) model.NodeRef { return model.UserRef(id) }
	g.AddEdge(n("1"), n("2"))
	g.AddEdge(n("2"), n("3"))
	g.AddEdge(n("3"), n("1"))
	g.AddEdge(n("3"), n("4"))
	g.AddEdge(n("4"), n("5"))
	g.AddEdge(n("5"), n("6"))
	g.AddEdge(n("6"), n("4"))
	return g
}

func TestTrain_NoEdges(t *testing.T) {
	trainer := NewTrainer(zerolog.Nop())

	g := NewGraph()
	g.AddNode(model.UserRef("lonely"))

	space, err := trainer.Train(g, 8)
	require.NoError(t, err)
	assert.Equal(t, 0, space.Len())
}

func TestTrain_InvalidDimensions(t *testing.T) {
	_, err := NewTrainer(zerolog.Nop()).Train(starGraph(), 0)
	assert.Error(t, err)
}

func TestTrain_EveryNodeGetsFixedDimensions(t *testing.T) {
	space, err := NewTrainer(zerolog.Nop()).Train(starGraph(), 4)
	require.NoError(t, err)

	assert.ElementsMatch(t, []model.NodeRef{
		model.UserRef("U1"), model.StateRef("Stress"), model.ActivityRef("A1"),
	}, space.Refs())

	for _, e := range space.Entries() {
		require.Len(t, e.Vector, 4, e.Ref.String())
		for _, v := range e.Vector {
			assert.False(t, math.IsNaN(float64(v)))
		}
		// three nodes supply only two non-trivial eigenvectors
		assert.Zero(t, e.Vector[2])
		assert.Zero(t, e.Vector[3])
	}
	assert.False(t, space.TrainedAt.IsZero())
}

func TestTrain_SeparatesCommunities(t *testing.T) {
	space, err := NewTrainer(zerolog.Nop()).Train(barbellGraph(), 1)
	require.NoError(t, err)

	coord := func(id string) float32 {
		v, ok := space.Lookup(model.UserRef(id))
		require.True(t, ok)
		return v[0]
	}

	assert.Greater(t, coord("1")*coord("2"), float32(0))
	assert.Greater(t, coord("1")*coord("3"), float32(0))
	assert.Greater(t, coord("4")*coord("6"), float32(0))
	assert.Less(t, coord("1")*coord("5"), float32(0))
}

func TestTrain_Idempotent(t *testing.T) {
	trainer := NewTrainer(zerolog.Nop())

	first, err := trainer.Train(barbellGraph(), 3)
	require.NoError(t, err)
	second, err := trainer.Train(barbellGraph(), 3)
	require.NoError(t, err)

	assert.Equal(t, first.Refs(), second.Refs())
	assert.Equal(t, first.Dimensions(), second.Dimensions())
	for _, e := range first.Entries() {
		other, ok := second.Lookup(e.Ref)
		require.True(t, ok)
		assert.InDeltaSlice(t, e.Vector, other, 1e-5)
	}
}

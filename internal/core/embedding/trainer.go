package embedding

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

var ErrEigenFailed = errors.New("eigendecomposition did not converge")

// Trainer computes Laplacian eigenmaps: the dense adjacency is used as a
// precomputed affinity, the symmetric normalized Laplacian is decomposed,
// and each node gets the coordinates of the smallest non-trivial
// eigenvectors.
type Trainer struct {
	logger zerolog.Logger
}

func NewTrainer(logger zerolog.Logger) *Trainer {
	return &Trainer{logger: logger}
}

// Train returns one vector of exactly `dimensions` components per node. A
// graph without edges yields an empty space and no error. When the graph
// has too few nodes to supply `dimensions` non-trivial eigenvectors the
// remaining components are zero.
func (t *Trainer) Train(g *Graph, dimensions int) (*Space, error) {
	if dimensions < 1 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dimensions)
	}
	if g == nil || g.NumEdges() == 0 {
		t.logger.Warn().Msg("graph has no edges, nothing to train")
		return NewSpace(dimensions), nil
	}

	start := time.Now()
	n := g.NumNodes()
	adjacency := g.Adjacency()

	// Isolated nodes get degree 1 so the normalization stays finite.
	dd := make([]float64, n)
	for i := range dd {
		deg := 0.0
		for _, w := range adjacency[i] {
			deg += w
		}
		if deg == 0 {
			deg = 1
		}
		dd[i] = math.Sqrt(deg)
	}

	laplacian := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		laplacian.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			if w := adjacency[i][j]; w != 0 {
				laplacian.SetSym(i, j, -w/(dd[i]*dd[j]))
			}
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(laplacian, true); !ok {
		return nil, ErrEigenFailed
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] < values[order[b]] })

	out := make([][]float32, n)
	for i := range out {
		out[i] = make([]float32, dimensions)
	}

	// Component 0 of the decomposition is the trivial one and is dropped.
	for c := 0; c < dimensions && c+1 < n; c++ {
		col := order[c+1]
		component := make([]float64, n)
		maxAbs, maxIdx := -1.0, 0
		for i := 0; i < n; i++ {
			component[i] = vectors.At(i, col) / dd[i]
			if a := math.Abs(component[i]); a > maxAbs {
				maxAbs, maxIdx = a, i
			}
		}
		sign := 1.0
		if component[maxIdx] < 0 {
			sign = -1
		}
		for i := 0; i < n; i++ {
			out[i][c] = float32(sign * component[i])
		}
	}

	space := NewSpace(dimensions)
	space.TrainedAt = time.Now().UTC()
	for i, ref := range g.Nodes() {
		if err := space.Add(ref, out[i]); err != nil {
			return nil, err
		}
	}

	if n-1 < dimensions {
		t.logger.Warn().Int("nodes", n).Int("dimensions", dimensions).
			Msg("fewer non-trivial eigenvectors than dimensions, trailing components are zero")
	}
	t.logger.Info().
		Int("nodes", n).
		Int("edges", g.NumEdges()).
		Int("dimensions", dimensions).
		Dur("took", time.Since(start)).
		Msg("spectral embedding trained")

	return space, nil
}

package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/companion/internal/core/model"
	"github.com/agenthands/companion/internal/driver"
	"github.com/agenthands/companion/internal/metrics"
)

// Graph is an undirected simple graph over node refs. Nodes keep the order
// in which they were first seen.
type Graph struct {
	nodes []model.NodeRef
	index map[model.NodeRef]int
	adj   []map[int]struct{}
	edges int
}

func NewGraph() *Graph {
	return &Graph{index: make(map[model.NodeRef]int)}
}

func (g *Graph) AddNode(ref model.NodeRef) int {
	if i, ok := g.index[ref]; ok {
		return i
	}
	i := len(g.nodes)
	g.nodes = append(g.nodes, ref)
	g.index[ref] = i
	g.adj = append(g.adj, make(map[int]struct{}))
	return i
}

// AddEdge connects a and b. Duplicate edges collapse; a self-loop only
// registers the node.
func (g *Graph) AddEdge(a, b model.NodeRef) {
	i := g.AddNode(a)
	j := g.AddNode(b)
	if i == j {
		return
	}
	if _, ok := g.adj[i][j]; ok {
		return
	}
	g.adj[i][j] = struct{}{}
	g.adj[j][i] = struct{}{}
	g.edges++
}

func (g *Graph) Nodes() []model.NodeRef {
	out := make([]model.NodeRef, len(g.nodes))
	copy(out, g.nodes)
	return out
}

func (g *Graph) NumNodes() int { return len(g.nodes) }
func (g *Graph) NumEdges() int { return g.edges }

func (g *Graph) HasEdge(a, b model.NodeRef) bool {
	i, ok := g.index[a]
	if !ok {
		return false
	}
	j, ok := g.index[b]
	if !ok {
		return false
	}
	_, ok = g.adj[i][j]
	return ok
}

func (g *Graph) Degree(i int) int { return len(g.adj[i]) }

// Adjacency returns the dense 0/1 adjacency matrix in node order.
func (g *Graph) Adjacency() [][]float64 {
	n := len(g.nodes)
	a := make([][]float64, n)
	for i := range a {
		a[i] = make([]float64, n)
		for j := range g.adj[i] {
			a[i][j] = 1
		}
	}
	return a
}

// ConnectedComponents returns the node indices of each component, in node
// order of their first member.
func (g *Graph) ConnectedComponents() [][]int {
	visited := make([]bool, len(g.nodes))
	var components [][]int
	for i := range g.nodes {
		if visited[i] {
			continue
		}
		var component []int
		g.dfs(i, visited, &component)
		components = append(components, component)
	}
	return components
}

func (g *Graph) dfs(u int, visited []bool, component *[]int) {
	visited[u] = true
	*component = append(*component, u)
	for v := range g.adj[u] {
		if !visited[v] {
			g.dfs(v, visited, component)
		}
	}
}

// FetchSnapshot pulls every relationship from the store into a Graph.
// Endpoints are identified by `id`, falling back to `name`; rows where
// either endpoint has neither are skipped.
func FetchSnapshot(ctx context.Context, d driver.GraphDriver) (*Graph, error) {
	start := time.Now()
	res, err := d.ExecuteQuery(ctx, driver.SnapshotEdgesQuery, nil)
	metrics.ObserveGraphQuery("snapshot_edges", start, err)
	if err != nil {
		return nil, fmt.Errorf("fetching graph snapshot: %w", err)
	}

	g := NewGraph()
	for _, rec := range res.Records {
		src, ok := endpointRef(rec, "source")
		if !ok {
			continue
		}
		dst, ok := endpointRef(rec, "target")
		if !ok {
			continue
		}
		g.AddEdge(src, dst)
	}
	return g, nil
}

func endpointRef(rec *neo4j.Record, prefix string) (model.NodeRef, bool) {
	id := stringValue(rec, prefix+"_id")
	if id == "" {
		id = stringValue(rec, prefix+"_name")
	}
	if id == "" {
		return model.NodeRef{}, false
	}

	var labels []string
	if raw, ok := rec.Get(prefix + "_labels"); ok {
		switch ls := raw.(type) {
		case []any:
			for _, l := range ls {
				if s, ok := l.(string); ok {
					labels = append(labels, s)
				}
			}
		case []string:
			labels = ls
		}
	}
	return model.NodeRef{Kind: model.KindFromLabels(labels), ID: id}, true
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

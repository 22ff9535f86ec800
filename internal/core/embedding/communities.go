package embedding

import "sort"

const defaultLPAIterations = 20

// LabelCommunities groups nodes by label propagation. Every node starts
// with its own label and repeatedly adopts the most frequent label among
// its neighbours, keeping its current one on a tie if possible and
// otherwise taking the highest. Nodes are visited in insertion order, so
// the result is deterministic. Singletons are dropped.
func (g *Graph) LabelCommunities(maxIterations int) [][]int {
	if len(g.nodes) == 0 {
		return nil
	}
	if maxIterations <= 0 {
		maxIterations = defaultLPAIterations
	}

	labels := make([]int, len(g.nodes))
	for i := range labels {
		labels[i] = i
	}

	for iter := 0; iter < maxIterations; iter++ {
		changed := 0
		for u := range g.nodes {
			if len(g.adj[u]) == 0 {
				continue
			}

			counts := make(map[int]int)
			best := 0
			for v := range g.adj[u] {
				counts[labels[v]]++
				if counts[labels[v]] > best {
					best = counts[labels[v]]
				}
			}

			if counts[labels[u]] == best {
				continue
			}
			var candidates []int
			for label, n := range counts {
				if n == best {
					candidates = append(candidates, label)
				}
			}
			sort.Ints(candidates)
			labels[u] = candidates[len(candidates)-1]
			changed++
		}
		if changed == 0 {
			break
		}
	}

	groups := make(map[int][]int)
	var order []int
	for u, label := range labels {
		if _, ok := groups[label]; !ok {
			order = append(order, label)
		}
		groups[label] = append(groups[label], u)
	}

	var communities [][]int
	for _, label := range order {
		if len(groups[label]) >= 2 {
			communities = append(communities, groups[label])
		}
	}
	return communities
}

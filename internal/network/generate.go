package network

import (
	"fmt"

	"langchange/internal/sampler"
)

// WattsStrogatz generates a small-world graph over agents 0..n-1: a ring
// lattice where every node links to its k/2 nearest neighbors on each side,
// after which each lattice edge (u, u+j) is rewired to (u, w) with
// probability p. A rewiring is skipped when u is already linked to every
// other node. k == n yields the complete graph.
func WattsStrogatz(n, k int, p float64, rng *sampler.Sampler) ([]Edge, error) {
	if n < 2 {
		return nil, fmt.Errorf("watts-strogatz: need at least 2 nodes, got %d", n)
	}
	if k > n {
		return nil, fmt.Errorf("watts-strogatz: k=%d exceeds n=%d", k, n)
	}
	if p < 0 || p > 1 {
		return nil, fmt.Errorf("watts-strogatz: rewiring probability %v outside [0,1]", p)
	}
	if k == n {
		return complete(n), nil
	}

	adj := make([]map[int]struct{}, n)
	for i := range adj {
		adj[i] = make(map[int]struct{})
	}
	link := func(a, b int) {
		adj[a][b] = struct{}{}
		adj[b][a] = struct{}{}
	}
	unlink := func(a, b int) {
		delete(adj[a], b)
		delete(adj[b], a)
	}

	half := k / 2
	for j := 1; j <= half; j++ {
		for u := 0; u < n; u++ {
			link(u, (u+j)%n)
		}
	}
	for j := 1; j <= half; j++ {
		for u := 0; u < n; u++ {
			v := (u + j) % n
			if !rng.Bernoulli(p) {
				continue
			}
			w := rng.Index(n)
			skip := false
			for {
				if _, taken := adj[u][w]; w != u && !taken {
					break
				}
				w = rng.Index(n)
				if len(adj[u]) >= n-1 {
					skip = true
					break
				}
			}
			if skip {
				continue
			}
			unlink(u, v)
			link(u, w)
		}
	}

	var edges []Edge
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			if _, ok := adj[a][b]; ok {
				edges = append(edges, Edge{a, b})
			}
		}
	}
	return edges, nil
}

func complete(n int) []Edge {
	edges := make([]Edge, 0, n*(n-1)/2)
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			edges = append(edges, Edge{a, b})
		}
	}
	return edges
}

// Root builds the top-level network spanning agents 0..n-1.
func Root(id, n int, edges []Edge) (*Network, error) {
	members := make([]int, n)
	for i := range members {
		members[i] = i
	}
	return New(id, NoParent, members, edges)
}

// Package network holds the interaction graphs agents live on. A Network is
// a view over the agent arena: a sorted set of member indices plus the
// adjacency restricted to them. Partitioning produces induced sub-views; agents
// are never copied.
package network

import (
	"fmt"
	"sort"
)

// Edge is an undirected pair of agent indices with From < To.
type Edge [2]int

func NewEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{a, b}
}

type Network struct {
	id       int
	parentID int
	members  []int
	index    map[int]int
	adj      map[int][]int
}

// NoParent marks a root network.
const NoParent = -1

// New builds a network over members. Every edge endpoint must be a member;
// self loops are rejected and duplicate edges collapse.
func New(id, parentID int, members []int, edges []Edge) (*Network, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("network %d: no members", id)
	}
	sorted := append([]int(nil), members...)
	sort.Ints(sorted)
	index := make(map[int]int, len(sorted))
	for i, m := range sorted {
		if m < 0 {
			return nil, fmt.Errorf("network %d: negative member %d", id, m)
		}
		if _, dup := index[m]; dup {
			return nil, fmt.Errorf("network %d: duplicate member %d", id, m)
		}
		index[m] = i
	}

	sets := make(map[int]map[int]struct{}, len(sorted))
	for _, e := range edges {
		a, b := e[0], e[1]
		if a == b {
			return nil, fmt.Errorf("network %d: self loop on %d", id, a)
		}
		if _, ok := index[a]; !ok {
			return nil, fmt.Errorf("network %d: edge endpoint %d is not a member", id, a)
		}
		if _, ok := index[b]; !ok {
			return nil, fmt.Errorf("network %d: edge endpoint %d is not a member", id, b)
		}
		addNeighbor(sets, a, b)
		addNeighbor(sets, b, a)
	}

	return &Network{
		id:       id,
		parentID: parentID,
		members:  sorted,
		index:    index,
		adj:      freeze(sets),
	}, nil
}

func addNeighbor(sets map[int]map[int]struct{}, a, b int) {
	if sets[a] == nil {
		sets[a] = make(map[int]struct{})
	}
	sets[a][b] = struct{}{}
}

func freeze(sets map[int]map[int]struct{}) map[int][]int {
	adj := make(map[int][]int, len(sets))
	for node, set := range sets {
		list := make([]int, 0, len(set))
		for n := range set {
			list = append(list, n)
		}
		sort.Ints(list)
		adj[node] = list
	}
	return adj
}

func (n *Network) ID() int {
	return n.id
}

func (n *Network) ParentID() int {
	return n.parentID
}

// Members returns a copy of the sorted member indices.
func (n *Network) Members() []int {
	return append([]int(nil), n.members...)
}

func (n *Network) Member(i int) int {
	return n.members[i]
}

func (n *Network) Size() int {
	return len(n.members)
}

func (n *Network) Contains(agent int) bool {
	_, ok := n.index[agent]
	return ok
}

// Neighbors returns the sorted neighbors of agent inside this network.
func (n *Network) Neighbors(agent int) []int {
	return append([]int(nil), n.adj[agent]...)
}

func (n *Network) Degree(agent int) int {
	return len(n.adj[agent])
}

func (n *Network) HasEdge(a, b int) bool {
	list := n.adj[a]
	i := sort.SearchInts(list, b)
	return i < len(list) && list[i] == b
}

// Edges lists every edge once, sorted.
func (n *Network) Edges() []Edge {
	var out []Edge
	for _, a := range n.members {
		for _, b := range n.adj[a] {
			if a < b {
				out = append(out, Edge{a, b})
			}
		}
	}
	return out
}

func (n *Network) EdgeCount() int {
	total := 0
	for _, list := range n.adj {
		total += len(list)
	}
	return total / 2
}

// NodeCount is one more than the highest endpoint in edges, or 0 when
// edges is empty.
func NodeCount(edges []Edge) int {
	n := 0
	for _, e := range edges {
		if e[0]+1 > n {
			n = e[0] + 1
		}
		if e[1]+1 > n {
			n = e[1] + 1
		}
	}
	return n
}

// Isolated lists members without neighbors.
func (n *Network) Isolated() []int {
	var out []int
	for _, m := range n.members {
		if len(n.adj[m]) == 0 {
			out = append(out, m)
		}
	}
	return out
}

// Induced returns the subgraph on members as a child of n.
func (n *Network) Induced(id int, members []int) (*Network, error) {
	keep := make(map[int]struct{}, len(members))
	for _, m := range members {
		if !n.Contains(m) {
			return nil, fmt.Errorf("network %d: %d is not a member of parent %d", id, m, n.id)
		}
		keep[m] = struct{}{}
	}
	var edges []Edge
	for _, e := range n.Edges() {
		_, okA := keep[e[0]]
		_, okB := keep[e[1]]
		if okA && okB {
			edges = append(edges, e)
		}
	}
	return New(id, n.id, members, edges)
}

// CutSize counts edges of n crossing between the two member sets.
func (n *Network) CutSize(left, right []int) int {
	inRight := make(map[int]struct{}, len(right))
	for _, m := range right {
		inRight[m] = struct{}{}
	}
	cut := 0
	for _, a := range left {
		for _, b := range n.adj[a] {
			if _, ok := inRight[b]; ok {
				cut++
			}
		}
	}
	return cut
}

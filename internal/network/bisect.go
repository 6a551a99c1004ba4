package network

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"langchange/internal/sampler"
)

// DefaultMaxPasses bounds the Kernighan–Lin improvement passes per bisection.
const DefaultMaxPasses = 10

var ErrTooSmallToPartition = errors.New("network too small to partition")

// Bisect splits n into two halves of sizes ⌊k/2⌋ and ⌈k/2⌉ with a small edge
// cut. It starts from a random balanced split and runs Kernighan–Lin passes
// until a pass finds no improving swap sequence or maxPasses is reached. The
// half holding the lowest member comes first. Both halves are sorted.
func Bisect(n *Network, rng *sampler.Sampler, maxPasses int) ([]int, []int, error) {
	m := n.Size()
	if m < 2 {
		return nil, nil, fmt.Errorf("%w: network %d has %d node(s)", ErrTooSmallToPartition, n.id, m)
	}
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}

	// Local indices follow member order, so neighbor lists stay sorted.
	nbr := make([][]int, m)
	for i, member := range n.members {
		for _, other := range n.adj[member] {
			nbr[i] = append(nbr[i], n.index[other])
		}
	}

	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	rng.Shuffle(m, func(i, j int) { order[i], order[j] = order[j], order[i] })
	right := make([]bool, m)
	for pos, local := range order {
		right[local] = pos >= m/2
	}

	for pass := 0; pass < maxPasses; pass++ {
		if !klPass(nbr, right) {
			break
		}
	}

	var a, b []int
	for local, member := range n.members {
		if right[local] {
			b = append(b, member)
		} else {
			a = append(a, member)
		}
	}
	if right[0] {
		a, b = b, a
	}
	return a, b, nil
}

type klSwap struct {
	a, b int
	gain int
}

// klPass runs one Kernighan–Lin pass over the bipartition and applies the
// best positive prefix of swaps. It reports whether anything moved.
func klPass(nbr [][]int, right []bool) bool {
	m := len(right)
	d := make([]int, m)
	for v := 0; v < m; v++ {
		for _, u := range nbr[v] {
			if right[u] != right[v] {
				d[v]++
			} else {
				d[v]--
			}
		}
	}

	locked := make([]bool, m)
	leftCount := 0
	for _, r := range right {
		if !r {
			leftCount++
		}
	}
	steps := leftCount
	if m-leftCount < steps {
		steps = m - leftCount
	}

	seq := make([]klSwap, 0, steps)
	for s := 0; s < steps; s++ {
		swap, ok := bestSwap(nbr, right, locked, d)
		if !ok {
			break
		}
		locked[swap.a], locked[swap.b] = true, true
		seq = append(seq, swap)
		for _, pivot := range []int{swap.a, swap.b} {
			for _, x := range nbr[pivot] {
				if locked[x] {
					continue
				}
				if right[x] == right[pivot] {
					d[x] += 2
				} else {
					d[x] -= 2
				}
			}
		}
	}

	bestPrefix, bestTotal, total := -1, 0, 0
	for i, swap := range seq {
		total += swap.gain
		if total > bestTotal {
			bestTotal = total
			bestPrefix = i
		}
	}
	if bestPrefix < 0 {
		return false
	}
	for _, swap := range seq[:bestPrefix+1] {
		right[swap.a] = !right[swap.a]
		right[swap.b] = !right[swap.b]
	}
	return true
}

// bestSwap picks the unlocked cross pair with the largest exchange gain
// d[a] + d[b] - 2·w(a,b). Candidates are scanned by decreasing d so the
// search stops once no remaining pair can beat the best gain.
func bestSwap(nbr [][]int, right, locked []bool, d []int) (klSwap, bool) {
	var as, bs []int
	for v := range right {
		if locked[v] {
			continue
		}
		if right[v] {
			bs = append(bs, v)
		} else {
			as = append(as, v)
		}
	}
	if len(as) == 0 || len(bs) == 0 {
		return klSwap{}, false
	}
	byD := func(list []int) {
		sort.SliceStable(list, func(i, j int) bool { return d[list[i]] > d[list[j]] })
	}
	byD(as)
	byD(bs)

	best := klSwap{gain: math.MinInt}
	found := false
	for _, a := range as {
		if found && d[a]+d[bs[0]] <= best.gain {
			break
		}
		for _, b := range bs {
			if found && d[a]+d[b] <= best.gain {
				break
			}
			gain := d[a] + d[b]
			if adjacent(nbr, a, b) {
				gain -= 2
			}
			if !found || gain > best.gain {
				best = klSwap{a: a, b: b, gain: gain}
				found = true
			}
		}
	}
	return best, found
}

func adjacent(nbr [][]int, a, b int) bool {
	list := nbr[a]
	i := sort.SearchInts(list, b)
	return i < len(list) && list[i] == b
}

package network

import (
	"fmt"

	"langchange/internal/sampler"
)

// Partitioner bisects networks, allocates child ids and records each split in
// its hierarchy.
type Partitioner struct {
	rng       *sampler.Sampler
	hierarchy *Hierarchy
	nextID    int
	maxPasses int
}

func NewPartitioner(rng *sampler.Sampler, hierarchy *Hierarchy, maxPasses int) (*Partitioner, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if hierarchy == nil {
		return nil, fmt.Errorf("partition hierarchy is required")
	}
	return &Partitioner{
		rng:       rng,
		hierarchy: hierarchy,
		nextID:    hierarchy.Root() + 1,
		maxPasses: maxPasses,
	}, nil
}

func (p *Partitioner) Hierarchy() *Hierarchy {
	return p.hierarchy
}

// Partition splits n into two induced sub-networks and records the event.
func (p *Partitioner) Partition(n *Network, step int) ([2]*Network, error) {
	left, right, err := Bisect(n, p.rng, p.maxPasses)
	if err != nil {
		return [2]*Network{}, err
	}
	ids := [2]int{p.nextID, p.nextID + 1}
	var children [2]*Network
	for i, members := range [2][]int{left, right} {
		child, err := n.Induced(ids[i], members)
		if err != nil {
			return [2]*Network{}, err
		}
		children[i] = child
	}
	if err := p.hierarchy.Record(n.ID(), ids, step); err != nil {
		return [2]*Network{}, err
	}
	p.nextID += 2
	return children, nil
}

// Package interaction runs the pairwise exchange between an agent and one of
// its network neighbors.
package interaction

import (
	"errors"
	"fmt"

	"langchange/internal/agent"
	"langchange/internal/network"
	"langchange/internal/sampler"
)

var ErrIsolatedAgent = errors.New("agent has no neighbors")

// Pair identifies the two arena indices of one interaction.
type Pair struct {
	Agent    int
	Neighbor int
}

type Protocol struct {
	population *agent.Population
	rng        *sampler.Sampler
}

func NewProtocol(population *agent.Population, rng *sampler.Sampler) (*Protocol, error) {
	if population == nil {
		return nil, fmt.Errorf("population is required")
	}
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	return &Protocol{population: population, rng: rng}, nil
}

// Run picks a uniform member of net and a uniform neighbor of it from the
// current adjacency, then runs Exchange on them.
func (p *Protocol) Run(net *network.Network) (Pair, error) {
	if net.Size() == 0 {
		return Pair{}, fmt.Errorf("network %d is empty", net.ID())
	}
	speaker := net.Member(p.rng.Index(net.Size()))
	neighbors := net.Neighbors(speaker)
	if len(neighbors) == 0 {
		return Pair{}, fmt.Errorf("%w: agent %d in network %d", ErrIsolatedAgent, speaker, net.ID())
	}
	hearer := neighbors[p.rng.Index(len(neighbors))]
	Exchange(p.population.At(speaker), p.population.At(hearer))
	return Pair{Agent: speaker, Neighbor: hearer}, nil
}

// RunBatch runs times interactions on net.
func (p *Protocol) RunBatch(net *network.Network, times int) error {
	for i := 0; i < times; i++ {
		if _, err := p.Run(net); err != nil {
			return err
		}
	}
	return nil
}

// Exchange is one complete interaction. Both agents speak, both reinforce
// their own token, each listens to the other's token, and only then do both
// refresh their production probability.
func Exchange(a, b *agent.Agent) {
	a.Speak()
	b.Speak()

	a.Reinforce()
	b.Reinforce()

	a.Listen(b)
	b.Listen(a)

	a.Update()
	b.Update()
}

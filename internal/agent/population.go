package agent

import (
	"fmt"

	"langchange/internal/config"
	"langchange/internal/sampler"
)

// Population is the single arena of agents. Networks refer to agents by their
// index in it; agent i carries role id i+1.
type Population struct {
	agents []*Agent
	policy *MechanismPolicy
}

// NewPopulation seeds every agent's memory from initial_frequency. With
// interactor selection on, privileged agents start from an all-innovative
// memory and ordinary agents from an all-established one.
func NewPopulation(p config.Params, rng *sampler.Sampler) (*Population, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	policy := NewMechanismPolicy(Mechanisms{
		NeutralChange:       p.NeutralChange,
		InteractorSelection: p.InteractorSelection,
		ReplicatorSelection: p.ReplicatorSelection,
		SelectionPressure:   p.SelectionPressure,
		PrivilegedThreshold: p.N,
	})

	agents := make([]*Agent, 0, p.Agents)
	for i := 0; i < p.Agents; i++ {
		roleID := i + 1
		x := p.InitialFrequency
		// Under interactor selection the production probability starts at
		// the role's pole along with the memory, so an agent's first
		// utterance already follows its role instead of initial_frequency.
		if p.InteractorSelection {
			if roleID <= p.N {
				x = 1
			} else {
				x = 0
			}
		}
		memory, err := rng.Memory(p.MemorySize, x)
		if err != nil {
			return nil, fmt.Errorf("agent %d: %w", roleID, err)
		}
		a, err := New(roleID, memory, x, rng, policy)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return &Population{agents: agents, policy: policy}, nil
}

func (p *Population) Len() int {
	return len(p.agents)
}

func (p *Population) At(i int) *Agent {
	return p.agents[i]
}

func (p *Population) Policy() *MechanismPolicy {
	return p.policy
}

// MeanUpdatedX averages the production probability over the whole arena.
func (p *Population) MeanUpdatedX() float64 {
	if len(p.agents) == 0 {
		return 0
	}
	sum := 0.0
	for _, a := range p.agents {
		sum += a.updatedX
	}
	return sum / float64(len(p.agents))
}

// MeanFrequencyA averages FrequencyA over the agents at the given indices.
func (p *Population) MeanFrequencyA(members []int) float64 {
	if len(members) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range members {
		sum += p.agents[i].frequencyA
	}
	return sum / float64(len(members))
}

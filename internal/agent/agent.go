package agent

import (
	"fmt"

	"langchange/internal/model"
	"langchange/internal/sampler"
)

// Agent is a speaker with a fixed-size token memory. Its production
// probability is refreshed from memory only by Update.
type Agent struct {
	roleID     int
	memory     []model.Token
	updatedX   float64
	frequencyA float64
	lastSpoken model.Token

	rng    *sampler.Sampler
	policy *MechanismPolicy
}

func New(roleID int, memory []model.Token, initialX float64, rng *sampler.Sampler, policy *MechanismPolicy) (*Agent, error) {
	if len(memory) == 0 {
		return nil, fmt.Errorf("agent %d: memory must not be empty", roleID)
	}
	if _, err := sampler.Binary(initialX); err != nil {
		return nil, fmt.Errorf("agent %d: initial production probability: %w", roleID, err)
	}
	if rng == nil {
		return nil, fmt.Errorf("agent %d: random source is required", roleID)
	}
	if policy == nil {
		policy = NewMechanismPolicy(Mechanisms{})
	}
	a := &Agent{
		roleID:   roleID,
		memory:   append([]model.Token(nil), memory...),
		updatedX: initialX,
		rng:      rng,
		policy:   policy,
	}
	a.frequencyA = innovativeShare(a.memory)
	return a, nil
}

func (a *Agent) RoleID() int {
	return a.roleID
}

// Memory returns a copy of the memory buffer.
func (a *Agent) Memory() []model.Token {
	return append([]model.Token(nil), a.memory...)
}

func (a *Agent) MemorySize() int {
	return len(a.memory)
}

// UpdatedX is the current probability of producing the innovative variant.
func (a *Agent) UpdatedX() float64 {
	return a.updatedX
}

// FrequencyA is the share of innovative tokens in memory as of the last Update.
func (a *Agent) FrequencyA() float64 {
	return a.frequencyA
}

func (a *Agent) LastSpoken() model.Token {
	return a.lastSpoken
}

// Speak produces one token with P(innovative) = UpdatedX.
func (a *Agent) Speak() model.Token {
	a.lastSpoken = a.rng.Token(a.updatedX)
	return a.lastSpoken
}

// Reinforce overwrites one random memory slot with the agent's own last token.
func (a *Agent) Reinforce() {
	a.replace(a.lastSpoken)
}

// Listen lets the neighbor's last token into memory once for every adoption
// gate of the policy that admits it. It returns the number of adoptions.
func (a *Agent) Listen(neighbor *Agent) int {
	adopted := 0
	for _, gate := range a.policy.gates {
		if gate.Admits(a.rng, a, neighbor) {
			a.replace(neighbor.lastSpoken)
			adopted++
		}
	}
	return adopted
}

// Update recomputes the innovative share and the production probability.
func (a *Agent) Update() {
	share := innovativeShare(a.memory)
	a.frequencyA = share
	a.updatedX = share
}

// replace drops a uniformly random slot and appends token, keeping the
// buffer length fixed.
func (a *Agent) replace(token model.Token) {
	idx := a.rng.Index(len(a.memory))
	copy(a.memory[idx:], a.memory[idx+1:])
	a.memory[len(a.memory)-1] = token
}

func innovativeShare(memory []model.Token) float64 {
	count := 0
	for _, t := range memory {
		if t == model.Innovative {
			count++
		}
	}
	return float64(count) / float64(len(memory))
}

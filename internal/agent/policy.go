package agent

import (
	"strings"

	"langchange/internal/model"
	"langchange/internal/sampler"
)

// AdoptionRule decides whether a listener takes over the speaker's last token.
type AdoptionRule interface {
	Name() string
	Admits(rng *sampler.Sampler, listener, speaker *Agent) bool
}

// NeutralDriftRule adopts unconditionally.
type NeutralDriftRule struct{}

func (NeutralDriftRule) Name() string {
	return "neutral_change"
}

func (NeutralDriftRule) Admits(*sampler.Sampler, *Agent, *Agent) bool {
	return true
}

// RoleSelectionRule lets ordinary agents (role id above Threshold) copy
// privileged ones (role id at or below Threshold).
type RoleSelectionRule struct {
	Threshold int
}

func (RoleSelectionRule) Name() string {
	return "interactor_selection"
}

func (r RoleSelectionRule) Admits(_ *sampler.Sampler, listener, speaker *Agent) bool {
	return listener.roleID > r.Threshold && speaker.roleID <= r.Threshold
}

// FitnessSelectionRule adopts the innovative variant over the established one
// with probability Pressure. The Bernoulli draw happens only when the token
// pair qualifies.
type FitnessSelectionRule struct {
	Pressure float64
}

func (FitnessSelectionRule) Name() string {
	return "replicator_selection"
}

func (r FitnessSelectionRule) Admits(rng *sampler.Sampler, listener, speaker *Agent) bool {
	if listener.lastSpoken != model.Established || speaker.lastSpoken != model.Innovative {
		return false
	}
	return rng.Bernoulli(r.Pressure)
}

// Gate is a conjunction of rules, evaluated in order and short-circuited.
type Gate []AdoptionRule

func (g Gate) Admits(rng *sampler.Sampler, listener, speaker *Agent) bool {
	for _, rule := range g {
		if !rule.Admits(rng, listener, speaker) {
			return false
		}
	}
	return len(g) > 0
}

func (g Gate) Name() string {
	names := make([]string, 0, len(g))
	for _, rule := range g {
		names = append(names, rule.Name())
	}
	return strings.Join(names, "+")
}

type Mechanisms struct {
	NeutralChange       bool
	InteractorSelection bool
	ReplicatorSelection bool
	SelectionPressure   float64
	PrivilegedThreshold int
}

// MechanismPolicy is the ordered set of adoption gates applied by Listen.
// Every admitting gate replaces one memory slot.
type MechanismPolicy struct {
	gates []Gate
}

// NewMechanismPolicy builds the gates for a mechanism combination. Neutral
// drift is its own gate. Role and fitness selection each get their own gate,
// except when both are enabled: then they form one gate where the role
// condition must hold before the fitness draw is made.
func NewMechanismPolicy(m Mechanisms) *MechanismPolicy {
	p := &MechanismPolicy{}
	if m.NeutralChange {
		p.gates = append(p.gates, Gate{NeutralDriftRule{}})
	}
	role := RoleSelectionRule{Threshold: m.PrivilegedThreshold}
	fitness := FitnessSelectionRule{Pressure: m.SelectionPressure}
	switch {
	case m.InteractorSelection && m.ReplicatorSelection:
		p.gates = append(p.gates, Gate{role, fitness})
	case m.InteractorSelection:
		p.gates = append(p.gates, Gate{role})
	case m.ReplicatorSelection:
		p.gates = append(p.gates, Gate{fitness})
	}
	return p
}

func (p *MechanismPolicy) Gates() []Gate {
	return append([]Gate(nil), p.gates...)
}

// Frozen reports whether Listen can never change memory.
func (p *MechanismPolicy) Frozen() bool {
	return len(p.gates) == 0
}

func (p *MechanismPolicy) String() string {
	if p.Frozen() {
		return "frozen"
	}
	names := make([]string, 0, len(p.gates))
	for _, g := range p.gates {
		names = append(names, g.Name())
	}
	return strings.Join(names, ", ")
}

package agent

import (
	"testing"

	"langchange/internal/config"
	"langchange/internal/model"
	"langchange/internal/sampler"
)

func tokens(s string) []model.Token {
	out := make([]model.Token, 0, len(s))
	for _, r := range s {
		if r == 'A' {
			out = append(out, model.Innovative)
		} else {
			out = append(out, model.Established)
		}
	}
	return out
}

func newTestAgent(t *testing.T, roleID int, memory string, rng *sampler.Sampler, policy *MechanismPolicy) *Agent {
	t.Helper()
	a, err := New(roleID, tokens(memory), 0.5, rng, policy)
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	return a
}

func countInnovative(memory []model.Token) int {
	n := 0
	for _, tok := range memory {
		if tok == model.Innovative {
			n++
		}
	}
	return n
}

func TestNewAgentValidatesInputs(t *testing.T) {
	rng := sampler.New(1)
	if _, err := New(1, nil, 0.5, rng, nil); err == nil {
		t.Fatal("expected error for empty memory")
	}
	if _, err := New(1, tokens("AB"), 1.5, rng, nil); err == nil {
		t.Fatal("expected error for invalid probability")
	}
	if _, err := New(1, tokens("AB"), 0.5, nil, nil); err == nil {
		t.Fatal("expected error for missing random source")
	}
}

func TestNewAgentComputesFrequencyFromMemory(t *testing.T) {
	a := newTestAgent(t, 1, "AABB", sampler.New(1), nil)
	if a.FrequencyA() != 0.5 {
		t.Fatalf("expected frequency 0.5, got %f", a.FrequencyA())
	}
	if a.UpdatedX() != 0.5 {
		t.Fatalf("expected initial x 0.5, got %f", a.UpdatedX())
	}
}

func TestReinforceReplacesExactlyOneSlot(t *testing.T) {
	rng := sampler.New(9)
	a := newTestAgent(t, 1, "ABBABBAB", rng, nil)
	for i := 0; i < 100; i++ {
		before := a.Memory()
		spoken := a.Speak()
		a.Reinforce()
		after := a.Memory()

		if len(after) != len(before) {
			t.Fatalf("memory length changed: %d -> %d", len(before), len(after))
		}
		if after[len(after)-1] != spoken {
			t.Fatalf("expected spoken token appended")
		}
		if !isOneRemovalPlusAppend(before, after) {
			t.Fatalf("reinforce changed more than one slot: %v -> %v", before, after)
		}
	}
}

func isOneRemovalPlusAppend(before, after []model.Token) bool {
	for idx := range before {
		candidate := append(append([]model.Token(nil), before[:idx]...), before[idx+1:]...)
		candidate = append(candidate, after[len(after)-1])
		match := true
		for i := range candidate {
			if candidate[i] != after[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func TestUpdateMatchesMemoryExactly(t *testing.T) {
	rng := sampler.New(5)
	policy := NewMechanismPolicy(Mechanisms{NeutralChange: true})
	a := newTestAgent(t, 1, "AAABBBB", rng, policy)
	b := newTestAgent(t, 2, "ABABABA", rng, policy)
	for i := 0; i < 500; i++ {
		a.Speak()
		b.Speak()
		a.Reinforce()
		b.Reinforce()
		a.Listen(b)
		b.Listen(a)
		a.Update()
		b.Update()
		for _, ag := range []*Agent{a, b} {
			mem := ag.Memory()
			want := float64(countInnovative(mem)) / float64(len(mem))
			if ag.FrequencyA() != want || ag.UpdatedX() != want {
				t.Fatalf("step %d: frequency %f / x %f, want %f", i, ag.FrequencyA(), ag.UpdatedX(), want)
			}
			if len(mem) != 7 {
				t.Fatalf("memory length drifted to %d", len(mem))
			}
		}
	}
}

func TestSpeakFollowsUpdatedX(t *testing.T) {
	rng := sampler.New(2)
	all := newTestAgent(t, 1, "AAAA", rng, nil)
	all.Update()
	none := newTestAgent(t, 2, "BBBB", rng, nil)
	none.Update()
	for i := 0; i < 50; i++ {
		if all.Speak() != model.Innovative {
			t.Fatal("agent with x=1 produced the established variant")
		}
		if none.Speak() != model.Established {
			t.Fatal("agent with x=0 produced the innovative variant")
		}
	}
}

func TestMemorySizeOneFlipsBetweenExtremes(t *testing.T) {
	rng := sampler.New(11)
	policy := NewMechanismPolicy(Mechanisms{NeutralChange: true})
	a := newTestAgent(t, 1, "A", rng, policy)
	b := newTestAgent(t, 2, "B", rng, policy)
	for i := 0; i < 100; i++ {
		a.Speak()
		b.Speak()
		a.Reinforce()
		b.Reinforce()
		a.Listen(b)
		b.Listen(a)
		a.Update()
		b.Update()
		for _, ag := range []*Agent{a, b} {
			if f := ag.FrequencyA(); f != 0 && f != 1 {
				t.Fatalf("expected binary frequency, got %f", f)
			}
			if ag.MemorySize() != 1 {
				t.Fatalf("memory size changed to %d", ag.MemorySize())
			}
		}
	}
}

func TestPopulationRoleSeeding(t *testing.T) {
	p := config.Default()
	p.Agents = 10
	p.NumberOfNeighbors = 4
	p.N = 3
	p.InteractorSelection = true
	pop, err := NewPopulation(p, sampler.New(4))
	if err != nil {
		t.Fatalf("new population: %v", err)
	}
	if pop.Len() != 10 {
		t.Fatalf("expected 10 agents, got %d", pop.Len())
	}
	for i := 0; i < pop.Len(); i++ {
		a := pop.At(i)
		if a.RoleID() != i+1 {
			t.Fatalf("agent %d has role id %d", i, a.RoleID())
		}
		want := 0.0
		if a.RoleID() <= 3 {
			want = 1
		}
		if a.UpdatedX() != want || a.FrequencyA() != want {
			t.Fatalf("agent %d: x=%f freq=%f, want %f", i, a.UpdatedX(), a.FrequencyA(), want)
		}
	}
	if got := pop.MeanUpdatedX(); got != 0.3 {
		t.Fatalf("expected mean x 0.3, got %f", got)
	}
}

func TestPopulationRejectsInvalidParams(t *testing.T) {
	p := config.Default()
	p.MemorySize = 0
	if _, err := NewPopulation(p, sampler.New(1)); err == nil {
		t.Fatal("expected configuration error")
	}
}

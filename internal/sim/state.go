package sim

import "langchange/internal/network"

const (
	// PartitionInterval is the number of steps between partition rounds.
	PartitionInterval = 10
	// StopThreshold ends the run once the smallest active network has at
	// most this many agents.
	StopThreshold = 10
)

type Phase string

const (
	PhaseRunning Phase = "running"
	PhaseStopped Phase = "stopped"
)

type StopReason string

const (
	StopReasonNone           StopReason = ""
	StopReasonMinNetworkSize StopReason = "min_network_size"
	StopReasonStepBudget     StopReason = "step_budget"
)

// State is everything the scheduler carries from one step to the next.
type State struct {
	Step       int
	Cycle      int
	Recording  bool
	Phase      Phase
	StopReason StopReason
	Active     []*network.Network
}

func (s State) Stopped() bool {
	return s.Phase == PhaseStopped
}

// ActiveIDs lists the ids of the active networks in order.
func (s State) ActiveIDs() []int {
	ids := make([]int, 0, len(s.Active))
	for _, n := range s.Active {
		ids = append(ids, n.ID())
	}
	return ids
}

// MinActiveSize is the agent count of the smallest active network.
func MinActiveSize(active []*network.Network) int {
	if len(active) == 0 {
		return 0
	}
	min := active[0].Size()
	for _, n := range active[1:] {
		if n.Size() < min {
			min = n.Size()
		}
	}
	return min
}

// ShouldStop reports whether the active set has shrunk to the threshold.
func ShouldStop(active []*network.Network, threshold int) bool {
	return MinActiveSize(active) <= threshold
}

// advanceCycle counts a completed step and reports whether a partition round
// is due, resetting the counter when it is.
func advanceCycle(s *State, interval int) bool {
	s.Cycle++
	if s.Cycle >= interval {
		s.Cycle = 0
		return true
	}
	return false
}

package sim

import (
	"testing"

	"langchange/internal/network"
)

func sized(t *testing.T, id, size int) *network.Network {
	t.Helper()
	members := make([]int, size)
	for i := range members {
		members[i] = id*100 + i
	}
	n, err := network.New(id, network.NoParent, members, nil)
	if err != nil {
		t.Fatalf("network: %v", err)
	}
	return n
}

func TestShouldStopUsesSmallestNetwork(t *testing.T) {
	active := []*network.Network{sized(t, 1, 30), sized(t, 2, 11)}
	if ShouldStop(active, StopThreshold) {
		t.Fatal("11 agents is above the threshold")
	}
	active = append(active, sized(t, 3, 10))
	if !ShouldStop(active, StopThreshold) {
		t.Fatal("10 agents meets the threshold")
	}
	if MinActiveSize(active) != 10 {
		t.Fatalf("unexpected min size %d", MinActiveSize(active))
	}
}

func TestAdvanceCycleResetsAtInterval(t *testing.T) {
	var st State
	for i := 1; i < PartitionInterval; i++ {
		if advanceCycle(&st, PartitionInterval) {
			t.Fatalf("partition due early at step %d", i)
		}
	}
	if !advanceCycle(&st, PartitionInterval) {
		t.Fatal("expected partition on the tenth step")
	}
	if st.Cycle != 0 {
		t.Fatalf("cycle not reset: %d", st.Cycle)
	}
}

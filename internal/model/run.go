package model

import "langchange/internal/config"

// FrequencyRow holds the mean frequency of the innovative variant for every
// network that was active and recording at a given step.
type FrequencyRow struct {
	Step   int             `json:"step"`
	Values map[int]float64 `json:"values"`
}

// FrequencyTable is the time series of per-network frequencies. Columns lists
// network ids in the order they first appeared.
type FrequencyTable struct {
	Columns []int          `json:"columns"`
	Rows    []FrequencyRow `json:"rows"`
}

// Value returns the frequency recorded for network id at row i, if any.
func (t FrequencyTable) Value(i, id int) (float64, bool) {
	if i < 0 || i >= len(t.Rows) {
		return 0, false
	}
	v, ok := t.Rows[i].Values[id]
	return v, ok
}

// PartitionEvent records one bisection of Parent into two child networks.
type PartitionEvent struct {
	Parent   int    `json:"parent"`
	Children [2]int `json:"children"`
	Step     int    `json:"step"`
}

// Hierarchy is the lineage of all partition events rooted at the original
// network.
type Hierarchy struct {
	Root   int              `json:"root"`
	Events []PartitionEvent `json:"events"`
}

// ChildMap returns parent id -> child ids.
func (h Hierarchy) ChildMap() map[int][2]int {
	out := make(map[int][2]int, len(h.Events))
	for _, e := range h.Events {
		out[e.Parent] = e.Children
	}
	return out
}

type RunRecord struct {
	VersionedRecord
	ID           string        `json:"id"`
	Seed         int64         `json:"seed"`
	Params       config.Params `json:"params"`
	StepsRun     int           `json:"steps_run"`
	StopReason   string        `json:"stop_reason"`
	FinalX       float64       `json:"final_x"`
	Partitions   int           `json:"partitions"`
	CreatedAtUTC string        `json:"created_at_utc"`
}

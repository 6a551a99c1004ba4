package sim

import (
	"langchange/internal/agent"
	"langchange/internal/model"
	"langchange/internal/network"
)

// Aggregator builds the per-network frequency time series and the final
// population summary.
type Aggregator struct {
	population *agent.Population
	columns    []int
	seen       map[int]struct{}
	rows       []model.FrequencyRow
}

func NewAggregator(population *agent.Population) *Aggregator {
	return &Aggregator{
		population: population,
		seen:       make(map[int]struct{}),
	}
}

// Record appends one row with the mean innovative frequency of every active
// network.
func (a *Aggregator) Record(step int, active []*network.Network) {
	row := model.FrequencyRow{Step: step, Values: make(map[int]float64, len(active))}
	for _, n := range active {
		if _, ok := a.seen[n.ID()]; !ok {
			a.seen[n.ID()] = struct{}{}
			a.columns = append(a.columns, n.ID())
		}
		row.Values[n.ID()] = a.population.MeanFrequencyA(n.Members())
	}
	a.rows = append(a.rows, row)
}

// Table returns a copy of the series recorded so far.
func (a *Aggregator) Table() model.FrequencyTable {
	rows := make([]model.FrequencyRow, 0, len(a.rows))
	for _, r := range a.rows {
		values := make(map[int]float64, len(r.Values))
		for k, v := range r.Values {
			values[k] = v
		}
		rows = append(rows, model.FrequencyRow{Step: r.Step, Values: values})
	}
	return model.FrequencyTable{
		Columns: append([]int(nil), a.columns...),
		Rows:    rows,
	}
}

// FinalX is the mean production probability over the whole population.
func (a *Aggregator) FinalX() float64 {
	return a.population.MeanUpdatedX()
}

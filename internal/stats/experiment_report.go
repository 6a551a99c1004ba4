package stats

import (
	"math"
	"sort"
)

// SweepPointStats summarises the final population mean across the iterations
// of one parameter point.
type SweepPointStats struct {
	Point        int                `json:"point"`
	Settings     map[string]float64 `json:"settings"`
	Runs         int                `json:"runs"`
	MeanFinalX   float64            `json:"mean_final_x"`
	StdFinalX    float64            `json:"std_final_x"`
	MinFinalX    float64            `json:"min_final_x"`
	MaxFinalX    float64            `json:"max_final_x"`
	FixationRate float64            `json:"fixation_rate"`
	LossRate     float64            `json:"loss_rate"`
	MeanStepsRun float64            `json:"mean_steps_run"`
}

func BuildSweepReport(exp SweepExperiment) []SweepPointStats {
	byPoint := make(map[int][]SweepRecord)
	for _, r := range exp.Records {
		byPoint[r.Point] = append(byPoint[r.Point], r)
	}
	points := make([]int, 0, len(byPoint))
	for p := range byPoint {
		points = append(points, p)
	}
	sort.Ints(points)

	report := make([]SweepPointStats, 0, len(points))
	for _, p := range points {
		records := byPoint[p]
		values := make([]float64, len(records))
		steps := make([]float64, len(records))
		st := SweepPointStats{Point: p, Settings: records[0].Settings, Runs: len(records)}
		var fixed, lost int
		for i, r := range records {
			values[i] = r.FinalX
			steps[i] = float64(r.StepsRun)
			switch r.FinalX {
			case 1:
				fixed++
			case 0:
				lost++
			}
		}
		st.MeanFinalX = mean(values)
		st.StdFinalX = std(values)
		st.MinFinalX, st.MaxFinalX = minMax(values)
		st.FixationRate = float64(fixed) / float64(len(records))
		st.LossRate = float64(lost) / float64(len(records))
		st.MeanStepsRun = mean(steps)
		report = append(report, st)
	}
	return report
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// std is the population standard deviation.
func std(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var acc float64
	for _, v := range values {
		acc += (v - m) * (v - m)
	}
	return math.Sqrt(acc / float64(len(values)))
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

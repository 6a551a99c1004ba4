// Package sweep runs a parameter sweep: every point of a cartesian grid over
// numeric parameters, repeated for a number of seeded iterations.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"langchange/internal/config"
	"langchange/internal/logging"
	"langchange/internal/network"
	"langchange/internal/sim"
	"langchange/internal/stats"
)

var ErrEmptyAxis = errors.New("sweep axis has no values")

// Axis varies one parameter over a list of values.
type Axis struct {
	Name   string    `yaml:"name" json:"name"`
	Values []float64 `yaml:"values" json:"values"`
}

type Plan struct {
	Base       config.Params
	Axes       []Axis
	Iterations int
	Seed       int64
	// Workers bounds the number of concurrent runs. Zero means GOMAXPROCS.
	Workers int
	Edges   []network.Edge
}

// Point is one combination of axis values applied to the base parameters.
type Point struct {
	Index    int
	Settings map[string]float64
	Params   config.Params
}

type Result struct {
	Point     int
	Iteration int
	Seed      int64
	Settings  map[string]float64
	Run       sim.Result
}

// ParseAxis parses "name=v1,v2,...".
func ParseAxis(s string) (Axis, error) {
	name, list, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Axis{}, fmt.Errorf("sweep axis must look like name=v1,v2: %q", s)
	}
	axis := Axis{Name: name}
	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Axis{}, fmt.Errorf("sweep axis %s: %w", name, err)
		}
		axis.Values = append(axis.Values, v)
	}
	if len(axis.Values) == 0 {
		return Axis{}, fmt.Errorf("%w: %s", ErrEmptyAxis, name)
	}
	return axis, nil
}

// Apply returns params with the named field set to value. Integer fields
// reject non-integral values.
func Apply(params config.Params, name string, value float64) (config.Params, error) {
	asInt := func() (int, error) {
		if value != math.Trunc(value) {
			return 0, fmt.Errorf("%s must be an integer, got %v", name, value)
		}
		return int(value), nil
	}

	var err error
	switch name {
	case "initial_frequency":
		params.InitialFrequency = value
	case "selection_pressure":
		params.SelectionPressure = value
	case "network_density":
		params.NetworkDensity = value
	case "agents":
		params.Agents, err = asInt()
	case "memory_size":
		params.MemorySize, err = asInt()
	case "number_of_neighbors":
		params.NumberOfNeighbors, err = asInt()
	case "n":
		params.N, err = asInt()
	case "time":
		params.Time, err = asInt()
	case "steps":
		params.Steps, err = asInt()
	default:
		return params, fmt.Errorf("unknown sweep parameter: %s", name)
	}
	return params, err
}

// Expand lists the grid points in row-major order, the last axis varying
// fastest. Every point is validated.
func Expand(base config.Params, axes []Axis) ([]Point, error) {
	seen := make(map[string]struct{}, len(axes))
	for _, axis := range axes {
		if len(axis.Values) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyAxis, axis.Name)
		}
		if _, dup := seen[axis.Name]; dup {
			return nil, fmt.Errorf("duplicate sweep axis: %s", axis.Name)
		}
		seen[axis.Name] = struct{}{}
	}

	points := []Point{{Settings: map[string]float64{}, Params: base}}
	for _, axis := range axes {
		next := make([]Point, 0, len(points)*len(axis.Values))
		for _, p := range points {
			for _, v := range axis.Values {
				params, err := Apply(p.Params, axis.Name, v)
				if err != nil {
					return nil, err
				}
				settings := make(map[string]float64, len(p.Settings)+1)
				for k, s := range p.Settings {
					settings[k] = s
				}
				settings[axis.Name] = v
				next = append(next, Point{Settings: settings, Params: params})
			}
		}
		points = next
	}

	for i := range points {
		points[i].Index = i
		if err := points[i].Params.Validate(); err != nil {
			return nil, fmt.Errorf("sweep point %d %v: %w", i, points[i].Settings, err)
		}
	}
	return points, nil
}

// RunSeed derives the seed of one run from the plan seed.
func RunSeed(base int64, point, iterations, iteration int) int64 {
	return base + int64(point*iterations+iteration)
}

// Run executes every (point, iteration) pair and returns the results sorted
// by point then iteration. The first failing run cancels the rest.
func Run(ctx context.Context, plan Plan, logger *zap.Logger) ([]Result, error) {
	logger = logging.OrNop(logger)
	if plan.Iterations < 1 {
		return nil, fmt.Errorf("sweep iterations must be >= 1, got %d", plan.Iterations)
	}
	points, err := Expand(plan.Base, plan.Axes)
	if err != nil {
		return nil, err
	}
	workers := plan.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	logger.Info("sweep started",
		zap.Int("points", len(points)),
		zap.Int("iterations", plan.Iterations),
		zap.Int("workers", workers),
	)

	results := make([]Result, len(points)*plan.Iterations)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, point := range points {
		point := point
		for it := 0; it < plan.Iterations; it++ {
			it := it
			slot := point.Index*plan.Iterations + it
			seed := RunSeed(plan.Seed, point.Index, plan.Iterations, it)
			g.Go(func() error {
				scheduler, err := sim.NewScheduler(sim.Config{
					Params: point.Params,
					Seed:   seed,
					Edges:  plan.Edges,
					Logger: logger.With(zap.Int("point", point.Index), zap.Int("iteration", it)),
				})
				if err != nil {
					return fmt.Errorf("point %d iteration %d: %w", point.Index, it, err)
				}
				run, err := scheduler.Run(gctx)
				if err != nil {
					return fmt.Errorf("point %d iteration %d: %w", point.Index, it, err)
				}
				results[slot] = Result{
					Point:     point.Index,
					Iteration: it,
					Seed:      seed,
					Settings:  point.Settings,
					Run:       run,
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Point == results[j].Point {
			return results[i].Iteration < results[j].Iteration
		}
		return results[i].Point < results[j].Point
	})
	logger.Info("sweep finished", zap.Int("runs", len(results)))
	return results, nil
}

// Records converts results to their persisted form.
func Records(results []Result) []stats.SweepRecord {
	out := make([]stats.SweepRecord, 0, len(results))
	for _, r := range results {
		out = append(out, stats.SweepRecord{
			Point:      r.Point,
			Iteration:  r.Iteration,
			Seed:       r.Seed,
			Settings:   r.Settings,
			StepsRun:   r.Run.StepsRun,
			StopReason: string(r.Run.StopReason),
			FinalX:     r.Run.FinalX,
			Partitions: len(r.Run.Hierarchy.Events),
		})
	}
	return out
}

func StatsAxes(axes []Axis) []stats.SweepAxis {
	out := make([]stats.SweepAxis, 0, len(axes))
	for _, a := range axes {
		out = append(out, stats.SweepAxis{Name: a.Name, Values: append([]float64(nil), a.Values...)})
	}
	return out
}

// Package sim drives a language-change run: interaction batches per active
// network, periodic partitioning, the stop rule and result aggregation.
package sim

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"langchange/internal/agent"
	"langchange/internal/config"
	"langchange/internal/interaction"
	"langchange/internal/logging"
	"langchange/internal/model"
	"langchange/internal/network"
	"langchange/internal/sampler"
)

// RootNetworkID is the id of the network spanning the whole population.
const RootNetworkID = 0

var ErrStopped = errors.New("simulation already stopped")

type Config struct {
	Params config.Params
	Seed   int64
	// Edges overrides the generated small-world topology. Endpoints are
	// 0-based agent indices; the list must span exactly Params.Agents nodes
	// and give every agent a neighbor.
	Edges []network.Edge
	// Source overrides the seeded random source.
	Source sampler.Source
	Logger *zap.Logger
}

type Result struct {
	Table      model.FrequencyTable
	FinalX     float64
	Hierarchy  model.Hierarchy
	StepsRun   int
	StopReason StopReason
	ActiveIDs  []int
}

type Scheduler struct {
	params      config.Params
	logger      *zap.Logger
	population  *agent.Population
	root        *network.Network
	protocol    *interaction.Protocol
	partitioner *network.Partitioner
	aggregator  *Aggregator
	state       State
}

func NewScheduler(cfg Config) (*Scheduler, error) {
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	logger := logging.OrNop(cfg.Logger)

	rng := sampler.New(cfg.Seed)
	if cfg.Source != nil {
		var err error
		if rng, err = sampler.FromSource(cfg.Source); err != nil {
			return nil, err
		}
	}

	edges := cfg.Edges
	if edges == nil {
		var err error
		edges, err = network.WattsStrogatz(cfg.Params.Agents, cfg.Params.NumberOfNeighbors, cfg.Params.NetworkDensity, rng)
		if err != nil {
			return nil, &config.Error{Err: err}
		}
	}
	if cfg.Edges != nil {
		if n := network.NodeCount(cfg.Edges); n != cfg.Params.Agents {
			return nil, &config.Error{Err: fmt.Errorf("edge list spans %d nodes, agents is %d", n, cfg.Params.Agents)}
		}
	}
	root, err := network.Root(RootNetworkID, cfg.Params.Agents, edges)
	if err != nil {
		return nil, &config.Error{Err: err}
	}
	if isolated := root.Isolated(); len(isolated) > 0 {
		return nil, &config.Error{Err: fmt.Errorf("topology leaves %d agents without neighbors, first %d", len(isolated), isolated[0])}
	}

	population, err := agent.NewPopulation(cfg.Params, rng)
	if err != nil {
		return nil, err
	}
	protocol, err := interaction.NewProtocol(population, rng)
	if err != nil {
		return nil, err
	}
	partitioner, err := network.NewPartitioner(rng, network.NewHierarchy(root.ID()), network.DefaultMaxPasses)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		params:      cfg.Params,
		logger:      logger,
		population:  population,
		root:        root,
		protocol:    protocol,
		partitioner: partitioner,
		aggregator:  NewAggregator(population),
		state: State{
			Recording: true,
			Phase:     PhaseRunning,
			Active:    []*network.Network{root},
		},
	}
	s.aggregator.Record(0, s.state.Active)
	logger.Debug("simulation initialized",
		zap.Int("agents", cfg.Params.Agents),
		zap.Int("edges", root.EdgeCount()),
		zap.Int64("seed", cfg.Seed),
		zap.Stringer("policy", population.Policy()),
	)
	return s, nil
}

// State returns the current scheduler state.
func (s *Scheduler) State() State {
	st := s.state
	st.Active = append([]*network.Network(nil), s.state.Active...)
	return st
}

func (s *Scheduler) Population() *agent.Population {
	return s.population
}

func (s *Scheduler) Root() *network.Network {
	return s.root
}

// Step advances the run by one step.
func (s *Scheduler) Step(ctx context.Context) error {
	next, err := s.advance(ctx, s.state)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// advance runs one step from st and returns the resulting state. It mutates
// agents, the aggregator and the hierarchy, so st must be s.state.
func (s *Scheduler) advance(ctx context.Context, st State) (State, error) {
	if st.Stopped() {
		return st, ErrStopped
	}
	if err := ctx.Err(); err != nil {
		return st, err
	}

	next := st
	next.Active = append([]*network.Network(nil), st.Active...)
	next.Step++

	for _, n := range next.Active {
		if err := s.protocol.RunBatch(n, s.params.Time); err != nil {
			return st, fmt.Errorf("step %d: %w", next.Step, err)
		}
	}

	if advanceCycle(&next, PartitionInterval) {
		children := make([]*network.Network, 0, 2*len(next.Active))
		for _, n := range next.Active {
			pair, err := s.partitioner.Partition(n, next.Step)
			if err != nil {
				return st, fmt.Errorf("step %d: partition network %d: %w", next.Step, n.ID(), err)
			}
			s.logger.Debug("network partitioned",
				zap.Int("step", next.Step),
				zap.Int("parent", n.ID()),
				zap.Int("left", pair[0].ID()),
				zap.Int("left_size", pair[0].Size()),
				zap.Int("right", pair[1].ID()),
				zap.Int("right_size", pair[1].Size()),
			)
			children = append(children, pair[0], pair[1])
		}
		next.Active = children
	}

	if ShouldStop(next.Active, StopThreshold) {
		next.Recording = false
		next.Phase = PhaseStopped
		next.StopReason = StopReasonMinNetworkSize
	}
	if next.Recording {
		s.aggregator.Record(next.Step, next.Active)
	}
	if !next.Stopped() && next.Step >= s.params.Steps {
		next.Phase = PhaseStopped
		next.StopReason = StopReasonStepBudget
	}
	return next, nil
}

// Run steps until the run stops and returns its results.
func (s *Scheduler) Run(ctx context.Context) (Result, error) {
	for !s.state.Stopped() {
		if err := s.Step(ctx); err != nil {
			return Result{}, err
		}
	}
	result := s.Result()
	s.logger.Info("simulation stopped",
		zap.Int("step", result.StepsRun),
		zap.String("reason", string(result.StopReason)),
		zap.Int("active_networks", len(result.ActiveIDs)),
		zap.Int("partitions", len(result.Hierarchy.Events)),
		zap.Float64("final_x", result.FinalX),
	)
	return result, nil
}

// Result reports the aggregates as of the current state.
func (s *Scheduler) Result() Result {
	return Result{
		Table:      s.aggregator.Table(),
		FinalX:     s.aggregator.FinalX(),
		Hierarchy:  s.partitioner.Hierarchy().Lineage(),
		StepsRun:   s.state.Step,
		StopReason: s.state.StopReason,
		ActiveIDs:  s.state.ActiveIDs(),
	}
}

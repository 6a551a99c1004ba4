// Package config loads and validates the parameters of a language-change run.
//
// Every field is required. Files are YAML (JSON is accepted as a YAML subset);
// a missing key is reported instead of being filled with a default, and out of
// range values are rejected rather than clamped.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Params configures a single simulation run.
type Params struct {
	Agents              int      `yaml:"agents" json:"agents"`
	Lingueme            []string `yaml:"lingueme" json:"lingueme"`
	MemorySize          int      `yaml:"memory_size" json:"memory_size"`
	InitialFrequency    float64  `yaml:"initial_frequency" json:"initial_frequency"`
	NumberOfNeighbors   int      `yaml:"number_of_neighbors" json:"number_of_neighbors"`
	NetworkDensity      float64  `yaml:"network_density" json:"network_density"`
	NeutralChange       bool     `yaml:"neutral_change" json:"neutral_change"`
	InteractorSelection bool     `yaml:"interactor_selection" json:"interactor_selection"`
	ReplicatorSelection bool     `yaml:"replicator_selection" json:"replicator_selection"`
	SelectionPressure   float64  `yaml:"selection_pressure" json:"selection_pressure"`
	N                   int      `yaml:"n" json:"n"`
	Time                int      `yaml:"time" json:"time"`
	Steps               int      `yaml:"steps" json:"steps"`
}

var requiredKeys = []string{
	"agents",
	"lingueme",
	"memory_size",
	"initial_frequency",
	"number_of_neighbors",
	"network_density",
	"neutral_change",
	"interactor_selection",
	"replicator_selection",
	"selection_pressure",
	"n",
	"time",
	"steps",
}

// Error reports every violation found while loading or validating Params.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return "invalid configuration: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Default returns the reference parameter set: 100 agents on a small-world
// network under neutral change.
func Default() Params {
	return Params{
		Agents:              100,
		Lingueme:            []string{"A", "B"},
		MemorySize:          10,
		InitialFrequency:    0.3,
		NumberOfNeighbors:   8,
		NetworkDensity:      0.01,
		NeutralChange:       true,
		InteractorSelection: false,
		ReplicatorSelection: false,
		SelectionPressure:   0.1,
		N:                   50,
		Time:                100,
		Steps:               1000,
	}
}

// Validate checks every field and returns a *Error joining all violations.
func (p Params) Validate() error {
	var errs []error
	if p.Agents < 2 {
		errs = append(errs, fmt.Errorf("agents must be >= 2, got %d", p.Agents))
	}
	if len(p.Lingueme) != 2 {
		errs = append(errs, fmt.Errorf("lingueme must have exactly 2 symbols, got %d", len(p.Lingueme)))
	} else if p.Lingueme[0] == "" || p.Lingueme[1] == "" || p.Lingueme[0] == p.Lingueme[1] {
		errs = append(errs, fmt.Errorf("lingueme symbols must be distinct and non-empty: %q", p.Lingueme))
	}
	if p.MemorySize < 1 {
		errs = append(errs, fmt.Errorf("memory_size must be >= 1, got %d", p.MemorySize))
	}
	if !isProbability(p.InitialFrequency) {
		errs = append(errs, fmt.Errorf("initial_frequency must be in [0,1], got %v", p.InitialFrequency))
	}
	if p.NumberOfNeighbors < 2 || p.NumberOfNeighbors > p.Agents {
		errs = append(errs, fmt.Errorf("number_of_neighbors must be in [2,%d], got %d", p.Agents, p.NumberOfNeighbors))
	}
	if !isProbability(p.NetworkDensity) {
		errs = append(errs, fmt.Errorf("network_density must be in [0,1], got %v", p.NetworkDensity))
	}
	if !isProbability(p.SelectionPressure) {
		errs = append(errs, fmt.Errorf("selection_pressure must be in [0,1], got %v", p.SelectionPressure))
	}
	if p.N < 0 || p.N > p.Agents {
		errs = append(errs, fmt.Errorf("n must be in [0,%d], got %d", p.Agents, p.N))
	}
	if p.Time < 1 {
		errs = append(errs, fmt.Errorf("time must be >= 1, got %d", p.Time))
	}
	if p.Steps < 1 {
		errs = append(errs, fmt.Errorf("steps must be >= 1, got %d", p.Steps))
	}
	if len(errs) > 0 {
		return &Error{Err: errors.Join(errs...)}
	}
	return nil
}

// Mechanisms lists the enabled mechanism names, in evaluation order.
func (p Params) Mechanisms() []string {
	var out []string
	if p.NeutralChange {
		out = append(out, "neutral_change")
	}
	if p.InteractorSelection {
		out = append(out, "interactor_selection")
	}
	if p.ReplicatorSelection {
		out = append(out, "replicator_selection")
	}
	return out
}

// Load reads and validates a parameter file.
func Load(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, err
	}
	p, err := Parse(data)
	if err != nil {
		return Params{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes YAML or JSON parameters. Unknown and missing keys are errors.
func Parse(data []byte) (Params, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Params{}, &Error{Err: err}
	}
	var missing []string
	for _, key := range requiredKeys {
		if _, ok := raw[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return Params{}, &Error{Err: fmt.Errorf("missing required keys: %s", strings.Join(missing, ", "))}
	}

	var p Params
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Params{}, &Error{Err: err}
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Marshal renders p as YAML in the same layout Parse accepts.
func Marshal(p Params) ([]byte, error) {
	return yaml.Marshal(p)
}

func isProbability(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

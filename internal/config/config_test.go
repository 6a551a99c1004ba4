package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const fullYAML = `
agents: 20
lingueme: [A, B]
memory_size: 4
initial_frequency: 0.5
number_of_neighbors: 4
network_density: 0.1
neutral_change: true
interactor_selection: false
replicator_selection: false
selection_pressure: 0.1
n: 5
time: 5
steps: 30
`

func TestParseFullYAML(t *testing.T) {
	p, err := Parse([]byte(fullYAML))
	require.NoError(t, err)
	require.Equal(t, 20, p.Agents)
	require.Equal(t, []string{"A", "B"}, p.Lingueme)
	require.Equal(t, 4, p.MemorySize)
	require.True(t, p.NeutralChange)
	require.Equal(t, []string{"neutral_change"}, p.Mechanisms())
}

func TestParseAcceptsJSON(t *testing.T) {
	data := `{"agents": 20, "lingueme": ["A", "B"], "memory_size": 4, "initial_frequency": 0.5,
"number_of_neighbors": 4, "network_density": 0.1, "neutral_change": false,
"interactor_selection": true, "replicator_selection": true, "selection_pressure": 0.3,
"n": 5, "time": 5, "steps": 30}`
	p, err := Parse([]byte(data))
	require.NoError(t, err)
	require.Equal(t, []string{"interactor_selection", "replicator_selection"}, p.Mechanisms())
	require.InDelta(t, 0.3, p.SelectionPressure, 1e-12)
}

func TestParseReportsMissingKeys(t *testing.T) {
	data := strings.Replace(fullYAML, "memory_size: 4\n", "", 1)
	data = strings.Replace(data, "steps: 30\n", "", 1)
	_, err := Parse([]byte(data))
	require.Error(t, err)

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	require.Contains(t, err.Error(), "memory_size")
	require.Contains(t, err.Error(), "steps")
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte(fullYAML + "bogus: 1\n"))
	require.Error(t, err)
}

func TestValidateRejectsOutOfRangeWithoutClamping(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
		want   string
	}{
		{"agents", func(p *Params) { p.Agents = 1 }, "agents"},
		{"memory", func(p *Params) { p.MemorySize = 0 }, "memory_size"},
		{"initial frequency", func(p *Params) { p.InitialFrequency = 1.5 }, "initial_frequency"},
		{"density", func(p *Params) { p.NetworkDensity = -0.1 }, "network_density"},
		{"pressure", func(p *Params) { p.SelectionPressure = 2 }, "selection_pressure"},
		{"n high", func(p *Params) { p.N = 101 }, "n must be"},
		{"n low", func(p *Params) { p.N = -1 }, "n must be"},
		{"time", func(p *Params) { p.Time = 0 }, "time"},
		{"steps", func(p *Params) { p.Steps = 0 }, "steps"},
		{"neighbors", func(p *Params) { p.NumberOfNeighbors = 1 }, "number_of_neighbors"},
		{"lingueme size", func(p *Params) { p.Lingueme = []string{"A"} }, "lingueme"},
		{"lingueme dup", func(p *Params) { p.Lingueme = []string{"A", "A"} }, "lingueme"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Default()
			tc.mutate(&p)
			before := p
			err := p.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
			require.Equal(t, before, p)
		})
	}
}

func TestValidateBoundaryValues(t *testing.T) {
	p := Default()
	p.N = 0
	p.InitialFrequency = 0
	p.SelectionPressure = 1
	p.NeutralChange = false
	require.NoError(t, p.Validate())

	p.N = p.Agents
	p.NumberOfNeighbors = p.Agents
	require.NoError(t, p.Validate())
}

func TestLoadRoundTripsMarshal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data, err := Marshal(Default())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Default(), loaded)
}

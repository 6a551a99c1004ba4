package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

const experimentsDir = "experiments"

type SweepAxis struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// SweepRecord is the outcome of one run of a sweep.
type SweepRecord struct {
	Point      int                `json:"point"`
	Iteration  int                `json:"iteration"`
	Seed       int64              `json:"seed"`
	Settings   map[string]float64 `json:"settings"`
	StepsRun   int                `json:"steps_run"`
	StopReason string             `json:"stop_reason"`
	FinalX     float64            `json:"final_x"`
	Partitions int                `json:"partitions"`
}

type SweepExperiment struct {
	ID             string        `json:"id"`
	Notes          string        `json:"notes,omitempty"`
	Seed           int64         `json:"seed"`
	Iterations     int           `json:"iterations"`
	Workers        int           `json:"workers"`
	Axes           []SweepAxis   `json:"axes"`
	StartedAtUTC   string        `json:"started_at_utc,omitempty"`
	CompletedAtUTC string        `json:"completed_at_utc,omitempty"`
	Records        []SweepRecord `json:"records,omitempty"`
}

// WriteSweepExperiment stores experiment.json, results.csv and report.json
// under experiments/<id>.
func WriteSweepExperiment(baseDir string, exp SweepExperiment) (string, error) {
	if exp.ID == "" {
		return "", fmt.Errorf("experiment id is required")
	}
	dir := filepath.Join(baseDir, experimentsDir, exp.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, "experiment.json"), exp); err != nil {
		return "", err
	}

	file, err := os.Create(filepath.Join(dir, "results.csv"))
	if err != nil {
		return "", err
	}
	defer file.Close()
	if err := EncodeSweepCSV(file, exp.Axes, exp.Records); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(dir, "report.json"), BuildSweepReport(exp)); err != nil {
		return "", err
	}
	return dir, nil
}

func ReadSweepExperiment(baseDir, id string) (SweepExperiment, bool, error) {
	if id == "" {
		return SweepExperiment{}, false, fmt.Errorf("experiment id is required")
	}
	var exp SweepExperiment
	ok, err := readJSON(filepath.Join(baseDir, experimentsDir, id, "experiment.json"), &exp)
	return exp, ok, err
}

func ListSweepExperiments(baseDir string) ([]SweepExperiment, error) {
	entries, err := os.ReadDir(filepath.Join(baseDir, experimentsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return []SweepExperiment{}, nil
		}
		return nil, err
	}

	exps := make([]SweepExperiment, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		exp, ok, err := ReadSweepExperiment(baseDir, entry.Name())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		exps = append(exps, exp)
	}
	sort.Slice(exps, func(i, j int) bool {
		switch {
		case exps[i].StartedAtUTC == exps[j].StartedAtUTC:
			return exps[i].ID < exps[j].ID
		case exps[i].StartedAtUTC == "":
			return false
		case exps[j].StartedAtUTC == "":
			return true
		default:
			return exps[i].StartedAtUTC > exps[j].StartedAtUTC
		}
	})
	return exps, nil
}

// EncodeSweepCSV writes one row per record with a column per axis.
func EncodeSweepCSV(w io.Writer, axes []SweepAxis, records []SweepRecord) error {
	writer := csv.NewWriter(w)
	header := []string{"point", "iteration", "seed"}
	for _, axis := range axes {
		header = append(header, axis.Name)
	}
	header = append(header, "steps_run", "stop_reason", "final_x", "partitions")
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{strconv.Itoa(r.Point), strconv.Itoa(r.Iteration), strconv.FormatInt(r.Seed, 10)}
		for _, axis := range axes {
			row = append(row, strconv.FormatFloat(r.Settings[axis.Name], 'f', -1, 64))
		}
		row = append(row,
			strconv.Itoa(r.StepsRun),
			r.StopReason,
			strconv.FormatFloat(r.FinalX, 'f', -1, 64),
			strconv.Itoa(r.Partitions),
		)
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

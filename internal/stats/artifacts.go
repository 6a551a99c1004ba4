package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"langchange/internal/config"
	"langchange/internal/model"
)

const (
	runIndexFile       = "run_index.json"
	configFile         = "config.json"
	summaryFile        = "summary.json"
	frequencyTableFile = "frequency_table.csv"
	hierarchyFile      = "hierarchy.json"
)

type RunConfig struct {
	RunID        string        `json:"run_id"`
	Seed         int64         `json:"seed"`
	EdgesPath    string        `json:"edges_path,omitempty"`
	Params       config.Params `json:"params"`
	CreatedAtUTC string        `json:"created_at_utc"`
}

type RunSummary struct {
	RunID      string  `json:"run_id"`
	StepsRun   int     `json:"steps_run"`
	StopReason string  `json:"stop_reason"`
	FinalX     float64 `json:"final_x"`
	Partitions int     `json:"partitions"`
	ActiveIDs  []int   `json:"active_ids"`
	Recorded   int     `json:"recorded_rows"`
}

type RunArtifacts struct {
	Config    RunConfig
	Summary   RunSummary
	Table     model.FrequencyTable
	Hierarchy model.Hierarchy
}

type RunIndexEntry struct {
	RunID        string  `json:"run_id"`
	Agents       int     `json:"agents"`
	MemorySize   int     `json:"memory_size"`
	Mechanisms   string  `json:"mechanisms"`
	Seed         int64   `json:"seed"`
	StepsRun     int     `json:"steps_run"`
	StopReason   string  `json:"stop_reason"`
	FinalX       float64 `json:"final_x"`
	CreatedAtUTC string  `json:"created_at_utc"`
}

func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, configFile), artifacts.Config); err != nil {
		return "", err
	}
	summary := artifacts.Summary
	summary.RunID = artifacts.Config.RunID
	if err := writeJSON(filepath.Join(runDir, summaryFile), summary); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, hierarchyFile), artifacts.Hierarchy); err != nil {
		return "", err
	}
	if err := writeFrequencyTableFile(filepath.Join(runDir, frequencyTableFile), artifacts.Table); err != nil {
		return "", err
	}

	return runDir, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := readRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns the indexed runs newest first. Entries with equal
// timestamps keep the most recently appended first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	entries, err := readRunIndex(baseDir)
	if err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// readRunIndex returns the index in file (append) order.
func readRunIndex(baseDir string) ([]RunIndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, runIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	for _, file := range []string{configFile, summaryFile, frequencyTableFile, hierarchyFile} {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	return dst, nil
}

func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	var cfg RunConfig
	ok, err := readJSON(filepath.Join(baseDir, runID, configFile), &cfg)
	return cfg, ok, err
}

func ReadRunSummary(baseDir, runID string) (RunSummary, bool, error) {
	var summary RunSummary
	ok, err := readJSON(filepath.Join(baseDir, runID, summaryFile), &summary)
	return summary, ok, err
}

func ReadHierarchy(baseDir, runID string) (model.Hierarchy, bool, error) {
	var h model.Hierarchy
	ok, err := readJSON(filepath.Join(baseDir, runID, hierarchyFile), &h)
	return h, ok, err
}

func ReadFrequencyTable(baseDir, runID string) (model.FrequencyTable, bool, error) {
	file, err := os.Open(filepath.Join(baseDir, runID, frequencyTableFile))
	if err != nil {
		if os.IsNotExist(err) {
			return model.FrequencyTable{}, false, nil
		}
		return model.FrequencyTable{}, false, err
	}
	defer file.Close()

	table, err := DecodeFrequencyTableCSV(file)
	if err != nil {
		return model.FrequencyTable{}, false, fmt.Errorf("read frequency table %s: %w", runID, err)
	}
	return table, true, nil
}

// EncodeFrequencyTableCSV writes the table in wide form: a step column then
// one column per network id. Networks without a value at a step get an empty
// cell.
func EncodeFrequencyTableCSV(w io.Writer, table model.FrequencyTable) error {
	writer := csv.NewWriter(w)
	header := make([]string, 0, len(table.Columns)+1)
	header = append(header, "step")
	for _, id := range table.Columns {
		header = append(header, strconv.Itoa(id))
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for _, row := range table.Rows {
		record[0] = strconv.Itoa(row.Step)
		for i, id := range table.Columns {
			record[i+1] = ""
			if v, ok := row.Values[id]; ok {
				record[i+1] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func DecodeFrequencyTableCSV(r io.Reader) (model.FrequencyTable, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return model.FrequencyTable{}, fmt.Errorf("frequency table is empty")
		}
		return model.FrequencyTable{}, err
	}
	if len(header) == 0 || strings.TrimSpace(header[0]) != "step" {
		return model.FrequencyTable{}, fmt.Errorf("frequency table header must start with step")
	}

	table := model.FrequencyTable{Columns: make([]int, 0, len(header)-1)}
	for _, field := range header[1:] {
		id, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return model.FrequencyTable{}, fmt.Errorf("invalid network column %q: %w", field, err)
		}
		table.Columns = append(table.Columns, id)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.FrequencyTable{}, err
		}
		step, err := strconv.Atoi(record[0])
		if err != nil {
			return model.FrequencyTable{}, fmt.Errorf("invalid step %q: %w", record[0], err)
		}
		row := model.FrequencyRow{Step: step, Values: make(map[int]float64)}
		for i, cell := range record[1:] {
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return model.FrequencyTable{}, fmt.Errorf("invalid frequency %q at step %d: %w", cell, step, err)
			}
			row.Values[table.Columns[i]] = v
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func writeFrequencyTableFile(path string, table model.FrequencyTable) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := EncodeFrequencyTableCSV(file, table); err != nil {
		return err
	}
	return file.Sync()
}

func readJSON(path string, value any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, value); err != nil {
		return false, err
	}
	return true, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

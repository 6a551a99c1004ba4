package stats

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"langchange/internal/config"
	"langchange/internal/model"
)

func sampleArtifacts(runID string) RunArtifacts {
	return RunArtifacts{
		Config: RunConfig{
			RunID:        runID,
			Seed:         1,
			Params:       config.Default(),
			CreatedAtUTC: "2026-01-01T00:00:00Z",
		},
		Summary: RunSummary{
			StepsRun:   20,
			StopReason: "min_network_size",
			FinalX:     0.42,
			Partitions: 3,
			ActiveIDs:  []int{3, 4, 2},
			Recorded:   2,
		},
		Table: model.FrequencyTable{
			Columns: []int{0, 1, 2},
			Rows: []model.FrequencyRow{
				{Step: 0, Values: map[int]float64{0: 0.3}},
				{Step: 10, Values: map[int]float64{1: 0.25, 2: 0.5}},
			},
		},
		Hierarchy: model.Hierarchy{Root: 0, Events: []model.PartitionEvent{{Parent: 0, Children: [2]int{1, 2}, Step: 10}}},
	}
}

func TestWriteAndExportRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "exports")

	runDir, err := WriteRunArtifacts(baseDir, sampleArtifacts("run-123"))
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	files := []string{"config.json", "summary.json", "frequency_table.csv", "hierarchy.json"}
	for _, file := range files {
		if _, err := os.Stat(filepath.Join(runDir, file)); err != nil {
			t.Fatalf("expected file %s: %v", file, err)
		}
	}

	exportedDir, err := ExportRunArtifacts(baseDir, "run-123", outDir)
	if err != nil {
		t.Fatalf("export artifacts: %v", err)
	}
	for _, file := range files {
		if _, err := os.Stat(filepath.Join(exportedDir, file)); err != nil {
			t.Fatalf("expected exported file %s: %v", file, err)
		}
	}
}

func TestRunArtifactsReadBack(t *testing.T) {
	baseDir := t.TempDir()
	input := sampleArtifacts("run-1")
	if _, err := WriteRunArtifacts(baseDir, input); err != nil {
		t.Fatalf("write artifacts: %v", err)
	}

	cfg, ok, err := ReadRunConfig(baseDir, "run-1")
	if err != nil || !ok {
		t.Fatalf("read config: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(input.Config, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}

	summary, ok, err := ReadRunSummary(baseDir, "run-1")
	if err != nil || !ok {
		t.Fatalf("read summary: ok=%v err=%v", ok, err)
	}
	if summary.RunID != "run-1" || summary.FinalX != 0.42 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	table, ok, err := ReadFrequencyTable(baseDir, "run-1")
	if err != nil || !ok {
		t.Fatalf("read table: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(input.Table, table); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}

	h, ok, err := ReadHierarchy(baseDir, "run-1")
	if err != nil || !ok {
		t.Fatalf("read hierarchy: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(input.Hierarchy, h); diff != "" {
		t.Fatalf("hierarchy mismatch (-want +got):\n%s", diff)
	}

	if _, ok, err := ReadRunConfig(baseDir, "missing"); err != nil || ok {
		t.Fatalf("expected missing config, ok=%v err=%v", ok, err)
	}
}

func TestFrequencyTableCSVLeavesGapsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeFrequencyTableCSV(&buf, sampleArtifacts("r").Table); err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "step,0,1,2\n0,0.3,,\n10,,0.25,0.5\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s", buf.String())
	}
}

func TestDecodeFrequencyTableCSVRejectsBadHeader(t *testing.T) {
	if _, err := DecodeFrequencyTableCSV(bytes.NewBufferString("time,0\n0,0.5\n")); err == nil {
		t.Fatal("expected header error")
	}
	if _, err := DecodeFrequencyTableCSV(bytes.NewBufferString("step,x\n")); err == nil {
		t.Fatal("expected column error")
	}
}

func TestRunIndexAppendAndSort(t *testing.T) {
	baseDir := t.TempDir()
	entries := []RunIndexEntry{
		{RunID: "a", CreatedAtUTC: "2026-01-01T00:00:00Z"},
		{RunID: "b", CreatedAtUTC: "2026-01-02T00:00:00Z"},
		{RunID: "c", CreatedAtUTC: "2026-01-02T00:00:00Z"},
	}
	for _, e := range entries {
		if err := AppendRunIndex(baseDir, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: "a", CreatedAtUTC: "2026-01-01T00:00:00Z", FinalX: 1}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var ids []string
	for _, e := range index {
		ids = append(ids, e.RunID)
	}
	if diff := cmp.Diff([]string{"c", "b", "a"}, ids); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if index[2].FinalX != 1 {
		t.Fatalf("expected replaced entry, got %+v", index[2])
	}
}

func TestAppendRunIndexKeepsFileOrder(t *testing.T) {
	baseDir := t.TempDir()
	for _, id := range []string{"a", "b", "c"} {
		if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: id, CreatedAtUTC: "2026-01-02T00:00:00Z"}); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}
	if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: "b", CreatedAtUTC: "2026-01-02T00:00:00Z", StepsRun: 7}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: "d", CreatedAtUTC: "2026-01-02T00:00:00Z"}); err != nil {
		t.Fatalf("append d: %v", err)
	}

	onDisk, err := readRunIndex(baseDir)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var fileIDs []string
	for _, e := range onDisk {
		fileIDs = append(fileIDs, e.RunID)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, fileIDs); diff != "" {
		t.Fatalf("file order mismatch (-want +got):\n%s", diff)
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var ids []string
	for _, e := range index {
		ids = append(ids, e.RunID)
	}
	if diff := cmp.Diff([]string{"d", "c", "b", "a"}, ids); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if index[2].StepsRun != 7 {
		t.Fatalf("expected replaced entry, got %+v", index[2])
	}
}

func TestListRunIndexEmptyDir(t *testing.T) {
	index, err := ListRunIndex(t.TempDir())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(index) != 0 {
		t.Fatalf("expected empty index, got %+v", index)
	}
}

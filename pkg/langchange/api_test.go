package langchange

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"langchange/internal/config"
	"langchange/internal/network"
	"langchange/internal/sweep"
)

func smallParams() *config.Params {
	p := config.Default()
	p.Agents = 20
	p.NumberOfNeighbors = 20
	p.MemorySize = 4
	p.InitialFrequency = 0.5
	p.N = 5
	p.Time = 5
	p.Steps = 30
	return &p
}

func newTestClient(t *testing.T) (*Client, string) {
	t.Helper()
	base := t.TempDir()
	client, err := New(Options{
		StoreKind:    "memory",
		ArtifactsDir: filepath.Join(base, "runs"),
		ExportsDir:   filepath.Join(base, "exports"),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, base
}

func TestClientRunRunsShowAndExport(t *testing.T) {
	ctx := context.Background()
	client, base := newTestClient(t)

	summary, err := client.Run(ctx, RunRequest{Params: smallParams(), Seed: 42})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.RunID == "" {
		t.Fatal("expected run id")
	}
	if summary.StopReason != "min_network_size" || summary.StepsRun != 10 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.Partitions != 1 || len(summary.ActiveIDs) != 2 {
		t.Fatalf("unexpected partitioning: %+v", summary)
	}

	runs, err := client.Runs(ctx, RunsRequest{Limit: 5})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != summary.RunID || runs[0].Mechanisms != "neutral_change" {
		t.Fatalf("unexpected runs: %+v", runs)
	}

	detail, err := client.Show(ctx, ShowRequest{Latest: true})
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if detail.Record.ID != summary.RunID || detail.Record.FinalX != summary.FinalX {
		t.Fatalf("unexpected detail: %+v", detail.Record)
	}
	if len(detail.Table.Rows) != len(summary.Table.Rows) {
		t.Fatalf("table rows mismatch: %d vs %d", len(detail.Table.Rows), len(summary.Table.Rows))
	}

	var tree bytes.Buffer
	if err := client.Tree(ctx, ShowRequest{RunID: summary.RunID}, &tree); err != nil {
		t.Fatalf("tree: %v", err)
	}
	if !strings.HasPrefix(tree.String(), "network 0\n") || strings.Count(tree.String(), "\n") != 3 {
		t.Fatalf("unexpected tree:\n%s", tree.String())
	}

	exported, err := client.Export(ctx, ExportRequest{Latest: true})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if exported.Directory != filepath.Join(base, "exports", summary.RunID) {
		t.Fatalf("unexpected export dir: %s", exported.Directory)
	}
	if _, err := os.Stat(filepath.Join(exported.Directory, "frequency_table.csv")); err != nil {
		t.Fatalf("expected exported table: %v", err)
	}
}

func TestClientShowFallsBackToArtifacts(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	opts := Options{StoreKind: "memory", ArtifactsDir: filepath.Join(base, "runs")}

	first, err := New(opts)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	summary, err := first.Run(ctx, RunRequest{Params: smallParams(), Seed: 7})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	_ = first.Close()

	second, err := New(opts)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer second.Close()

	detail, err := second.Show(ctx, ShowRequest{RunID: summary.RunID})
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if detail.Record.Seed != 7 || detail.Record.StepsRun != summary.StepsRun {
		t.Fatalf("unexpected detail: %+v", detail.Record)
	}
	if len(detail.Hierarchy.Events) != summary.Partitions {
		t.Fatalf("unexpected hierarchy: %+v", detail.Hierarchy)
	}
}

func TestClientRunFromConfigAndEdgeList(t *testing.T) {
	ctx := context.Background()
	client, base := newTestClient(t)

	data, err := config.Marshal(*smallParams())
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	cfgPath := filepath.Join(base, "params.yaml")
	if err := os.WriteFile(cfgPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var edges []network.Edge
	for a := 0; a < 20; a++ {
		for b := a + 1; b < 20; b++ {
			edges = append(edges, network.NewEdge(a, b))
		}
	}
	var buf bytes.Buffer
	if err := network.WriteEdgeList(&buf, edges); err != nil {
		t.Fatalf("write edges: %v", err)
	}
	edgesPath := filepath.Join(base, "edges.csv")
	if err := os.WriteFile(edgesPath, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write edges file: %v", err)
	}

	summary, err := client.Run(ctx, RunRequest{ConfigPath: cfgPath, EdgesPath: edgesPath, Seed: 3})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.StepsRun != 10 {
		t.Fatalf("unexpected steps run: %d", summary.StepsRun)
	}
}

func TestClientRejectsInvalidParams(t *testing.T) {
	client, _ := newTestClient(t)
	p := smallParams()
	p.MemorySize = 0
	_, err := client.Run(context.Background(), RunRequest{Params: p})
	var cfgErr *config.Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestClientRejectsEdgeListOfWrongSize(t *testing.T) {
	ctx := context.Background()
	client, base := newTestClient(t)

	var ring []network.Edge
	for a := 0; a < 30; a++ {
		ring = append(ring, network.NewEdge(a, (a+1)%30))
	}
	var buf bytes.Buffer
	if err := network.WriteEdgeList(&buf, ring); err != nil {
		t.Fatalf("write edges: %v", err)
	}
	edgesPath := filepath.Join(base, "ring.csv")
	if err := os.WriteFile(edgesPath, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write edges file: %v", err)
	}

	p := config.Default()
	_, err := client.Run(ctx, RunRequest{Params: &p, EdgesPath: edgesPath, Seed: 1})
	var cfgErr *config.Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected config error for 100 agents on 30 nodes, got %v", err)
	}

	_, err = client.Run(ctx, RunRequest{Params: smallParams(), EdgesPath: edgesPath, Seed: 1})
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected config error for 20 agents on 30 nodes, got %v", err)
	}

	runs, err := client.Runs(ctx, RunsRequest{})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("rejected runs should not be indexed: %+v", runs)
	}
}

func TestClientRunIDSelection(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	if _, err := client.Export(ctx, ExportRequest{}); err == nil {
		t.Fatal("expected error without run id or latest")
	}
	if _, err := client.Export(ctx, ExportRequest{RunID: "x", Latest: true}); err == nil {
		t.Fatal("expected error with both run id and latest")
	}
	if _, err := client.Show(ctx, ShowRequest{Latest: true}); err == nil {
		t.Fatal("expected error with no runs")
	}
	if _, err := client.Show(ctx, ShowRequest{RunID: "missing"}); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestClientSweep(t *testing.T) {
	client, base := newTestClient(t)
	summary, err := client.Sweep(context.Background(), SweepRequest{
		Params:     smallParams(),
		Axes:       []sweep.Axis{{Name: "initial_frequency", Values: []float64{0, 1}}},
		Iterations: 2,
		Seed:       9,
		Workers:    2,
	})
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(summary.Records) != 4 || len(summary.Report) != 2 {
		t.Fatalf("unexpected sweep summary: %+v", summary)
	}
	if summary.Report[0].LossRate != 1 || summary.Report[1].FixationRate != 1 {
		t.Fatalf("absorbing frequencies should stay absorbed: %+v", summary.Report)
	}
	if !strings.HasPrefix(summary.Directory, filepath.Join(base, "runs", "experiments")) {
		t.Fatalf("unexpected sweep dir: %s", summary.Directory)
	}
}

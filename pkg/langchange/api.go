// Package langchange is the programmatic entry point for running language
// change simulations and browsing their stored results.
package langchange

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"langchange/internal/config"
	"langchange/internal/logging"
	"langchange/internal/model"
	"langchange/internal/network"
	"langchange/internal/sim"
	"langchange/internal/stats"
	"langchange/internal/storage"
	"langchange/internal/sweep"
)

const (
	defaultArtifactsDir = "runs"
	defaultExportsDir   = "exports"
	defaultDBPath       = "langchange.db"
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
	ExportsDir   string
	Logger       *zap.Logger
}

type Client struct {
	store  storage.Store
	logger *zap.Logger

	initOnce sync.Once
	initErr  error

	artifactsDir string
	exportsDir   string
}

// RunRequest describes one run. Params takes precedence over ConfigPath; with
// neither the default parameter set is used.
type RunRequest struct {
	Params     *config.Params
	ConfigPath string
	Seed       int64
	// EdgesPath names a CSV edge list replacing the generated topology.
	EdgesPath string
}

type RunSummary struct {
	RunID        string
	ArtifactsDir string
	StepsRun     int
	StopReason   string
	FinalX       float64
	Partitions   int
	ActiveIDs    []int
	Table        model.FrequencyTable
	Hierarchy    model.Hierarchy
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID        string
	CreatedAtUTC string
	Seed         int64
	Agents       int
	MemorySize   int
	Mechanisms   string
	StepsRun     int
	StopReason   string
	FinalX       float64
}

type ShowRequest struct {
	RunID  string
	Latest bool
}

type RunDetail struct {
	Record    model.RunRecord
	Table     model.FrequencyTable
	Hierarchy model.Hierarchy
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type SweepRequest struct {
	Params     *config.Params
	ConfigPath string
	Axes       []sweep.Axis
	Iterations int
	Seed       int64
	Workers    int
	EdgesPath  string
	Notes      string
}

type SweepSummary struct {
	ExperimentID string
	Directory    string
	Records      []stats.SweepRecord
	Report       []stats.SweepPointStats
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		logger:       logging.OrNop(opts.Logger),
		artifactsDir: artifactsDir,
		exportsDir:   exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Init prepares the store. Other methods call it as needed.
func (c *Client) Init(ctx context.Context) error {
	c.initOnce.Do(func() {
		c.initErr = c.store.Init(ctx)
	})
	return c.initErr
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}
	params, err := resolveParams(req.Params, req.ConfigPath)
	if err != nil {
		return RunSummary{}, err
	}
	edges, err := loadEdges(req.EdgesPath)
	if err != nil {
		return RunSummary{}, err
	}

	runID := uuid.NewString()
	logger := c.logger.With(zap.String("run_id", runID))
	scheduler, err := sim.NewScheduler(sim.Config{
		Params: params,
		Seed:   req.Seed,
		Edges:  edges,
		Logger: logger,
	})
	if err != nil {
		return RunSummary{}, err
	}
	result, err := scheduler.Run(ctx)
	if err != nil {
		return RunSummary{}, fmt.Errorf("run %s: %w", runID, err)
	}

	createdAt := time.Now().UTC().Format(time.RFC3339Nano)
	record := model.RunRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: storage.CurrentSchemaVersion, CodecVersion: storage.CurrentCodecVersion},
		ID:              runID,
		Seed:            req.Seed,
		Params:          params,
		StepsRun:        result.StepsRun,
		StopReason:      string(result.StopReason),
		FinalX:          result.FinalX,
		Partitions:      len(result.Hierarchy.Events),
		CreatedAtUTC:    createdAt,
	}
	if err := c.store.SaveRun(ctx, record); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveFrequencyTable(ctx, runID, result.Table); err != nil {
		return RunSummary{}, err
	}
	if err := c.store.SaveHierarchy(ctx, runID, result.Hierarchy); err != nil {
		return RunSummary{}, err
	}

	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:        runID,
			Seed:         req.Seed,
			EdgesPath:    req.EdgesPath,
			Params:       params,
			CreatedAtUTC: createdAt,
		},
		Summary: stats.RunSummary{
			StepsRun:   result.StepsRun,
			StopReason: string(result.StopReason),
			FinalX:     result.FinalX,
			Partitions: len(result.Hierarchy.Events),
			ActiveIDs:  result.ActiveIDs,
			Recorded:   len(result.Table.Rows),
		},
		Table:     result.Table,
		Hierarchy: result.Hierarchy,
	})
	if err != nil {
		return RunSummary{}, err
	}
	if err := stats.AppendRunIndex(c.artifactsDir, stats.RunIndexEntry{
		RunID:        runID,
		Agents:       params.Agents,
		MemorySize:   params.MemorySize,
		Mechanisms:   strings.Join(params.Mechanisms(), "+"),
		Seed:         req.Seed,
		StepsRun:     result.StepsRun,
		StopReason:   string(result.StopReason),
		FinalX:       result.FinalX,
		CreatedAtUTC: createdAt,
	}); err != nil {
		return RunSummary{}, err
	}

	logger.Info("run stored", zap.String("artifacts_dir", runDir))
	return RunSummary{
		RunID:        runID,
		ArtifactsDir: filepath.Clean(runDir),
		StepsRun:     result.StepsRun,
		StopReason:   string(result.StopReason),
		FinalX:       result.FinalX,
		Partitions:   len(result.Hierarchy.Events),
		ActiveIDs:    result.ActiveIDs,
		Table:        result.Table,
		Hierarchy:    result.Hierarchy,
	}, nil
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	entries, err := stats.ListRunIndex(c.artifactsDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:        e.RunID,
			CreatedAtUTC: e.CreatedAtUTC,
			Seed:         e.Seed,
			Agents:       e.Agents,
			MemorySize:   e.MemorySize,
			Mechanisms:   e.Mechanisms,
			StepsRun:     e.StepsRun,
			StopReason:   e.StopReason,
			FinalX:       e.FinalX,
		})
	}
	return out, nil
}

// Show loads a run from the store, falling back to its artifact directory
// for runs recorded by another process.
func (c *Client) Show(ctx context.Context, req ShowRequest) (RunDetail, error) {
	if err := c.Init(ctx); err != nil {
		return RunDetail{}, err
	}
	runID, err := c.resolveRunID(req.RunID, req.Latest)
	if err != nil {
		return RunDetail{}, err
	}

	record, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return RunDetail{}, err
	}
	if !ok {
		return c.showFromArtifacts(runID)
	}
	table, ok, err := c.store.GetFrequencyTable(ctx, runID)
	if err != nil {
		return RunDetail{}, err
	}
	if !ok {
		return RunDetail{}, fmt.Errorf("frequency table not found for run id: %s", runID)
	}
	h, ok, err := c.store.GetHierarchy(ctx, runID)
	if err != nil {
		return RunDetail{}, err
	}
	if !ok {
		return RunDetail{}, fmt.Errorf("hierarchy not found for run id: %s", runID)
	}
	return RunDetail{Record: record, Table: table, Hierarchy: h}, nil
}

// Tree writes the partition hierarchy of a run as an indented tree.
func (c *Client) Tree(ctx context.Context, req ShowRequest, w io.Writer) error {
	detail, err := c.Show(ctx, req)
	if err != nil {
		return err
	}
	return stats.RenderTree(w, detail.Hierarchy)
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}
	runID, err := c.resolveRunID(req.RunID, req.Latest)
	if err != nil {
		return ExportSummary{}, err
	}

	exportedDir, err := stats.ExportRunArtifacts(c.artifactsDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

func (c *Client) Sweep(ctx context.Context, req SweepRequest) (SweepSummary, error) {
	params, err := resolveParams(req.Params, req.ConfigPath)
	if err != nil {
		return SweepSummary{}, err
	}
	edges, err := loadEdges(req.EdgesPath)
	if err != nil {
		return SweepSummary{}, err
	}
	if req.Iterations <= 0 {
		req.Iterations = 1
	}

	started := time.Now().UTC()
	results, err := sweep.Run(ctx, sweep.Plan{
		Base:       params,
		Axes:       req.Axes,
		Iterations: req.Iterations,
		Seed:       req.Seed,
		Workers:    req.Workers,
		Edges:      edges,
	}, c.logger)
	if err != nil {
		return SweepSummary{}, err
	}

	exp := stats.SweepExperiment{
		ID:             uuid.NewString(),
		Notes:          req.Notes,
		Seed:           req.Seed,
		Iterations:     req.Iterations,
		Workers:        req.Workers,
		Axes:           sweep.StatsAxes(req.Axes),
		StartedAtUTC:   started.Format(time.RFC3339Nano),
		CompletedAtUTC: time.Now().UTC().Format(time.RFC3339Nano),
		Records:        sweep.Records(results),
	}
	dir, err := stats.WriteSweepExperiment(c.artifactsDir, exp)
	if err != nil {
		return SweepSummary{}, err
	}
	return SweepSummary{
		ExperimentID: exp.ID,
		Directory:    filepath.Clean(dir),
		Records:      exp.Records,
		Report:       stats.BuildSweepReport(exp),
	}, nil
}

func (c *Client) showFromArtifacts(runID string) (RunDetail, error) {
	cfg, ok, err := stats.ReadRunConfig(c.artifactsDir, runID)
	if err != nil {
		return RunDetail{}, err
	}
	if !ok {
		return RunDetail{}, fmt.Errorf("run not found: %s", runID)
	}
	summary, _, err := stats.ReadRunSummary(c.artifactsDir, runID)
	if err != nil {
		return RunDetail{}, err
	}
	table, _, err := stats.ReadFrequencyTable(c.artifactsDir, runID)
	if err != nil {
		return RunDetail{}, err
	}
	h, _, err := stats.ReadHierarchy(c.artifactsDir, runID)
	if err != nil {
		return RunDetail{}, err
	}
	return RunDetail{
		Record: model.RunRecord{
			VersionedRecord: model.VersionedRecord{SchemaVersion: storage.CurrentSchemaVersion, CodecVersion: storage.CurrentCodecVersion},
			ID:              runID,
			Seed:            cfg.Seed,
			Params:          cfg.Params,
			StepsRun:        summary.StepsRun,
			StopReason:      summary.StopReason,
			FinalX:          summary.FinalX,
			Partitions:      summary.Partitions,
			CreatedAtUTC:    cfg.CreatedAtUTC,
		},
		Table:     table,
		Hierarchy: h,
	}, nil
}

func (c *Client) resolveRunID(runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if runID == "" && !latest {
		return "", errors.New("run id or latest is required")
	}
	if !latest {
		return runID, nil
	}
	entries, err := stats.ListRunIndex(c.artifactsDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", errors.New("no runs available")
	}
	return entries[0].RunID, nil
}

func resolveParams(params *config.Params, path string) (config.Params, error) {
	switch {
	case params != nil:
		if err := params.Validate(); err != nil {
			return config.Params{}, err
		}
		return *params, nil
	case path != "":
		return config.Load(path)
	default:
		return config.Default(), nil
	}
}

func loadEdges(path string) ([]network.Edge, error) {
	if path == "" {
		return nil, nil
	}
	edges, _, err := network.LoadEdgeList(path)
	if err != nil {
		return nil, fmt.Errorf("load edge list: %w", err)
	}
	return edges, nil
}

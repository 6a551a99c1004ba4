package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"langchange/internal/model"
	"langchange/internal/sweep"
	"langchange/pkg/langchange"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		configPath string
		edgesPath  string
		seed       int64
		showTable  bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation and store its results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			defer client.Close()

			summary, err := client.Run(cmd.Context(), langchange.RunRequest{
				ConfigPath: configPath,
				EdgesPath:  edgesPath,
				Seed:       seed,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run completed run_id=%s seed=%d steps=%d stop_reason=%s partitions=%d\n",
				summary.RunID, seed, summary.StepsRun, summary.StopReason, summary.Partitions)
			fmt.Fprintf(out, "active_networks=%s\n", joinInts(summary.ActiveIDs))
			fmt.Fprintf(out, "final_x=%.6f\n", summary.FinalX)
			if showTable {
				printTable(cmd, summary.Table)
			}
			fmt.Fprintf(out, "artifacts_dir=%s\n", filepath.Clean(summary.ArtifactsDir))
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML or JSON parameter file (defaults to the reference parameters)")
	cmd.Flags().StringVar(&edgesPath, "edges", "", "CSV edge list replacing the generated small-world network")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().BoolVar(&showTable, "table", false, "print the frequency table")
	return cmd
}

func newRunsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			defer client.Close()

			items, err := client.Runs(cmd.Context(), langchange.RunsRequest{Limit: limit})
			if err != nil {
				return err
			}
			for _, item := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "run_id=%s created_at=%s seed=%d agents=%d memory=%d mechanisms=%s steps=%d stop_reason=%s final_x=%.6f\n",
					item.RunID, item.CreatedAtUTC, item.Seed, item.Agents, item.MemorySize, item.Mechanisms, item.StepsRun, item.StopReason, item.FinalX)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var (
		runID  string
		latest bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a run's record and frequency table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			defer client.Close()

			detail, err := client.Show(cmd.Context(), langchange.ShowRequest{RunID: runID, Latest: latest})
			if err != nil {
				return err
			}
			r := detail.Record
			fmt.Fprintf(cmd.OutOrStdout(), "run_id=%s created_at=%s seed=%d agents=%d steps=%d stop_reason=%s partitions=%d final_x=%.6f\n",
				r.ID, r.CreatedAtUTC, r.Seed, r.Params.Agents, r.StepsRun, r.StopReason, r.Partitions, r.FinalX)
			printTable(cmd, detail.Table)
			return nil
		},
	}
	cmd.Flags().StringVar(&runID, "run-id", "", "run id")
	cmd.Flags().BoolVar(&latest, "latest", false, "use the most recent run")
	return cmd
}

func newTreeCmd(a *app) *cobra.Command {
	var (
		runID  string
		latest bool
	)
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print a run's partition hierarchy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			defer client.Close()
			return client.Tree(cmd.Context(), langchange.ShowRequest{RunID: runID, Latest: latest}, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&runID, "run-id", "", "run id")
	cmd.Flags().BoolVar(&latest, "latest", false, "use the most recent run")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		runID  string
		latest bool
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy a run's artifacts to an export directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			defer client.Close()

			exported, err := client.Export(cmd.Context(), langchange.ExportRequest{RunID: runID, Latest: latest, OutDir: outDir})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported run_id=%s dir=%s\n", exported.RunID, exported.Directory)
			return nil
		},
	}
	cmd.Flags().StringVar(&runID, "run-id", "", "run id")
	cmd.Flags().BoolVar(&latest, "latest", false, "export the most recent run")
	cmd.Flags().StringVar(&outDir, "out", "", "export directory (defaults to --exports-dir)")
	return cmd
}

func newSweepCmd(a *app) *cobra.Command {
	var (
		configPath string
		edgesPath  string
		axisArgs   []string
		iterations int
		seed       int64
		workers    int
		notes      string
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a parameter sweep",
		Example: `  langchangectl sweep --axis initial_frequency=0.1,0.3,0.5 --axis memory_size=5,10 --iterations 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			axes := make([]sweep.Axis, 0, len(axisArgs))
			for _, arg := range axisArgs {
				axis, err := sweep.ParseAxis(arg)
				if err != nil {
					return err
				}
				axes = append(axes, axis)
			}

			client, err := a.client()
			if err != nil {
				return err
			}
			defer client.Close()

			summary, err := client.Sweep(cmd.Context(), langchange.SweepRequest{
				ConfigPath: configPath,
				EdgesPath:  edgesPath,
				Axes:       axes,
				Iterations: iterations,
				Seed:       seed,
				Workers:    workers,
				Notes:      notes,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sweep completed experiment_id=%s runs=%d points=%d\n", summary.ExperimentID, len(summary.Records), len(summary.Report))
			for _, p := range summary.Report {
				fmt.Fprintf(out, "point=%d %s runs=%d mean_final_x=%.6f std=%.6f fixation=%.4f loss=%.4f mean_steps=%.2f\n",
					p.Point, formatSettings(p.Settings), p.Runs, p.MeanFinalX, p.StdFinalX, p.FixationRate, p.LossRate, p.MeanStepsRun)
			}
			fmt.Fprintf(out, "experiment_dir=%s\n", summary.Directory)
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "base parameter file")
	cmd.Flags().StringVar(&edgesPath, "edges", "", "CSV edge list shared by every run")
	cmd.Flags().StringArrayVar(&axisArgs, "axis", nil, "swept parameter as name=v1,v2 (repeatable)")
	cmd.Flags().IntVar(&iterations, "iterations", 1, "runs per parameter point")
	cmd.Flags().Int64Var(&seed, "seed", 1, "base random seed")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = GOMAXPROCS)")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes stored with the experiment")
	return cmd
}

func printTable(cmd *cobra.Command, table model.FrequencyTable) {
	out := cmd.OutOrStdout()
	for _, row := range table.Rows {
		cells := make([]string, 0, len(table.Columns))
		for _, id := range table.Columns {
			v, ok := row.Values[id]
			if !ok {
				continue
			}
			cells = append(cells, fmt.Sprintf("net%d=%.4f", id, v))
		}
		fmt.Fprintf(out, "step=%d %s\n", row.Step, strings.Join(cells, " "))
	}
}

func formatSettings(settings map[string]float64) string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strconv.FormatFloat(settings[k], 'g', -1, 64))
	}
	return strings.Join(parts, " ")
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

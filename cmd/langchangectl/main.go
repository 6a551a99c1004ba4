package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"langchange/internal/logging"
	"langchange/internal/storage"
	"langchange/pkg/langchange"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds the persistent flags and the logger shared by every command.
type app struct {
	storeKind    string
	dbPath       string
	artifactsDir string
	exportsDir   string
	logLevel     string
	logJSON      bool

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "langchangectl",
		Short:         "Run and inspect language change simulations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(a.logLevel, a.logJSON)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.storeKind, "store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	flags.StringVar(&a.dbPath, "db-path", "langchange.db", "sqlite database path")
	flags.StringVar(&a.artifactsDir, "artifacts-dir", "runs", "directory for run artifacts")
	flags.StringVar(&a.exportsDir, "exports-dir", "exports", "directory for exported runs")
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level: debug|info|warn|error")
	flags.BoolVar(&a.logJSON, "log-json", false, "emit JSON logs")

	root.AddCommand(
		newRunCmd(a),
		newRunsCmd(a),
		newShowCmd(a),
		newTreeCmd(a),
		newExportCmd(a),
		newSweepCmd(a),
	)
	return root
}

func (a *app) client() (*langchange.Client, error) {
	return langchange.New(langchange.Options{
		StoreKind:    a.storeKind,
		DBPath:       a.dbPath,
		ArtifactsDir: a.artifactsDir,
		ExportsDir:   a.exportsDir,
		Logger:       a.logger,
	})
}

// Command snowprep prepares a workstation for the snowfall analysis: it
// creates the working directories, mirrors the shared Drive folders, and
// rebuilds the forecast-zone shapefiles.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/snowfall-setup/internal/config"
	"github.com/couchcryptid/snowfall-setup/internal/observability"
	"github.com/couchcryptid/snowfall-setup/internal/workspace"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// app carries the process-wide state shared by every subcommand.
type app struct {
	envFile string
	home    string

	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
}

func (a *app) layout() workspace.Layout {
	return workspace.NewLayout(a.cfg.Home)
}

// setup loads .env and the environment config, then builds logging and metrics.
func (a *app) setup(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", a.envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.home != "" {
		home, err := filepath.Abs(a.home)
		if err != nil {
			return fmt.Errorf("resolve --home: %w", err)
		}
		cfg.Home = home
	}

	a.cfg = cfg
	a.logger = observability.NewLogger(cfg)
	a.metrics = observability.NewMetrics()
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "snowprep",
		Short: "Set up the snowfall analysis workspace",
		Long: `snowprep builds the local working tree for the snowfall analysis.

Running it with no subcommand is the same as "snowprep run": create the
directory layout, mirror the shared Drive folders, and rebuild the NWS
forecast-zone and CWA shapefiles.

Settings come from the environment (optionally a .env file).`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Environment file to load if present")
	root.PersistentFlags().StringVar(&a.home, "home", "", "Home directory for the layout (overrides SNOWFALL_HOME)")

	run := newRunCmd(a)
	root.RunE = run.RunE
	root.Flags().AddFlagSet(run.Flags())

	root.AddCommand(
		run,
		newDirsCmd(a),
		newFetchCmd(a),
		newShapefilesCmd(a),
		newVerifyCmd(a),
		newServeCmd(a),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("snowprep failed", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/couchcryptid/snowfall-setup/internal/adapter/arcgis"
	"github.com/couchcryptid/snowfall-setup/internal/adapter/gdrive"
	httpadapter "github.com/couchcryptid/snowfall-setup/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/snowfall-setup/internal/adapter/kafka"
	"github.com/couchcryptid/snowfall-setup/internal/adapter/shapefile"
	"github.com/couchcryptid/snowfall-setup/internal/mirror"
	"github.com/couchcryptid/snowfall-setup/internal/pipeline"
	"github.com/couchcryptid/snowfall-setup/internal/zones"
	"github.com/spf13/cobra"
)

// steps selects which parts of a run are enabled.
type steps struct {
	fetch      bool
	shapefiles bool
}

// buildPipeline wires the enabled steps to their adapters. The returned
// closer releases the Kafka writer when publishing is enabled.
func (a *app) buildPipeline(ctx context.Context, s steps) (*pipeline.Pipeline, func(), error) {
	var (
		fetcher   pipeline.Fetcher
		updater   pipeline.ShapefileUpdater
		publisher pipeline.ArtifactPublisher
	)
	closer := func() {}

	if s.fetch {
		if err := a.cfg.RequireDrive(); err != nil {
			return nil, closer, err
		}
		drive, err := gdrive.NewClient(ctx, a.cfg.DriveAPIKey, a.cfg.DriveEndpoint, a.logger)
		if err != nil {
			return nil, closer, err
		}
		fetcher = mirror.New(drive, a.metrics, a.logger)
	}

	if s.shapefiles {
		client := arcgis.NewClient(a.cfg.MapServerURL, a.cfg.MapServerLayer, a.cfg.HTTPTimeout, a.metrics, a.logger)
		updater = zones.NewUpdater(client, a.layout().Shapefiles(), a.cfg.State, a.cfg.CWAs, a.metrics, a.logger)
	}

	if a.cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(a.cfg, a.logger)
		publisher = writer
		closer = func() {
			if err := writer.Close(); err != nil {
				a.logger.Error("kafka writer close error", "error", err)
			}
		}
		a.logger.Info("artifact events enabled", "brokers", a.cfg.KafkaBrokers, "topic", a.cfg.KafkaTopic)
	}

	p := pipeline.New(a.layout(), a.cfg.DriveFolders, fetcher, updater, publisher, a.logger, a.metrics)
	return p, closer, nil
}

// runOnce executes a single pipeline pass with the given steps.
func (a *app) runOnce(cmd *cobra.Command, s steps) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, closer, err := a.buildPipeline(ctx, s)
	if err != nil {
		return err
	}
	defer closer()

	report, err := p.Run(ctx)
	printReport(cmd.OutOrStdout(), report)
	return err
}

func newRunCmd(a *app) *cobra.Command {
	var skipFetch, skipShapefiles bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Create directories, mirror Drive folders, and rebuild shapefiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runOnce(cmd, steps{fetch: !skipFetch, shapefiles: !skipShapefiles})
		},
	}
	cmd.Flags().BoolVar(&skipFetch, "skip-fetch", false, "Do not mirror Drive folders")
	cmd.Flags().BoolVar(&skipShapefiles, "skip-shapefiles", false, "Do not rebuild zone shapefiles")
	return cmd
}

func newDirsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dirs",
		Short: "Create the working directory layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			layout := a.layout()
			if err := layout.EnsureLayout(a.logger); err != nil {
				return err
			}
			for _, dir := range layout.Dirs() {
				fmt.Fprintln(cmd.OutOrStdout(), dir)
			}
			return nil
		},
	}
}

func newFetchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Mirror the configured Drive folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runOnce(cmd, steps{fetch: true})
		},
	}
}

func newShapefilesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shapefiles",
		Short: "Rebuild the forecast-zone and CWA shapefiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runOnce(cmd, steps{shapefiles: true})
		},
	}
}

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Decode every shapefile and print its record count and extent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sums, err := zones.Verify(a.layout().Shapefiles())
			printSummaries(cmd.OutOrStdout(), sums)
			return err
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	var skipInitial bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run on SYNC_SCHEDULE and expose health, readiness, and metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context(), skipInitial)
		},
	}
	cmd.Flags().BoolVar(&skipInitial, "no-initial-run", false, "Wait for the first scheduled tick instead of running at startup")
	return cmd
}

func (a *app) serve(parent context.Context, skipInitial bool) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, closer, err := a.buildPipeline(ctx, steps{fetch: true, shapefiles: true})
	if err != nil {
		return err
	}
	defer closer()

	srv := httpadapter.NewServer(a.cfg.HTTPAddr, p, p, a.logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", "error", err)
			stop()
		}
	}()

	if !skipInitial {
		if _, err := p.Run(ctx); err != nil {
			a.logger.Error("initial run failed", "error", err)
		}
	}

	schedErr := p.Schedule(ctx, a.cfg.Schedule)
	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", "error", err)
	}

	a.logger.Info("shutdown complete")
	return schedErr
}

func printReport(w io.Writer, r pipeline.Report) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "run\t%s\n", r.RunID)
	fmt.Fprintf(tw, "drive files downloaded\t%d\n", r.Mirror.Downloaded)
	fmt.Fprintf(tw, "drive files already present\t%d\n", r.Mirror.Existing)
	fmt.Fprintf(tw, "drive documents skipped\t%d\n", r.Mirror.Documents)
	fmt.Fprintf(tw, "shapefiles written\t%d\n", r.Zones.Written)
	fmt.Fprintf(tw, "CWAs without zones\t%d\n", r.Zones.Skipped)
	fmt.Fprintf(tw, "failures\t%d\n", r.Mirror.Failed+r.Zones.Failed)
	if r.Published > 0 {
		fmt.Fprintf(tw, "events published\t%d\n", r.Published)
	}
	tw.Flush()
}

func printSummaries(w io.Writer, sums []shapefile.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tRECORDS\tMIN X\tMIN Y\tMAX X\tMAX Y")
	for _, s := range sums {
		fmt.Fprintf(tw, "%s\t%d\t%.4f\t%.4f\t%.4f\t%.4f\n", s.Path, s.Records, s.MinX, s.MinY, s.MaxX, s.MaxY)
	}
	tw.Flush()
}

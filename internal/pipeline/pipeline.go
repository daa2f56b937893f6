// Package pipeline runs the full snowfall setup: directory layout, Drive
// mirror, shapefile rebuild, and artifact publishing.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/snowfall-setup/internal/domain"
	"github.com/couchcryptid/snowfall-setup/internal/mirror"
	"github.com/couchcryptid/snowfall-setup/internal/observability"
	"github.com/couchcryptid/snowfall-setup/internal/workspace"
	"github.com/couchcryptid/snowfall-setup/internal/zones"
	"github.com/google/uuid"
)

// Fetcher mirrors the configured Drive folders into the layout.
type Fetcher interface {
	FetchAll(ctx context.Context, layout workspace.Layout, folders []domain.DriveFolder) (mirror.Report, error)
}

// ShapefileUpdater rebuilds the zone and CWA shapefiles.
type ShapefileUpdater interface {
	Update(ctx context.Context) (zones.Report, error)
}

// ArtifactPublisher announces the files a run produced.
type ArtifactPublisher interface {
	Publish(ctx context.Context, events []domain.ArtifactEvent) error
}

// Report collects the results of one run.
type Report struct {
	RunID     string
	Mirror    mirror.Report
	Zones     zones.Report
	Published int
}

// Artifacts returns every artifact produced by the run.
func (r Report) Artifacts() []domain.ArtifactEvent {
	out := make([]domain.ArtifactEvent, 0, len(r.Mirror.Artifacts)+len(r.Zones.Artifacts))
	out = append(out, r.Mirror.Artifacts...)
	return append(out, r.Zones.Artifacts...)
}

// Pipeline orchestrates a setup run. A nil fetcher, updater, or publisher
// disables that step.
type Pipeline struct {
	layout    workspace.Layout
	folders   []domain.DriveFolder
	fetcher   Fetcher
	updater   ShapefileUpdater
	publisher ArtifactPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	last      atomic.Pointer[domain.RunSummary]
}

// New creates a Pipeline over the given layout and steps.
func New(layout workspace.Layout, folders []domain.DriveFolder, f Fetcher, u ShapefileUpdater, pub ArtifactPublisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		layout:    layout,
		folders:   folders,
		fetcher:   f,
		updater:   u,
		publisher: pub,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a run has finished without failures.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no successful setup run yet")
	}
	return nil
}

// LastRun returns the summary of the most recently finished run.
func (p *Pipeline) LastRun() (domain.RunSummary, bool) {
	s := p.last.Load()
	if s == nil {
		return domain.RunSummary{}, false
	}
	return *s, true
}

// Run performs one setup pass. Item-level failures do not stop the run;
// they are joined into the returned error after every step has had its turn.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	r := Report{RunID: uuid.NewString()}
	logger := p.logger.With("run_id", r.RunID)
	start := time.Now()
	startedAt := domain.Now()

	p.metrics.RunRunning.Set(1)
	defer p.metrics.RunRunning.Set(0)

	logger.Info("setup run started", "home", p.layout.Home)
	err := p.run(ctx, logger, &r)
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.last.Store(summarize(r, startedAt, err))

	if err != nil {
		p.metrics.RunsTotal.WithLabelValues("failure").Inc()
		logger.Error("setup run finished with errors", "error", err, "duration", time.Since(start))
		return r, err
	}
	p.metrics.RunsTotal.WithLabelValues("success").Inc()
	p.metrics.LastSuccess.Set(float64(domain.Now().Unix()))
	p.ready.Store(true)
	logger.Info("setup run complete", "duration", time.Since(start))
	return r, nil
}

func (p *Pipeline) run(ctx context.Context, logger *slog.Logger, r *Report) error {
	if err := p.layout.EnsureLayout(logger); err != nil {
		return fmt.Errorf("ensure layout: %w", err)
	}

	var errs []error
	if p.fetcher != nil {
		rep, err := p.fetcher.FetchAll(ctx, p.layout, p.folders)
		r.Mirror = rep
		if err != nil {
			errs = append(errs, fmt.Errorf("drive mirror: %w", err))
			return errors.Join(errs...)
		}
		if rep.Failed > 0 {
			errs = append(errs, fmt.Errorf("drive mirror: %d items failed", rep.Failed))
		}
	}

	if p.updater != nil {
		rep, err := p.updater.Update(ctx)
		r.Zones = rep
		if err != nil {
			errs = append(errs, fmt.Errorf("shapefiles: %w", err))
			return errors.Join(errs...)
		}
		if rep.Failed > 0 {
			errs = append(errs, fmt.Errorf("shapefiles: %d items failed", rep.Failed))
		}
	}

	if err := p.publish(ctx, logger, r); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (p *Pipeline) publish(ctx context.Context, logger *slog.Logger, r *Report) error {
	events := r.Artifacts()
	if p.publisher == nil || len(events) == 0 {
		return nil
	}
	for i := range events {
		events[i].RunID = r.RunID
	}
	if err := p.publisher.Publish(ctx, events); err != nil {
		return fmt.Errorf("publish artifacts: %w", err)
	}
	r.Published = len(events)
	p.metrics.ArtifactsPublished.Add(float64(len(events)))
	logger.Info("published artifact events", "count", len(events))
	return nil
}

func summarize(r Report, startedAt time.Time, err error) *domain.RunSummary {
	s := &domain.RunSummary{
		RunID:      r.RunID,
		StartedAt:  startedAt,
		FinishedAt: domain.Now(),
		Downloaded: r.Mirror.Downloaded,
		Existing:   r.Mirror.Existing,
		Shapefiles: r.Zones.Written,
		Failed:     r.Mirror.Failed + r.Zones.Failed,
		Published:  r.Published,
	}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}

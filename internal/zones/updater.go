// Package zones rebuilds the forecast-zone and CWA shapefiles.
package zones

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/couchcryptid/snowfall-setup/internal/adapter/arcgis"
	"github.com/couchcryptid/snowfall-setup/internal/adapter/shapefile"
	"github.com/couchcryptid/snowfall-setup/internal/domain"
	"github.com/couchcryptid/snowfall-setup/internal/observability"
	"github.com/couchcryptid/snowfall-setup/internal/workspace"
)

// FeatureSource queries the zone layer of the map service.
type FeatureSource interface {
	ZoneIDs(ctx context.Context, where string) ([]string, error)
	Query(ctx context.Context, q arcgis.Query) (domain.FeatureSet, error)
}

// Report totals one shapefile update.
type Report struct {
	Zones     []string
	Written   int
	Failed    int
	Skipped   int // CWAs without zones
	Artifacts []domain.ArtifactEvent
}

// Updater writes one shapefile per zone in a state and one per CWA.
type Updater struct {
	src     FeatureSource
	dir     string
	state   string
	cwas    []string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewUpdater creates an Updater that writes into dir.
func NewUpdater(src FeatureSource, dir, state string, cwas []string, metrics *observability.Metrics, logger *slog.Logger) *Updater {
	return &Updater{
		src:     src,
		dir:     dir,
		state:   state,
		cwas:    cwas,
		metrics: metrics,
		logger:  logger,
	}
}

// ZoneFile is the shapefile name for a single zone.
func ZoneFile(zone string) string { return fmt.Sprintf("Zone_%s.shp", zone) }

// CWAFile is the shapefile name for a County Warning Area.
func CWAFile(cwa string) string { return fmt.Sprintf("%s_CWA.shp", cwa) }

// Update clears the shapefile directory and rebuilds every zone and CWA
// shapefile. Individual zone or CWA failures are logged and counted; the
// returned error is reserved for an unusable directory or a cancelled ctx.
func (u *Updater) Update(ctx context.Context) (Report, error) {
	var r Report
	if _, err := workspace.EnsureDir(u.dir, u.logger); err != nil {
		return r, err
	}
	removed, err := workspace.ClearDirectory(u.dir, u.logger)
	if err != nil {
		u.logger.Error("failed to clear shapefile directory", "dir", u.dir, "error", err)
		r.Failed++
	}
	u.logger.Info("cleared shapefile directory", "dir", u.dir, "removed", len(removed))

	zones, err := u.src.ZoneIDs(ctx, domain.StateWhere(u.state))
	if err != nil {
		if ctx.Err() != nil {
			return r, ctx.Err()
		}
		u.logger.Error("unable to fetch zones", "state", u.state, "error", err)
		r.Failed++
	}
	r.Zones = zones
	if len(zones) > 0 {
		u.logger.Info("found zones to download", "state", u.state, "zones", zones)
	}

	for _, zone := range zones {
		if err := ctx.Err(); err != nil {
			return r, err
		}
		u.writeZone(ctx, zone, &r)
	}

	for _, cwa := range u.cwas {
		if err := ctx.Err(); err != nil {
			return r, err
		}
		u.writeCWA(ctx, cwa, &r)
	}

	u.logger.Info("shapefile update complete",
		"written", r.Written,
		"failed", r.Failed,
		"skipped", r.Skipped,
	)
	return r, nil
}

func (u *Updater) writeZone(ctx context.Context, zone string, r *Report) {
	if err := checkID(zone); err != nil {
		u.fail("zone", zone, err, r)
		return
	}
	fs, err := u.src.Query(ctx, arcgis.Query{
		Where:          domain.ZoneWhere(zone, u.state),
		ReturnGeometry: true,
		GeometryType:   domain.GeometryTypePolygon,
	})
	if err != nil {
		u.fail("zone", zone, fmt.Errorf("fetch geometry: %w", err), r)
		return
	}
	u.write("zone", zone, ZoneFile(zone), fs, r)
}

func (u *Updater) writeCWA(ctx context.Context, cwa string, r *Report) {
	u.logger.Info("processing CWA", "cwa", cwa)
	if err := checkID(cwa); err != nil {
		u.fail("cwa", cwa, err, r)
		return
	}
	zones, err := u.src.ZoneIDs(ctx, domain.CWAWhere(cwa))
	if err != nil {
		u.fail("cwa", cwa, fmt.Errorf("fetch zones: %w", err), r)
		return
	}
	if len(zones) == 0 {
		u.logger.Warn("CWA has no zones, skipping", "cwa", cwa)
		r.Skipped++
		return
	}

	fs, err := u.src.Query(ctx, arcgis.Query{
		Where:          domain.ZonesInWhere(zones, u.state),
		OutFields:      "*",
		ReturnGeometry: true,
	})
	if err != nil {
		u.fail("cwa", cwa, fmt.Errorf("fetch geometry: %w", err), r)
		return
	}
	u.write("cwa", cwa, CWAFile(cwa), fs, r)
}

// checkID rejects zone and CWA identifiers that would not stay a single
// file name inside the shapefile directory.
func checkID(id string) error {
	safe, err := workspace.SafeName(id)
	if err != nil {
		return err
	}
	if safe != id {
		return fmt.Errorf("identifier %q is not a plain file name", id)
	}
	return nil
}

func (u *Updater) write(kind, source, name string, fs domain.FeatureSet, r *Report) {
	path := filepath.Join(u.dir, name)
	res, err := shapefile.Write(path, fs)
	if err != nil {
		u.fail(kind, source, err, r)
		return
	}
	if res.Skipped > 0 {
		u.logger.Warn("features without geometry skipped", kind, source, "skipped", res.Skipped)
	}
	u.metrics.ShapefilesWritten.WithLabelValues(kind).Inc()
	r.Written++
	r.Artifacts = append(r.Artifacts, domain.NewArtifactEvent(domain.KindShapefile, name, path, source, res.Bytes))
	u.logger.Info("saved shapefile", "path", path, "records", res.Records)
}

func (u *Updater) fail(kind, source string, err error, r *Report) {
	if errors.Is(err, shapefile.ErrNoFeatures) {
		u.logger.Warn("no geometry returned", kind, source)
	} else {
		u.logger.Error("failed to build shapefile", kind, source, "error", err)
	}
	u.metrics.ShapefileErrors.WithLabelValues(kind).Inc()
	r.Failed++
}

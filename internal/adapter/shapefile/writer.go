// Package shapefile converts ESRI JSON feature sets into ESRI shapefiles.
//
// Rings are copied into polygon parts unchanged. The map service already
// returns valid shapefile ring order, so no repair or dissolve is attempted.
package shapefile

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/couchcryptid/snowfall-setup/internal/domain"
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
)

// ErrNoFeatures is returned when a feature set has nothing to write.
var ErrNoFeatures = errors.New("no features with geometry")

// sidecars are the files that make up one shapefile, by extension.
var sidecars = []string{".shp", ".shx", ".dbf", ".prj"}

// Result summarizes a written shapefile.
type Result struct {
	Records int
	Skipped int   // features without rings
	Bytes   int64 // combined size of all sidecar files
}

// Write encodes fs as a polygon shapefile at path (which must end in .shp).
// On failure every sidecar file is removed.
func Write(path string, fs domain.FeatureSet) (Result, error) {
	if !strings.HasSuffix(path, ".shp") {
		return Result{}, fmt.Errorf("shapefile path %s must end in .shp", path)
	}

	var res Result
	features := make([]domain.Feature, 0, len(fs.Features))
	for _, f := range fs.Features {
		if !f.HasRings() {
			res.Skipped++
			continue
		}
		features = append(features, f)
	}
	if len(features) == 0 {
		return res, ErrNoFeatures
	}

	if err := encode(path, fs, features); err != nil {
		removeAll(path)
		return Result{}, err
	}
	if err := writeProjection(path, fs.SpatialReference.EPSG()); err != nil {
		removeAll(path)
		return Result{}, err
	}

	res.Records = len(features)
	res.Bytes = totalSize(path)
	return res, nil
}

func encode(path string, fs domain.FeatureSet, features []domain.Feature) error {
	cols := columns(fs)
	fields := make([]goshp.Field, len(cols))
	for i, c := range cols {
		fields[i] = c.field
	}

	enc, err := shp.NewEncoderFromFields(path, goshp.POLYGON, fields...)
	if err != nil {
		return fmt.Errorf("create shapefile %s: %w", path, err)
	}
	defer enc.Close()

	for i, f := range features {
		vals := make([]interface{}, len(cols))
		for j, c := range cols {
			vals[j] = c.value(f)
		}
		if err := enc.EncodeFields(toPolygon(f.Geometry), vals...); err != nil {
			return fmt.Errorf("encode feature %d: %w", i, err)
		}
	}
	return nil
}

// toPolygon maps each ESRI ring onto one path, dropping z/m values.
func toPolygon(g *domain.Geometry) geom.Polygon {
	poly := make(geom.Polygon, 0, len(g.Rings))
	for _, ring := range g.Rings {
		path := make(geom.Path, 0, len(ring))
		for _, pos := range ring {
			if len(pos) < 2 {
				continue
			}
			path = append(path, geom.Point{X: pos[0], Y: pos[1]})
		}
		if len(path) > 0 {
			poly = append(poly, path)
		}
	}
	return poly
}

func writeProjection(path string, epsg int) error {
	wkt, ok := projections[epsg]
	if !ok {
		return nil
	}
	prj := strings.TrimSuffix(path, ".shp") + ".prj"
	if err := os.WriteFile(prj, []byte(wkt), 0o644); err != nil {
		return fmt.Errorf("write projection: %w", err)
	}
	return nil
}

func removeAll(path string) {
	base := strings.TrimSuffix(path, ".shp")
	for _, ext := range sidecars {
		_ = os.Remove(base + ext)
	}
}

func totalSize(path string) int64 {
	base := strings.TrimSuffix(path, ".shp")
	var n int64
	for _, ext := range sidecars {
		if info, err := os.Stat(base + ext); err == nil {
			n += info.Size()
		}
	}
	return n
}

// Summary describes an existing shapefile.
type Summary struct {
	Path    string
	Records int
	MinX    float64
	MinY    float64
	MaxX    float64
	MaxY    float64
}

// Inspect decodes every record of the shapefile at path.
func Inspect(path string) (Summary, error) {
	d, err := shp.NewDecoder(path)
	if err != nil {
		return Summary{}, fmt.Errorf("open shapefile %s: %w", path, err)
	}
	defer d.Close()

	s := Summary{
		Path: path,
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for {
		g, _, more := d.DecodeRowFields()
		if !more {
			break
		}
		s.Records++
		if g == nil {
			continue
		}
		b := g.Bounds()
		s.MinX = math.Min(s.MinX, b.Min.X)
		s.MinY = math.Min(s.MinY, b.Min.Y)
		s.MaxX = math.Max(s.MaxX, b.Max.X)
		s.MaxY = math.Max(s.MaxY, b.Max.Y)
	}
	if err := d.Error(); err != nil {
		return Summary{}, fmt.Errorf("decode shapefile %s: %w", path, err)
	}
	if s.Records == 0 {
		s.MinX, s.MinY, s.MaxX, s.MaxY = 0, 0, 0, 0
	}
	return s, nil
}

package shapefile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/snowfall-setup/internal/domain"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x, y, size float64) [][]float64 {
	return [][]float64{{x, y}, {x, y + size}, {x + size, y + size}, {x + size, y}, {x, y}}
}

func zoneFeatureSet() domain.FeatureSet {
	return domain.FeatureSet{
		GeometryType:     domain.GeometryTypePolygon,
		SpatialReference: &domain.SpatialReference{WKID: 4326},
		Fields: []domain.Field{
			{Name: "objectid", Type: domain.FieldTypeOID},
			{Name: "zone", Type: domain.FieldTypeString, Length: 6},
			{Name: "shortname", Type: domain.FieldTypeString, Length: 32},
			{Name: "lon", Type: domain.FieldTypeDouble},
		},
		Features: []domain.Feature{
			{
				Attributes: map[string]any{"objectid": float64(1), "zone": "AKZ101", "shortname": "Anchorage", "lon": -149.9},
				Geometry:   &domain.Geometry{Rings: [][][]float64{square(-150, 61, 1)}},
			},
			{
				Attributes: map[string]any{"objectid": float64(2), "zone": "AKZ111", "shortname": nil, "lon": -148.5},
				Geometry: &domain.Geometry{Rings: [][][]float64{
					square(-149, 60, 2),
					square(-147, 63, 1),
				}},
			},
			{Attributes: map[string]any{"objectid": float64(3), "zone": "AKZ999"}},
		},
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "AFC_CWA.shp")

	res, err := Write(path, zoneFeatureSet())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Records)
	assert.Equal(t, 1, res.Skipped, "feature without geometry is skipped")
	assert.Positive(t, res.Bytes)

	for _, ext := range []string{".shp", ".shx", ".dbf", ".prj"} {
		assert.FileExists(t, strings.TrimSuffix(path, ".shp")+ext)
	}

	sum, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Records)
	assert.InDelta(t, -150, sum.MinX, 1e-9)
	assert.InDelta(t, 60, sum.MinY, 1e-9)
	assert.InDelta(t, -146, sum.MaxX, 1e-9)
	assert.InDelta(t, 64, sum.MaxY, 1e-9)
}

func TestWrite_Attributes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Zone_AKZ101.shp")
	_, err := Write(path, zoneFeatureSet())
	require.NoError(t, err)

	d, err := shp.NewDecoder(path)
	require.NoError(t, err)
	defer d.Close()

	var zones, names []string
	for {
		_, fields, more := d.DecodeRowFields("ZONE", "SHORTNAME")
		if !more {
			break
		}
		zones = append(zones, strings.Trim(fields["ZONE"], " \x00"))
		names = append(names, strings.Trim(fields["SHORTNAME"], " \x00"))
	}
	require.NoError(t, d.Error())
	assert.Equal(t, []string{"AKZ101", "AKZ111"}, zones)
	assert.Equal(t, []string{"Anchorage", ""}, names)
}

func TestWrite_NoFeatures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Zone_AKZ999.shp")

	fs := domain.FeatureSet{Features: []domain.Feature{{Attributes: map[string]any{"zone": "AKZ999"}}}}
	_, err := Write(path, fs)
	require.ErrorIs(t, err, ErrNoFeatures)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is left behind")
}

func TestWrite_BadExtension(t *testing.T) {
	_, err := Write(filepath.Join(t.TempDir(), "zone.json"), zoneFeatureSet())
	require.Error(t, err)
}

func TestWrite_UnknownProjection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Zone_AKZ101.shp")
	fs := zoneFeatureSet()
	fs.SpatialReference = &domain.SpatialReference{WKID: 26906}

	_, err := Write(path, fs)
	require.NoError(t, err)
	assert.NoFileExists(t, strings.TrimSuffix(path, ".shp")+".prj")
}

func TestWrite_ProjectionContents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Zone_AKZ101.shp")
	fs := zoneFeatureSet()
	fs.SpatialReference = &domain.SpatialReference{WKID: 102100, LatestWKID: 3857}

	_, err := Write(path, fs)
	require.NoError(t, err)

	prj, err := os.ReadFile(strings.TrimSuffix(path, ".shp") + ".prj")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(prj), `PROJCS["WGS_1984_Web_Mercator_Auxiliary_Sphere"`))
}

func TestInspect_Missing(t *testing.T) {
	_, err := Inspect(filepath.Join(t.TempDir(), "missing.shp"))
	require.Error(t, err)
}

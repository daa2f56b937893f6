package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/snowfall-setup/internal/adapter/shapefile"
	"github.com/couchcryptid/snowfall-setup/internal/mirror"
	"github.com/couchcryptid/snowfall-setup/internal/pipeline"
	"github.com/couchcryptid/snowfall-setup/internal/workspace"
	"github.com/couchcryptid/snowfall-setup/internal/zones"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"run", "dirs", "fetch", "shapefiles", "verify", "serve"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, root.Flags().Lookup("skip-fetch"), "root accepts run flags")
}

// Only one test may run the persistent setup: it registers metrics with the
// default Prometheus registry.
func TestDirsCmd_CreatesLayout(t *testing.T) {
	home := t.TempDir()
	t.Setenv("LOG_LEVEL", "error")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"dirs", "--home", home, "--env-file", filepath.Join(home, "missing.env")})

	require.NoError(t, root.Execute())

	layout := workspace.NewLayout(home)
	for _, dir := range layout.Dirs() {
		assert.DirExists(t, dir)
		assert.Contains(t, out.String(), dir)
	}
}

func TestPrintReport(t *testing.T) {
	var out bytes.Buffer
	printReport(&out, pipeline.Report{
		RunID:  "run-1",
		Mirror: mirror.Report{Downloaded: 4, Existing: 2, Failed: 1},
		Zones:  zones.Report{Written: 30, Skipped: 1},
	})

	s := out.String()
	assert.Contains(t, s, "run-1")
	assert.Regexp(t, `drive files downloaded\s+4`, s)
	assert.Regexp(t, `shapefiles written\s+30`, s)
	assert.Regexp(t, `failures\s+1`, s)
	assert.NotContains(t, s, "events published")
}

func TestPrintSummaries(t *testing.T) {
	var out bytes.Buffer
	printSummaries(&out, []shapefile.Summary{
		{Path: "shapefiles/AFC_CWA.shp", Records: 42, MinX: -154.5, MinY: 58.1, MaxX: -141, MaxY: 63.2},
	})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "FILE"))
	assert.Contains(t, lines[1], "shapefiles/AFC_CWA.shp")
	assert.Contains(t, lines[1], "-154.5000")
}

package zones

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/couchcryptid/snowfall-setup/internal/adapter/shapefile"
)

// Verify decodes every shapefile in dir. Unreadable or empty shapefiles are
// reported in the joined error; summaries are returned for the rest.
func Verify(dir string) ([]shapefile.Summary, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.shp"))
	if err != nil {
		return nil, fmt.Errorf("list shapefiles: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no shapefiles in %s", dir)
	}
	slices.Sort(paths)

	var (
		sums []shapefile.Summary
		errs []error
	)
	for _, p := range paths {
		s, err := shapefile.Inspect(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if s.Records == 0 {
			errs = append(errs, fmt.Errorf("%s: no records", filepath.Base(p)))
			continue
		}
		sums = append(sums, s)
	}
	return sums, errors.Join(errs...)
}

// Package workspace owns the fixed local directory layout the snowfall
// analysis expects under its home directory.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Directory names under the home directory.
const (
	DataDir       = "Data"
	GraphicsDir   = "SnotelGraphics"
	LogsDir       = "Logs"
	ShapefilesDir = "shapefiles"
	ProjectDir    = "AnalyzeSnow"
	RastersDir    = "EBK_Rasters"
)

// Layout resolves the analysis directories relative to a home directory.
type Layout struct {
	Home string
}

// NewLayout returns a Layout rooted at home.
func NewLayout(home string) Layout {
	return Layout{Home: home}
}

func (l Layout) Data() string       { return filepath.Join(l.Home, DataDir) }
func (l Layout) Graphics() string   { return filepath.Join(l.Home, GraphicsDir) }
func (l Layout) Logs() string       { return filepath.Join(l.Home, LogsDir) }
func (l Layout) Shapefiles() string { return filepath.Join(l.Home, ShapefilesDir) }
func (l Layout) Project() string    { return filepath.Join(l.Home, ProjectDir) }
func (l Layout) Rasters() string    { return filepath.Join(l.Home, RastersDir) }

// Dirs lists every layout directory in creation order.
func (l Layout) Dirs() []string {
	return []string{l.Data(), l.Graphics(), l.Logs(), l.Shapefiles(), l.Project(), l.Rasters()}
}

// Folder returns the local mirror directory for a named Drive folder.
func (l Layout) Folder(name string) string {
	return filepath.Join(l.Home, name)
}

// EnsureLayout creates every layout directory that does not exist yet.
func (l Layout) EnsureLayout(logger *slog.Logger) error {
	var errs []error
	for _, dir := range l.Dirs() {
		if _, err := EnsureDir(dir, logger); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EnsureDir creates dir and any parents if missing. It reports whether the
// directory was created. An existing non-directory at dir is an error.
func EnsureDir(dir string, logger *slog.Logger) (bool, error) {
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		logger.Debug("directory already exists, skipping creation", "dir", dir)
		return false, nil
	case err == nil:
		return false, fmt.Errorf("ensure dir %s: exists and is not a directory", dir)
	case !errors.Is(err, os.ErrNotExist):
		return false, fmt.Errorf("ensure dir %s: %w", dir, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create dir %s: %w", dir, err)
	}
	logger.Info("created directory", "dir", dir)
	return true, nil
}

// ClearDirectory removes every file directly inside dir and returns the
// removed names. Subdirectories are left in place.
func ClearDirectory(dir string, logger *slog.Logger) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var removed []string
	var errs []error
	for _, e := range entries {
		if e.IsDir() {
			logger.Warn("leaving subdirectory in place", "dir", dir, "name", e.Name())
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", e.Name(), err))
			continue
		}
		logger.Debug("removed file", "dir", dir, "name", e.Name())
		removed = append(removed, e.Name())
	}
	return removed, errors.Join(errs...)
}

// SafeName turns a remote item name into a single path element.
func SafeName(name string) (string, error) {
	clean := strings.NewReplacer("/", "_", `\`, "_").Replace(strings.TrimSpace(name))
	if clean == "" || clean == "." || clean == ".." {
		return "", fmt.Errorf("unusable file name %q", name)
	}
	return clean, nil
}

// Exists reports whether path names an existing file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

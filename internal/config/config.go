package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/snowfall-setup/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/robfig/cron/v3"
)

const (
	defaultMapServerURL = "https://mapservices.weather.noaa.gov/static/rest/services/nws_reference_maps/nws_reference_map/MapServer"
	defaultDriveFolders = "AnalyzeSnow=1S-PpChJEROZI-1h_r_4MyEClS-qdvZyV,EBK_Rasters=1UKDT9cgAP4ScND5kYMQ-S-7X241pahgi"
)

// Config holds all tool settings, populated from environment variables.
type Config struct {
	Home string

	// Zone shapefile source.
	MapServerURL   string
	MapServerLayer int
	State          string
	CWAs           []string

	// Drive mirror source.
	DriveAPIKey   string
	DriveEndpoint string
	DriveFolders  []domain.DriveFolder

	HTTPTimeout     time.Duration
	Schedule        string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Artifact events; disabled when KafkaBrokers is empty.
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	httpTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("HTTP_TIMEOUT", "60s"))
	if err != nil || httpTimeout <= 0 {
		return nil, errors.New("invalid HTTP_TIMEOUT")
	}

	layer, err := strconv.Atoi(sharedcfg.EnvOrDefault("MAPSERVER_LAYER", "8"))
	if err != nil || layer < 0 {
		return nil, errors.New("invalid MAPSERVER_LAYER")
	}

	home, err := filepath.Abs(sharedcfg.EnvOrDefault("SNOWFALL_HOME", "."))
	if err != nil {
		return nil, fmt.Errorf("resolve SNOWFALL_HOME: %w", err)
	}

	folders, err := ParseDriveFolders(sharedcfg.EnvOrDefault("DRIVE_FOLDERS", defaultDriveFolders))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Home:            home,
		MapServerURL:    strings.TrimRight(sharedcfg.EnvOrDefault("MAPSERVER_URL", defaultMapServerURL), "/"),
		MapServerLayer:  layer,
		State:           strings.ToUpper(sharedcfg.EnvOrDefault("ZONE_STATE", "AK")),
		CWAs:            splitList(strings.ToUpper(sharedcfg.EnvOrDefault("CWAS", "AFC,AJK,AFG"))),
		DriveAPIKey:     os.Getenv("DRIVE_API_KEY"),
		DriveEndpoint:   os.Getenv("DRIVE_ENDPOINT"),
		DriveFolders:    folders,
		HTTPTimeout:     httpTimeout,
		Schedule:        sharedcfg.EnvOrDefault("SYNC_SCHEDULE", "@daily"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "snowfall-artifacts"),
	}

	if cfg.MapServerURL == "" {
		return nil, errors.New("MAPSERVER_URL is required")
	}
	if cfg.State == "" {
		return nil, errors.New("ZONE_STATE is required")
	}
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("invalid SYNC_SCHEDULE: %w", err)
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// RequireDrive validates the settings needed to mirror Drive folders. It is
// checked only by commands that fetch, so shapefile-only runs need no key.
func (c *Config) RequireDrive() error {
	if c.DriveAPIKey == "" {
		return errors.New("DRIVE_API_KEY is required to fetch Drive folders")
	}
	if len(c.DriveFolders) == 0 {
		return errors.New("DRIVE_FOLDERS is empty")
	}
	return nil
}

// KafkaEnabled reports whether artifact events should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// ParseDriveFolders parses "Name=folderID" pairs separated by commas.
// Order is preserved; names become directories under the home directory.
func ParseDriveFolders(s string) ([]domain.DriveFolder, error) {
	var folders []domain.DriveFolder
	seen := make(map[string]bool)
	for _, pair := range splitList(s) {
		name, id, ok := strings.Cut(pair, "=")
		name, id = strings.TrimSpace(name), strings.TrimSpace(id)
		if !ok || name == "" || id == "" {
			return nil, fmt.Errorf("invalid DRIVE_FOLDERS entry %q: want Name=folderID", pair)
		}
		if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return nil, fmt.Errorf("invalid DRIVE_FOLDERS name %q", name)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate DRIVE_FOLDERS name %q", name)
		}
		seen[name] = true
		folders = append(folders, domain.DriveFolder{Name: name, ID: id})
	}
	return folders, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

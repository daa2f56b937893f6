package domain

import (
	"time"

	"github.com/google/uuid"
)

// Artifact kinds.
const (
	KindShapefile = "shapefile"
	KindDriveFile = "drive_file"
)

// ArtifactEvent announces a file produced by a run.
type ArtifactEvent struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Source    string    `json:"source"` // zone/CWA code or Drive file ID
	Bytes     int64     `json:"bytes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewArtifactEvent stamps an event with a fresh ID and the package clock.
func NewArtifactEvent(kind, name, path, source string, size int64) ArtifactEvent {
	return ArtifactEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		Name:      name,
		Path:      path,
		Source:    source,
		Bytes:     size,
		CreatedAt: Now(),
	}
}

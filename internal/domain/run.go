package domain

import "time"

// RunSummary is the externally visible outcome of one setup run.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Downloaded int       `json:"downloaded"`
	Existing   int       `json:"existing"`
	Shapefiles int       `json:"shapefiles"`
	Failed     int       `json:"failed"`
	Published  int       `json:"published"`
	Error      string    `json:"error,omitempty"`
}

// OK reports whether the run finished without errors.
func (s RunSummary) OK() bool { return s.Error == "" }

package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Summary aggregates the outcome of one generation run. It is written to
// generation_summary.json next to the dataset.
type Summary struct {
	Requested   int            `json:"requested_images"`
	Generated   int            `json:"generated_images"`
	Failed      int            `json:"failed_images"`
	Attempts    int            `json:"render_attempts"`
	Planned     map[string]int `json:"planned_per_split"`
	PerSplit    map[string]int `json:"generated_per_split"`
	Classes     []string       `json:"classes"`
	ElapsedSecs float64        `json:"elapsed_seconds"`
}

// HasEmptySplit reports whether some split had images planned but every
// single one of them failed. This is the only per-image condition that
// turns the run's exit status into a failure.
func (s *Summary) HasEmptySplit() bool {
	for split, planned := range s.Planned {
		if planned > 0 && s.PerSplit[split] == 0 {
			return true
		}
	}
	return false
}

// RunMetadata records provenance for the run, written to run_metadata.json.
type RunMetadata struct {
	RunID     string `json:"run_id"`
	StartedAt string `json:"started_at"`
	Seed      *int64 `json:"seed,omitempty"`
	Device    string `json:"device"`
	GPU       bool   `json:"gpu"`
	Engine    string `json:"render_engine"`
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// WriteSummary persists the summary and metadata files into outputDir.
func WriteSummary(outputDir string, summary *Summary, meta *RunMetadata) error {
	if err := writeJSON(filepath.Join(outputDir, "generation_summary.json"), summary); err != nil {
		return err
	}
	return writeJSON(filepath.Join(outputDir, "run_metadata.json"), meta)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

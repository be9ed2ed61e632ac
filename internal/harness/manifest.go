package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Manifest summarizes a run for traceability alongside the artifacts.
type Manifest struct {
	RunID      string          `yaml:"run_id"`
	StartedAt  time.Time       `yaml:"started_at"`
	FinishedAt time.Time       `yaml:"finished_at"`
	Scenarios  []ManifestEntry `yaml:"scenarios"`
}

// ManifestEntry records one scenario's outcome.
type ManifestEntry struct {
	Name       string   `yaml:"name"`
	FeatureTag string   `yaml:"feature_tag"`
	Status     string   `yaml:"status"`
	DurationMS int64    `yaml:"duration_ms"`
	Artifacts  []string `yaml:"artifacts,omitempty"`
	Error      string   `yaml:"error,omitempty"`
}

// NewManifest builds a manifest from run results.
func NewManifest(startedAt time.Time, results []Result) Manifest {
	m := Manifest{
		RunID:      uuid.New().String(),
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}
	for _, res := range results {
		entry := ManifestEntry{
			Name:       res.Name,
			FeatureTag: res.FeatureTag,
			Status:     "passed",
			DurationMS: res.Duration.Milliseconds(),
			Artifacts:  res.Artifacts,
		}
		if res.Err != nil {
			entry.Status = "failed"
			entry.Error = res.Err.Error()
		}
		m.Scenarios = append(m.Scenarios, entry)
	}
	return m
}

// Write persists the manifest as manifest.yaml under the evidence root.
// Deterministic location so repeated runs overwrite it.
func (m Manifest) Write(evidenceRoot string) (string, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshaling run manifest: %w", err)
	}
	path := filepath.Join(evidenceRoot, "manifest.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing run manifest %s: %w", path, err)
	}
	return path, nil
}

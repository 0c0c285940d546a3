package store

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
)

// Manifest describes one persisted build: what was traversed, when, and
// with which settings. It lives as a JSON sidecar next to file stores and
// is what remote backends key their namespaces on.
type Manifest struct {
	BuildID     string    `json:"build_id"`
	CreatedAt   time.Time `json:"created_at"`
	Source      string    `json:"source,omitempty"`
	Direction   string    `json:"direction"`
	IncludeSelf bool      `json:"include_self"`
	Segments    int64     `json:"segments"`
	Headwaters  int       `json:"headwaters"`
}

// NewManifest creates a manifest with a fresh build id and timestamp.
func NewManifest(source, direction string, includeSelf bool) *Manifest {
	return &Manifest{
		BuildID:     uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Source:      source,
		Direction:   direction,
		IncludeSelf: includeSelf,
	}
}

// ManifestPath returns the sidecar path for a store file.
func ManifestPath(storePath string) string {
	return storePath + ".manifest.json"
}

// WriteManifest writes the manifest as indented JSON.
func WriteManifest(path string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// ReadManifest loads a manifest from disk.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

package build

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// manifestVersion guards the on-disk format. Older or newer versions are
// treated as absent rather than migrated: the manifest only affects
// pruning, never correctness of the new output.
const manifestVersion = 1

// ManifestFile is the manifest file name inside the cache directory.
const ManifestFile = "manifest.json"

// Manifest records the destination-path set (with fingerprints) written by
// the previous successful build. It is owned exclusively by the reconciler.
type Manifest struct {
	Version     int               `json:"version"`
	BuildID     string            `json:"build_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Outputs     map[string]string `json:"outputs"` // output-relative path -> sha256 fingerprint
}

// NewManifest creates an empty manifest.
func NewManifest(buildID string) *Manifest {
	return &Manifest{
		Version:     manifestVersion,
		BuildID:     buildID,
		GeneratedAt: time.Now().UTC(),
		Outputs:     map[string]string{},
	}
}

// ManifestPath returns the manifest location for a cache directory.
func ManifestPath(cacheDir string) string {
	return filepath.Join(cacheDir, ManifestFile)
}

// LoadManifest reads the previous build's manifest. Absence or corruption
// is recoverable: the result is an empty manifest and pruning is skipped
// for paths the lost manifest would have covered.
func LoadManifest(path string) *Manifest {
	empty := &Manifest{Version: manifestVersion, Outputs: map[string]string{}}

	data, err := os.ReadFile(path) // #nosec G304 -- path derived from configured cache dir
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Build manifest unreadable, treating as empty", logfields.Path(path), logfields.Error(err))
		}
		return empty
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		slog.Warn("Build manifest corrupt, treating as empty", logfields.Path(path), logfields.Error(err))
		return empty
	}
	if m.Version != manifestVersion {
		slog.Warn("Build manifest version mismatch, treating as empty",
			logfields.Path(path), slog.Int("version", m.Version))
		return empty
	}
	if m.Outputs == nil {
		m.Outputs = map[string]string{}
	}
	return &m
}

// Save atomically replaces the manifest at path via a temp-file rename.
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return serrors.ManifestPersistFailed(path, err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return serrors.ManifestPersistFailed(path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return serrors.ManifestPersistFailed(path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return serrors.ManifestPersistFailed(path, err)
	}
	return nil
}

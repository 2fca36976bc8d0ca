package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/singleflight"

	"git.home.luguber.info/inful/sitegen/internal/metrics"
)

// TransformedDir is the output-root directory holding transformed images.
const TransformedDir = "_transformed"

// TransformCache stores transformed image files keyed by the hash of
// (source identity, canonical parameters). Entries are created lazily and
// never invalidated here; an explicit cache-clear removes the directory.
//
// Concurrent requests for the same key are collapsed through singleflight
// so the transformer runs at most once per key per build.
type TransformCache struct {
	dir         string
	transformer Transformer
	group       singleflight.Group
	recorder    metrics.Recorder
}

// NewTransformCache creates the cache rooted at cacheDir/transforms.
func NewTransformCache(cacheDir string, transformer Transformer, recorder metrics.Recorder) (*TransformCache, error) {
	dir := filepath.Join(cacheDir, "transforms")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create transform cache directory: %w", err)
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &TransformCache{dir: dir, transformer: transformer, recorder: recorder}, nil
}

// Key derives the deterministic cache key for one transform request. The
// source content hash participates so edited images miss the cache.
func Key(srcRel, srcContentHash string, params TransformParams) string {
	sum := sha256.Sum256([]byte(srcRel + "\x00" + srcContentHash + "\x00" + params.Canonical()))
	return hex.EncodeToString(sum[:])[:16]
}

// Get returns the cached file path for key, producing it through the
// transformer on first request. src bytes are only read on a miss.
func (c *TransformCache) Get(key, ext string, load func() ([]byte, error), params TransformParams) (string, error) {
	cached := c.entryPath(key, ext)

	path, err, _ := c.group.Do(key, func() (any, error) {
		if _, statErr := os.Stat(cached); statErr == nil {
			c.recorder.IncImageTransform(true)
			return cached, nil
		}
		src, err := load()
		if err != nil {
			return "", err
		}
		out, err := c.transformer.Transform(src, ext, params)
		if err != nil {
			return "", err
		}
		tmp := cached + ".tmp"
		if err := os.WriteFile(tmp, out, 0o640); err != nil {
			return "", fmt.Errorf("write transform cache entry: %w", err)
		}
		if err := os.Rename(tmp, cached); err != nil {
			return "", fmt.Errorf("commit transform cache entry: %w", err)
		}
		c.recorder.IncImageTransform(false)
		return cached, nil
	})
	if err != nil {
		return "", err
	}
	return path.(string), nil
}

// Clear removes every cached transform entry.
func (c *TransformCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (c *TransformCache) entryPath(key, ext string) string {
	return filepath.Join(c.dir, key+normalizeExt(ext))
}

// OutputPath returns the destination of a transformed image relative to the
// output root.
func OutputPath(key, ext string) string {
	return TransformedDir + "/" + key + normalizeExt(ext)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	return ext
}

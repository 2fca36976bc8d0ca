// Package artifact defines the unit of output tracked by the reconciler.
package artifact

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Artifact is one desired output file: a destination under the output root,
// a content source (in-memory bytes or a file to copy), and a fingerprint
// of the content. Destinations are slash-separated and unique per build.
type Artifact struct {
	Dest        string // path relative to the output root
	Data        []byte // rendered content; nil when copying SrcPath
	SrcPath     string // absolute source file when Data is nil
	Fingerprint string // sha256 hex of the content
	Origin      string // producer, for error attribution (page path, "static", extension name)
}

// FromBytes builds an artifact around rendered content.
func FromBytes(dest string, data []byte, origin string) Artifact {
	sum := sha256.Sum256(data)
	return Artifact{
		Dest:        dest,
		Data:        data,
		Fingerprint: hex.EncodeToString(sum[:]),
		Origin:      origin,
	}
}

// FromFile builds a copy artifact, fingerprinting the source file.
func FromFile(dest, srcPath, origin string) (Artifact, error) {
	sum, err := HashFile(srcPath)
	if err != nil {
		return Artifact{}, fmt.Errorf("fingerprint %s: %w", srcPath, err)
	}
	return Artifact{
		Dest:        dest,
		SrcPath:     srcPath,
		Fingerprint: sum,
		Origin:      origin,
	}, nil
}

// Open returns a reader over the artifact content.
func (a *Artifact) Open() (io.ReadCloser, error) {
	if a.Data != nil {
		return io.NopCloser(bytes.NewReader(a.Data)), nil
	}
	return os.Open(a.SrcPath) // #nosec G304 -- source paths originate from the build pipeline
}

// HashFile returns the sha256 hex digest of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBytes returns the sha256 hex digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

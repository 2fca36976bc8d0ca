package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyPage       = "page"
	KeySection    = "section"
	KeyTaxonomy   = "taxonomy"
	KeyArtifact   = "artifact"
	KeyExtension  = "extension"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func Page(src string) slog.Attr        { return slog.String(KeyPage, src) }
func Section(s string) slog.Attr       { return slog.String(KeySection, s) }
func Taxonomy(name string) slog.Attr   { return slog.String(KeyTaxonomy, name) }
func Artifact(dest string) slog.Attr   { return slog.String(KeyArtifact, dest) }
func Extension(name string) slog.Attr  { return slog.String(KeyExtension, name) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

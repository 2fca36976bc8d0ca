package build

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/artifact"
	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/util/sets"
)

// stageWrite materializes the assembled artifact set under the output
// root. Files whose on-disk fingerprint already matches are skipped, so an
// unchanged site writes nothing. Clean mode empties the output root first.
func (s *Service) stageWrite(ctx context.Context, bs *BuildState) error {
	if bs.Opts.Clean {
		if err := emptyDir(bs.Cfg.OutputDir); err != nil {
			return serrors.Wrap(err, serrors.CategoryFileSystem, serrors.SeverityFatal, "clean output root failed")
		}
	}
	if err := os.MkdirAll(bs.Cfg.OutputDir, 0o750); err != nil {
		return serrors.Wrap(err, serrors.CategoryFileSystem, serrors.SeverityFatal, "create output root failed")
	}

	for i := range bs.Artifacts {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		a := &bs.Artifacts[i]
		dest := filepath.Join(bs.Cfg.OutputDir, filepath.FromSlash(a.Dest))

		if onDisk, err := artifact.HashFile(dest); err == nil && onDisk == a.Fingerprint {
			continue
		}
		if err := writeArtifact(dest, a); err != nil {
			return serrors.WriteFailed(a.Dest, err)
		}
		bs.Written = append(bs.Written, a.Dest)
	}

	s.recorder.AddArtifactsWritten(len(bs.Written))
	return nil
}

// stagePrune deletes every path the previous manifest recorded that the new
// artifact set no longer produces. Clean builds already emptied the root
// and skip this entirely.
func (s *Service) stagePrune(_ context.Context, bs *BuildState) error {
	if bs.Opts.Clean {
		return nil
	}

	current := sets.New[string]()
	for _, a := range bs.Artifacts {
		current.Add(a.Dest)
	}

	orphans := make([]string, 0)
	for path := range bs.Previous.Outputs {
		if !current.Has(path) {
			orphans = append(orphans, path)
		}
	}
	sort.Strings(orphans)

	for _, rel := range orphans {
		full := filepath.Join(bs.Cfg.OutputDir, filepath.FromSlash(rel))
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			return serrors.PruneFailed(rel, err)
		}
		bs.Pruned = append(bs.Pruned, rel)
		if bs.Opts.Verbose {
			slog.Info("Pruned orphaned output", logfields.Path(rel))
		}
		removeEmptyParents(bs.Cfg.OutputDir, filepath.Dir(full))
	}

	s.recorder.AddArtifactsPruned(len(bs.Pruned))
	return nil
}

// stagePersistManifest replaces the manifest only after write and prune
// completed, so a failed build leaves the previous manifest intact.
func (s *Service) stagePersistManifest(_ context.Context, bs *BuildState) error {
	m := NewManifest(bs.BuildID)
	for _, a := range bs.Artifacts {
		m.Outputs[a.Dest] = a.Fingerprint
	}
	return m.Save(ManifestPath(bs.Cfg.CacheDir))
}

// writeArtifact writes one artifact to dest, creating parent directories.
func writeArtifact(dest string, a *artifact.Artifact) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return err
	}
	src, err := a.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640) // #nosec G304 -- dest under output root
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// emptyDir removes every entry of dir without removing dir itself.
func emptyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// removeEmptyParents removes now-empty directories up to (but excluding)
// the output root after a prune deletion.
func removeEmptyParents(root, dir string) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return
	}
	for {
		dirAbs, err := filepath.Abs(dir)
		if err != nil || dirAbs == rootAbs || !strings.HasPrefix(dirAbs, rootAbs+string(filepath.Separator)) {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

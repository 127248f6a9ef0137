package usecase

import (
	"context"
	"fmt"
	iofs "io/fs"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

type copyStats struct {
	Copied      int
	Skipped     int
	Overwritten int
	Bytes       int64
}

type copyOptions struct {
	overwrite bool
	verbosef  func(format string, args ...any)
}

// copyTree copies every file of src into destDir, one file at a time. An
// existing destination file is replaced when overwrite is set and left as
// is otherwise.
func copyTree(ctx context.Context, fsys FileSystem, src iofs.FS, destDir string, opts copyOptions) (copyStats, error) {
	var stats copyStats

	if opts.verbosef == nil {
		opts.verbosef = func(string, ...any) {}
	}

	if err := fsys.MkdirAll(destDir, 0755); err != nil {
		return stats, fmt.Errorf("failed to create directory %s: %w", destDir, err)
	}

	err := iofs.WalkDir(src, ".", func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		target := filepath.Join(destDir, filepath.FromSlash(path))

		if d.IsDir() {
			if err := fsys.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
			return nil
		}

		if fsys.FileExists(target) {
			if !opts.overwrite {
				opts.verbosef("Skipping %s", target)
				stats.Skipped++
				return nil
			}
			opts.verbosef("Overwriting %s", target)
			if err := fsys.Remove(target); err != nil {
				return fmt.Errorf("failed to remove %s: %w", target, err)
			}
			stats.Overwritten++
		}

		n, err := fsys.CopyFromFS(src, path, target)
		if err != nil {
			return fmt.Errorf("failed to copy %s: %w", path, err)
		}
		stats.Copied++
		stats.Bytes += n

		return nil
	})

	return stats, err
}

func verboseLogger(logger logrus.FieldLogger, verbose bool) func(format string, args ...any) {
	return func(format string, args ...any) {
		if verbose {
			logger.Infof(format, args...)
			return
		}
		logger.Debugf(format, args...)
	}
}

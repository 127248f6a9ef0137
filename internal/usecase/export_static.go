package usecase

import (
	"context"
	"fmt"
	iofs "io/fs"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/mmrech/py-shiny/internal/core"
	"github.com/mmrech/py-shiny/internal/runtime"
)

type ExportInput struct {
	AppDir    string
	DestDir   string
	Subdir    string
	Overwrite bool
	Verbose   bool

	// Runtime is copied into DestDir as is. Templates must hold
	// index.html and editor/index.html.
	Runtime   iofs.FS
	Templates iofs.FS

	// ExcludeDirs defaults to core.DefaultExcludeDirs when nil.
	ExcludeDirs []string
}

type ExportOutput struct {
	Files        []core.AppFile
	ManifestPath string
	Copied       int
	Skipped      int
	Overwritten  int
	BytesCopied  int64
	Error        error
}

type ExportService struct {
	fs     FileSystem
	logger logrus.FieldLogger
}

func NewExportService(fs FileSystem, logger logrus.FieldLogger) *ExportService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ExportService{
		fs:     fs,
		logger: logger,
	}
}

// DeployStatic writes a self-contained bundle for the app in input.AppDir.
// It stops at the first error and leaves whatever was already written.
func (s *ExportService) DeployStatic(ctx context.Context, input ExportInput) ExportOutput {
	relPrefix, err := core.RelPrefix(input.Subdir)
	if err != nil {
		return ExportOutput{Error: err}
	}
	if input.Runtime == nil || input.Templates == nil {
		return ExportOutput{Error: fmt.Errorf("%w: runtime assets and templates are required", core.ErrInvalidArgument)}
	}

	excludeDirs := input.ExcludeDirs
	if excludeDirs == nil {
		excludeDirs = core.DefaultExcludeDirs
	}

	logger := s.logger.WithFields(logrus.Fields{
		"appdir":  input.AppDir,
		"destdir": input.DestDir,
	})
	verbosef := verboseLogger(logger, input.Verbose)

	verbosef("Copying runtime assets to %s", input.DestDir)
	stats, err := copyTree(ctx, s.fs, input.Runtime, input.DestDir, copyOptions{
		overwrite: input.Overwrite,
		verbosef:  verbosef,
	})
	output := ExportOutput{
		Copied:      stats.Copied,
		Skipped:     stats.Skipped,
		Overwritten: stats.Overwritten,
		BytesCopied: stats.Bytes,
	}
	if err != nil {
		output.Error = fmt.Errorf("failed to copy runtime assets: %w", err)
		return output
	}

	files, err := s.collectAppFiles(ctx, input.AppDir, excludeDirs)
	if err != nil {
		output.Error = err
		return output
	}
	output.Files = files

	appDestDir := filepath.Join(input.DestDir, input.Subdir)
	if err := s.writeTemplate(input.Templates, runtime.IndexTemplate, appDestDir, relPrefix); err != nil {
		output.Error = err
		return output
	}
	if err := s.writeTemplate(input.Templates, runtime.EditorTemplate, appDestDir, relPrefix); err != nil {
		output.Error = err
		return output
	}

	manifest, err := core.EncodeManifest(files)
	if err != nil {
		output.Error = fmt.Errorf("failed to encode %s: %w", core.ManifestFileName, err)
		return output
	}

	manifestPath := filepath.Join(appDestDir, core.ManifestFileName)
	verbosef("Writing to %s", manifestPath)
	if err := s.fs.WriteFile(manifestPath, manifest, 0644); err != nil {
		output.Error = fmt.Errorf("failed to write %s: %w", manifestPath, err)
		return output
	}
	output.ManifestPath = manifestPath

	logger.WithField("files", len(files)).Debug("export complete")

	return output
}

// collectAppFiles walks appDir top-down. Within a directory, files come
// before subdirectories and both are visited in lexical order.
func (s *ExportService) collectAppFiles(ctx context.Context, appDir string, excludeDirs []string) ([]core.AppFile, error) {
	var files []core.AppFile

	var walk func(relDir string) error
	walk = func(relDir string) error {
		dir := filepath.Join(appDir, relDir)
		entries, err := s.fs.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("failed to read directory %s: %w", dir, err)
		}

		var names, subdirs []string
		for _, entry := range entries {
			isDir := entry.IsDir()
			if entry.Type()&iofs.ModeSymlink != 0 {
				// symlinked directories are listed but not followed
				if info, err := s.fs.Stat(filepath.Join(dir, entry.Name())); err == nil && info.IsDir() {
					continue
				}
			}

			if isDir {
				if !core.IsExcludedDir(entry.Name(), excludeDirs) {
					subdirs = append(subdirs, entry.Name())
				}
				continue
			}
			names = append(names, entry.Name())
		}

		for _, name := range core.OrderFileNames(names) {
			if err := ctx.Err(); err != nil {
				return err
			}

			relPath := filepath.Join(relDir, name)
			data, err := s.fs.ReadFile(filepath.Join(appDir, relPath))
			if err != nil {
				return fmt.Errorf("failed to read app file %s: %w", relPath, err)
			}

			manifestName := core.ToManifestName(relPath)
			content, err := core.DecodeContent(manifestName, data)
			if err != nil {
				return err
			}

			files = append(files, core.AppFile{
				Name:    manifestName,
				Content: content,
			})
		}

		for _, sub := range subdirs {
			if err := walk(filepath.Join(relDir, sub)); err != nil {
				return err
			}
		}

		return nil
	}

	if err := walk(""); err != nil {
		return nil, err
	}

	return files, nil
}

func (s *ExportService) writeTemplate(templates iofs.FS, name string, appDestDir string, relPrefix string) error {
	content, err := iofs.ReadFile(templates, name)
	if err != nil {
		return fmt.Errorf("failed to read template %s: %w", name, err)
	}

	target := filepath.Join(appDestDir, filepath.FromSlash(name))
	if err := s.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(target), err)
	}

	if err := s.fs.WriteFile(target, core.SubstituteRelPath(content, relPrefix), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	return nil
}

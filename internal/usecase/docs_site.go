package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/mmrech/py-shiny/internal/core"
)

type CopyRuntimeOutput struct {
	Target      string
	Copied      int
	BytesCopied int64
	Error       error
}

// DocsService prepares a documentation site for in-browser app blocks.
type DocsService struct {
	fs     FileSystem
	logger logrus.FieldLogger
}

func NewDocsService(fs FileSystem, logger logrus.FieldLogger) *DocsService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DocsService{
		fs:     fs,
		logger: logger,
	}
}

func (s *DocsService) WriteLayout(path string, cfg core.DocsConfig) error {
	layout, err := core.RenderLayout(cfg)
	if err != nil {
		return fmt.Errorf("failed to render layout: %w", err)
	}

	if err := s.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}

	if err := s.fs.WriteFile(path, []byte(layout), 0644); err != nil {
		return fmt.Errorf("failed to write layout %s: %w", path, err)
	}

	s.logger.WithField("path", path).Debug("wrote docs layout")
	return nil
}

// CopyRuntime replaces outDir/cfg.Dest with a fresh copy of cfg.Source and
// puts the service worker that sits next to cfg.Source at the site root.
func (s *DocsService) CopyRuntime(ctx context.Context, outDir string, cfg core.DocsConfig) CopyRuntimeOutput {
	if cfg.Source == "" {
		return CopyRuntimeOutput{}
	}
	if cfg.Dest == "" {
		cfg.Dest = core.DefaultDocsDest
	}

	target := filepath.Join(outDir, filepath.FromSlash(cfg.Dest))
	output := CopyRuntimeOutput{Target: target}

	if s.fs.FileExists(target) {
		if err := s.fs.RemoveAll(target); err != nil {
			output.Error = fmt.Errorf("failed to remove %s: %w", target, err)
			return output
		}
	}

	stats, err := copyTree(ctx, s.fs, os.DirFS(cfg.Source), target, copyOptions{
		overwrite: true,
		verbosef:  verboseLogger(s.logger, false),
	})
	output.Copied = stats.Copied
	output.BytesCopied = stats.Bytes
	if err != nil {
		output.Error = fmt.Errorf("failed to copy %s: %w", cfg.Source, err)
		return output
	}

	swSource := filepath.Join(cfg.Source, "..", core.ServiceWorkerFile)
	swTarget := filepath.Join(outDir, core.ServiceWorkerFile)
	n, err := s.fs.CopyFile(swSource, swTarget)
	if err != nil {
		output.Error = fmt.Errorf("failed to copy service worker: %w", err)
		return output
	}
	output.Copied++
	output.BytesCopied += n

	s.logger.WithFields(logrus.Fields{
		"target": target,
		"files":  output.Copied,
	}).Debug("copied docs runtime")

	return output
}

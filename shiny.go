// Package shiny exports Shiny apps as static bundles that run entirely in
// the browser.
package shiny

import (
	"context"
	"io/fs"

	"github.com/sirupsen/logrus"

	osfs "github.com/mmrech/py-shiny/internal/adapters/fs"
	"github.com/mmrech/py-shiny/internal/core"
	"github.com/mmrech/py-shiny/internal/runtime"
	"github.com/mmrech/py-shiny/internal/usecase"
)

// RelPathToken is replaced in the HTML templates by the path from the app
// directory back to the bundle root.
const RelPathToken = core.RelPathToken

var (
	ErrInvalidArgument = core.ErrInvalidArgument
	ErrEncoding        = core.ErrEncoding
)

type (
	AppFile       = core.AppFile
	EncodingError = core.EncodingError
)

type deployConfig struct {
	overwrite   bool
	subdir      string
	verbose     bool
	runtime     fs.FS
	templates   fs.FS
	excludeDirs []string
	logger      logrus.FieldLogger
}

type DeployOption func(*deployConfig)

// WithOverwrite replaces runtime files that already exist in the
// destination. Without it they are left untouched.
func WithOverwrite(overwrite bool) DeployOption {
	return func(c *deployConfig) {
		c.overwrite = overwrite
	}
}

// WithSubdir places the app under a relative directory of the bundle.
func WithSubdir(subdir string) DeployOption {
	return func(c *deployConfig) {
		c.subdir = subdir
	}
}

func WithVerbose(verbose bool) DeployOption {
	return func(c *deployConfig) {
		c.verbose = verbose
	}
}

// WithRuntime replaces the embedded runtime asset tree.
func WithRuntime(assets fs.FS) DeployOption {
	return func(c *deployConfig) {
		c.runtime = assets
	}
}

// WithTemplates replaces the embedded index.html and editor/index.html.
func WithTemplates(templates fs.FS) DeployOption {
	return func(c *deployConfig) {
		c.templates = templates
	}
}

// WithExcludeDirs sets the directory names skipped while collecting app
// files. The default is __pycache__.
func WithExcludeDirs(names ...string) DeployOption {
	return func(c *deployConfig) {
		c.excludeDirs = names
	}
}

func WithLogger(logger logrus.FieldLogger) DeployOption {
	return func(c *deployConfig) {
		c.logger = logger
	}
}

// DeployStatic writes a static bundle for the app in appdir to destdir.
// A failure leaves whatever was already written in place.
func DeployStatic(ctx context.Context, appdir, destdir string, opts ...DeployOption) error {
	cfg := deployConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := core.ValidateSubdir(cfg.subdir); err != nil {
		return err
	}

	if cfg.runtime == nil {
		assets, err := runtime.Assets()
		if err != nil {
			return err
		}
		cfg.runtime = assets
	}
	if cfg.templates == nil {
		templates, err := runtime.Templates()
		if err != nil {
			return err
		}
		cfg.templates = templates
	}

	svc := usecase.NewExportService(osfs.NewOSFileSystem(), cfg.logger)
	out := svc.DeployStatic(ctx, usecase.ExportInput{
		AppDir:      appdir,
		DestDir:     destdir,
		Subdir:      cfg.subdir,
		Overwrite:   cfg.overwrite,
		Verbose:     cfg.verbose,
		Runtime:     cfg.runtime,
		Templates:   cfg.templates,
		ExcludeDirs: cfg.excludeDirs,
	})
	return out.Error
}

package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	clio "github.com/mmrech/py-shiny/internal/adapters/cli"
	osfs "github.com/mmrech/py-shiny/internal/adapters/fs"
	"github.com/mmrech/py-shiny/internal/config"
	"github.com/mmrech/py-shiny/internal/core"
	"github.com/mmrech/py-shiny/internal/runtime"
	"github.com/mmrech/py-shiny/internal/usecase"
	"github.com/mmrech/py-shiny/internal/watch"
)

const (
	flagConfig      = "config"
	flagEnvFile     = "env-file"
	flagDebug       = "debug"
	flagOverwrite   = "overwrite"
	flagSubdir      = "subdir"
	flagVerbose     = "verbose"
	flagRuntime     = "runtime"
	flagTemplates   = "templates"
	flagExcludeDirs = "exclude-dir"
	flagWatch       = "watch"
	flagSrc         = "src"
	flagBaseURL     = "base-url"
	flagDest        = "dest"
	flagType        = "type"
	flagWidth       = "width"
	flagHeight      = "height"
)

type runner struct {
	cfg    *config.Config
	logger *logrus.Logger
	output *clio.Output
}

func main() {
	r := &runner{
		logger: logrus.New(),
		output: clio.NewOutput(),
	}
	r.logger.SetOutput(os.Stderr)
	r.logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	app := &cli.App{
		Name:  "shinylive",
		Usage: "export Shiny apps as static sites that run in the browser",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagConfig,
				Usage: "path to a shinylive.{yaml,toml,json} config file",
			},
			&cli.StringFlag{
				Name:  flagEnvFile,
				Value: config.DefaultEnvFile,
				Usage: "dotenv file with SHINYLIVE_* variables",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Before: r.before,
		Commands: []*cli.Command{
			{
				Name:      "export",
				Usage:     "write a static bundle for an app directory",
				ArgsUsage: "<appdir> <destdir>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: flagOverwrite, Usage: "replace runtime files that already exist in destdir"},
					&cli.StringFlag{Name: flagSubdir, Usage: "relative directory of destdir to put the app in"},
					&cli.BoolFlag{Name: flagVerbose, Aliases: []string{"v"}, Usage: "print each file operation"},
					&cli.StringFlag{Name: flagRuntime, Usage: "runtime asset directory to copy instead of the embedded one"},
					&cli.StringFlag{Name: flagTemplates, Usage: "directory holding index.html and editor/index.html"},
					&cli.StringSliceFlag{Name: flagExcludeDirs, Usage: "directory name to skip in appdir (repeatable)"},
					&cli.BoolFlag{Name: flagWatch, Usage: "re-export whenever appdir changes"},
				},
				Action: r.export,
			},
			{
				Name:  "docs",
				Usage: "prepare a documentation site for embedded apps",
				Subcommands: []*cli.Command{
					{
						Name:      "layout",
						Usage:     "write the layout template that loads the runtime",
						ArgsUsage: "<outfile>",
						Flags:     docsFlags(),
						Action:    r.docsLayout,
					},
					{
						Name:      "copy",
						Usage:     "copy the runtime into a built site",
						ArgsUsage: "<outdir>",
						Flags:     docsFlags(),
						Action:    r.docsCopy,
					},
					{
						Name:  "element",
						Usage: "print the HTML block for code read from stdin",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: flagType, Value: string(core.ElementShinyApp), Usage: "shinyapp, shinyeditor, cell or terminal"},
							&cli.StringFlag{Name: flagWidth, Value: core.DefaultElementWidth},
							&cli.StringFlag{Name: flagHeight},
						},
						Action: r.docsElement,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		r.output.PrintError("%v", err)
		os.Exit(1)
	}
}

func docsFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: flagSrc, Usage: "runtime directory to copy into the built site (SHINYLIVE_SRC)"},
		&cli.StringFlag{Name: flagBaseURL, Usage: "URL the site is served from (SHINYLIVE_BASE_URL)"},
		&cli.StringFlag{Name: flagDest, Usage: "runtime location inside the site (SHINYLIVE_DEST)"},
	}
}

func (r *runner) before(c *cli.Context) error {
	if c.Bool(flagDebug) {
		r.logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: c.String(flagConfig),
		EnvFile:    c.String(flagEnvFile),
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	r.cfg = cfg
	return nil
}

func (r *runner) export(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: shinylive export [options] <appdir> <destdir>", 2)
	}
	appDir, destDir := c.Args().Get(0), c.Args().Get(1)

	input := usecase.ExportInput{
		AppDir:      appDir,
		DestDir:     destDir,
		Subdir:      r.cfg.Subdir,
		Overwrite:   r.cfg.Overwrite,
		Verbose:     r.cfg.Verbose,
		ExcludeDirs: r.cfg.ExcludeDirs,
	}
	if c.IsSet(flagSubdir) {
		input.Subdir = c.String(flagSubdir)
	}
	if c.IsSet(flagOverwrite) {
		input.Overwrite = c.Bool(flagOverwrite)
	}
	if c.IsSet(flagVerbose) {
		input.Verbose = c.Bool(flagVerbose)
	}
	if c.IsSet(flagExcludeDirs) {
		input.ExcludeDirs = c.StringSlice(flagExcludeDirs)
	}

	runtimeDir := r.cfg.RuntimeDir
	if c.IsSet(flagRuntime) {
		runtimeDir = c.String(flagRuntime)
	}
	var err error
	if input.Runtime, err = assetSource(runtimeDir, runtime.Assets); err != nil {
		return err
	}
	if input.Templates, err = assetSource(c.String(flagTemplates), runtime.Templates); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := usecase.NewExportService(osfs.NewOSFileSystem(), r.logger)
	r.output.PrintHeader("Shinylive Export")

	if err := r.runExport(ctx, svc, input); err != nil {
		if !c.Bool(flagWatch) {
			return err
		}
		r.output.PrintError("%v", err)
	}
	if !c.Bool(flagWatch) {
		return nil
	}

	r.output.PrintStep("Watching %s for changes (Ctrl+C to stop)", appDir)
	return watch.Run(ctx, watch.Options{
		Dir:         appDir,
		ExcludeDirs: input.ExcludeDirs,
		Ignore:      []string{destDir},
		Logger:      r.logger,
	}, func() {
		fmt.Println()
		if err := r.runExport(ctx, svc, input); err != nil {
			r.output.PrintError("%v", err)
		}
	})
}

func (r *runner) runExport(ctx context.Context, svc *usecase.ExportService, input usecase.ExportInput) error {
	report := clio.NewExportReport(r.output)

	out := svc.DeployStatic(ctx, input)
	if out.Error != nil {
		return out.Error
	}

	report.Render(clio.ExportSummary{
		DestDir:      input.DestDir,
		ManifestPath: out.ManifestPath,
		AppFiles:     len(out.Files),
		Copied:       out.Copied,
		Skipped:      out.Skipped,
		Overwritten:  out.Overwritten,
		BytesCopied:  out.BytesCopied,
	})
	return nil
}

func assetSource(dir string, embedded func() (fs.FS, error)) (fs.FS, error) {
	if dir == "" {
		return embedded()
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", core.ErrInvalidArgument, dir)
	}
	return os.DirFS(dir), nil
}

func (r *runner) docsConfig(c *cli.Context) core.DocsConfig {
	cfg := r.cfg.Docs()
	if c.IsSet(flagSrc) {
		cfg.Source = c.String(flagSrc)
	}
	if c.IsSet(flagBaseURL) {
		cfg.BaseURL = c.String(flagBaseURL)
	}
	if c.IsSet(flagDest) {
		cfg.Dest = c.String(flagDest)
	}
	return cfg
}

func (r *runner) docsLayout(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: shinylive docs layout <outfile>", 2)
	}

	svc := usecase.NewDocsService(osfs.NewOSFileSystem(), r.logger)
	if err := svc.WriteLayout(c.Args().First(), r.docsConfig(c)); err != nil {
		return err
	}

	r.output.PrintSuccess("Wrote %s", c.Args().First())
	return nil
}

func (r *runner) docsCopy(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: shinylive docs copy <outdir>", 2)
	}

	outDir, err := filepath.Abs(c.Args().First())
	if err != nil {
		return err
	}

	cfg := r.docsConfig(c)
	if cfg.Source == "" {
		r.output.PrintWarning("No runtime source configured (set SHINYLIVE_SRC or --src); nothing copied")
		return nil
	}

	svc := usecase.NewDocsService(osfs.NewOSFileSystem(), r.logger)
	out := svc.CopyRuntime(c.Context, outDir, cfg)
	if out.Error != nil {
		return out.Error
	}

	r.output.PrintSuccess("Copied %d files to %s", out.Copied, out.Target)
	return nil
}

func (r *runner) docsElement(c *cli.Context) error {
	elementType, err := core.ParseElementType(c.String(flagType))
	if err != nil {
		return err
	}

	code, err := io.ReadAll(c.App.Reader)
	if err != nil {
		return fmt.Errorf("failed to read code: %w", err)
	}

	html, err := core.RenderElement(core.Element{
		Type:   elementType,
		Code:   string(code),
		Width:  c.String(flagWidth),
		Height: c.String(flagHeight),
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(c.App.Writer, html)
	return err
}

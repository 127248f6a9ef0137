package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/mmrech/py-shiny/internal/adapters/fs"
	"github.com/mmrech/py-shiny/internal/core"
	"github.com/mmrech/py-shiny/internal/runtime"
)

func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}

func testRuntime() fstest.MapFS {
	return fstest.MapFS{
		"serviceworker.js":       &fstest.MapFile{Data: []byte("// sw")},
		"shinylive/shinylive.js": &fstest.MapFile{Data: []byte("export {}")},
	}
}

func testTemplates() fstest.MapFS {
	return fstest.MapFS{
		"index.html":        &fstest.MapFile{Data: []byte(`<script src="{{REL_PATH}}shinylive/shinylive.js"></script>`)},
		"editor/index.html": &fstest.MapFile{Data: []byte(`<script src="../{{REL_PATH}}shinylive/shinylive.js"></script>`)},
	}
}

func writeAppFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create dir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

func newTestService() *ExportService {
	logger, _ := test.NewNullLogger()
	return NewExportService(fs.NewOSFileSystem(), logger)
}

func deploy(t *testing.T, input ExportInput) ExportOutput {
	t.Helper()
	if input.Runtime == nil {
		input.Runtime = testRuntime()
	}
	if input.Templates == nil {
		input.Templates = testTemplates()
	}
	return newTestService().DeployStatic(context.Background(), input)
}

func readManifest(t *testing.T, path string) []core.AppFile {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read manifest: %v", err)
	}
	files, err := core.ParseManifest(data)
	if err != nil {
		t.Fatalf("Failed to parse manifest: %v", err)
	}
	return files
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestDeployStatic_Manifest(t *testing.T) {
	appDir := writeAppFiles(t, map[string]string{
		"app.py":  "X",
		"util.py": "Y",
	})
	destDir := t.TempDir()

	out := deploy(t, ExportInput{AppDir: appDir, DestDir: destDir})
	if out.Error != nil {
		t.Fatalf("DeployStatic() error = %v", out.Error)
	}

	got := readFile(t, filepath.Join(destDir, "app.json"))
	want := `[{"name":"app.py","content":"X"},{"name":"util.py","content":"Y"}]`
	if got != want {
		t.Errorf("app.json = %s, want %s", got, want)
	}
}

func TestDeployStatic_WalkOrder(t *testing.T) {
	appDir := writeAppFiles(t, map[string]string{
		"util.py":                "u",
		"app.py":                 "a",
		"README.md":              "r",
		".hidden":                "h",
		"www/style.css":          "s",
		"www/app.py":             "nested app",
		"www/.DS_Store":          "ds",
		"__pycache__/app.pyc":    "compiled",
		"data/__pycache__/x.pyc": "compiled",
		"data/values.csv":        "1,2",
	})
	destDir := t.TempDir()

	out := deploy(t, ExportInput{AppDir: appDir, DestDir: destDir})
	if out.Error != nil {
		t.Fatalf("DeployStatic() error = %v", out.Error)
	}

	want := []core.AppFile{
		{Name: "app.py", Content: "a"},
		{Name: "README.md", Content: "r"},
		{Name: "util.py", Content: "u"},
		{Name: "data/values.csv", Content: "1,2"},
		{Name: "www/app.py", Content: "nested app"},
		{Name: "www/style.css", Content: "s"},
	}
	if diff := cmp.Diff(want, readManifest(t, filepath.Join(destDir, "app.json"))); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, out.Files); diff != "" {
		t.Errorf("output files mismatch (-want +got):\n%s", diff)
	}
}

func TestDeployStatic_ExcludeDirs(t *testing.T) {
	appDir := writeAppFiles(t, map[string]string{
		"app.py":           "a",
		"node_modules/x":   "x",
		"__pycache__/a.py": "p",
	})
	destDir := t.TempDir()

	out := deploy(t, ExportInput{
		AppDir:      appDir,
		DestDir:     destDir,
		ExcludeDirs: []string{"node_modules"},
	})
	if out.Error != nil {
		t.Fatalf("DeployStatic() error = %v", out.Error)
	}

	want := []core.AppFile{
		{Name: "app.py", Content: "a"},
		{Name: "__pycache__/a.py", Content: "p"},
	}
	if diff := cmp.Diff(want, out.Files); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestDeployStatic_RelPath(t *testing.T) {
	tests := []struct {
		subdir string
		prefix string
	}{
		{subdir: "", prefix: ""},
		{subdir: ".", prefix: ""},
		{subdir: "a", prefix: "../"},
		{subdir: "a/b", prefix: "../../"},
		{subdir: "a/b/c/", prefix: "../../../"},
	}

	for _, tt := range tests {
		t.Run("subdir="+tt.subdir, func(t *testing.T) {
			appDir := writeAppFiles(t, map[string]string{"app.py": "X"})
			destDir := t.TempDir()

			out := deploy(t, ExportInput{AppDir: appDir, DestDir: destDir, Subdir: tt.subdir})
			if out.Error != nil {
				t.Fatalf("DeployStatic() error = %v", out.Error)
			}

			appDest := filepath.Join(destDir, tt.subdir)
			index := readFile(t, filepath.Join(appDest, "index.html"))
			if want := `<script src="` + tt.prefix + `shinylive/shinylive.js"></script>`; index != want {
				t.Errorf("index.html = %q, want %q", index, want)
			}

			editor := readFile(t, filepath.Join(appDest, "editor", "index.html"))
			if want := `<script src="../` + tt.prefix + `shinylive/shinylive.js"></script>`; editor != want {
				t.Errorf("editor/index.html = %q, want %q", editor, want)
			}

			if _, err := os.Stat(filepath.Join(appDest, "app.json")); err != nil {
				t.Errorf("app.json not written under subdir: %v", err)
			}
			if _, err := os.Stat(filepath.Join(destDir, "shinylive", "shinylive.js")); err != nil {
				t.Errorf("runtime not copied to destdir root: %v", err)
			}
		})
	}
}

func TestDeployStatic_AbsoluteSubdir(t *testing.T) {
	appDir := writeAppFiles(t, map[string]string{"app.py": "X"})
	destDir := filepath.Join(t.TempDir(), "site")

	out := deploy(t, ExportInput{AppDir: appDir, DestDir: destDir, Subdir: "/tmp/x"})
	if !errors.Is(out.Error, core.ErrInvalidArgument) {
		t.Fatalf("DeployStatic() error = %v, want %v", out.Error, core.ErrInvalidArgument)
	}

	if _, err := os.Stat(destDir); !os.IsNotExist(err) {
		t.Errorf("destination should not be created, stat err = %v", err)
	}
}

func TestDeployStatic_InvalidUTF8(t *testing.T) {
	appDir := writeAppFiles(t, map[string]string{
		"app.py":        "X",
		"data/blob.bin": string([]byte{0xff, 0xfe, 0x00}),
	})
	destDir := t.TempDir()

	out := deploy(t, ExportInput{AppDir: appDir, DestDir: destDir})

	var encErr *core.EncodingError
	if !errors.As(out.Error, &encErr) {
		t.Fatalf("DeployStatic() error = %v, want *core.EncodingError", out.Error)
	}
	if encErr.Name != "data/blob.bin" {
		t.Errorf("EncodingError.Name = %q, want data/blob.bin", encErr.Name)
	}
	if !errors.Is(out.Error, core.ErrEncoding) {
		t.Errorf("error should match core.ErrEncoding")
	}

	if _, err := os.Stat(filepath.Join(destDir, "app.json")); !os.IsNotExist(err) {
		t.Errorf("app.json should not be written, stat err = %v", err)
	}
}

func TestDeployStatic_MissingAppDir(t *testing.T) {
	out := deploy(t, ExportInput{
		AppDir:  filepath.Join(t.TempDir(), "missing"),
		DestDir: t.TempDir(),
	})
	if !errors.Is(out.Error, os.ErrNotExist) {
		t.Errorf("DeployStatic() error = %v, want not-exist", out.Error)
	}
}

func TestDeployStatic_NoOverwriteKeepsExisting(t *testing.T) {
	appDir := writeAppFiles(t, map[string]string{"app.py": "X"})
	destDir := t.TempDir()

	if out := deploy(t, ExportInput{AppDir: appDir, DestDir: destDir}); out.Error != nil {
		t.Fatalf("first DeployStatic() error = %v", out.Error)
	}

	modified := filepath.Join(destDir, "shinylive", "shinylive.js")
	if err := os.WriteFile(modified, []byte("patched"), 0644); err != nil {
		t.Fatalf("Failed to modify runtime file: %v", err)
	}

	out := deploy(t, ExportInput{AppDir: appDir, DestDir: destDir})
	if out.Error != nil {
		t.Fatalf("second DeployStatic() error = %v", out.Error)
	}

	if got := readFile(t, modified); got != "patched" {
		t.Errorf("runtime file = %q, want it left as patched", got)
	}
	if out.Skipped != 2 || out.Copied != 0 {
		t.Errorf("copied = %d, skipped = %d, want 0 and 2", out.Copied, out.Skipped)
	}
}

func TestDeployStatic_OverwriteReplacesExisting(t *testing.T) {
	appDir := writeAppFiles(t, map[string]string{"app.py": "X"})
	destDir := t.TempDir()

	modified := filepath.Join(destDir, "shinylive", "shinylive.js")
	if err := os.MkdirAll(filepath.Dir(modified), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(modified, []byte("patched"), 0644); err != nil {
		t.Fatal(err)
	}

	out := deploy(t, ExportInput{AppDir: appDir, DestDir: destDir, Overwrite: true})
	if out.Error != nil {
		t.Fatalf("DeployStatic() error = %v", out.Error)
	}

	if got := readFile(t, modified); got != "export {}" {
		t.Errorf("runtime file = %q, want it replaced", got)
	}
	if out.Overwritten != 1 {
		t.Errorf("overwritten = %d, want 1", out.Overwritten)
	}
}

func snapshotTree(t *testing.T, root string) map[string]string {
	t.Helper()
	tree := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		tree[filepath.ToSlash(rel)] = readFile(t, path)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to walk %s: %v", root, err)
	}
	return tree
}

func TestDeployStatic_OverwriteIsIdempotent(t *testing.T) {
	appDir := writeAppFiles(t, map[string]string{"app.py": "X", "lib/util.py": "Y"})
	once := t.TempDir()
	twice := t.TempDir()

	for _, dest := range []string{once, twice, twice} {
		out := deploy(t, ExportInput{AppDir: appDir, DestDir: dest, Subdir: "apps/demo", Overwrite: true})
		if out.Error != nil {
			t.Fatalf("DeployStatic() error = %v", out.Error)
		}
	}

	if diff := cmp.Diff(snapshotTree(t, once), snapshotTree(t, twice)); diff != "" {
		t.Errorf("second run changed the bundle (-once +twice):\n%s", diff)
	}
}

func TestDeployStatic_Cancelled(t *testing.T) {
	appDir := writeAppFiles(t, map[string]string{"app.py": "X"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := newTestService().DeployStatic(ctx, ExportInput{
		AppDir:    appDir,
		DestDir:   t.TempDir(),
		Runtime:   testRuntime(),
		Templates: testTemplates(),
	})
	if !errors.Is(out.Error, context.Canceled) {
		t.Errorf("DeployStatic() error = %v, want context.Canceled", out.Error)
	}
}

func TestDeployStatic_VerboseLogging(t *testing.T) {
	appDir := writeAppFiles(t, map[string]string{"app.py": "X"})
	destDir := t.TempDir()

	logger, hook := test.NewNullLogger()
	svc := NewExportService(fs.NewOSFileSystem(), logger)

	in := ExportInput{
		AppDir:    appDir,
		DestDir:   destDir,
		Verbose:   true,
		Runtime:   testRuntime(),
		Templates: testTemplates(),
	}
	if out := svc.DeployStatic(context.Background(), in); out.Error != nil {
		t.Fatalf("DeployStatic() error = %v", out.Error)
	}
	if out := svc.DeployStatic(context.Background(), in); out.Error != nil {
		t.Fatalf("DeployStatic() error = %v", out.Error)
	}

	var messages []string
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.InfoLevel {
			messages = append(messages, entry.Message)
		}
	}
	joined := strings.Join(messages, "\n")

	for _, want := range []string{"Copying runtime assets to", "Skipping", "Writing to"} {
		if !strings.Contains(joined, want) {
			t.Errorf("verbose log missing %q:\n%s", want, joined)
		}
	}
}

func TestDeployStatic_EmbeddedRuntime(t *testing.T) {
	assets, err := runtime.Assets()
	if err != nil {
		t.Fatalf("runtime.Assets() error = %v", err)
	}
	templates, err := runtime.Templates()
	if err != nil {
		t.Fatalf("runtime.Templates() error = %v", err)
	}

	appDir := writeAppFiles(t, map[string]string{"app.py": "from shiny import App"})
	destDir := t.TempDir()

	out := deploy(t, ExportInput{
		AppDir:    appDir,
		DestDir:   destDir,
		Subdir:    "apps/demo",
		Runtime:   assets,
		Templates: templates,
	})
	if out.Error != nil {
		t.Fatalf("DeployStatic() error = %v", out.Error)
	}

	index := readFile(t, filepath.Join(destDir, "apps", "demo", "index.html"))
	if strings.Contains(index, core.RelPathToken) {
		t.Errorf("index.html still contains %s", core.RelPathToken)
	}
	snaps.MatchSnapshot(t, index)

	if _, err := os.Stat(filepath.Join(destDir, "serviceworker.js")); err != nil {
		t.Errorf("serviceworker.js not copied: %v", err)
	}
}

package runtime

import (
	"embed"
	"io/fs"
)

// dist is the prebuilt browser runtime. Release builds replace its contents
// with the packaged runtime before compiling.
//
//go:embed all:dist
var distFS embed.FS

//go:embed all:html
var htmlFS embed.FS

const (
	IndexTemplate  = "index.html"
	EditorTemplate = "editor/index.html"
)

func Assets() (fs.FS, error) {
	return fs.Sub(distFS, "dist")
}

func Templates() (fs.FS, error) {
	return fs.Sub(htmlFS, "html")
}

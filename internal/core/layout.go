package core

import (
	"bytes"
	"path"
	"strings"
	"text/template"
)

const (
	DefaultDocsBaseURL = "/"
	DefaultDocsDest    = "shinylive"
	ServiceWorkerFile  = "serviceworker.js"
)

// DocsConfig locates the runtime inside a built documentation site.
type DocsConfig struct {
	// Source is the runtime directory on disk; empty disables the copy.
	Source  string
	BaseURL string
	// Dest is relative to the site output directory.
	Dest string
}

func (c DocsConfig) withDefaults() DocsConfig {
	if c.BaseURL == "" {
		c.BaseURL = DefaultDocsBaseURL
	}
	if c.Dest == "" {
		c.Dest = DefaultDocsDest
	}
	return c
}

type layoutData struct {
	ServiceWorkerPath string
	StylesheetHref    string
	ScriptSrc         string
}

var LayoutTemplate = template.Must(template.New("layout").Parse(`
<!-- Do not manually edit this file. It is automatically generated by shinylive docs layout -->
{% extends "!layout.html" %}
{% block extrahead %}
  <script type="module">
    const serviceWorkerPath = "{{.ServiceWorkerPath}}";
    // Start the service worker as soon as possible, to maximize the
    // resources it will be able to cache on the first run.
    if ("serviceWorker" in navigator) {
      navigator.serviceWorker
        .register(serviceWorkerPath)
        .then(() => console.log("Service Worker registered"))
        .catch(() => console.log("Service Worker registration failed"));
      navigator.serviceWorker.ready.then(() => {
        if (!navigator.serviceWorker.controller) {
          // For Shift+Reload case; navigator.serviceWorker.controller will
          // never appear until a regular (not Shift+Reload) page load.
          window.location.reload();
        }
      });
    }
  </script>
  <link rel="stylesheet" href="{{.StylesheetHref}}" type="text/css">
  <script src="{{.ScriptSrc}}" type="module"></script>
{% endblock %}
`))

func RenderLayout(cfg DocsConfig) (string, error) {
	cfg = cfg.withDefaults()

	destParent := path.Dir(cfg.Dest)
	if destParent == "." {
		destParent = ""
	}

	var buf bytes.Buffer
	err := LayoutTemplate.Execute(&buf, layoutData{
		ServiceWorkerPath: JoinURL(cfg.BaseURL, destParent, ServiceWorkerFile),
		StylesheetHref:    JoinURL(cfg.BaseURL, cfg.Dest, "Components/App.css"),
		ScriptSrc:         JoinURL(cfg.BaseURL, cfg.Dest, "run-python-blocks.js"),
	})
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

// JoinURL joins parts with "/" without collapsing a scheme's "//".
// A part starting with "/" discards everything before it.
func JoinURL(parts ...string) string {
	var b strings.Builder
	for _, part := range parts {
		if strings.HasPrefix(part, "/") {
			b.Reset()
		} else if b.Len() > 0 && !strings.HasSuffix(b.String(), "/") {
			b.WriteString("/")
		}
		b.WriteString(part)
	}
	return b.String()
}

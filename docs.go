package shiny

import (
	"github.com/mmrech/py-shiny/internal/core"
)

type (
	DocsConfig  = core.DocsConfig
	Element     = core.Element
	ElementType = core.ElementType
)

const (
	ElementShinyApp    = core.ElementShinyApp
	ElementShinyEditor = core.ElementShinyEditor
	ElementCell        = core.ElementCell
	ElementTerminal    = core.ElementTerminal
)

// RenderElement returns the <pre> block the browser runtime turns into a
// live app, editor, cell or terminal.
func RenderElement(el Element) (string, error) {
	return core.RenderElement(el)
}

// RenderLayout returns a Sphinx layout template that loads the runtime
// from cfg.BaseURL.
func RenderLayout(cfg DocsConfig) (string, error) {
	return core.RenderLayout(cfg)
}

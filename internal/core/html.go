package core

import (
	"fmt"
	"html"
	"strings"
)

type ElementType string

const (
	ElementShinyApp    ElementType = "shinyapp"
	ElementShinyEditor ElementType = "shinyeditor"
	ElementCell        ElementType = "cell"
	ElementTerminal    ElementType = "terminal"
)

const (
	DefaultElementWidth = "100%"
	editorLayoutHeader  = "#| layout: vertical\n"
)

var ElementTypes = []ElementType{ElementShinyApp, ElementShinyEditor, ElementCell, ElementTerminal}

func ParseElementType(s string) (ElementType, error) {
	for _, t := range ElementTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown element type %q", ErrInvalidArgument, s)
}

// Element is an in-browser code block embedded in a documentation page.
type Element struct {
	Type   ElementType
	Code   string
	Width  string
	Height string
}

// InlineStyle renders "height:H;width:W;", leaving out empty values.
func InlineStyle(height, width string) string {
	var b strings.Builder
	if height != "" {
		b.WriteString("height:" + height + ";")
	}
	if width != "" {
		b.WriteString("width:" + width + ";")
	}
	return b.String()
}

func RenderElement(el Element) (string, error) {
	if _, err := ParseElementType(string(el.Type)); err != nil {
		return "", err
	}

	width := el.Width
	if width == "" {
		width = DefaultElementWidth
	}

	class := "py" + string(el.Type)
	code := el.Code
	if el.Type == ElementShinyEditor {
		// the editor is driven by the pyshiny class
		code = editorLayoutHeader + code
		class = "pyshiny"
	}

	return fmt.Sprintf(`<pre class="%s" style="%s"><code>%s</code></pre>`,
		class, html.EscapeString(InlineStyle(el.Height, width)), html.EscapeString(code)), nil
}

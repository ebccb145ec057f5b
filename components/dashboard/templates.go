package dashboard

import (
	"embed"
	"io"
	"io/fs"

	template "github.com/goliatone/go-template"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// Renderer is the template engine contract the controller renders through.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// Templates exposes the embedded page templates so hosts can layer overrides on top.
func Templates() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// NewTemplateRenderer creates a go-template renderer over the embedded page,
// or over dir when one is given.
func NewTemplateRenderer(dir ...fs.FS) (Renderer, error) {
	source := fs.FS(embeddedTemplates)
	base := "templates"
	if len(dir) > 0 && dir[0] != nil {
		source, base = dir[0], "."
	}
	return template.NewRenderer(
		template.WithFS(source),
		template.WithBaseDir(base),
		template.WithExtension(".html"),
	)
}

// ABOUTME: Template loading for the participant portal pages.
// ABOUTME: Clones the portal layout once per page, like the admin console.

package portal

import (
	"embed"
	"html/template"
	"io"

	"github.com/pyconkr/console/internal/i18n"
	"github.com/pyconkr/console/internal/markdown"
	"github.com/pyconkr/console/internal/schema"
)

//go:embed templates/*
var templateFS embed.FS

var pageTmpls map[string]*template.Template

var funcs = template.FuncMap{
	"markdown": markdown.MustRender,
	"imageURL": schema.ImageURL,
	"isImage":  schema.IsImageURL,
	"t":        i18n.T,
}

func init() {
	layout := template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html"))

	pageTmpls = make(map[string]*template.Template)
	for name, path := range map[string]string{
		"overview":     "templates/overview.html",
		"presentation": "templates/presentation.html",
		"audit":        "templates/audit.html",
		"message":      "templates/message.html",
	} {
		tmpl := template.Must(layout.Clone())
		pageTmpls[name] = template.Must(tmpl.ParseFS(templateFS, path))
	}
}

func renderPage(w io.Writer, page string, data any) error {
	tmpl, ok := pageTmpls[page]
	if !ok {
		return nil
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

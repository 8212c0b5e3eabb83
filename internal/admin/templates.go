// ABOUTME: Template loading and rendering for the admin console.
// ABOUTME: Embeds HTML templates and clones the layout once per page.

package admin

import (
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/pyconkr/console/internal/markdown"
	"github.com/pyconkr/console/internal/schema"
)

//go:embed templates/*
var templateFS embed.FS

var pageTmpls map[string]*template.Template

var funcs = template.FuncMap{
	"markdown": markdown.MustRender,
	"upper":    strings.ToUpper,
	"cell":     schema.Stringify,
	"isImage":  schema.IsImageURL,
	"safeURL":  schema.ImageURL,
}

func pageDefinitions() map[string]string {
	return map[string]string{
		"dashboard": "templates/dashboard.html",
		"list":      "templates/list.html",
		"editor":    "templates/editor.html",
		"logs":      "templates/logs.html",
	}
}

func init() {
	layout := template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html"))

	pageTmpls = make(map[string]*template.Template)
	for name, path := range pageDefinitions() {
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

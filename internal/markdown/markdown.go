// ABOUTME: Markdown to HTML rendering for markdown fields and session descriptions.
// ABOUTME: Wraps a shared goldmark instance configured with GitHub-flavored extensions.

package markdown

import (
	"bytes"
	"html/template"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	instance goldmark.Markdown
	once     sync.Once
)

func converter() goldmark.Markdown {
	once.Do(func() {
		instance = goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.DefinitionList,
			),
			// html.WithUnsafe is never set: raw HTML in content is omitted
			goldmark.WithRendererOptions(html.WithHardWraps()),
		)
	})
	return instance
}

// Render converts source to sanitized HTML.
func Render(source string) (template.HTML, error) {
	if strings.TrimSpace(source) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := converter().Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// MustRender is Render for template funcs; conversion errors yield the escaped source.
func MustRender(source string) template.HTML {
	out, err := Render(source)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return out
}

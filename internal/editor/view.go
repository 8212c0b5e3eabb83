// ABOUTME: Pure projection of an editor snapshot into renderable view data.
// ABOUTME: Title, read-only table, form controls, buttons and the loading indicator.

package editor

import (
	"strings"

	"github.com/pyconkr/console/internal/i18n"
	"github.com/pyconkr/console/internal/schema"
)

// ButtonKind identifies what a button does.
type ButtonKind string

const (
	ButtonSubmit    ButtonKind = "submit"
	ButtonDelete    ButtonKind = "delete"
	ButtonCreateNew ButtonKind = "create_new"
	ButtonExtra     ButtonKind = "extra"
)

// Button is one action in the editor toolbar.
type Button struct {
	Kind     ButtonKind
	Label    string
	Path     string
	Disabled bool
}

// Row is one line of the read-only table. File fields carry the data in
// Image and Link instead of Value.
type Row struct {
	Name      string
	Value     string
	Image     string
	Link      string
	LinkLabel string
}

// View is everything a renderer needs to draw the editor.
type View struct {
	Title       string
	Spinner     bool
	Failed      bool
	ShowForm    bool
	Disabled    bool
	FieldHeader string
	ValueHeader string
	ReadOnly    []Row
	Controls    []schema.Control
	Errors      map[string]string
	Buttons     []Button
}

// Title formats the editor heading.
func Title(d Descriptor, lang i18n.Language) string {
	tail := i18n.T(lang, i18n.MsgCreateNew)
	if !d.CreateMode() {
		tail = i18n.T(lang, i18n.MsgEditPrefix) + d.ID
	}
	return strings.ToUpper(d.App) + " > " + strings.ToUpper(d.Resource) + " > " + tail
}

// Project builds the view for s. It has no side effects.
func Project(s Snapshot, lang i18n.Language) View {
	v := View{
		Title:       Title(s.Descriptor, lang),
		FieldHeader: i18n.T(lang, i18n.MsgField),
		ValueHeader: i18n.T(lang, i18n.MsgValue),
		Disabled:    s.Disabled(),
	}

	switch s.State {
	case Loading:
		v.Spinner = true
		return v
	case LoadFailed:
		v.Failed = true
		return v
	case Navigated, Stopped:
		return v
	}

	v.ShowForm = true
	if !s.Descriptor.CreateMode() {
		v.ReadOnly = readOnlyRows(s, lang)
	}
	for _, f := range s.Fields {
		v.Controls = append(v.Controls, f.Render(s.Draft[f.Name()]))
	}
	if len(s.Errors) > 0 {
		v.Errors = s.Errors.ByField()
	}
	v.Buttons = buttons(s, lang)
	return v
}

func readOnlyRows(s Snapshot, lang i18n.Language) []Row {
	rows := make([]Row, 0, len(s.ReadOnly.Properties))
	for _, p := range s.ReadOnly.Properties {
		value := schema.Stringify(s.Draft[p.Name])
		row := Row{Name: p.Name}
		if s.Hints.IsFile(p.Name) {
			row.Image = value
			row.Link = value
			row.LinkLabel = i18n.T(lang, i18n.MsgLink)
		} else {
			row.Value = value
		}
		rows = append(rows, row)
	}
	return rows
}

func buttons(s Snapshot, lang i18n.Language) []Button {
	d := s.Descriptor
	disabled := s.Disabled()

	if d.CreateMode() {
		return []Button{{Kind: ButtonSubmit, Label: i18n.T(lang, i18n.MsgCreateNew), Disabled: disabled}}
	}

	var bs []Button
	for _, a := range s.Options.ExtraActions {
		bs = append(bs, Button{Kind: ButtonExtra, Label: a.Label, Path: a.Path})
	}
	bs = append(bs, Button{Kind: ButtonCreateNew, Label: i18n.T(lang, i18n.MsgCreateNew), Path: d.CreatePath(), Disabled: disabled})
	if !s.Options.NotDeletable {
		bs = append(bs, Button{Kind: ButtonDelete, Label: i18n.T(lang, i18n.MsgDelete), Disabled: disabled})
	}
	if !s.Options.NotModifiable {
		bs = append(bs, Button{Kind: ButtonSubmit, Label: i18n.T(lang, i18n.MsgModify), Disabled: disabled})
	}
	return bs
}

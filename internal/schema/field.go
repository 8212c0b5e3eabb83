// ABOUTME: Schema-to-field compiler producing typed field editors.
// ABOUTME: Each field renders a control, validates a value and serializes form input.

package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind identifies the editor variant compiled for a field.
type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindMarkdown Kind = "markdown"
	KindFile     Kind = "file"
	KindEnum     Kind = "enum"
	KindCheckbox Kind = "checkbox"
	KindNumber   Kind = "number"
	KindList     Kind = "list"
	KindJSON     Kind = "json"
	KindHidden   Kind = "hidden"
)

// Option is one choice of an enum control.
type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// Control is the render projection of a field for a given value.
type Control struct {
	Name      string   `json:"name"`
	Label     string   `json:"label"`
	Help      string   `json:"help,omitempty"`
	Kind      Kind     `json:"kind"`
	InputType string   `json:"input_type,omitempty"`
	Value     string   `json:"value"`
	Checked   bool     `json:"checked,omitempty"`
	Options   []Option `json:"options,omitempty"`
	Items     []string `json:"items,omitempty"`
	Required  bool     `json:"required"`
}

// Upload is a file chosen in a file control.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Input is the raw form input submitted for one field.
type Input struct {
	Values []string
	File   *Upload
}

// Field is a compiled field editor.
type Field interface {
	Name() string
	Kind() Kind
	Render(value any) Control
	Validate(value any) error
	Serialize(in Input) (any, error)
}

// Compile turns every property of s into a field editor, in declared order.
func Compile(s ResourceSchema, hints LayoutHints) []Field {
	fields := make([]Field, 0, len(s.Properties))
	for _, p := range s.Properties {
		fields = append(fields, CompileProperty(p, hints.For(p.Name), s.IsRequired(p.Name)))
	}
	return fields
}

// CompileProperty builds the field editor for a single property.
func CompileProperty(p Property, hint Hint, required bool) Field {
	base := descriptor{
		name:     p.Name,
		label:    p.Label(),
		help:     hint.Help,
		required: required,
		prop:     p,
	}
	if hint.Title != "" {
		base.label = hint.Title
	}
	if base.help == "" {
		base.help = p.Description
	}

	switch {
	case hint.Field == "file":
		return &fileField{descriptor: base}
	case hint.Widget == "hidden":
		return &textField{descriptor: base, kind: KindHidden, inputType: "hidden"}
	case len(p.Enum) > 0:
		return &enumField{descriptor: base}
	case p.Type == "boolean":
		return &checkboxField{descriptor: base}
	case p.Type == "integer" || p.Type == "number":
		return &numberField{descriptor: base, integer: p.Type == "integer"}
	case p.Type == "object":
		return &jsonField{descriptor: base}
	case p.Type == "array":
		item := Property{Type: "string"}
		if p.Items != nil {
			item = *p.Items
		}
		item.Name = p.Name
		if item.Type == "array" {
			return &listField{descriptor: base, item: &jsonField{descriptor: descriptor{name: p.Name, label: base.label, prop: item}}}
		}
		return &listField{descriptor: base, item: CompileProperty(item, Hint{}, false)}
	case hint.Widget == "markdown":
		return &textField{descriptor: base, kind: KindMarkdown}
	case hint.Widget == "textarea":
		return &textField{descriptor: base, kind: KindTextarea}
	default:
		return &textField{descriptor: base, kind: KindText, inputType: inputTypeFor(p.Format, hint.Widget)}
	}
}

func inputTypeFor(format, widget string) string {
	if widget == "password" {
		return "password"
	}
	switch format {
	case "email":
		return "email"
	case "uri", "url":
		return "url"
	case "date":
		return "date"
	case "date-time":
		return "datetime-local"
	}
	return "text"
}

type descriptor struct {
	name     string
	label    string
	help     string
	required bool
	prop     Property
}

func (d descriptor) Name() string { return d.name }

func (d descriptor) control(kind Kind, value any) Control {
	return Control{
		Name:     d.name,
		Label:    d.label,
		Help:     d.help,
		Kind:     kind,
		Value:    Stringify(value),
		Required: d.required,
	}
}

func (d descriptor) checkRequired(value any) error {
	if d.required && isEmpty(value) {
		return fmt.Errorf("%s is required", d.label)
	}
	return nil
}

func (d descriptor) emptyValue() any {
	if d.prop.Nullable {
		return nil
	}
	return ""
}

type textField struct {
	descriptor
	kind      Kind
	inputType string
}

func (f *textField) Kind() Kind { return f.kind }

func (f *textField) Render(value any) Control {
	c := f.control(f.kind, value)
	c.InputType = f.inputType
	return c
}

func (f *textField) Validate(value any) error {
	if err := f.checkRequired(value); err != nil {
		return err
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return nil
	}
	n := utf8.RuneCountInString(s)
	if f.prop.MinLength != nil && n < *f.prop.MinLength {
		return fmt.Errorf("%s must be at least %d characters", f.label, *f.prop.MinLength)
	}
	if f.prop.MaxLength != nil && n > *f.prop.MaxLength {
		return fmt.Errorf("%s must be at most %d characters", f.label, *f.prop.MaxLength)
	}
	return nil
}

func (f *textField) Serialize(in Input) (any, error) {
	v := first(in.Values)
	if f.kind == KindTextarea || f.kind == KindMarkdown {
		v = strings.ReplaceAll(v, "\r\n", "\n")
	}
	if v == "" {
		return f.emptyValue(), nil
	}
	return v, nil
}

type fileField struct {
	descriptor
}

func (f *fileField) Kind() Kind { return KindFile }

func (f *fileField) Render(value any) Control {
	c := f.control(KindFile, value)
	c.InputType = "file"
	return c
}

func (f *fileField) Validate(value any) error {
	return f.checkRequired(value)
}

// Serialize converts a fresh upload into a data URI, or keeps the previous
// value carried in the form when no file was chosen.
func (f *fileField) Serialize(in Input) (any, error) {
	if in.File != nil && len(in.File.Data) > 0 {
		return EncodeDataURI(in.File.ContentType, in.File.Data), nil
	}
	if v := first(in.Values); v != "" {
		return v, nil
	}
	return f.emptyValue(), nil
}

type enumField struct {
	descriptor
}

func (f *enumField) Kind() Kind { return KindEnum }

func (f *enumField) Render(value any) Control {
	c := f.control(KindEnum, value)
	current := Stringify(value)
	for _, e := range f.prop.Enum {
		s := Stringify(e)
		c.Options = append(c.Options, Option{Value: s, Label: s, Selected: value != nil && s == current})
	}
	return c
}

func (f *enumField) Validate(value any) error {
	if err := f.checkRequired(value); err != nil {
		return err
	}
	if isEmpty(value) {
		return nil
	}
	s := Stringify(value)
	for _, e := range f.prop.Enum {
		if Stringify(e) == s {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of the listed options", f.label)
}

func (f *enumField) Serialize(in Input) (any, error) {
	v := first(in.Values)
	if v == "" {
		return nil, nil
	}
	for _, e := range f.prop.Enum {
		if Stringify(e) == v {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%s: %q is not an allowed option", f.label, v)
}

type checkboxField struct {
	descriptor
}

func (f *checkboxField) Kind() Kind { return KindCheckbox }

func (f *checkboxField) Render(value any) Control {
	c := f.control(KindCheckbox, value)
	c.InputType = "checkbox"
	c.Checked = value == true
	return c
}

func (f *checkboxField) Validate(value any) error {
	if value == nil {
		return nil
	}
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("%s must be true or false", f.label)
	}
	return nil
}

func (f *checkboxField) Serialize(in Input) (any, error) {
	for _, v := range in.Values {
		switch strings.ToLower(v) {
		case "on", "true", "1", "yes":
			return true, nil
		}
	}
	return false, nil
}

type numberField struct {
	descriptor
	integer bool
}

func (f *numberField) Kind() Kind { return KindNumber }

func (f *numberField) Render(value any) Control {
	c := f.control(KindNumber, value)
	c.InputType = "number"
	return c
}

func (f *numberField) Validate(value any) error {
	if err := f.checkRequired(value); err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	n, ok := toFloat(value)
	if !ok {
		return fmt.Errorf("%s must be a number", f.label)
	}
	if f.integer && n != float64(int64(n)) {
		return fmt.Errorf("%s must be a whole number", f.label)
	}
	if f.prop.Minimum != nil && n < *f.prop.Minimum {
		return fmt.Errorf("%s must be at least %s", f.label, Stringify(*f.prop.Minimum))
	}
	if f.prop.Maximum != nil && n > *f.prop.Maximum {
		return fmt.Errorf("%s must be at most %s", f.label, Stringify(*f.prop.Maximum))
	}
	return nil
}

func (f *numberField) Serialize(in Input) (any, error) {
	v := strings.TrimSpace(first(in.Values))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a number", f.label, v)
	}
	if f.integer && n != float64(int64(n)) {
		return nil, fmt.Errorf("%s: %q is not a whole number", f.label, v)
	}
	return n, nil
}

// jsonField edits an object, or a list entry that is itself structured, as
// JSON text.
type jsonField struct {
	descriptor
}

func (f *jsonField) Kind() Kind { return KindJSON }

func (f *jsonField) Render(value any) Control {
	c := f.control(KindJSON, nil)
	if value != nil {
		if b, err := json.MarshalIndent(value, "", "  "); err == nil {
			c.Value = string(b)
		}
	}
	return c
}

func (f *jsonField) Validate(value any) error {
	if err := f.checkRequired(value); err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	switch f.prop.Type {
	case "object":
		if _, ok := value.(map[string]any); !ok {
			return fmt.Errorf("%s must be a JSON object", f.label)
		}
	case "array":
		if _, ok := value.([]any); !ok {
			return fmt.Errorf("%s must be a JSON array", f.label)
		}
	}
	return nil
}

func (f *jsonField) Serialize(in Input) (any, error) {
	v := strings.TrimSpace(first(in.Values))
	if v == "" {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		return nil, fmt.Errorf("%s: invalid JSON: %w", f.label, err)
	}
	if err := f.Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

type listField struct {
	descriptor
	item Field
}

func (f *listField) Kind() Kind { return KindList }

func (f *listField) Render(value any) Control {
	c := f.control(KindList, nil)
	if items, ok := value.([]any); ok {
		for _, item := range items {
			c.Items = append(c.Items, Stringify(item))
		}
	}
	c.Value = strings.Join(c.Items, "\n")
	return c
}

func (f *listField) Validate(value any) error {
	items, _ := value.([]any)
	if f.required && len(items) == 0 {
		return fmt.Errorf("%s is required", f.label)
	}
	for i, item := range items {
		if err := f.item.Validate(item); err != nil {
			return fmt.Errorf("%s[%d]: %w", f.label, i, err)
		}
	}
	return nil
}

// Serialize accepts either one value per entry or a single newline-separated
// value and runs each entry through the item editor.
func (f *listField) Serialize(in Input) (any, error) {
	var raw []string
	for _, v := range in.Values {
		for _, line := range strings.Split(strings.ReplaceAll(v, "\r\n", "\n"), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				raw = append(raw, line)
			}
		}
	}

	items := make([]any, 0, len(raw))
	for _, line := range raw {
		v, err := f.item.Serialize(Input{Values: []string{line}})
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

// Stringify formats a JSON value for display in a control.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	}
	return false
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

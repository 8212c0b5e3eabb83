// ABOUTME: UI layout hints steering how schema fields are rendered.
// ABOUTME: Decodes backend ui_schema documents and merges local overrides.

package schema

import (
	"encoding/json"
	"strings"
)

// Hint is the rendering directive for a single field.
type Hint struct {
	Field   string         `json:"ui:field,omitempty"`
	Widget  string         `json:"ui:widget,omitempty"`
	Title   string         `json:"ui:title,omitempty"`
	Help    string         `json:"ui:help,omitempty"`
	Options map[string]any `json:"ui:options,omitempty"`
}

// LayoutHints maps field names to hints. Top-level "ui:" directives are kept
// separately.
type LayoutHints struct {
	Fields      map[string]Hint
	ListColumns []string
}

// UnmarshalJSON decodes a ui_schema object.
func (h *LayoutHints) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := LayoutHints{Fields: map[string]Hint{}}
	for key, value := range raw {
		if strings.HasPrefix(key, "ui:") {
			if key == "ui:list_columns" {
				if err := json.Unmarshal(value, &out.ListColumns); err != nil {
					return err
				}
			}
			continue
		}

		var hint Hint
		if err := json.Unmarshal(value, &hint); err != nil {
			// non-object entries are renderer directives we do not model
			continue
		}
		out.Fields[key] = hint
	}

	*h = out
	return nil
}

// MarshalJSON encodes hints back into ui_schema form.
func (h LayoutHints) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(h.Fields)+1)
	for name, hint := range h.Fields {
		out[name] = hint
	}
	if len(h.ListColumns) > 0 {
		out["ui:list_columns"] = h.ListColumns
	}
	return json.Marshal(out)
}

// For returns the hint for a field; the zero Hint means default rendering.
func (h LayoutHints) For(name string) Hint {
	if h.Fields == nil {
		return Hint{}
	}
	return h.Fields[name]
}

// IsFile reports whether the field is rendered as a binary upload.
func (h LayoutHints) IsFile(name string) bool {
	return h.For(name).Field == "file"
}

// Merge returns a copy of h with override's non-empty directives applied on top.
func (h LayoutHints) Merge(override LayoutHints) LayoutHints {
	out := LayoutHints{
		Fields:      make(map[string]Hint, len(h.Fields)+len(override.Fields)),
		ListColumns: h.ListColumns,
	}
	for name, hint := range h.Fields {
		out.Fields[name] = hint
	}
	for name, o := range override.Fields {
		base := out.Fields[name]
		if o.Field != "" {
			base.Field = o.Field
		}
		if o.Widget != "" {
			base.Widget = o.Widget
		}
		if o.Title != "" {
			base.Title = o.Title
		}
		if o.Help != "" {
			base.Help = o.Help
		}
		if len(o.Options) > 0 {
			base.Options = o.Options
		}
		out.Fields[name] = base
	}
	if len(override.ListColumns) > 0 {
		out.ListColumns = override.ListColumns
	}
	return out
}

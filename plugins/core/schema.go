// ABOUTME: Resource declarations served by the generic admin API.
// ABOUTME: Each resource carries its JSON Schema and UI hints as raw documents.

package core

import (
	"encoding/json"
	"fmt"

	"github.com/pyconkr/console/internal/schema"
)

// Resource declares one admin resource.
type Resource struct {
	Slug     string          // "page", "sitemap" (URL path)
	Name     string          // "Pages"
	Schema   json.RawMessage // draft-04 object schema
	UISchema json.RawMessage // ui_schema document, may be empty
}

// Document is the body served from the json-schema route.
func (r Resource) Document() ([]byte, error) {
	ui := r.UISchema
	if len(ui) == 0 {
		ui = json.RawMessage(`{}`)
	}
	return json.Marshal(struct {
		Schema   json.RawMessage `json:"schema"`
		UISchema json.RawMessage `json:"ui_schema"`
	}{r.Schema, ui})
}

// Decode parses the declared documents.
func (r Resource) Decode() (schema.ResourceSchema, schema.LayoutHints, error) {
	var s schema.ResourceSchema
	if err := json.Unmarshal(r.Schema, &s); err != nil {
		return schema.ResourceSchema{}, schema.LayoutHints{}, fmt.Errorf("resource %s: invalid schema: %w", r.Slug, err)
	}
	var h schema.LayoutHints
	if len(r.UISchema) > 0 {
		if err := json.Unmarshal(r.UISchema, &h); err != nil {
			return schema.ResourceSchema{}, schema.LayoutHints{}, fmt.Errorf("resource %s: invalid ui schema: %w", r.Slug, err)
		}
	}
	return s, h, nil
}

// Timestamps are the server-managed fields every resource declares.
const Timestamps = `"created_at": {"type": "string", "title": "생성 시각", "readOnly": true},
		"updated_at": {"type": "string", "title": "수정 시각", "readOnly": true}`

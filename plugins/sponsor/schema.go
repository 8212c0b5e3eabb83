// ABOUTME: JSON Schema and UI hint documents for sponsor resources.
// ABOUTME: Sponsor logos are file fields stored as data URIs.

package sponsor

import (
	"encoding/json"

	"github.com/pyconkr/console/plugins/core"
)

var resources = []core.Resource{
	{
		Slug: "tier",
		Name: "Tiers",
		Schema: json.RawMessage(`{
	"type": "object",
	"title": "Sponsor tier",
	"required": ["name"],
	"properties": {
		"id": {"type": "string", "title": "ID", "readOnly": true},
		"name": {"type": "string", "title": "이름", "minLength": 1, "maxLength": 64},
		"order": {"type": "integer", "title": "순서", "minimum": 0, "default": 0},
		` + core.Timestamps + `
	}
}`),
		UISchema: json.RawMessage(`{"ui:list_columns": ["name", "order"]}`),
	},
	{
		Slug: "sponsor",
		Name: "Sponsors",
		Schema: json.RawMessage(`{
	"type": "object",
	"title": "Sponsor",
	"required": ["name", "tier"],
	"properties": {
		"id": {"type": "string", "title": "ID", "readOnly": true},
		"name": {"type": "string", "title": "이름", "minLength": 1, "maxLength": 128},
		"tier": {"type": "string", "title": "티어 ID"},
		"logo": {"type": ["string", "null"], "title": "로고"},
		"description": {"type": "string", "title": "소개"},
		"url": {"type": "string", "title": "홈페이지"},
		"tags": {"type": "array", "title": "태그", "items": {"type": "string"}},
		` + core.Timestamps + `
	}
}`),
		UISchema: json.RawMessage(`{
	"logo": {"ui:field": "file", "ui:help": "PNG 또는 SVG 파일을 올려주세요."},
	"description": {"ui:widget": "markdown"},
	"ui:list_columns": ["name", "tier"]
}`),
	},
}

// ABOUTME: JSON Schema and UI hint documents for event resources.
// ABOUTME: Presentations reference categories; speakers and audits reference presentations.

package event

import (
	"encoding/json"

	"github.com/pyconkr/console/plugins/core"
)

// Presentation types.
var presentationTypes = []string{"keynote", "talk", "tutorial", "sprint", "poster"}

var resources = []core.Resource{
	{
		Slug: "presentation",
		Name: "Presentations",
		Schema: json.RawMessage(`{
	"type": "object",
	"title": "Presentation",
	"required": ["event", "type", "title_ko", "title_en"],
	"properties": {
		"id": {"type": "string", "title": "ID", "readOnly": true},
		"event": {"type": "string", "title": "행사", "minLength": 1},
		"type": {"type": "string", "title": "유형", "enum": ["keynote", "talk", "tutorial", "sprint", "poster"]},
		"title_ko": {"type": "string", "title": "제목 (한국어)", "minLength": 1},
		"title_en": {"type": "string", "title": "제목 (영어)", "minLength": 1},
		"summary_ko": {"type": "string", "title": "요약 (한국어)", "maxLength": 1000},
		"summary_en": {"type": "string", "title": "요약 (영어)", "maxLength": 1000},
		"description_ko": {"type": "string", "title": "설명 (한국어)"},
		"description_en": {"type": "string", "title": "설명 (영어)"},
		"slideshow_url": {"type": ["string", "null"], "title": "발표 자료 URL"},
		"image": {"type": ["string", "null"], "title": "대표 이미지"},
		"categories": {"type": "array", "title": "카테고리 ID", "items": {"type": "string"}},
		"room_name": {"type": "string", "title": "발표장"},
		"start_at": {"type": "string", "title": "시작 시각"},
		"end_at": {"type": "string", "title": "종료 시각"},
		` + core.Timestamps + `
	}
}`),
		UISchema: json.RawMessage(`{
	"description_ko": {"ui:widget": "markdown"},
	"description_en": {"ui:widget": "markdown"},
	"summary_ko": {"ui:widget": "textarea"},
	"summary_en": {"ui:widget": "textarea"},
	"image": {"ui:field": "file"},
	"ui:list_columns": ["title_ko", "type", "event"]
}`),
	},
	{
		Slug: "speaker",
		Name: "Speakers",
		Schema: json.RawMessage(`{
	"type": "object",
	"title": "Speaker",
	"required": ["presentation", "nickname_ko"],
	"properties": {
		"id": {"type": "string", "title": "ID", "readOnly": true},
		"presentation": {"type": "string", "title": "발표 ID"},
		"user": {"type": "string", "title": "사용자 이름"},
		"email": {"type": "string", "title": "이메일"},
		"order": {"type": "integer", "title": "순서", "minimum": 0, "default": 0},
		"nickname_ko": {"type": "string", "title": "별칭 (한국어)", "minLength": 1},
		"nickname_en": {"type": "string", "title": "별칭 (영어)"},
		"biography_ko": {"type": "string", "title": "소개 (한국어)"},
		"biography_en": {"type": "string", "title": "소개 (영어)"},
		"image": {"type": ["string", "null"], "title": "프로필 이미지"},
		` + core.Timestamps + `
	}
}`),
		UISchema: json.RawMessage(`{
	"biography_ko": {"ui:widget": "markdown"},
	"biography_en": {"ui:widget": "markdown"},
	"image": {"ui:field": "file"},
	"ui:list_columns": ["nickname_ko", "presentation", "user"]
}`),
	},
	{
		Slug: "category",
		Name: "Categories",
		Schema: json.RawMessage(`{
	"type": "object",
	"title": "Category",
	"required": ["name_ko"],
	"properties": {
		"id": {"type": "string", "title": "ID", "readOnly": true},
		"name_ko": {"type": "string", "title": "이름 (한국어)", "minLength": 1},
		"name_en": {"type": "string", "title": "이름 (영어)"},
		` + core.Timestamps + `
	}
}`),
		UISchema: json.RawMessage(`{"ui:list_columns": ["name_ko", "name_en"]}`),
	},
	{
		Slug: "modification_audit",
		Name: "Modification requests",
		Schema: json.RawMessage(`{
	"type": "object",
	"title": "Modification audit",
	"required": ["status"],
	"properties": {
		"id": {"type": "string", "title": "ID", "readOnly": true},
		"status": {"type": "string", "title": "상태", "enum": ["requested", "approved", "rejected", "cancelled"]},
		"instance_type": {"type": "string", "title": "대상 유형", "readOnly": true},
		"instance_id": {"type": "string", "title": "대상 ID", "readOnly": true},
		"user": {"type": "string", "title": "요청자", "readOnly": true},
		"reason": {"type": "string", "title": "사유"},
		"modified": {"type": "object", "title": "수정 내용", "readOnly": true},
		` + core.Timestamps + `
	}
}`),
		UISchema: json.RawMessage(`{
	"reason": {"ui:widget": "textarea"},
	"ui:list_columns": ["status", "instance_id", "user"]
}`),
	},
}

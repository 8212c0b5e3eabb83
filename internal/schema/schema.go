// ABOUTME: Resource schema model decoded from backend JSON Schema documents.
// ABOUTME: Preserves declared property order and re-encodes sub-schemas for validation.

package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Property is a single field declaration inside a resource schema.
type Property struct {
	Name        string
	Type        string
	Nullable    bool
	Title       string
	Description string
	Format      string
	Enum        []any
	Default     any
	ReadOnly    bool
	MinLength   *int
	MaxLength   *int
	Minimum     *float64
	Maximum     *float64
	Items       *Property

	// raw keeps every keyword the backend sent so re-encoded sub-schemas
	// validate exactly like the original.
	raw json.RawMessage
}

// ResourceSchema describes the fields of one backend resource.
type ResourceSchema struct {
	Title      string
	Properties []Property
	Required   []string
}

type propertyJSON struct {
	Type        json.RawMessage `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Format      string          `json:"format"`
	Enum        []any           `json:"enum"`
	Default     any             `json:"default"`
	ReadOnly    bool            `json:"readOnly"`
	MinLength   *int            `json:"minLength"`
	MaxLength   *int            `json:"maxLength"`
	Minimum     *float64        `json:"minimum"`
	Maximum     *float64        `json:"maximum"`
	Items       json.RawMessage `json:"items"`
}

// UnmarshalJSON decodes a property, keeping the raw document.
func (p *Property) UnmarshalJSON(data []byte) error {
	var pj propertyJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return err
	}

	typ, nullable, err := decodeType(pj.Type)
	if err != nil {
		return err
	}

	*p = Property{
		Name:        p.Name,
		Type:        typ,
		Nullable:    nullable,
		Title:       pj.Title,
		Description: pj.Description,
		Format:      pj.Format,
		Enum:        pj.Enum,
		Default:     pj.Default,
		ReadOnly:    pj.ReadOnly,
		MinLength:   pj.MinLength,
		MaxLength:   pj.MaxLength,
		Minimum:     pj.Minimum,
		Maximum:     pj.Maximum,
		raw:         append(json.RawMessage(nil), data...),
	}

	if len(pj.Items) > 0 && string(pj.Items) != "null" {
		var items Property
		if err := json.Unmarshal(pj.Items, &items); err != nil {
			return fmt.Errorf("items: %w", err)
		}
		p.Items = &items
	}
	return nil
}

// MarshalJSON emits the original property document when available.
func (p Property) MarshalJSON() ([]byte, error) {
	if len(p.raw) > 0 {
		return p.raw, nil
	}

	out := map[string]any{}
	if p.Type != "" {
		if p.Nullable {
			out["type"] = []string{p.Type, "null"}
		} else {
			out["type"] = p.Type
		}
	}
	if p.Title != "" {
		out["title"] = p.Title
	}
	if p.Description != "" {
		out["description"] = p.Description
	}
	if p.Format != "" {
		out["format"] = p.Format
	}
	if len(p.Enum) > 0 {
		out["enum"] = p.Enum
	}
	if p.Default != nil {
		out["default"] = p.Default
	}
	if p.ReadOnly {
		out["readOnly"] = true
	}
	if p.MinLength != nil {
		out["minLength"] = *p.MinLength
	}
	if p.MaxLength != nil {
		out["maxLength"] = *p.MaxLength
	}
	if p.Minimum != nil {
		out["minimum"] = *p.Minimum
	}
	if p.Maximum != nil {
		out["maximum"] = *p.Maximum
	}
	if p.Items != nil {
		out["items"] = p.Items
	}
	return json.Marshal(out)
}

// decodeType accepts "string" as well as ["string", "null"].
func decodeType(raw json.RawMessage) (string, bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single, false, nil
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return "", false, fmt.Errorf("invalid type keyword: %s", raw)
	}

	var typ string
	nullable := false
	for _, t := range many {
		if t == "null" {
			nullable = true
			continue
		}
		if typ == "" {
			typ = t
		}
	}
	return typ, nullable, nil
}

type resourceSchemaJSON struct {
	Title      string          `json:"title"`
	Properties json.RawMessage `json:"properties"`
	Required   []string        `json:"required"`
}

// UnmarshalJSON decodes a resource schema, keeping properties in the order
// the backend declared them.
func (s *ResourceSchema) UnmarshalJSON(data []byte) error {
	var sj resourceSchemaJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return err
	}

	props, err := decodeOrderedProperties(sj.Properties)
	if err != nil {
		return err
	}

	*s = ResourceSchema{
		Title:      sj.Title,
		Properties: props,
		Required:   sj.Required,
	}
	return nil
}

func decodeOrderedProperties(raw json.RawMessage) ([]Property, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("properties must be an object")
	}

	var props []Property
	index := map[string]int{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected property key %v", keyTok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}

		p := Property{Name: name}
		if err := json.Unmarshal(value, &p); err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}
		// a repeated key replaces the earlier declaration in place
		if i, ok := index[name]; ok {
			props[i] = p
			continue
		}
		index[name] = len(props)
		props = append(props, p)
	}
	return props, nil
}

// MarshalJSON encodes the schema as a draft-04 object schema with ordered
// properties.
func (s ResourceSchema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"type":"object"`)

	if s.Title != "" {
		title, _ := json.Marshal(s.Title)
		buf.WriteString(`,"title":`)
		buf.Write(title)
	}

	buf.WriteString(`,"properties":{`)
	for i, p := range s.Properties {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(p.Name)
		buf.Write(key)
		buf.WriteByte(':')
		body, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", p.Name, err)
		}
		buf.Write(body)
	}
	buf.WriteByte('}')

	// draft-04 rejects an empty required array
	if len(s.Required) > 0 {
		req, _ := json.Marshal(s.Required)
		buf.WriteString(`,"required":`)
		buf.Write(req)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Parse decodes a resource schema document.
func Parse(data []byte) (ResourceSchema, error) {
	var s ResourceSchema
	if err := json.Unmarshal(data, &s); err != nil {
		return ResourceSchema{}, fmt.Errorf("failed to parse resource schema: %w", err)
	}
	return s, nil
}

// FieldNames returns every property name in declared order.
func (s ResourceSchema) FieldNames() []string {
	names := make([]string, 0, len(s.Properties))
	for _, p := range s.Properties {
		names = append(names, p.Name)
	}
	return names
}

// Property looks up a property by name.
func (s ResourceSchema) Property(name string) (Property, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// IsRequired reports whether name is listed as required.
func (s ResourceSchema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Label returns the human-readable label for a property.
func (p Property) Label() string {
	if p.Title != "" {
		return p.Title
	}
	return p.Name
}

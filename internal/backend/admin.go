// ABOUTME: Admin resource API: schema lookup plus retrieve, create, update and remove.
// ABOUTME: Addresses resources by application namespace, resource name and id.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pyconkr/console/internal/schema"
)

// Resource is one backend instance as decoded JSON.
type Resource = map[string]any

// SchemaInfo is the schema document served for a resource.
type SchemaInfo struct {
	Schema schema.ResourceSchema `json:"schema"`
	Hints  schema.LayoutHints    `json:"ui_schema"`
}

func collectionPath(app, resource string) string {
	return fmt.Sprintf("v1/admin-api/%s/%s/", segment(app), segment(resource))
}

func instancePath(app, resource, id string) string {
	return collectionPath(app, resource) + segment(id) + "/"
}

// FetchSchema returns the JSON Schema and UI hints for a resource.
func (c *Client) FetchSchema(ctx context.Context, app, resource string) (SchemaInfo, error) {
	var info SchemaInfo
	if err := c.do(ctx, http.MethodGet, collectionPath(app, resource)+"json-schema/", nil, nil, &info); err != nil {
		return SchemaInfo{}, err
	}
	return info, nil
}

// List returns every instance of a resource. Paginated envelopes with a
// "results" array are unwrapped.
func (c *Client) List(ctx context.Context, app, resource string) ([]Resource, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, collectionPath(app, resource), nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList(raw)
}

func decodeList(raw json.RawMessage) ([]Resource, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return []Resource{}, nil
	}

	if raw[0] == '{' {
		var page struct {
			Results []Resource `json:"results"`
		}
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("failed to decode resource page: %w", err)
		}
		if page.Results == nil {
			page.Results = []Resource{}
		}
		return page.Results, nil
	}

	var items []Resource
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode resource list: %w", err)
	}
	return items, nil
}

// Retrieve returns one instance; an empty body yields an empty mapping.
func (c *Client) Retrieve(ctx context.Context, app, resource, id string) (Resource, error) {
	var out Resource
	if err := c.do(ctx, http.MethodGet, instancePath(app, resource, id), nil, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = Resource{}
	}
	return out, nil
}

// Create posts payload and returns the created instance including its id.
func (c *Client) Create(ctx context.Context, app, resource string, payload Resource) (Resource, error) {
	var out Resource
	if err := c.do(ctx, http.MethodPost, collectionPath(app, resource), nil, nonNil(payload), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = Resource{}
	}
	return out, nil
}

// Update patches an instance and returns the updated representation.
func (c *Client) Update(ctx context.Context, app, resource, id string, payload Resource) (Resource, error) {
	var out Resource
	if err := c.do(ctx, http.MethodPatch, instancePath(app, resource, id), nil, nonNil(payload), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = Resource{}
	}
	return out, nil
}

// Remove deletes an instance.
func (c *Client) Remove(ctx context.Context, app, resource, id string) error {
	return c.do(ctx, http.MethodDelete, instancePath(app, resource, id), nil, nil, nil)
}

func nonNil(payload Resource) Resource {
	if payload == nil {
		return Resource{}
	}
	return payload
}

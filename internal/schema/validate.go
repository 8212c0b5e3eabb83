// ABOUTME: Draft validation against the writable JSON Schema plus compiled field rules.
// ABOUTME: Produces per-field errors that block submission of invalid drafts.

package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// FieldError is a validation failure attributed to one field. Field is empty
// for failures that apply to the whole draft.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidationErrors is the set of failures for one draft.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// ByField returns the first message for each field.
func (v ValidationErrors) ByField() map[string]string {
	out := make(map[string]string, len(v))
	for _, e := range v {
		if _, seen := out[e.Field]; !seen {
			out[e.Field] = e.Message
		}
	}
	return out
}

// Validator checks drafts against a writable sub-schema.
type Validator struct {
	compiled *jsonschema.Schema
	fields   []Field
}

const schemaURL = "console://resource.json"

// NewValidator compiles s (normally the writable half of a partition) using
// JSON Schema draft-04 semantics.
func NewValidator(s ResourceSchema, hints LayoutHints) (*Validator, error) {
	doc, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft4
	if err := c.AddResource(schemaURL, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Validator{compiled: compiled, fields: Compile(s, hints)}, nil
}

// Validate returns nil when draft is acceptable for submission.
func (v *Validator) Validate(draft map[string]any) error {
	var errs ValidationErrors
	seen := map[string]bool{}

	for _, f := range v.fields {
		if err := f.Validate(draft[f.Name()]); err != nil {
			errs = append(errs, FieldError{Field: f.Name(), Message: err.Error()})
			seen[f.Name()] = true
		}
	}

	doc, err := normalize(draft)
	if err != nil {
		return append(errs, FieldError{Message: err.Error()})
	}

	if err := v.compiled.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return append(errs, FieldError{Message: err.Error()})
		}
		for _, fe := range flatten(ve) {
			if fe.Field != "" && seen[fe.Field] {
				continue
			}
			seen[fe.Field] = true
			errs = append(errs, fe)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
	return errs
}

// normalize round-trips the draft through JSON so the validator sees plain
// decoded values.
func normalize(draft map[string]any) (any, error) {
	if draft == nil {
		draft = map[string]any{}
	}
	raw, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("draft is not serializable: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

var missingPropsRe = regexp.MustCompile(`'([^']+)'`)

func flatten(ve *jsonschema.ValidationError) []FieldError {
	if len(ve.Causes) > 0 {
		var out []FieldError
		for _, c := range ve.Causes {
			out = append(out, flatten(c)...)
		}
		return out
	}

	if strings.HasSuffix(ve.KeywordLocation, "/required") {
		var out []FieldError
		for _, m := range missingPropsRe.FindAllStringSubmatch(ve.Message, -1) {
			out = append(out, FieldError{Field: m[1], Message: "is required"})
		}
		if len(out) > 0 {
			return out
		}
	}

	field := strings.TrimPrefix(ve.InstanceLocation, "/")
	if i := strings.IndexByte(field, '/'); i >= 0 {
		field = field[:i]
	}
	return []FieldError{{Field: field, Message: ve.Message}}
}

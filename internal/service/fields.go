package service

import (
	"bytes"
	"encoding/json"
	"maps"
)

// TodoFields is a decoded todo request body. A nil pointer means the key
// was absent. Keys present with the wrong JSON type are listed in invalid.
type TodoFields struct {
	Title       *string
	Description *string
	Completed   *bool

	invalid map[string]string
}

var fieldTypeMessages = map[string]string{
	"title":       "Title must be a string",
	"description": "Description must be a string",
	"completed":   "Completed must be a boolean",
}

// DecodeTodoFields parses a todo request body. It returns ErrNoData when
// the body is empty, is not a JSON object, or is an empty object. Unknown
// keys are ignored.
func DecodeTodoFields(body []byte) (*TodoFields, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, ErrNoData
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		return nil, ErrNoData
	}

	fields := &TodoFields{invalid: map[string]string{}}
	if v, ok := raw["title"]; ok {
		fields.Title = decodeField[string](fields, "title", v)
	}
	if v, ok := raw["description"]; ok {
		fields.Description = decodeField[string](fields, "description", v)
	}
	if v, ok := raw["completed"]; ok {
		fields.Completed = decodeField[bool](fields, "completed", v)
	}
	return fields, nil
}

// decodeField decodes v into a T, recording a type error when v is null or
// of another JSON type.
func decodeField[T any](f *TodoFields, name string, v json.RawMessage) *T {
	var out *T
	if err := json.Unmarshal(v, &out); err != nil || out == nil {
		f.invalid[name] = fieldTypeMessages[name]
		return nil
	}
	return out
}

func (f *TodoFields) invalidCopy() map[string]string {
	out := make(map[string]string, len(f.invalid))
	maps.Copy(out, f.invalid)
	return out
}

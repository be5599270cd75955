// Package mapper turns loosely shaped upstream entities into the stable
// shapes returned to storefront clients.
package mapper

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"storefront-bff/internal/jsonapi"
)

// Entity is an upstream record with typed, path-based field access.
// Missing members and members of an unexpected type read as absent.
type Entity struct {
	ID     string
	fields map[string]interface{}
}

// NewEntity wraps a decoded resource. Plain and JSON:API payloads look the
// same here because jsonapi merges top-level members into the attributes.
func NewEntity(r jsonapi.Resource) Entity {
	fields := r.Attributes
	if fields == nil {
		fields = map[string]interface{}{}
	}
	return Entity{ID: r.ID, fields: fields}
}

// EntityFromMap wraps a generic JSON object.
func EntityFromMap(m map[string]interface{}) Entity {
	if m == nil {
		m = map[string]interface{}{}
	}
	id, _ := m["id"].(string)
	return Entity{ID: id, fields: m}
}

// Value returns the member at path.
func (e Entity) Value(path ...string) (interface{}, bool) {
	var cur interface{} = e.fields
	for _, key := range path {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

// String returns a non-empty string at path. Numbers are formatted.
func (e Entity) String(path ...string) (string, bool) {
	v, ok := e.Value(path...)
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, t != ""
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	}
	return "", false
}

// Int returns the number at path truncated towards zero.
func (e Entity) Int(path ...string) (int, bool) {
	v, ok := e.Value(path...)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), true
		}
		if f, err := t.Float64(); err == nil && !math.IsNaN(f) {
			return int(f), true
		}
	case float64:
		return int(t), true
	case int:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int(f), true
		}
	}
	return 0, false
}

func (e Entity) Bool(path ...string) (bool, bool) {
	v, ok := e.Value(path...)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func (e Entity) Object(path ...string) (map[string]interface{}, bool) {
	v, ok := e.Value(path...)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]interface{})
	return m, ok
}

func (e Entity) List(path ...string) ([]interface{}, bool) {
	v, ok := e.Value(path...)
	if !ok {
		return nil, false
	}
	l, ok := v.([]interface{})
	return l, ok
}

// firstString returns the first candidate that resolved to a non-empty
// string, or def.
func firstString(def string, candidates ...func() (string, bool)) string {
	for _, c := range candidates {
		if s, ok := c(); ok {
			return s
		}
	}
	return def
}

func optionalString(e Entity, path ...string) *string {
	if s, ok := e.String(path...); ok {
		return &s
	}
	return nil
}

func field(e Entity, path ...string) func() (string, bool) {
	return func() (string, bool) { return e.String(path...) }
}

package richtext

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// fields is a decoded JSON object read through typed accessors. Every
// accessor returns the zero value when the key is absent or has another type.
type fields map[string]interface{}

func (f fields) str(key string) string {
	s, _ := f[key].(string)
	return s
}

// text is like str but also renders numbers and booleans.
func (f fields) text(key string) string {
	return stringify(f[key])
}

func (f fields) object(key string) fields {
	m, _ := f[key].(map[string]interface{})
	if m == nil {
		return fields{}
	}
	return m
}

func (f fields) list(key string) []interface{} {
	l, _ := f[key].([]interface{})
	return l
}

// number reads a JSON number or a numeric string.
func (f fields) number(key string) (float64, bool) {
	switch v := f[key].(type) {
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	case float64:
		return v, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	}
	return 0, false
}

// strictNumber reads only JSON numbers.
func (f fields) strictNumber(key string) (float64, bool) {
	if _, ok := f[key].(string); ok {
		return 0, false
	}
	return f.number(key)
}

// truthy mirrors loose boolean coercion: true, non-zero numbers and
// non-empty strings count as set.
func (f fields) truthy(key string) bool {
	switch v := f[key].(type) {
	case bool:
		return v
	case string:
		return v != ""
	case json.Number:
		n, err := v.Float64()
		return err == nil && n != 0
	case float64:
		return v != 0
	case nil:
		return false
	}
	return true
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64, bool, int:
		return fmt.Sprint(t)
	}
	return ""
}

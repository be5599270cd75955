// Package jsonapi decodes upstream search responses. Both the JSON:API
// representation and the plain JSON one are accepted; members a plain
// entity carries at its top level end up in Attributes.
package jsonapi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Identifier points at another resource.
type Identifier struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

// Linkage holds the resource identifiers of a relationship. Upstream sends
// either a single object or an array.
type Linkage struct {
	Identifiers []Identifier
	Many        bool
}

// First returns the first identifier, if any.
func (l Linkage) First() (Identifier, bool) {
	if len(l.Identifiers) == 0 {
		return Identifier{}, false
	}
	return l.Identifiers[0], true
}

func (l *Linkage) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		*l = Linkage{}
	case raw[0] == '[':
		var ids []Identifier
		if err := json.Unmarshal(raw, &ids); err != nil {
			return fmt.Errorf("decode relationship data: %w", err)
		}
		*l = Linkage{Identifiers: ids, Many: true}
	default:
		var id Identifier
		if err := json.Unmarshal(raw, &id); err != nil {
			return fmt.Errorf("decode relationship data: %w", err)
		}
		*l = Linkage{Identifiers: []Identifier{id}}
	}
	return nil
}

func (l Linkage) MarshalJSON() ([]byte, error) {
	if l.Many {
		ids := l.Identifiers
		if ids == nil {
			ids = []Identifier{}
		}
		return json.Marshal(ids)
	}
	if id, ok := l.First(); ok {
		return json.Marshal(id)
	}
	return []byte("null"), nil
}

type Relationship struct {
	Data  Linkage         `json:"data"`
	Links json.RawMessage `json:"links,omitempty"`
}

// Resource is one upstream entity.
type Resource struct {
	ID            string                  `json:"id,omitempty"`
	Type          string                  `json:"type,omitempty"`
	Attributes    map[string]interface{}  `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

var envelopeMembers = map[string]struct{}{
	"id": {}, "type": {}, "attributes": {}, "relationships": {}, "links": {}, "meta": {},
}

func (r *Resource) UnmarshalJSON(raw []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(raw, &members); err != nil {
		return fmt.Errorf("decode resource: %w", err)
	}

	out := Resource{Attributes: map[string]interface{}{}}
	if v, ok := members["id"]; ok {
		_ = json.Unmarshal(v, &out.ID)
	}
	if v, ok := members["type"]; ok {
		_ = json.Unmarshal(v, &out.Type)
	}
	if v, ok := members["attributes"]; ok {
		var attrs map[string]interface{}
		if err := decodeNumbers(v, &attrs); err == nil && attrs != nil {
			out.Attributes = attrs
		}
	}
	if v, ok := members["relationships"]; ok {
		var rels map[string]Relationship
		if err := json.Unmarshal(v, &rels); err == nil {
			out.Relationships = rels
		}
	}
	for key, v := range members {
		if _, reserved := envelopeMembers[key]; reserved {
			continue
		}
		if _, exists := out.Attributes[key]; exists {
			continue
		}
		var value interface{}
		if err := decodeNumbers(v, &value); err == nil {
			out.Attributes[key] = value
		}
	}

	*r = out
	return nil
}

// Clone returns a copy whose attribute map can be modified independently.
func (r Resource) Clone() Resource {
	attrs := make(map[string]interface{}, len(r.Attributes))
	for k, v := range r.Attributes {
		attrs[k] = v
	}
	r.Attributes = attrs
	return r
}

type Meta struct {
	Total int `json:"total"`
}

// Document is a search response.
type Document struct {
	Data     []Resource `json:"data"`
	Included []Resource `json:"included,omitempty"`
	Meta     Meta       `json:"meta"`
}

func (d *Document) UnmarshalJSON(raw []byte) error {
	var envelope struct {
		Data     json.RawMessage `json:"data"`
		Included []Resource      `json:"included"`
		Meta     *Meta           `json:"meta"`
		Total    *int            `json:"total"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}

	out := Document{Data: []Resource{}, Included: envelope.Included}
	data := bytes.TrimSpace(envelope.Data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
	case data[0] == '[':
		if err := json.Unmarshal(data, &out.Data); err != nil {
			return fmt.Errorf("decode document data: %w", err)
		}
	default:
		var single Resource
		if err := json.Unmarshal(data, &single); err != nil {
			return fmt.Errorf("decode document data: %w", err)
		}
		out.Data = []Resource{single}
	}

	switch {
	case envelope.Meta != nil:
		out.Meta = *envelope.Meta
	case envelope.Total != nil:
		out.Meta.Total = *envelope.Total
	}

	*d = out
	return nil
}

func decodeNumbers(raw []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

package richtext

import (
	"bytes"
	"encoding/json"
)

// ToHTML converts a description of unknown shape to HTML. Strings are
// returned unchanged, block documents are rendered. The second result is
// false when input is absent or is neither, meaning "leave unchanged".
func ToHTML(input interface{}) (string, bool) {
	switch v := input.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case Document:
		return RenderHTML(v), true
	case *Document:
		if v == nil {
			return "", false
		}
		return RenderHTML(*v), true
	case json.RawMessage:
		return htmlFromJSON(v)
	case []byte:
		return htmlFromJSON(v)
	case map[string]interface{}:
		raw, err := json.Marshal(v)
		if err != nil {
			return "", false
		}
		return htmlFromJSON(raw)
	}
	return "", false
}

func htmlFromJSON(raw []byte) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '{':
		doc, ok := decodeDocument(raw)
		if !ok {
			return "", false
		}
		return RenderHTML(doc), true
	}
	return "", false
}

// ToDocument converts a description of unknown shape to a block document.
// Documents pass through, HTML strings are parsed and anything else yields
// an empty document.
func ToDocument(input interface{}) Document {
	switch v := input.(type) {
	case Document:
		return v
	case *Document:
		if v != nil {
			return *v
		}
	case string:
		return ParseHTML(v)
	case json.RawMessage:
		return documentFromJSON(v)
	case []byte:
		return documentFromJSON(v)
	}
	return NewDocument()
}

func documentFromJSON(raw []byte) Document {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return NewDocument()
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return ParseHTML(s)
		}
	case '{':
		if doc, ok := decodeDocument(raw); ok {
			return doc
		}
	}
	return NewDocument()
}

// decodeDocument accepts an object only when its blocks member is an array.
func decodeDocument(raw []byte) (Document, bool) {
	var probe struct {
		Blocks json.RawMessage `json:"blocks"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Document{}, false
	}
	blocks := bytes.TrimSpace(probe.Blocks)
	if len(blocks) == 0 || blocks[0] != '[' {
		return Document{}, false
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, false
	}
	if doc.Blocks == nil {
		doc.Blocks = []Block{}
	}
	return doc, true
}

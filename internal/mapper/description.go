package mapper

import "storefront-bff/internal/richtext"

const (
	DescriptionHTMLKey     = "descriptionHtml"
	DescriptionDocumentKey = "descriptionEditorJs"
)

// AttachDescription returns a copy of an upstream product payload where the
// HTML description is also available as a block document. The document
// replaces description inside the attributes it was read from, and the
// original HTML is kept under descriptionHtml.
func AttachDescription(payload map[string]interface{}) map[string]interface{} {
	if payload == nil {
		return nil
	}

	out := copyMap(payload)
	var (
		source map[string]interface{}
		write  func(map[string]interface{})
	)
	switch {
	case nestedAttributes(payload) != nil:
		data := copyMap(payload["data"].(map[string]interface{}))
		source = nestedAttributes(payload)
		write = func(attrs map[string]interface{}) {
			data["attributes"] = attrs
			out["data"] = data
		}
	case objectAt(payload, "attributes") != nil:
		source = objectAt(payload, "attributes")
		write = func(attrs map[string]interface{}) { out["attributes"] = attrs }
	default:
		source = payload
	}

	html, _ := source["description"].(string)
	doc := richtext.ToDocument(html)

	out[DescriptionHTMLKey] = html
	out[DescriptionDocumentKey] = doc

	if write != nil {
		attrs := copyMap(source)
		attrs["description"] = doc
		attrs[DescriptionHTMLKey] = html
		write(attrs)
	} else if _, ok := payload["description"]; ok {
		out["description"] = doc
	}
	return out
}

func nestedAttributes(payload map[string]interface{}) map[string]interface{} {
	data := objectAt(payload, "data")
	if data == nil {
		return nil
	}
	return objectAt(data, "attributes")
}

func objectAt(m map[string]interface{}, key string) map[string]interface{} {
	obj, _ := m[key].(map[string]interface{})
	return obj
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m)+2)
	for k, v := range m {
		out[k] = v
	}
	return out
}

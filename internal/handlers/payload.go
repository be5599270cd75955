package handlers

import (
	"bytes"
	"sort"

	"storefront-bff/internal/models"
	"storefront-bff/internal/richtext"
)

// PayloadOptions control how editor form data becomes an upstream patch.
type PayloadOptions struct {
	GenderCustomField    string
	UnassignedCategoryID string
}

// productPayload is a partial product update.
type productPayload struct {
	fields map[string]interface{}
	// detachUnassigned is set when the form still carried the placeholder category.
	detachUnassigned bool
}

func (p productPayload) changedFields() []string {
	keys := make([]string, 0, len(p.fields))
	for k := range p.fields {
		if k == "id" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// eventValue is the payload without the description, which can be large.
func (p productPayload) eventValue() map[string]interface{} {
	out := make(map[string]interface{}, len(p.fields))
	for k, v := range p.fields {
		if k == "description" {
			continue
		}
		out[k] = v
	}
	return out
}

// buildPayload converts form data. Categories are only sent when
// withCategories is set; the placeholder category is never sent.
func buildPayload(form models.ProductForm, withCategories bool, opts PayloadOptions) (productPayload, error) {
	fields := map[string]interface{}{}
	if form.ID != "" {
		fields["id"] = form.ID
	}

	if raw := bytes.TrimSpace(form.Description); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		html, ok := richtext.ToHTML(form.Description)
		if !ok {
			return productPayload{}, models.NewInvalidInput("description", "must be an HTML string or a block document")
		}
		fields["description"] = html
	}

	if form.MetaDescription != nil {
		fields["metaDescription"] = *form.MetaDescription
	}
	if form.MetaTitle != nil {
		fields["metaTitle"] = *form.MetaTitle
	}
	if form.Keywords != nil {
		fields["keywords"] = *form.Keywords
	}

	var detach bool
	if withCategories && form.CategoryIDs != nil {
		categories := make([]map[string]string, 0, len(form.CategoryIDs))
		for _, id := range form.CategoryIDs {
			if id == "" {
				continue
			}
			if opts.UnassignedCategoryID != "" && id == opts.UnassignedCategoryID {
				detach = true
				continue
			}
			categories = append(categories, map[string]string{"id": id})
		}
		fields["categories"] = categories
	}

	if form.CustomFields != nil || form.Gender != nil {
		custom := make(map[string]interface{}, len(form.CustomFields)+1)
		for k, v := range form.CustomFields {
			custom[k] = v
		}
		if form.Gender != nil && opts.GenderCustomField != "" {
			custom[opts.GenderCustomField] = *form.Gender
		}
		fields["customFields"] = custom
	}

	return productPayload{fields: fields, detachUnassigned: detach}, nil
}

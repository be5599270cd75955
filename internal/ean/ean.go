// Package ean resolves a representative EAN for parent products from the
// variants side-loaded with a search response.
package ean

import (
	"encoding/json"
	"strconv"
	"strings"

	"storefront-bff/internal/jsonapi"
	"storefront-bff/internal/query"
)

const productType = "product"

// Attribute keys written onto enhanced products.
const (
	AttrParentEAN   = "parentEan"
	AttrVariantEANs = "variantEans"
	AttrResolvedEAN = "resolvedEan"
)

// VariantEANMap maps a parent product id to the distinct EANs of its
// variants, in the order the variants were included.
type VariantEANMap map[string][]string

// ParentID returns the parent product id of a variant. A relationship
// pointing at several resources yields the first.
func ParentID(variant jsonapi.Resource) (string, bool) {
	if rel, ok := variant.Relationships["parent"]; ok {
		if id, ok := rel.Data.First(); ok && id.ID != "" {
			return id.ID, true
		}
	}
	if id, ok := variant.Attributes["parentId"].(string); ok && id != "" {
		return id, true
	}
	return "", false
}

// CollectVariantEANs groups the EANs of included products by parent id.
func CollectVariantEANs(included []jsonapi.Resource) VariantEANMap {
	m := VariantEANMap{}
	for _, entity := range included {
		if entity.Type != productType {
			continue
		}
		parentID, ok := ParentID(entity)
		if !ok {
			continue
		}
		code := codeString(entity.Attributes["ean"])
		if code == "" {
			continue
		}
		if !contains(m[parentID], code) {
			m[parentID] = append(m[parentID], code)
		}
	}
	return m
}

// EnhanceProducts returns copies of the primary products with parentEan,
// variantEans and resolvedEan attributes. The input is not modified.
func EnhanceProducts(doc jsonapi.Document) ([]jsonapi.Resource, VariantEANMap) {
	variants := CollectVariantEANs(doc.Included)
	enhanced := make([]jsonapi.Resource, 0, len(doc.Data))

	for _, product := range doc.Data {
		out := product.Clone()

		codes := variants[product.ID]
		if codes == nil {
			codes = []string{}
		}

		parentEAN := product.Attributes["ean"]

		resolved := parentEAN
		if len(codes) > 0 {
			resolved = codes[0]
		}

		out.Attributes[AttrParentEAN] = parentEAN
		out.Attributes[AttrVariantEANs] = codes
		out.Attributes[AttrResolvedEAN] = resolved
		enhanced = append(enhanced, out)
	}

	return enhanced, variants
}

// AppendAssociations adds the children association needed to side-load
// variants, keeping any associations already requested.
func AppendAssociations(c query.Criteria) query.Criteria {
	return c.WithAssociation("children")
}

// codeString formats an EAN. Some shops store it as a JSON number.
func codeString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

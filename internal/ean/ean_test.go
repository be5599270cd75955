package ean

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-bff/internal/jsonapi"
	"storefront-bff/internal/query"
)

func decode(t *testing.T, raw string) jsonapi.Document {
	t.Helper()
	var doc jsonapi.Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func TestEnhanceProductsResolvesVariantEAN(t *testing.T) {
	doc := decode(t, `{
		"data": [{"id": "P1", "attributes": {}}],
		"included": [{"type": "product", "relationships": {"parent": {"data": {"id": "P1"}}}, "attributes": {"ean": "123"}}]
	}`)

	products, variants := EnhanceProducts(doc)

	require.Len(t, products, 1)
	assert.Equal(t, "123", products[0].Attributes[AttrResolvedEAN])
	assert.Equal(t, []string{"123"}, products[0].Attributes[AttrVariantEANs])
	assert.Nil(t, products[0].Attributes[AttrParentEAN])
	assert.Equal(t, VariantEANMap{"P1": {"123"}}, variants)
}

func TestEnhanceProductsFallsBackToOwnEAN(t *testing.T) {
	doc := decode(t, `{"data": [{"id": "P1", "attributes": {"ean": "999"}}, {"id": "P2", "attributes": {}}]}`)

	products, _ := EnhanceProducts(doc)

	require.Len(t, products, 2)
	assert.Equal(t, "999", products[0].Attributes[AttrParentEAN])
	assert.Equal(t, "999", products[0].Attributes[AttrResolvedEAN])
	assert.Equal(t, []string{}, products[0].Attributes[AttrVariantEANs])
	assert.Nil(t, products[1].Attributes[AttrResolvedEAN])
}

func TestEnhanceProductsDoesNotMutateInput(t *testing.T) {
	doc := decode(t, `{"data": [{"id": "P1", "attributes": {"name": "x"}}]}`)

	_, _ = EnhanceProducts(doc)

	assert.Equal(t, map[string]interface{}{"name": "x"}, doc.Data[0].Attributes)
}

func TestEnhanceProductsEmptyDocument(t *testing.T) {
	products, variants := EnhanceProducts(jsonapi.Document{})
	assert.NotNil(t, products)
	assert.Empty(t, products)
	assert.Empty(t, variants)
}

func TestCollectVariantEANs(t *testing.T) {
	doc := decode(t, `{"data": [], "included": [
		{"type": "product", "relationships": {"parent": {"data": [{"id": "P1"}]}}, "attributes": {"ean": "A"}},
		{"type": "product", "relationships": {"parent": {"data": {"id": "P1"}}}, "attributes": {"ean": "B"}},
		{"type": "product", "relationships": {"parent": {"data": {"id": "P1"}}}, "attributes": {"ean": "A"}},
		{"type": "product", "relationships": {"parent": {"data": {"id": "P2"}}}, "attributes": {"ean": ""}},
		{"type": "product", "relationships": {"parent": {"data": null}}, "attributes": {"ean": "C"}},
		{"type": "product_media", "relationships": {"parent": {"data": {"id": "P1"}}}, "attributes": {"ean": "D"}},
		{"type": "product", "attributes": {"parentId": "P3", "ean": "E"}}
	]}`)

	variants := CollectVariantEANs(doc.Included)

	assert.Equal(t, VariantEANMap{
		"P1": {"A", "B"},
		"P3": {"E"},
	}, variants)
}

func TestCollectVariantEANsNumericCodes(t *testing.T) {
	doc := decode(t, `{"data": [], "included": [
		{"type": "product", "attributes": {"parentId": "P1", "ean": 4006381333931}},
		{"type": "product", "attributes": {"parentId": "P1", "ean": "4006381333931"}},
		{"type": "product", "attributes": {"parentId": "P1", "ean": " 123 "}},
		{"type": "product", "attributes": {"parentId": "P2", "ean": true}}
	]}`)

	variants := CollectVariantEANs(doc.Included)

	assert.Equal(t, VariantEANMap{"P1": {"4006381333931", "123"}}, variants)

	enhanced, _ := EnhanceProducts(jsonapi.Document{
		Data:     []jsonapi.Resource{{ID: "P1", Type: "product", Attributes: map[string]interface{}{}}},
		Included: doc.Included,
	})
	require.Len(t, enhanced, 1)
	assert.Equal(t, "4006381333931", enhanced[0].Attributes[AttrResolvedEAN])
}

func TestAppendAssociations(t *testing.T) {
	out, err := json.Marshal(AppendAssociations(query.Criteria{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"associations":{"children":{}}}`, string(out))

	withProps := query.Criteria{Associations: query.Associations{"properties": {}}}
	merged := AppendAssociations(withProps)
	assert.Contains(t, merged.Associations, "properties")
	assert.Contains(t, merged.Associations, "children")
}

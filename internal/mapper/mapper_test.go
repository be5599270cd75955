package mapper

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-bff/internal/ean"
	"storefront-bff/internal/jsonapi"
	"storefront-bff/internal/richtext"
)

func resource(t *testing.T, raw string) jsonapi.Resource {
	t.Helper()
	var r jsonapi.Resource
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	return r
}

// ===== Product Tests

func TestMapProductDefaults(t *testing.T) {
	p := MapProduct(EntityFromMap(map[string]interface{}{}))

	assert.Empty(t, p.ID)
	assert.Equal(t, "", p.Attributes.ProductNumber)
	assert.Equal(t, "Unbenannt", p.Attributes.Name)
	assert.Equal(t, 0, p.Attributes.Stock)
	assert.False(t, p.Attributes.Active)
	assert.Equal(t, "", p.Attributes.Description)
	assert.Equal(t, "Unbekannt", p.Attributes.Gender)
	assert.Nil(t, p.Attributes.Color)
	assert.Equal(t, map[string]interface{}{}, p.Attributes.CustomFields)
	assert.Nil(t, p.Attributes.UpdatedAt)
	assert.Nil(t, p.Attributes.ManufacturerID)
	assert.Nil(t, p.Attributes.Manufacturer)
	assert.Nil(t, p.Attributes.MetaDescription)
	assert.Nil(t, p.Attributes.MetaTitle)
	assert.Nil(t, p.Attributes.Keywords)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"attributes":{
		"productNumber":"","name":"Unbenannt","stock":0,"updatedAt":null,
		"manufacturerId":null,"manufacturer":null,"active":false,"description":"",
		"metaDescription":null,"metaTitle":null,"keywords":null,"customFields":{},
		"gender":"Unbekannt","color":null}}`, string(out))
}

func TestMapProductTranslatedNameWins(t *testing.T) {
	p := MapProduct(NewEntity(resource(t, `{"name":"Shirt","translated":{"name":"Hemd"}}`)))
	assert.Equal(t, "Hemd", p.Attributes.Name)

	p = MapProduct(NewEntity(resource(t, `{"name":"Shirt","translated":{"name":""}}`)))
	assert.Equal(t, "Shirt", p.Attributes.Name)
}

func TestMapProductFallbackChains(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, a ProductAttributes)
	}{
		{
			name: "legacy product number",
			raw:  `{"customFields":{"custom_add_product_attributes_ooartikelnr":"OO-1"}}`,
			check: func(t *testing.T, a ProductAttributes) {
				assert.Equal(t, "OO-1", a.ProductNumber)
				assert.Equal(t, "OO-1", a.CustomFields[LegacyProductNumberKey])
			},
		},
		{
			name: "own product number first",
			raw:  `{"productNumber":"SW-1","customFields":{"custom_add_product_attributes_ooartikelnr":"OO-1"}}`,
			check: func(t *testing.T, a ProductAttributes) {
				assert.Equal(t, "SW-1", a.ProductNumber)
			},
		},
		{
			name: "translated description when own is empty",
			raw:  `{"description":"","translated":{"description":"<p>x</p>"}}`,
			check: func(t *testing.T, a ProductAttributes) {
				assert.Equal(t, "<p>x</p>", a.Description)
			},
		},
		{
			name: "gender feature keys in order",
			raw:  `{"featureSet":{"features":{"geschlecht":"Damen","gender":"female"}}}`,
			check: func(t *testing.T, a ProductAttributes) {
				assert.Equal(t, "Damen", a.Gender)
			},
		},
		{
			name: "stock and active",
			raw:  `{"stock":7,"active":true}`,
			check: func(t *testing.T, a ProductAttributes) {
				assert.Equal(t, 7, a.Stock)
				assert.True(t, a.Active)
			},
		},
		{
			name: "numeric string stock",
			raw:  `{"stock":"12"}`,
			check: func(t *testing.T, a ProductAttributes) {
				assert.Equal(t, 12, a.Stock)
			},
		},
		{
			name: "decimal string stock truncates",
			raw:  `{"stock":" 3.9 "}`,
			check: func(t *testing.T, a ProductAttributes) {
				assert.Equal(t, 3, a.Stock)
			},
		},
		{
			name: "broken field does not affect others",
			raw:  `{"stock":"many","name":"Hose","active":"yes"}`,
			check: func(t *testing.T, a ProductAttributes) {
				assert.Equal(t, 0, a.Stock)
				assert.False(t, a.Active)
				assert.Equal(t, "Hose", a.Name)
			},
		},
		{
			name: "optional strings",
			raw:  `{"updatedAt":"2024-01-01T00:00:00Z","manufacturerId":"m1","metaTitle":"","keywords":"a,b"}`,
			check: func(t *testing.T, a ProductAttributes) {
				require.NotNil(t, a.UpdatedAt)
				assert.Equal(t, "2024-01-01T00:00:00Z", *a.UpdatedAt)
				require.NotNil(t, a.ManufacturerID)
				assert.Equal(t, "m1", *a.ManufacturerID)
				assert.Nil(t, a.MetaTitle)
				require.NotNil(t, a.Keywords)
				assert.Equal(t, "a,b", *a.Keywords)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, MapProduct(NewEntity(resource(t, tt.raw))).Attributes)
		})
	}
}

func TestMapProductColor(t *testing.T) {
	raw := `{"properties":[
		{"name":"XL","group":{"name":"Größe"}},
		{"name":"Rot","group":{"name":"Colour","translated":{"name":"FARBE"}}},
		{"name":"Blau","group":{"name":"Farbe"}}
	]}`
	p := MapProduct(NewEntity(resource(t, raw)))
	require.NotNil(t, p.Attributes.Color)
	assert.Equal(t, "Rot", *p.Attributes.Color)

	p = MapProduct(NewEntity(resource(t, `{"properties":"none"}`)))
	assert.Nil(t, p.Attributes.Color)
}

func TestMapProductFlat(t *testing.T) {
	r := resource(t, `{"id":"p1","type":"product","attributes":{"name":"Hemd","stock":2}}`)
	out, err := json.Marshal(MapProductFlat(NewEntity(r)))
	require.NoError(t, err)

	var flat map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &flat))
	assert.Equal(t, "p1", flat["id"])
	assert.Equal(t, "Hemd", flat["name"])
	assert.Equal(t, float64(2), flat["stock"])
	assert.NotContains(t, flat, "attributes")
	assert.NotContains(t, flat, "resolvedEan")
}

func TestMapEnrichedProduct(t *testing.T) {
	var doc jsonapi.Document
	require.NoError(t, json.Unmarshal([]byte(`{
		"data":[{"id":"P1","attributes":{"name":"Hemd"}}],
		"included":[{"type":"product","relationships":{"parent":{"data":{"id":"P1"}}},"attributes":{"ean":"123"}}]
	}`), &doc))

	enhanced, _ := ean.EnhanceProducts(doc)
	p := MapEnrichedProduct(enhanced[0])

	require.NotNil(t, p.Attributes.EANInfo)
	assert.Equal(t, "123", p.Attributes.ResolvedEAN)
	assert.Equal(t, []string{"123"}, p.Attributes.VariantEANs)
	assert.Nil(t, p.Attributes.ParentEAN)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"resolvedEan":"123"`)
	assert.Contains(t, string(out), `"parentEan":null`)
}

// ===== Manufacturer and Category Tests

func TestMapManufacturer(t *testing.T) {
	m := MapManufacturer(NewEntity(resource(t, `{"id":"m1","attributes":{"name":"Acme","translated":{"name":"Acme DE"},"mediaId":"media-1"}}`)))
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, "Acme DE", m.Name)
	require.NotNil(t, m.MediaID)
	assert.Equal(t, "media-1", *m.MediaID)

	m = MapManufacturer(EntityFromMap(map[string]interface{}{
		"id":         "m2",
		"attributes": map[string]interface{}{"mediaId": "media-2"},
	}))
	assert.Equal(t, "Unbenannt", m.Name)
	require.NotNil(t, m.MediaID)
	assert.Equal(t, "media-2", *m.MediaID)
}

func TestMapManufacturersWithMedia(t *testing.T) {
	var doc jsonapi.Document
	require.NoError(t, json.Unmarshal([]byte(`{"data":[
		{"id":"m1","attributes":{"name":"A","mediaId":"x"}},
		{"id":"m2","attributes":{"name":"B","mediaId":null}},
		{"id":"m3","attributes":{"name":"C"}}
	]}`), &doc))

	out := MapManufacturersWithMedia(doc.Data)
	require.Len(t, out, 1)
	assert.Equal(t, "m1", out[0].ID)
}

func TestMapCategories(t *testing.T) {
	var doc jsonapi.Document
	require.NoError(t, json.Unmarshal([]byte(`{"data":[{"id":"c1","attributes":{"name":"Hosen"}},{"id":"c2","name":"Jacken"}]}`), &doc))

	assert.Equal(t, []Category{{ID: "c1", Name: "Hosen"}, {ID: "c2", Name: "Jacken"}}, MapCategories(doc.Data))
	assert.Equal(t, []Category{}, MapCategories(nil))
}

func TestMapRelatedProduct(t *testing.T) {
	r := resource(t, `{"id":"p1","attributes":{"name":"Hemd","ean":"4001","active":true,
		"categoryIds":["c1"],"customFields":{"custom_add_product_attributes_short_text":"kurz"}}}`)

	rp := MapRelatedProduct(NewEntity(r))
	assert.Equal(t, "p1", rp.ID)
	assert.Equal(t, "Hemd", rp.Name)
	assert.Equal(t, "4001", rp.EAN)
	assert.Equal(t, true, rp.Active)
	assert.Equal(t, []interface{}{"c1"}, rp.CategoryIDs)
	assert.Equal(t, "kurz", rp.ShortText)
	assert.Nil(t, rp.MetaTitle)

	rp = MapRelatedProduct(NewEntity(resource(t, `{"id":"p2","attributes":{}}`)))
	assert.Nil(t, rp.ShortText)
}

// ===== Description Tests

func TestAttachDescriptionJSONAPI(t *testing.T) {
	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"id": "p1",
			"attributes": map[string]interface{}{
				"name":        "Hemd",
				"description": "<h2>Title</h2><p>Hello</p>",
			},
		},
	}

	out := AttachDescription(payload)

	assert.Equal(t, "<h2>Title</h2><p>Hello</p>", out[DescriptionHTMLKey])
	doc, ok := out[DescriptionDocumentKey].(richtext.Document)
	require.True(t, ok)
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, richtext.TypeHeader, doc.Blocks[0].Type)

	attrs := out["data"].(map[string]interface{})["attributes"].(map[string]interface{})
	assert.Equal(t, doc, attrs["description"])
	assert.Equal(t, "<h2>Title</h2><p>Hello</p>", attrs[DescriptionHTMLKey])
	assert.Equal(t, "Hemd", attrs["name"])

	original := payload["data"].(map[string]interface{})["attributes"].(map[string]interface{})
	assert.Equal(t, "<h2>Title</h2><p>Hello</p>", original["description"])
}

func TestAttachDescriptionFlat(t *testing.T) {
	out := AttachDescription(map[string]interface{}{"id": "p1", "description": nil})
	assert.Equal(t, "", out[DescriptionHTMLKey])
	doc := out["description"].(richtext.Document)
	assert.Empty(t, doc.Blocks)

	out = AttachDescription(map[string]interface{}{"attributes": map[string]interface{}{"description": "<p>x</p>"}})
	attrs := out["attributes"].(map[string]interface{})
	assert.Len(t, attrs["description"].(richtext.Document).Blocks, 1)

	assert.Nil(t, AttachDescription(nil))
}

package mapper

import (
	"strings"

	"storefront-bff/internal/ean"
	"storefront-bff/internal/jsonapi"
)

const (
	// LegacyProductNumberKey is the custom field holding article numbers of
	// products migrated from the old shop system.
	LegacyProductNumberKey = "custom_add_product_attributes_ooartikelnr"

	UnnamedProduct = "Unbenannt"
	UnknownGender  = "Unbekannt"

	colorGroup = "farbe"
)

var genderFeatureKeys = []string{"Geschlecht", "geschlecht", "gender"}

// EANInfo is attached to products that went through EAN enrichment.
type EANInfo struct {
	ParentEAN   interface{} `json:"parentEan"`
	VariantEANs []string    `json:"variantEans"`
	ResolvedEAN interface{} `json:"resolvedEan"`
}

// ProductAttributes is the canonical product shape.
type ProductAttributes struct {
	ProductNumber   string                 `json:"productNumber"`
	Name            string                 `json:"name"`
	Stock           int                    `json:"stock"`
	UpdatedAt       *string                `json:"updatedAt"`
	ManufacturerID  *string                `json:"manufacturerId"`
	Manufacturer    interface{}            `json:"manufacturer"`
	Active          bool                   `json:"active"`
	Description     string                 `json:"description"`
	MetaDescription *string                `json:"metaDescription"`
	MetaTitle       *string                `json:"metaTitle"`
	Keywords        *string                `json:"keywords"`
	CustomFields    map[string]interface{} `json:"customFields"`
	Gender          string                 `json:"gender"`
	Color           *string                `json:"color"`
	*EANInfo
}

type Product struct {
	ID         string            `json:"id,omitempty"`
	Attributes ProductAttributes `json:"attributes"`
}

// FlatProduct carries the attributes next to the id.
type FlatProduct struct {
	ID string `json:"id,omitempty"`
	ProductAttributes
}

// MapProduct builds the canonical product. Every field falls back on its
// own, so a broken field never affects the others.
func MapProduct(e Entity) Product {
	attrs := ProductAttributes{
		ProductNumber: firstString("",
			field(e, "productNumber"),
			field(e, "customFields", LegacyProductNumberKey),
		),
		Name: firstString(UnnamedProduct,
			field(e, "translated", "name"),
			field(e, "name"),
		),
		UpdatedAt:      optionalString(e, "updatedAt"),
		ManufacturerID: optionalString(e, "manufacturerId"),
		Description: firstString("",
			field(e, "description"),
			field(e, "translated", "description"),
		),
		MetaDescription: optionalString(e, "metaDescription"),
		MetaTitle:       optionalString(e, "metaTitle"),
		Keywords:        optionalString(e, "keywords"),
		Gender:          gender(e),
		Color:           color(e),
		CustomFields:    map[string]interface{}{},
	}

	if stock, ok := e.Int("stock"); ok {
		attrs.Stock = stock
	}
	if active, ok := e.Bool("active"); ok {
		attrs.Active = active
	}
	if m, ok := e.Value("manufacturer"); ok && truthy(m) {
		attrs.Manufacturer = m
	}
	if cf, ok := e.Object("customFields"); ok {
		attrs.CustomFields = cf
	}

	return Product{ID: e.ID, Attributes: attrs}
}

// MapProductFlat maps e and spreads the attributes beside the id.
func MapProductFlat(e Entity) FlatProduct {
	p := MapProduct(e)
	return FlatProduct{ID: p.ID, ProductAttributes: p.Attributes}
}

// MapEnrichedProduct maps a resource produced by ean.EnhanceProducts and
// carries its EAN attributes over.
func MapEnrichedProduct(r jsonapi.Resource) Product {
	p := MapProduct(NewEntity(r))

	info := &EANInfo{VariantEANs: []string{}}
	if v, ok := r.Attributes[ean.AttrParentEAN]; ok {
		info.ParentEAN = v
	}
	if v, ok := r.Attributes[ean.AttrVariantEANs].([]string); ok {
		info.VariantEANs = v
	}
	if v, ok := r.Attributes[ean.AttrResolvedEAN]; ok {
		info.ResolvedEAN = v
	}
	p.Attributes.EANInfo = info
	return p
}

func MapFlatProducts(resources []jsonapi.Resource) []FlatProduct {
	out := make([]FlatProduct, 0, len(resources))
	for _, r := range resources {
		out = append(out, MapProductFlat(NewEntity(r)))
	}
	return out
}

func gender(e Entity) string {
	candidates := make([]func() (string, bool), 0, len(genderFeatureKeys))
	for _, key := range genderFeatureKeys {
		candidates = append(candidates, field(e, "featureSet", "features", key))
	}
	return firstString(UnknownGender, candidates...)
}

func color(e Entity) *string {
	props, ok := e.List("properties")
	if !ok {
		return nil
	}
	for _, raw := range props {
		obj, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		prop := EntityFromMap(obj)
		direct, _ := prop.String("group", "name")
		translated, _ := prop.String("group", "translated", "name")
		if strings.ToLower(direct) != colorGroup && strings.ToLower(translated) != colorGroup {
			continue
		}
		return optionalString(prop, "name")
	}
	return nil
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	}
	return true
}

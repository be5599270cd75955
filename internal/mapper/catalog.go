package mapper

import "storefront-bff/internal/jsonapi"

// ShortTextKey is the custom field holding a product's teaser text.
const ShortTextKey = "custom_add_product_attributes_short_text"

type Manufacturer struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	MediaID *string `json:"mediaId"`
	Link    *string `json:"link"`
}

// MapManufacturer resolves name and media id with the same fallback rules
// as products.
func MapManufacturer(e Entity) Manufacturer {
	return Manufacturer{
		ID: e.ID,
		Name: firstString(UnnamedProduct,
			field(e, "translated", "name"),
			field(e, "name"),
		),
		MediaID: mediaID(e),
		Link:    optionalString(e, "link"),
	}
}

func mediaID(e Entity) *string {
	if id := optionalString(e, "mediaId"); id != nil {
		return id
	}
	return optionalString(e, "attributes", "mediaId")
}

// MapManufacturersWithMedia keeps only manufacturers that have a logo.
func MapManufacturersWithMedia(resources []jsonapi.Resource) []Manufacturer {
	out := make([]Manufacturer, 0, len(resources))
	for _, r := range resources {
		m := MapManufacturer(NewEntity(r))
		if m.MediaID == nil {
			continue
		}
		out = append(out, m)
	}
	return out
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func MapCategories(resources []jsonapi.Resource) []Category {
	out := make([]Category, 0, len(resources))
	for _, r := range resources {
		e := NewEntity(r)
		out = append(out, Category{
			ID:   e.ID,
			Name: firstString("", field(e, "translated", "name"), field(e, "name")),
		})
	}
	return out
}

// RelatedProduct is the summary shown in the related products picker.
type RelatedProduct struct {
	ID                   string      `json:"id"`
	Name                 interface{} `json:"name"`
	ProductNumber        interface{} `json:"productNumber"`
	Active               interface{} `json:"active"`
	Description          interface{} `json:"description"`
	CustomSearchKeywords interface{} `json:"customSearchKeywords"`
	EAN                  interface{} `json:"ean"`
	MetaDescription      interface{} `json:"metaDescription"`
	MetaTitle            interface{} `json:"metaTitle"`
	Keywords             interface{} `json:"keywords"`
	CategoryIDs          interface{} `json:"categoryIds"`
	ShortText            interface{} `json:"shortText"`
}

// MapRelatedProduct copies the summary members as they are.
func MapRelatedProduct(e Entity) RelatedProduct {
	value := func(path ...string) interface{} {
		v, _ := e.Value(path...)
		return v
	}
	return RelatedProduct{
		ID:                   e.ID,
		Name:                 value("name"),
		ProductNumber:        value("productNumber"),
		Active:               value("active"),
		Description:          value("description"),
		CustomSearchKeywords: value("customSearchKeywords"),
		EAN:                  value("ean"),
		MetaDescription:      value("metaDescription"),
		MetaTitle:            value("metaTitle"),
		Keywords:             value("keywords"),
		CategoryIDs:          value("categoryIds"),
		ShortText:            value("customFields", ShortTextKey),
	}
}

func MapRelatedProducts(resources []jsonapi.Resource) []RelatedProduct {
	out := make([]RelatedProduct, 0, len(resources))
	for _, r := range resources {
		out = append(out, MapRelatedProduct(NewEntity(r)))
	}
	return out
}

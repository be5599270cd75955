package query

import "strings"

// Profile is the endpoint-specific part of a product listing query.
type Profile struct {
	Name         string
	BaseFilters  []Filter
	Associations Associations
}

// CatalogProfile lists main products in stock without a cover image.
func CatalogProfile() Profile {
	return Profile{
		Name: "catalog",
		BaseFilters: []Filter{
			Range("stock", RangeParameters{GTE: 1}),
			Equals("parentId", nil),
			Equals("coverId", nil),
		},
	}
}

// LegacyProfile lists inactive products in stock.
func LegacyProfile() Profile {
	return Profile{
		Name: "legacy",
		BaseFilters: []Filter{
			Range("stock", RangeParameters{GTE: 1}),
			Equals("active", false),
		},
	}
}

// ProfileByName returns the named listing profile, falling back to CatalogProfile.
func ProfileByName(name string) Profile {
	if strings.EqualFold(name, "legacy") {
		return LegacyProfile()
	}
	return CatalogProfile()
}

// Builder assembles upstream search criteria.
type Builder struct {
	countMode TotalCountMode
}

func NewBuilder(countMode TotalCountMode) *Builder {
	if countMode == "" {
		countMode = TotalCountExact
	}
	return &Builder{countMode: countMode}
}

// Products builds a product search. A search term replaces the profile's
// base filters with a name match; a manufacturer id narrows either variant.
func (b *Builder) Products(profile Profile, p Params) Criteria {
	var filters []Filter
	if p.SearchTerm != "" {
		filters = []Filter{Contains("name", p.SearchTerm)}
	} else {
		filters = append(filters, profile.BaseFilters...)
	}
	if p.ManufacturerID != "" {
		filters = append(filters, Equals("manufacturerId", p.ManufacturerID))
	}

	c := Criteria{
		Limit:          p.Limit,
		Page:           p.Page,
		Filter:         filters,
		Sort:           []Sort{{Field: p.SortField, Order: p.SortDirection}},
		TotalCountMode: b.countMode,
	}
	for name := range profile.Associations {
		c = c.WithAssociation(name)
	}
	return c
}

// RelatedProducts finds main products whose name starts with the first
// comma-separated part of productName.
func (b *Builder) RelatedProducts(productName string) Criteria {
	prefix := strings.TrimSpace(strings.SplitN(productName, ",", 2)[0])
	return Criteria{
		Filter: []Filter{
			Multi(OperatorAnd,
				Contains("name", prefix),
				Range("name", RangeParameters{GTE: prefix, LT: prefix + "\uffff"}),
			),
			Equals("parentId", nil),
		},
	}
}

// ManufacturerLimit caps the manufacturer listing.
const ManufacturerLimit = 5000

// Manufacturers lists manufacturers that have products and a logo.
func (b *Builder) Manufacturers() Criteria {
	return Criteria{
		Limit: ManufacturerLimit,
		Filter: []Filter{
			Not(Equals("products.id", nil)),
			Not(Equals("media.id", nil)),
		},
	}
}

// CategoriesWithProducts lists active categories that contain products.
func (b *Builder) CategoriesWithProducts() Criteria {
	return Criteria{
		Filter: []Filter{
			Multi(OperatorAnd,
				Range("productCount", RangeParameters{GT: 0}),
				Equals("active", true),
			),
		},
		Sort: []Sort{{Field: "name", Order: "ASC"}},
	}
}

package models

import "encoding/json"

// ProductListRequest is the body of the product list, search and export endpoints.
// Page and Limit arrive as numbers or numeric strings.
type ProductListRequest struct {
	Page           interface{} `json:"page"`
	Limit          interface{} `json:"limit"`
	SortField      string      `json:"sortField"`
	SortDirection  string      `json:"sortDirection"`
	SearchTerm     string      `json:"searchTerm"`
	ManufacturerID string      `json:"manufacturerId"`
}

type RelatedProductsRequest struct {
	ProductName string `json:"productName"`
}

// ProductForm is the editable subset of a product as sent by the editor.
// Description holds either a block document or an HTML string.
type ProductForm struct {
	ID              string                 `json:"id"`
	Description     json.RawMessage        `json:"description,omitempty"`
	MetaDescription *string                `json:"metaDescription,omitempty"`
	MetaTitle       *string                `json:"metaTitle,omitempty"`
	Keywords        *string                `json:"keywords,omitempty"`
	CategoryIDs     []string               `json:"categoryIds,omitempty"`
	CustomFields    map[string]interface{} `json:"customFields,omitempty"`
	Gender          *string                `json:"gender,omitempty"`

	// Name and ProductNumber label the change event. They are never
	// written upstream.
	Name          string `json:"name,omitempty"`
	ProductNumber string `json:"productNumber,omitempty"`
}

type UpdateRelatedProductsRequest struct {
	IDs      []string    `json:"ids"`
	FormData ProductForm `json:"formData"`
}

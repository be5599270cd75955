package models

// JSON is a free-form JSON object.
type JSON map[string]interface{}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Log       string `json:"log,omitempty"`
	Error     Error  `json:"error"`
	Timestamp string `json:"timestamp,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details *JSON  `json:"details,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Log     string      `json:"log,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

// ProductListResponse is returned by the product list endpoints.
type ProductListResponse struct {
	Success       bool        `json:"success"`
	Log           string      `json:"log"`
	Products      interface{} `json:"products"`
	TotalProducts int         `json:"totalProducts"`
}

type RelatedProductsResponse struct {
	Success         bool        `json:"success"`
	Log             string      `json:"log"`
	RelatedProducts interface{} `json:"relatedProducts"`
}

type ManufacturerListResponse struct {
	Success       bool        `json:"success"`
	Log           string      `json:"log"`
	Manufacturers interface{} `json:"manufacturers"`
}

type CategoryListResponse struct {
	Success    bool        `json:"success"`
	Log        string      `json:"log"`
	Categories interface{} `json:"categories"`
}

// WriteErrorResponse is the body of a failed update.
type WriteErrorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   interface{} `json:"error"`
}

// BulkUpdateResult is the outcome of one product in a bulk update.
type BulkUpdateResult struct {
	ID      string      `json:"id"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type BulkUpdateResponse struct {
	Success bool               `json:"success"`
	Results []BulkUpdateResult `json:"results"`
}

// Error codes
const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeUpstreamError = "UPSTREAM_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeInternalError = "INTERNAL_ERROR"
	CodeExportFailed  = "EXPORT_FAILED"
)

// ProductResponse wraps a single upstream product.
type ProductResponse struct {
	Success bool        `json:"success"`
	Log     string      `json:"log"`
	Product interface{} `json:"product"`
}

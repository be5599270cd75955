package query

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"storefront-bff/internal/models"
	"storefront-bff/internal/validation"
)

// Params are validated paging, sorting and narrowing inputs.
type Params struct {
	Page           int
	Limit          int
	SortField      string
	SortDirection  string
	SearchTerm     string
	ManufacturerID string
}

// Defaults fill parameters the client left out.
type Defaults struct {
	Page          int
	Limit         int
	SortField     string
	SortDirection string
}

// ListDefaults apply to the latest-products listing.
var ListDefaults = Defaults{Page: 1, Limit: 10, SortField: validation.SortFieldUpdatedAt, SortDirection: validation.SortDirectionDesc}

// SearchDefaults apply to free-text search.
var SearchDefaults = Defaults{Page: 1, Limit: 10, SortField: validation.SortFieldName, SortDirection: validation.SortDirectionAsc}

// ParseParams validates a client request. Page and limit may be numbers or
// numeric strings; anything else is an *models.InvalidInputError.
func ParseParams(req models.ProductListRequest, defaults Defaults) (Params, error) {
	page, err := coercePositiveInt("page", req.Page, defaults.Page)
	if err != nil {
		return Params{}, err
	}
	limit, err := coercePositiveInt("limit", req.Limit, defaults.Limit)
	if err != nil {
		return Params{}, err
	}

	sortField := req.SortField
	if sortField == "" {
		sortField = defaults.SortField
	}
	if !validation.IsValidSortField(sortField) {
		return Params{}, models.NewInvalidInput("sortField", "invalid sortField %q, expected one of %s",
			sortField, strings.Join(validation.SortFields(), ", "))
	}

	sortDirection := req.SortDirection
	if sortDirection == "" {
		sortDirection = defaults.SortDirection
	}
	if !validation.IsValidSortDirection(sortDirection) {
		return Params{}, models.NewInvalidInput("sortDirection", "invalid sortDirection %q, expected asc or desc", sortDirection)
	}

	return Params{
		Page:           page,
		Limit:          limit,
		SortField:      sortField,
		SortDirection:  strings.ToLower(sortDirection),
		SearchTerm:     strings.TrimSpace(req.SearchTerm),
		ManufacturerID: strings.TrimSpace(req.ManufacturerID),
	}, nil
}

func coercePositiveInt(field string, value interface{}, fallback int) (int, error) {
	var n float64
	switch v := value.(type) {
	case nil:
		return fallback, nil
	case float64:
		n = v
	case int:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, models.NewInvalidInput(field, "must be a number")
		}
		n = f
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return fallback, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, models.NewInvalidInput(field, "must be a number, got %q", v)
		}
		n = f
	default:
		return 0, models.NewInvalidInput(field, "must be a number")
	}

	if n != math.Trunc(n) || n < 1 || n > math.MaxInt32 {
		return 0, models.NewInvalidInput(field, "must be a positive integer")
	}
	return int(n), nil
}

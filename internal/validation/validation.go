package validation

import "strings"

// Sortable product fields accepted from clients.
const (
	SortFieldUpdatedAt     = "updatedAt"
	SortFieldName          = "name"
	SortFieldStock         = "stock"
	SortFieldProductNumber = "productNumber"
)

// Sort directions accepted from clients.
const (
	SortDirectionAsc  = "asc"
	SortDirectionDesc = "desc"
)

var validSortFields = map[string]struct{}{
	SortFieldUpdatedAt:     {},
	SortFieldName:          {},
	SortFieldStock:         {},
	SortFieldProductNumber: {},
}

// IsValidSortField reports whether field is one of the sortable product fields.
// The comparison is case-sensitive because the upstream field names are.
func IsValidSortField(field string) bool {
	_, ok := validSortFields[field]
	return ok
}

// IsValidSortDirection reports whether direction is asc or desc, ignoring case.
func IsValidSortDirection(direction string) bool {
	switch strings.ToLower(direction) {
	case SortDirectionAsc, SortDirectionDesc:
		return true
	}
	return false
}

// SortFields returns the accepted sort fields in a stable order, for error messages.
func SortFields() []string {
	return []string{SortFieldUpdatedAt, SortFieldName, SortFieldStock, SortFieldProductNumber}
}

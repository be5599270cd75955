package query

import "encoding/json"

type FilterType string

const (
	FilterEquals   FilterType = "equals"
	FilterContains FilterType = "contains"
	FilterRange    FilterType = "range"
	FilterNot      FilterType = "not"
	FilterMulti    FilterType = "multi"
)

// Logical operators for multi and not filters.
const (
	OperatorAnd = "AND"
	OperatorOr  = "OR"
)

// RangeParameters bounds a range filter. Unset bounds are omitted.
type RangeParameters struct {
	GTE interface{} `json:"gte,omitempty"`
	GT  interface{} `json:"gt,omitempty"`
	LTE interface{} `json:"lte,omitempty"`
	LT  interface{} `json:"lt,omitempty"`
}

// Filter is one clause of the upstream search DSL. Which members are
// meaningful depends on Type; the constructors below set exactly those.
type Filter struct {
	Type       FilterType
	Field      string
	Value      interface{}
	Parameters RangeParameters
	Operator   string
	Queries    []Filter
}

// Equals matches field against value. A nil value matches absent references.
func Equals(field string, value interface{}) Filter {
	return Filter{Type: FilterEquals, Field: field, Value: value}
}

func Contains(field string, value interface{}) Filter {
	return Filter{Type: FilterContains, Field: field, Value: value}
}

func Range(field string, params RangeParameters) Filter {
	return Filter{Type: FilterRange, Field: field, Parameters: params}
}

// Not negates the conjunction of queries.
func Not(queries ...Filter) Filter {
	return Filter{Type: FilterNot, Operator: OperatorAnd, Queries: queries}
}

func Multi(operator string, queries ...Filter) Filter {
	return Filter{Type: FilterMulti, Operator: operator, Queries: queries}
}

func (f Filter) MarshalJSON() ([]byte, error) {
	switch f.Type {
	case FilterRange:
		return json.Marshal(struct {
			Type       FilterType      `json:"type"`
			Field      string          `json:"field"`
			Parameters RangeParameters `json:"parameters"`
		}{f.Type, f.Field, f.Parameters})
	case FilterMulti, FilterNot:
		queries := f.Queries
		if queries == nil {
			queries = []Filter{}
		}
		return json.Marshal(struct {
			Type     FilterType `json:"type"`
			Operator string     `json:"operator"`
			Queries  []Filter   `json:"queries"`
		}{f.Type, f.Operator, queries})
	default:
		return json.Marshal(struct {
			Type  FilterType  `json:"type"`
			Field string      `json:"field"`
			Value interface{} `json:"value"`
		}{f.Type, f.Field, f.Value})
	}
}

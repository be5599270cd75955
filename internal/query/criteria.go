package query

// TotalCountMode tells the upstream how to count matches.
type TotalCountMode string

const (
	TotalCountNone      TotalCountMode = "none"
	TotalCountExact     TotalCountMode = "exact"
	TotalCountNextPages TotalCountMode = "next-pages"
)

type Sort struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

// Associations maps an association name to the criteria applied to it.
type Associations map[string]Criteria

// Criteria is the body of an upstream search request.
type Criteria struct {
	Limit          int            `json:"limit,omitempty"`
	Page           int            `json:"page,omitempty"`
	Filter         []Filter       `json:"filter,omitempty"`
	Sort           []Sort         `json:"sort,omitempty"`
	TotalCountMode TotalCountMode `json:"total-count-mode,omitempty"`
	Associations   Associations   `json:"associations,omitempty"`
}

// WithAssociation returns a copy of c including name. Existing associations,
// including an existing entry for name, are kept as they are.
func (c Criteria) WithAssociation(name string) Criteria {
	merged := make(Associations, len(c.Associations)+1)
	for k, v := range c.Associations {
		merged[k] = v
	}
	if _, ok := merged[name]; !ok {
		merged[name] = Criteria{}
	}
	c.Associations = merged
	return c
}

// ParseTotalCountMode maps a configuration value to a mode, defaulting to exact.
func ParseTotalCountMode(s string) TotalCountMode {
	switch TotalCountMode(s) {
	case TotalCountNone, TotalCountNextPages:
		return TotalCountMode(s)
	}
	return TotalCountExact
}

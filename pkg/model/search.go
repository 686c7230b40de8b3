package model

// EntityType identifies the kind of record being searched.
type EntityType string

const (
	EntityStudents EntityType = "students"
	EntityCourses  EntityType = "courses"
	EntityGrades   EntityType = "grades"
	EntityAll      EntityType = "all"
)

// KnownEntityTypes lists the concrete (non-"all") entity types.
var KnownEntityTypes = []EntityType{EntityStudents, EntityCourses, EntityGrades}

// Operator is a filter comparison operator.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpContains    Operator = "contains"
	OpStartsWith  Operator = "startsWith"
	OpGreaterThan Operator = "greaterThan"
	OpLessThan    Operator = "lessThan"
	OpBetween     Operator = "between"
	OpIsEmpty     Operator = "isEmpty"
	OpIsNotEmpty  Operator = "isNotEmpty"
)

// TakesValue reports whether the operator carries a payload at all.
// isEmpty/isNotEmpty are pure presence checks.
func (op Operator) TakesValue() bool {
	return op != OpIsEmpty && op != OpIsNotEmpty
}

// TakesRange reports whether the operator's payload is a [lo, hi] pair.
func (op Operator) TakesRange() bool {
	return op == OpBetween
}

// FilterCondition is a single (field, operator, value) constraint.
type FilterCondition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    Value    `json:"value"`
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortSpec pairs a sort field with a direction.
type SortSpec struct {
	By    string    `json:"sortBy"`
	Order SortOrder `json:"sortOrder"`
}

// SearchQuery is the canonical request shape sent to the search endpoint.
// Filters is the union of explicitly added conditions and conditions
// synthesized from facet selections, in that order. Page is 0-indexed.
type SearchQuery struct {
	Text       string            `json:"q"`
	EntityType string            `json:"entityType,omitempty" validate:"omitempty,oneof=students courses grades"`
	Filters    []FilterCondition `json:"filters"`
	SortBy     string            `json:"sortBy,omitempty"`
	SortOrder  SortOrder         `json:"sortOrder,omitempty" validate:"omitempty,oneof=asc desc"`
	Page       int               `json:"page" validate:"min=0"`
	PageSize   int               `json:"pageSize" validate:"min=1,max=200"`
}

// SearchItem is one hit in a result page.
type SearchItem struct {
	ID         string         `json:"id"`
	EntityType string         `json:"entityType"`
	Title      string         `json:"title"`
	Fields     map[string]any `json:"fields,omitempty"`
	Score      float64        `json:"score,omitempty"`
}

// FacetValue is one value/count pair reported by the backend for a facet.
type FacetValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// SearchResult is one page of results plus facet data. Total is the
// server's cardinality estimate for the whole query, independent of
// len(Items).
type SearchResult struct {
	Items    []SearchItem            `json:"items"`
	Total    int                     `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"pageSize"`
	Facets   map[string][]FacetValue `json:"facets,omitempty"`
}

// Suggestion is one autocomplete entry.
type Suggestion struct {
	Text string `json:"text"`
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ErrorBody is the error half of the response envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchResponse is the envelope returned by the search endpoint.
type SearchResponse struct {
	Success bool          `json:"success"`
	Data    *SearchResult `json:"data,omitempty"`
	Error   *ErrorBody    `json:"error,omitempty"`
}

// SuggestResponse is the envelope returned by the suggestion endpoint.
type SuggestResponse struct {
	Success bool         `json:"success"`
	Data    []Suggestion `json:"data,omitempty"`
	Error   *ErrorBody   `json:"error,omitempty"`
}

// StatsResponse is the envelope returned by the statistics endpoint.
type StatsResponse struct {
	Success bool           `json:"success"`
	Data    map[string]int `json:"data,omitempty"`
	Error   *ErrorBody     `json:"error,omitempty"`
}

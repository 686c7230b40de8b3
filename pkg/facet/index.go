// Package facet tracks the facet data reported by the last search
// response together with the user's multi-select state per facet key, and
// converts selections into filter conditions at query-build time.
package facet

import (
	"sort"
	"sync"

	"github.com/campusworks/searchkit/pkg/model"
)

// Index holds facet values and selections for one search session. All
// methods are safe for concurrent use.
type Index struct {
	mu       sync.RWMutex
	values   map[string][]model.FacetValue
	selected map[string]map[string]struct{}
}

func New() *Index {
	return &Index{
		values:   make(map[string][]model.FacetValue),
		selected: make(map[string]map[string]struct{}),
	}
}

// SetValues replaces the facet data with the facets of the latest
// response. Selections are kept: a selected value that disappeared from
// the response stays selected until the user clears it.
func (ix *Index) SetValues(facets map[string][]model.FacetValue) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.values = make(map[string][]model.FacetValue, len(facets))
	for key, vals := range facets {
		ix.values[key] = append([]model.FacetValue(nil), vals...)
	}
}

// Values returns the value/count pairs for one facet key.
func (ix *Index) Values(key string) []model.FacetValue {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]model.FacetValue(nil), ix.values[key]...)
}

// Keys returns the facet keys of the last response in sorted order.
func (ix *Index) Keys() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	keys := make([]string, 0, len(ix.values))
	for key := range ix.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// HasFacets reports whether the last response carried any facet data.
// When false, the navigation UI must render an explicit empty state
// instead of a bare empty list.
func (ix *Index) HasFacets() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.values) > 0
}

// Toggle flips membership of value in the selection set for key.
func (ix *Index) Toggle(key, value string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	sel, ok := ix.selected[key]
	if !ok {
		sel = make(map[string]struct{})
		ix.selected[key] = sel
	}
	if _, exists := sel[value]; exists {
		delete(sel, value)
		if len(sel) == 0 {
			delete(ix.selected, key)
		}
	} else {
		sel[value] = struct{}{}
	}
}

// Clear empties the selection for one facet key, leaving other facets
// untouched.
func (ix *Index) Clear(key string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.selected, key)
}

// ClearAll empties every facet selection.
func (ix *Index) ClearAll() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.selected = make(map[string]map[string]struct{})
}

// IsSelected reports whether value is selected under key.
func (ix *Index) IsSelected(key, value string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.selected[key][value]
	return ok
}

// Selected returns the selected values for key in sorted order.
func (ix *Index) Selected(key string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	vals := make([]string, 0, len(ix.selected[key]))
	for v := range ix.selected[key] {
		vals = append(vals, v)
	}
	sort.Strings(vals)
	return vals
}

// Conditions converts the current selections into filter conditions: one
// equals-condition per selected value. Repeated conditions on the same
// field are OR'd within that field by the backend; the client passes them
// through untouched. Order is deterministic (keys sorted, then values).
func (ix *Index) Conditions() []model.FilterCondition {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	keys := make([]string, 0, len(ix.selected))
	for key := range ix.selected {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var conds []model.FilterCondition
	for _, key := range keys {
		vals := make([]string, 0, len(ix.selected[key]))
		for v := range ix.selected[key] {
			vals = append(vals, v)
		}
		sort.Strings(vals)
		for _, v := range vals {
			conds = append(conds, model.FilterCondition{
				Field:    key,
				Operator: model.OpEquals,
				Value:    model.StringValue(v),
			})
		}
	}
	return conds
}

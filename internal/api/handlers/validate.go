package handlers

import (
	"fmt"

	"github.com/campusworks/searchkit/pkg/model"
)

var knownOperators = map[model.Operator]struct{}{
	model.OpEquals:      {},
	model.OpContains:    {},
	model.OpStartsWith:  {},
	model.OpGreaterThan: {},
	model.OpLessThan:    {},
	model.OpBetween:     {},
	model.OpIsEmpty:     {},
	model.OpIsNotEmpty:  {},
}

// validateFilters rejects malformed conditions: unknown operators, a
// non-range payload under between, or a range payload under any other
// operator. Malformed input is never applied to the index.
func validateFilters(conds []model.FilterCondition) error {
	for i, cond := range conds {
		if cond.Field == "" {
			return fmt.Errorf("filter %d: field is required", i)
		}
		if _, ok := knownOperators[cond.Operator]; !ok {
			return fmt.Errorf("filter %d: unknown operator %q", i, cond.Operator)
		}
		if cond.Operator.TakesRange() && !cond.Value.IsRange() {
			return fmt.Errorf("filter %d: operator %q requires a [min, max] value", i, cond.Operator)
		}
		if !cond.Operator.TakesRange() && cond.Value.IsRange() {
			return fmt.Errorf("filter %d: operator %q cannot take a range value", i, cond.Operator)
		}
	}
	return nil
}

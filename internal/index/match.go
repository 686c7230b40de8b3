package index

import (
	"strconv"
	"strings"

	"github.com/campusworks/searchkit/pkg/model"
)

// matchFilters applies the condition list: equals-conditions are grouped
// by field and OR'd within each group, every other condition and every
// group is AND'd.
func matchFilters(rec Record, conds []model.FilterCondition) bool {
	equalsByField := make(map[string][]model.FilterCondition)
	for _, cond := range conds {
		if cond.Operator == model.OpEquals {
			equalsByField[cond.Field] = append(equalsByField[cond.Field], cond)
			continue
		}
		if !matchCondition(rec, cond) {
			return false
		}
	}

	for _, group := range equalsByField {
		anyMatch := false
		for _, cond := range group {
			if matchCondition(rec, cond) {
				anyMatch = true
				break
			}
		}
		if !anyMatch {
			return false
		}
	}
	return true
}

func matchCondition(rec Record, cond model.FilterCondition) bool {
	raw, present := rec.Fields[cond.Field]
	if cond.Field == "title" || cond.Field == "name" {
		if !present {
			raw, present = rec.Title, true
		}
	}

	switch cond.Operator {
	case model.OpIsEmpty:
		return !present || isEmptyValue(raw)
	case model.OpIsNotEmpty:
		return present && !isEmptyValue(raw)
	}

	if !present {
		return false
	}

	switch cond.Operator {
	case model.OpEquals:
		if n, ok := toNumber(raw); ok {
			if want, ok := condNumber(cond.Value); ok {
				return n == want
			}
		}
		return strings.EqualFold(toString(raw), cond.Value.String())
	case model.OpContains:
		return strings.Contains(strings.ToLower(toString(raw)), strings.ToLower(cond.Value.String()))
	case model.OpStartsWith:
		return strings.HasPrefix(strings.ToLower(toString(raw)), strings.ToLower(cond.Value.String()))
	case model.OpGreaterThan:
		if n, ok := toNumber(raw); ok {
			if want, ok := condNumber(cond.Value); ok {
				return n > want
			}
		}
		return toString(raw) > cond.Value.String()
	case model.OpLessThan:
		if n, ok := toNumber(raw); ok {
			if want, ok := condNumber(cond.Value); ok {
				return n < want
			}
		}
		return toString(raw) < cond.Value.String()
	case model.OpBetween:
		if !cond.Value.IsRange() {
			return false
		}
		n, ok := toNumber(raw)
		if !ok {
			return false
		}
		return n >= cond.Value.Lo && n <= cond.Value.Hi
	default:
		return false
	}
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func toNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

func condNumber(v model.Value) (float64, bool) {
	switch v.Kind {
	case model.ValueNumber:
		return v.Num, true
	case model.ValueString:
		n, err := strconv.ParseFloat(v.Str, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// fieldLess orders two records by a named field, numerically when both
// sides coerce, lexically otherwise.
func fieldLess(a, b Record, field string) bool {
	av, aok := a.Fields[field]
	bv, bok := b.Fields[field]
	if field == "title" || field == "name" {
		if !aok {
			av = a.Title
		}
		if !bok {
			bv = b.Title
		}
		aok, bok = true, true
	}
	if !aok || !bok {
		return bok
	}

	an, aNum := toNumber(av)
	bn, bNum := toNumber(bv)
	if aNum && bNum {
		return an < bn
	}
	return strings.ToLower(toString(av)) < strings.ToLower(toString(bv))
}

func stringField(rec Record, field string) (string, bool) {
	v, ok := rec.Fields[field]
	if !ok {
		return "", false
	}
	return toString(v), true
}

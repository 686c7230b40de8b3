package model

import (
	"encoding/json"
	"fmt"
)

// ValueKind discriminates the payload carried by a filter condition. The
// operator decides which kind is legal: between carries a range, the
// presence operators carry nothing, everything else carries one scalar.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueString
	ValueNumber
	ValueRange
)

// Value is the tagged payload of a FilterCondition. The zero Value is the
// empty payload used by isEmpty/isNotEmpty.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Lo   float64
	Hi   float64
}

func StringValue(s string) Value {
	return Value{Kind: ValueString, Str: s}
}

func NumberValue(n float64) Value {
	return Value{Kind: ValueNumber, Num: n}
}

func RangeValue(lo, hi float64) Value {
	return Value{Kind: ValueRange, Lo: lo, Hi: hi}
}

// IsScalar reports whether the value is a single string or number, i.e.
// something a non-range, non-presence operator can keep across an
// operator change.
func (v Value) IsScalar() bool {
	return v.Kind == ValueString || v.Kind == ValueNumber
}

func (v Value) IsRange() bool {
	return v.Kind == ValueRange
}

// String returns the display form of the value.
func (v Value) String() string {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueNumber:
		return fmt.Sprintf("%g", v.Num)
	case ValueRange:
		return fmt.Sprintf("[%g, %g]", v.Lo, v.Hi)
	default:
		return ""
	}
}

// MarshalJSON encodes the value in its wire form: a bare scalar for
// string/number, a two-element array for ranges, and an empty string for
// the empty payload (presence operators send no meaningful value).
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueString:
		return json.Marshal(v.Str)
	case ValueNumber:
		return json.Marshal(v.Num)
	case ValueRange:
		return json.Marshal([2]float64{v.Lo, v.Hi})
	default:
		return json.Marshal("")
	}
}

// UnmarshalJSON accepts the wire forms produced by MarshalJSON: a JSON
// string, a JSON number, or a two-element numeric array. An empty string
// decodes to the empty payload.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch t := raw.(type) {
	case nil:
		*v = Value{}
	case string:
		if t == "" {
			*v = Value{}
		} else {
			*v = StringValue(t)
		}
	case float64:
		*v = NumberValue(t)
	case []any:
		if len(t) != 2 {
			return fmt.Errorf("range value must have exactly 2 elements, got %d", len(t))
		}
		lo, ok1 := t[0].(float64)
		hi, ok2 := t[1].(float64)
		if !ok1 || !ok2 {
			return fmt.Errorf("range endpoints must be numeric")
		}
		*v = RangeValue(lo, hi)
	default:
		return fmt.Errorf("unsupported filter value type %T", raw)
	}
	return nil
}

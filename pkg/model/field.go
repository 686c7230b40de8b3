package model

// FieldType classifies a filterable field for editing purposes.
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldNumber FieldType = "number"
	FieldDate   FieldType = "date"
	FieldSelect FieldType = "select"
	FieldRange  FieldType = "range"
)

// FieldOption is one choice of a select field.
type FieldOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FilterFieldDef declares a filterable field for an entity type. Operators
// is non-empty and ordered; the first entry is the default operator for a
// freshly created condition. Options is populated iff Type is FieldSelect.
type FilterFieldDef struct {
	Name      string        `json:"name"`
	Label     string        `json:"label"`
	Type      FieldType     `json:"type"`
	Operators []Operator    `json:"operators"`
	Options   []FieldOption `json:"options,omitempty"`
}

// DefaultOperator returns the field's first supported operator.
func (d FilterFieldDef) DefaultOperator() Operator {
	if len(d.Operators) == 0 {
		return OpEquals
	}
	return d.Operators[0]
}

// Supports reports whether the field declares the given operator.
func (d FilterFieldDef) Supports(op Operator) bool {
	for _, o := range d.Operators {
		if o == op {
			return true
		}
	}
	return false
}

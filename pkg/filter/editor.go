package filter

import (
	"github.com/campusworks/searchkit/pkg/model"
)

// ConditionEditor binds one filter condition to the field model and keeps
// the (field, operator, value) triple well-formed through every edit.
// Each setter leaves the condition fully typed; a caller can read
// Condition() after any edit and send it upstream as-is.
type ConditionEditor struct {
	model      *Model
	entityType string
	cond       model.FilterCondition
}

// NewConditionEditor creates an editor seeded with the default condition
// for the first field of the entity type.
func NewConditionEditor(m *Model, entityType string) *ConditionEditor {
	e := &ConditionEditor{model: m, entityType: entityType}
	fields := m.Fields(entityType)
	if len(fields) > 0 {
		e.cond = m.DefaultCondition(fields[0])
	}
	return e
}

// EditConditionEditor wraps an existing condition for further editing.
func EditConditionEditor(m *Model, entityType string, cond model.FilterCondition) *ConditionEditor {
	return &ConditionEditor{model: m, entityType: entityType, cond: cond}
}

// Condition returns the current fully-formed condition.
func (e *ConditionEditor) Condition() model.FilterCondition {
	return e.cond
}

// FieldDef returns the definition of the currently selected field.
func (e *ConditionEditor) FieldDef() (model.FilterFieldDef, bool) {
	return e.model.Field(e.entityType, e.cond.Field)
}

// SetField switches the condition to a different field. The previous
// operator and value are discarded, not coerced: the new field's first
// operator and that operator's default value take over.
func (e *ConditionEditor) SetField(name string) {
	def, ok := e.model.Field(e.entityType, name)
	if !ok {
		return
	}
	e.cond = e.model.DefaultCondition(def)
}

// SetOperator changes the comparison operator, normalizing the value:
//   - between always gets a fresh [0,0] range, never a reused scalar
//   - presence operators clear the payload entirely
//   - any other operator keeps the prior value only if it was already a
//     scalar; a range left over from between is re-defaulted instead of
//     being carried as a stale tuple
func (e *ConditionEditor) SetOperator(op model.Operator) {
	def, ok := e.FieldDef()
	if !ok || !def.Supports(op) {
		return
	}

	switch {
	case op.TakesRange():
		e.cond.Value = model.RangeValue(0, 0)
	case !op.TakesValue():
		e.cond.Value = model.Value{}
	default:
		if !e.cond.Value.IsScalar() {
			e.cond.Value = defaultValue(def, op)
		}
	}
	e.cond.Operator = op
}

// SetValue replaces the scalar payload. Field and operator are never
// touched by a value edit. Ignored when the current operator does not
// take a scalar.
func (e *ConditionEditor) SetValue(v model.Value) {
	if !e.cond.Operator.TakesValue() || e.cond.Operator.TakesRange() {
		return
	}
	if !v.IsScalar() {
		return
	}
	e.cond.Value = v
}

// SetMin replaces only the lower endpoint of a range value.
func (e *ConditionEditor) SetMin(lo float64) {
	if !e.cond.Operator.TakesRange() {
		return
	}
	e.ensureRange()
	e.cond.Value.Lo = lo
}

// SetMax replaces only the upper endpoint of a range value.
func (e *ConditionEditor) SetMax(hi float64) {
	if !e.cond.Operator.TakesRange() {
		return
	}
	e.ensureRange()
	e.cond.Value.Hi = hi
}

func (e *ConditionEditor) ensureRange() {
	if !e.cond.Value.IsRange() {
		e.cond.Value = model.RangeValue(0, 0)
	}
}

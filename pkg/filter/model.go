package filter

import (
	"github.com/campusworks/searchkit/pkg/model"
)

// Model is the registry of filterable fields per entity type. It is pure
// data: looking up fields and deriving default conditions never touches
// I/O, so a single Model can be shared by every editor and controller in
// a session.
type Model struct {
	fields  map[string][]model.FilterFieldDef
	generic []model.FilterFieldDef
}

// NewModel builds a Model preloaded with the school-records field sets.
// Entity types without a registered set fall back to the generic fields.
func NewModel() *Model {
	m := &Model{
		fields:  make(map[string][]model.FilterFieldDef),
		generic: genericFields(),
	}
	m.Register(string(model.EntityStudents), studentFields())
	m.Register(string(model.EntityCourses), courseFields())
	m.Register(string(model.EntityGrades), gradeFields())
	return m
}

// Register installs (or replaces) the field definitions for an entity type.
func (m *Model) Register(entityType string, defs []model.FilterFieldDef) {
	m.fields[entityType] = defs
}

// Fields returns the ordered field definitions for the entity type,
// falling back to the generic set when the type defines none.
func (m *Model) Fields(entityType string) []model.FilterFieldDef {
	if defs, ok := m.fields[entityType]; ok && len(defs) > 0 {
		return defs
	}
	return m.generic
}

// Field looks up a single field definition by name within an entity type.
func (m *Model) Field(entityType, name string) (model.FilterFieldDef, bool) {
	for _, def := range m.Fields(entityType) {
		if def.Name == name {
			return def, true
		}
	}
	return model.FilterFieldDef{}, false
}

// DefaultCondition returns a fresh condition for the field: its first
// supported operator paired with a type-appropriate default value.
func (m *Model) DefaultCondition(def model.FilterFieldDef) model.FilterCondition {
	op := def.DefaultOperator()
	return model.FilterCondition{
		Field:    def.Name,
		Operator: op,
		Value:    defaultValue(def, op),
	}
}

// defaultValue picks the initial payload for a field/operator pair:
// between gets a fresh [0,0] range, numeric fields get 0, select fields
// get their first option, everything else an empty string. Presence
// operators carry no payload.
func defaultValue(def model.FilterFieldDef, op model.Operator) model.Value {
	switch {
	case !op.TakesValue():
		return model.Value{}
	case op.TakesRange():
		return model.RangeValue(0, 0)
	case def.Type == model.FieldNumber || def.Type == model.FieldRange:
		return model.NumberValue(0)
	case def.Type == model.FieldSelect && len(def.Options) > 0:
		return model.StringValue(def.Options[0].Value)
	default:
		return model.StringValue("")
	}
}

func genericFields() []model.FilterFieldDef {
	return []model.FilterFieldDef{
		{
			Name:      "name",
			Label:     "Name",
			Type:      model.FieldText,
			Operators: []model.Operator{model.OpContains, model.OpEquals, model.OpStartsWith, model.OpIsEmpty, model.OpIsNotEmpty},
		},
		{
			Name:      "createdAt",
			Label:     "Created",
			Type:      model.FieldDate,
			Operators: []model.Operator{model.OpGreaterThan, model.OpLessThan, model.OpBetween},
		},
	}
}

func studentFields() []model.FilterFieldDef {
	return []model.FilterFieldDef{
		{
			Name:      "name",
			Label:     "Name",
			Type:      model.FieldText,
			Operators: []model.Operator{model.OpContains, model.OpEquals, model.OpStartsWith, model.OpIsEmpty, model.OpIsNotEmpty},
		},
		{
			Name:      "email",
			Label:     "Email",
			Type:      model.FieldText,
			Operators: []model.Operator{model.OpContains, model.OpEquals, model.OpStartsWith, model.OpIsEmpty, model.OpIsNotEmpty},
		},
		{
			Name:  "status",
			Label: "Status",
			Type:  model.FieldSelect,
			Operators: []model.Operator{
				model.OpEquals,
			},
			Options: []model.FieldOption{
				{Value: "active", Label: "Active"},
				{Value: "inactive", Label: "Inactive"},
				{Value: "graduated", Label: "Graduated"},
				{Value: "suspended", Label: "Suspended"},
			},
		},
		{
			Name:      "gpa",
			Label:     "GPA",
			Type:      model.FieldNumber,
			Operators: []model.Operator{model.OpEquals, model.OpGreaterThan, model.OpLessThan, model.OpBetween},
		},
		{
			Name:      "enrolledAt",
			Label:     "Enrolled",
			Type:      model.FieldDate,
			Operators: []model.Operator{model.OpGreaterThan, model.OpLessThan, model.OpBetween},
		},
	}
}

func courseFields() []model.FilterFieldDef {
	return []model.FilterFieldDef{
		{
			Name:      "title",
			Label:     "Title",
			Type:      model.FieldText,
			Operators: []model.Operator{model.OpContains, model.OpEquals, model.OpStartsWith},
		},
		{
			Name:  "department",
			Label: "Department",
			Type:  model.FieldSelect,
			Operators: []model.Operator{
				model.OpEquals,
			},
			Options: []model.FieldOption{
				{Value: "math", Label: "Mathematics"},
				{Value: "science", Label: "Science"},
				{Value: "humanities", Label: "Humanities"},
				{Value: "arts", Label: "Arts"},
			},
		},
		{
			Name:      "credits",
			Label:     "Credits",
			Type:      model.FieldNumber,
			Operators: []model.Operator{model.OpEquals, model.OpGreaterThan, model.OpLessThan, model.OpBetween},
		},
		{
			Name:  "semester",
			Label: "Semester",
			Type:  model.FieldSelect,
			Operators: []model.Operator{
				model.OpEquals,
			},
			Options: []model.FieldOption{
				{Value: "fall", Label: "Fall"},
				{Value: "spring", Label: "Spring"},
				{Value: "summer", Label: "Summer"},
			},
		},
	}
}

func gradeFields() []model.FilterFieldDef {
	return []model.FilterFieldDef{
		{
			Name:      "student",
			Label:     "Student",
			Type:      model.FieldText,
			Operators: []model.Operator{model.OpContains, model.OpEquals},
		},
		{
			Name:      "course",
			Label:     "Course",
			Type:      model.FieldText,
			Operators: []model.Operator{model.OpContains, model.OpEquals},
		},
		{
			Name:      "score",
			Label:     "Score",
			Type:      model.FieldNumber,
			Operators: []model.Operator{model.OpEquals, model.OpGreaterThan, model.OpLessThan, model.OpBetween},
		},
		{
			Name:      "gradedAt",
			Label:     "Graded",
			Type:      model.FieldDate,
			Operators: []model.Operator{model.OpGreaterThan, model.OpLessThan, model.OpBetween},
		},
	}
}

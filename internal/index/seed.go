package index

import (
	"fmt"
)

// SeedSampleData loads a small demonstration dataset so the server is
// searchable out of the box.
func SeedSampleData(ix *Index) {
	students := []struct {
		name, email, status string
		gpa                 float64
	}{
		{"John Miller", "john.miller@school.edu", "active", 3.4},
		{"Johanna Price", "johanna.price@school.edu", "active", 3.9},
		{"Amara Okafor", "amara.okafor@school.edu", "active", 3.7},
		{"Liam Chen", "liam.chen@school.edu", "inactive", 2.8},
		{"Sofia Reyes", "sofia.reyes@school.edu", "graduated", 3.95},
		{"Noah Williams", "noah.williams@school.edu", "active", 3.1},
		{"Emma Johnson", "emma.johnson@school.edu", "suspended", 2.2},
		{"Oliver Brown", "oliver.brown@school.edu", "active", 3.6},
	}
	for i, s := range students {
		ix.Add(Record{
			ID:         fmt.Sprintf("stu-%03d", i+1),
			EntityType: "students",
			Title:      s.name,
			Fields: map[string]any{
				"name":   s.name,
				"email":  s.email,
				"status": s.status,
				"gpa":    s.gpa,
			},
		})
	}

	courses := []struct {
		title, department, semester string
		credits                     float64
	}{
		{"Calculus I", "math", "fall", 4},
		{"Linear Algebra", "math", "spring", 3},
		{"Physics: Mechanics", "science", "fall", 4},
		{"Organic Chemistry", "science", "spring", 4},
		{"World History", "humanities", "fall", 3},
		{"Creative Writing", "arts", "spring", 2},
		{"Music Theory", "arts", "summer", 2},
	}
	for i, c := range courses {
		ix.Add(Record{
			ID:         fmt.Sprintf("crs-%03d", i+1),
			EntityType: "courses",
			Title:      c.title,
			Fields: map[string]any{
				"title":      c.title,
				"department": c.department,
				"semester":   c.semester,
				"credits":    c.credits,
			},
		})
	}

	grades := []struct {
		student, course string
		score           float64
	}{
		{"John Miller", "Calculus I", 88},
		{"Johanna Price", "Calculus I", 95},
		{"Amara Okafor", "Physics: Mechanics", 91},
		{"Liam Chen", "World History", 74},
		{"Sofia Reyes", "Organic Chemistry", 98},
		{"Noah Williams", "Creative Writing", 82},
	}
	for i, g := range grades {
		ix.Add(Record{
			ID:         fmt.Sprintf("grd-%03d", i+1),
			EntityType: "grades",
			Title:      fmt.Sprintf("%s - %s", g.student, g.course),
			Fields: map[string]any{
				"student": g.student,
				"course":  g.course,
				"score":   g.score,
			},
		})
	}
}

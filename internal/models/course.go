package models

// Course describes one offering to be materialized into sections.
type Course struct {
	ID                string   `json:"id" validate:"required"`
	Name              string   `json:"name"`
	MaxStudents       int      `json:"max_students" validate:"required,min=1"`
	PeriodsPerWeek    int      `json:"periods_per_week" validate:"min=0"`
	Sections          int      `json:"sections" validate:"required,min=1"`
	GradeRestrictions []int    `json:"grade_restrictions"`
	RequiredFeatures  []string `json:"required_features"`
}

// AllowsGrade reports grade eligibility; an empty restriction set allows all grades.
func (c *Course) AllowsGrade(grade int) bool {
	if len(c.GradeRestrictions) == 0 {
		return true
	}
	for _, g := range c.GradeRestrictions {
		if g == grade {
			return true
		}
	}
	return false
}

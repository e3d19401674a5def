package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/timetable-engine/internal/dto"
	"github.com/noah-isme/timetable-engine/internal/models"
)

func TestRebalancerEvensOutSections(t *testing.T) {
	input := &dto.ScheduleInput{
		Courses: []models.Course{{ID: "math", MaxStudents: 20, Sections: 2}},
		Config:  dto.ScheduleConfig{PeriodsPerDay: 4, DaysPerWeek: 5},
	}
	big := &models.Section{
		ID: "math-1", CourseID: "math", Capacity: 20,
		Periods:  models.WeekAtSlot(5, 0),
		Enrolled: []string{"s1", "s2", "s3", "s4", "s5", "s6"},
	}
	small := &models.Section{
		ID: "math-2", CourseID: "math", Capacity: 20,
		Periods:  models.WeekAtSlot(5, 1),
		Enrolled: []string{},
	}
	sections := []*models.Section{big, small}

	iterations := NewRebalancer(nil).Rebalance(input, sections, 500)
	assert.Greater(t, iterations, 0)
	assert.LessOrEqual(t, absDiff(len(big.Enrolled), len(small.Enrolled)), 1)
	assert.Len(t, big.Enrolled, 3)
	assert.Len(t, small.Enrolled, 3)
}

func TestRebalancerSkipsNearBalancedCourses(t *testing.T) {
	input := &dto.ScheduleInput{
		Courses: []models.Course{{ID: "math", MaxStudents: 20, Sections: 2}},
		Config:  dto.ScheduleConfig{PeriodsPerDay: 4, DaysPerWeek: 5},
	}
	a := &models.Section{ID: "math-1", CourseID: "math", Capacity: 20,
		Periods: models.WeekAtSlot(5, 0), Enrolled: []string{"s1", "s2"}}
	b := &models.Section{ID: "math-2", CourseID: "math", Capacity: 20,
		Periods: models.WeekAtSlot(5, 1), Enrolled: []string{"s3"}}

	NewRebalancer(nil).Rebalance(input, []*models.Section{a, b}, 500)
	assert.Len(t, a.Enrolled, 2)
	assert.Len(t, b.Enrolled, 1)
}

func TestRebalancerRespectsConflicts(t *testing.T) {
	// Both students already attend art at slot 1, which clashes with math-2:
	// no move is possible even though math is unbalanced.
	input := &dto.ScheduleInput{
		Courses: []models.Course{
			{ID: "math", MaxStudents: 20, Sections: 2},
			{ID: "art", MaxStudents: 20, Sections: 1},
		},
		Config: dto.ScheduleConfig{PeriodsPerDay: 4, DaysPerWeek: 5},
	}
	mathBig := &models.Section{ID: "math-1", CourseID: "math", Capacity: 20,
		Periods: models.WeekAtSlot(5, 0), Enrolled: []string{"s1", "s2", "s3"}}
	mathSmall := &models.Section{ID: "math-2", CourseID: "math", Capacity: 20,
		Periods: models.WeekAtSlot(5, 1), Enrolled: []string{}}
	art := &models.Section{ID: "art-1", CourseID: "art", Capacity: 20,
		Periods: models.WeekAtSlot(5, 1), Enrolled: []string{"s1", "s2", "s3"}}

	NewRebalancer(nil).Rebalance(input, []*models.Section{mathBig, mathSmall, art}, 500)
	assert.Len(t, mathBig.Enrolled, 3)
	assert.Empty(t, mathSmall.Enrolled)
}

func TestRebalancerRespectsCapacity(t *testing.T) {
	input := &dto.ScheduleInput{
		Courses: []models.Course{{ID: "math", MaxStudents: 20, Sections: 2}},
		Config:  dto.ScheduleConfig{PeriodsPerDay: 4, DaysPerWeek: 5},
	}
	big := &models.Section{ID: "math-1", CourseID: "math", Capacity: 20,
		Periods: models.WeekAtSlot(5, 0), Enrolled: []string{"s1", "s2", "s3", "s4"}}
	full := &models.Section{ID: "math-2", CourseID: "math", Capacity: 1,
		Periods: models.WeekAtSlot(5, 1), Enrolled: []string{"s5"}}

	NewRebalancer(nil).Rebalance(input, []*models.Section{big, full}, 500)
	assert.Len(t, big.Enrolled, 4)
	assert.Len(t, full.Enrolled, 1)
}

func TestScoreFormula(t *testing.T) {
	input := &dto.ScheduleInput{
		Courses: []models.Course{{ID: "math", MaxStudents: 20, Sections: 2}},
		Config:  dto.ScheduleConfig{PeriodsPerDay: 4, DaysPerWeek: 5},
	}
	// One empty section (-5, and spread 2-0 costs 1), no teacher on the
	// second (-10), no room on either (-20).
	a := &models.Section{ID: "math-1", CourseID: "math", Capacity: 20,
		TeacherID: "t1", Enrolled: []string{"s1", "s2"}}
	b := &models.Section{ID: "math-2", CourseID: "math", Capacity: 20,
		Enrolled: []string{}}

	score := NewRebalancer(nil).Score(input, []*models.Section{a, b})
	assert.InDelta(t, 100-5-1-20-10, score, 1e-9)
}

func TestScoreClampsToZero(t *testing.T) {
	input := &dto.ScheduleInput{
		Courses: []models.Course{{ID: "c", MaxStudents: 10, Sections: 8}},
		Config:  dto.ScheduleConfig{PeriodsPerDay: 4, DaysPerWeek: 5},
	}
	sections := make([]*models.Section, 0, 8)
	for i := 0; i < 8; i++ {
		sections = append(sections, &models.Section{
			ID: models.SectionID("c", i+1), CourseID: "c", Capacity: 10, Enrolled: []string{},
		})
	}
	score := NewRebalancer(nil).Score(input, sections)
	assert.Zero(t, score)
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-engine/internal/dto"
	"github.com/noah-isme/timetable-engine/internal/models"
)

func fixtureInput() *dto.ScheduleInput {
	return &dto.ScheduleInput{
		Students: []models.Student{
			{ID: "s1", Grade: 12, RequiredCourses: []string{"math"}},
			{ID: "s2", Grade: 9, RequiredCourses: []string{"math"}},
		},
		Teachers: []models.Teacher{
			{ID: "t1", Subjects: []string{"math"}, MaxSections: 2},
		},
		Courses: []models.Course{
			{ID: "math", MaxStudents: 10, Sections: 1},
		},
		Rooms: []models.Room{
			{ID: "r1", Capacity: 15},
		},
		Config: dto.ScheduleConfig{PeriodsPerDay: 4, DaysPerWeek: 5},
	}
}

func cleanSchedule() *models.Schedule {
	return &models.Schedule{
		Sections: []*models.Section{{
			ID: "math-1", CourseID: "math", TeacherID: "t1", RoomID: "r1",
			Periods: models.WeekAtSlot(5, 0), Capacity: 10,
			Enrolled: []string{"s1", "s2"},
		}},
	}
}

func TestCheckCleanSchedule(t *testing.T) {
	violations := Check(fixtureInput(), cleanSchedule())
	assert.Empty(t, violations)
}

func TestCheckUnqualifiedTeacher(t *testing.T) {
	schedule := cleanSchedule()
	schedule.Sections[0].CourseID = "art"
	violations := Check(fixtureInput(), schedule)
	require.NotEmpty(t, violations)
	assert.Equal(t, DimTeacherQualified, violations[0].Dimension)
}

func TestCheckTeacherDoubleBooked(t *testing.T) {
	input := fixtureInput()
	input.Courses[0].Sections = 2
	schedule := cleanSchedule()
	schedule.Sections = append(schedule.Sections, &models.Section{
		ID: "math-2", CourseID: "math", TeacherID: "t1",
		Periods: models.WeekAtSlot(5, 0), Capacity: 10,
	})

	violations := Check(input, schedule)
	assert.True(t, hasDimension(violations, DimTeacherConflict))
}

func TestCheckTeacherUnavailable(t *testing.T) {
	input := fixtureInput()
	input.Teachers[0].Unavailable = models.WeekAtSlot(5, 0)
	violations := Check(input, cleanSchedule())
	assert.True(t, hasDimension(violations, DimTeacherAvailable))
}

func TestCheckTeacherOverMaxSections(t *testing.T) {
	input := fixtureInput()
	input.Teachers[0].MaxSections = 1
	schedule := cleanSchedule()
	schedule.Sections = append(schedule.Sections, &models.Section{
		ID: "math-2", CourseID: "math", TeacherID: "t1",
		Periods: models.WeekAtSlot(5, 1), Capacity: 10,
	})
	violations := Check(input, schedule)
	assert.True(t, hasDimension(violations, DimTeacherMaxSections))
}

func TestCheckRoomCapacityAndFeatures(t *testing.T) {
	input := fixtureInput()
	input.Rooms[0].Capacity = 5
	input.Courses[0].RequiredFeatures = []string{"lab"}
	violations := Check(input, cleanSchedule())
	assert.True(t, hasDimension(violations, DimRoomCapacity))
	assert.True(t, hasDimension(violations, DimRoomFeatures))
}

func TestCheckRoomDoubleBooked(t *testing.T) {
	input := fixtureInput()
	input.Courses = append(input.Courses, models.Course{ID: "art", MaxStudents: 10, Sections: 1})
	input.Teachers[0].Subjects = []string{"math", "art"}
	schedule := cleanSchedule()
	schedule.Sections = append(schedule.Sections, &models.Section{
		ID: "art-1", CourseID: "art", TeacherID: "t1", RoomID: "r1",
		Periods: models.WeekAtSlot(5, 0), Capacity: 10,
	})
	violations := Check(input, schedule)
	assert.True(t, hasDimension(violations, DimRoomConflict))
}

func TestCheckStudentDoubleBooked(t *testing.T) {
	input := fixtureInput()
	input.Courses = append(input.Courses, models.Course{ID: "art", MaxStudents: 10, Sections: 1})
	schedule := cleanSchedule()
	schedule.Sections = append(schedule.Sections, &models.Section{
		ID: "art-1", CourseID: "art",
		Periods: models.WeekAtSlot(5, 0), Capacity: 10,
		Enrolled: []string{"s1"},
	})
	violations := Check(input, schedule)
	assert.True(t, hasDimension(violations, DimStudentConflict))
}

func TestCheckDuplicateCourseEnrollment(t *testing.T) {
	input := fixtureInput()
	input.Courses[0].Sections = 2
	schedule := cleanSchedule()
	schedule.Sections = append(schedule.Sections, &models.Section{
		ID: "math-2", CourseID: "math",
		Periods: models.WeekAtSlot(5, 1), Capacity: 10,
		Enrolled: []string{"s1"},
	})
	violations := Check(input, schedule)
	assert.True(t, hasDimension(violations, DimDuplicateCourse))
}

func TestCheckGradeRestriction(t *testing.T) {
	input := fixtureInput()
	input.Courses[0].GradeRestrictions = []int{12}
	violations := Check(input, cleanSchedule())
	require.True(t, hasDimension(violations, DimGradeRestriction))
	for _, v := range violations {
		if v.Dimension == DimGradeRestriction {
			assert.Equal(t, "s2", v.EntityID)
		}
	}
}

func TestCheckSectionOverCapacity(t *testing.T) {
	schedule := cleanSchedule()
	schedule.Sections[0].Capacity = 1
	violations := Check(fixtureInput(), schedule)
	assert.True(t, hasDimension(violations, DimSectionCapacity))
}

func TestCheckUnassignedEntryMustBeRequested(t *testing.T) {
	schedule := cleanSchedule()
	schedule.Unassigned = []models.Unassigned{
		{StudentID: "s1", CourseID: "chemistry", Reason: "x"},
	}
	violations := Check(fixtureInput(), schedule)
	assert.True(t, hasDimension(violations, DimUnassignedEntry))
}

func hasDimension(violations []Violation, dimension string) bool {
	for _, v := range violations {
		if v.Dimension == dimension {
			return true
		}
	}
	return false
}

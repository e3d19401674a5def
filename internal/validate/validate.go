// Package validate certifies a generated schedule against the hard
// constraints. It consumes engine output and never mutates it, so the engine
// stays testable in isolation.
package validate

import (
	"fmt"

	"github.com/noah-isme/timetable-engine/internal/dto"
	"github.com/noah-isme/timetable-engine/internal/models"
)

// Violation dimensions.
const (
	DimTeacherQualified   = "TEACHER_QUALIFIED"
	DimTeacherConflict    = "NO_TEACHER_CONFLICT"
	DimTeacherAvailable   = "TEACHER_AVAILABILITY"
	DimTeacherMaxSections = "TEACHER_MAX_SECTIONS"
	DimRoomConflict       = "NO_ROOM_CONFLICT"
	DimRoomCapacity       = "ROOM_CAPACITY"
	DimRoomFeatures       = "ROOM_FEATURES"
	DimStudentConflict    = "NO_STUDENT_CONFLICT"
	DimGradeRestriction   = "GRADE_RESTRICTION"
	DimSectionCapacity    = "SECTION_CAPACITY"
	DimDuplicateCourse    = "DUPLICATE_COURSE"
	DimUnassignedEntry    = "UNASSIGNED_ENTRY"
)

// Violation is one certified hard-constraint failure.
type Violation struct {
	Dimension string `json:"dimension"`
	SectionID string `json:"section_id,omitempty"`
	EntityID  string `json:"entity_id,omitempty"`
	Message   string `json:"message"`
}

// Check certifies the schedule against the input it was generated from. An
// empty result certifies every hard constraint.
func Check(input *dto.ScheduleInput, schedule *models.Schedule) []Violation {
	violations := make([]Violation, 0)

	teachers := make(map[string]*models.Teacher, len(input.Teachers))
	for i := range input.Teachers {
		teachers[input.Teachers[i].ID] = &input.Teachers[i]
	}
	courses := make(map[string]*models.Course, len(input.Courses))
	for i := range input.Courses {
		courses[input.Courses[i].ID] = &input.Courses[i]
	}
	rooms := make(map[string]*models.Room, len(input.Rooms))
	for i := range input.Rooms {
		rooms[input.Rooms[i].ID] = &input.Rooms[i]
	}
	students := make(map[string]*models.Student, len(input.Students))
	for i := range input.Students {
		students[input.Students[i].ID] = &input.Students[i]
	}

	violations = append(violations, checkTeachers(schedule, teachers)...)
	violations = append(violations, checkRooms(schedule, rooms, courses)...)
	violations = append(violations, checkStudents(schedule, students, courses)...)
	violations = append(violations, checkUnassigned(schedule, students)...)

	return violations
}

func checkTeachers(schedule *models.Schedule, teachers map[string]*models.Teacher) []Violation {
	violations := make([]Violation, 0)
	occupied := make(map[string]models.PeriodSet)
	sectionCount := make(map[string]int)

	for _, section := range schedule.Sections {
		if section.TeacherID == "" {
			continue
		}
		teacher, ok := teachers[section.TeacherID]
		if !ok {
			violations = append(violations, Violation{
				Dimension: DimTeacherQualified, SectionID: section.ID, EntityID: section.TeacherID,
				Message: "section references unknown teacher",
			})
			continue
		}
		if !teacher.QualifiedFor(section.CourseID) {
			violations = append(violations, Violation{
				Dimension: DimTeacherQualified, SectionID: section.ID, EntityID: teacher.ID,
				Message: fmt.Sprintf("teacher %s is not qualified for %s", teacher.ID, section.CourseID),
			})
		}

		sectionCount[teacher.ID]++
		if sectionCount[teacher.ID] > teacher.MaxSections {
			violations = append(violations, Violation{
				Dimension: DimTeacherMaxSections, SectionID: section.ID, EntityID: teacher.ID,
				Message: fmt.Sprintf("teacher %s holds more than %d sections", teacher.ID, teacher.MaxSections),
			})
		}

		unavailable := models.NewPeriodSet(teacher.Unavailable...)
		set, ok := occupied[teacher.ID]
		if !ok {
			set = models.NewPeriodSet()
			occupied[teacher.ID] = set
		}
		for _, period := range section.Periods {
			if unavailable.Contains(period) {
				violations = append(violations, Violation{
					Dimension: DimTeacherAvailable, SectionID: section.ID, EntityID: teacher.ID,
					Message: fmt.Sprintf("teacher %s is unavailable at %s", teacher.ID, period.Key()),
				})
			}
			if set.Contains(period) {
				violations = append(violations, Violation{
					Dimension: DimTeacherConflict, SectionID: section.ID, EntityID: teacher.ID,
					Message: fmt.Sprintf("teacher %s is double-booked at %s", teacher.ID, period.Key()),
				})
			}
			set.Add(period)
		}
	}
	return violations
}

func checkRooms(schedule *models.Schedule, rooms map[string]*models.Room, courses map[string]*models.Course) []Violation {
	violations := make([]Violation, 0)
	occupied := make(map[string]models.PeriodSet)

	for _, section := range schedule.Sections {
		if section.RoomID == "" {
			continue
		}
		room, ok := rooms[section.RoomID]
		if !ok {
			violations = append(violations, Violation{
				Dimension: DimRoomFeatures, SectionID: section.ID, EntityID: section.RoomID,
				Message: "section references unknown room",
			})
			continue
		}

		if room.Capacity < section.Capacity {
			violations = append(violations, Violation{
				Dimension: DimRoomCapacity, SectionID: section.ID, EntityID: room.ID,
				Message: fmt.Sprintf("room %s capacity %d below section capacity %d", room.ID, room.Capacity, section.Capacity),
			})
		}
		if course, ok := courses[section.CourseID]; ok && !room.HasFeatures(course.RequiredFeatures) {
			violations = append(violations, Violation{
				Dimension: DimRoomFeatures, SectionID: section.ID, EntityID: room.ID,
				Message: fmt.Sprintf("room %s lacks required features for %s", room.ID, section.CourseID),
			})
		}

		unavailable := models.NewPeriodSet(room.Unavailable...)
		set, ok := occupied[room.ID]
		if !ok {
			set = models.NewPeriodSet()
			occupied[room.ID] = set
		}
		for _, period := range section.Periods {
			if unavailable.Contains(period) {
				violations = append(violations, Violation{
					Dimension: DimRoomConflict, SectionID: section.ID, EntityID: room.ID,
					Message: fmt.Sprintf("room %s is unavailable at %s", room.ID, period.Key()),
				})
			}
			if set.Contains(period) {
				violations = append(violations, Violation{
					Dimension: DimRoomConflict, SectionID: section.ID, EntityID: room.ID,
					Message: fmt.Sprintf("room %s is double-booked at %s", room.ID, period.Key()),
				})
			}
			set.Add(period)
		}
	}
	return violations
}

func checkStudents(schedule *models.Schedule, students map[string]*models.Student, courses map[string]*models.Course) []Violation {
	violations := make([]Violation, 0)
	periods := make(map[string]models.PeriodSet)
	enrolledCourses := make(map[string]map[string]bool)

	for _, section := range schedule.Sections {
		if len(section.Enrolled) > section.Capacity {
			violations = append(violations, Violation{
				Dimension: DimSectionCapacity, SectionID: section.ID,
				Message: fmt.Sprintf("section %s enrolled %d over capacity %d", section.ID, len(section.Enrolled), section.Capacity),
			})
		}

		course := courses[section.CourseID]
		for _, studentID := range section.Enrolled {
			if course != nil && len(course.GradeRestrictions) > 0 {
				if student, ok := students[studentID]; ok && !course.AllowsGrade(student.Grade) {
					violations = append(violations, Violation{
						Dimension: DimGradeRestriction, SectionID: section.ID, EntityID: studentID,
						Message: fmt.Sprintf("student %s grade excluded from %s", studentID, section.CourseID),
					})
				}
			}

			taken, ok := enrolledCourses[studentID]
			if !ok {
				taken = make(map[string]bool)
				enrolledCourses[studentID] = taken
			}
			if taken[section.CourseID] {
				violations = append(violations, Violation{
					Dimension: DimDuplicateCourse, SectionID: section.ID, EntityID: studentID,
					Message: fmt.Sprintf("student %s enrolled twice in %s", studentID, section.CourseID),
				})
			}
			taken[section.CourseID] = true

			set, ok := periods[studentID]
			if !ok {
				set = models.NewPeriodSet()
				periods[studentID] = set
			}
			for _, period := range section.Periods {
				if set.Contains(period) {
					violations = append(violations, Violation{
						Dimension: DimStudentConflict, SectionID: section.ID, EntityID: studentID,
						Message: fmt.Sprintf("student %s double-booked at %s", studentID, period.Key()),
					})
				}
				set.Add(period)
			}
		}
	}
	return violations
}

// checkUnassigned verifies every unassigned entry names a course the student
// actually requested.
func checkUnassigned(schedule *models.Schedule, students map[string]*models.Student) []Violation {
	violations := make([]Violation, 0)
	for _, entry := range schedule.Unassigned {
		student, ok := students[entry.StudentID]
		if !ok {
			violations = append(violations, Violation{
				Dimension: DimUnassignedEntry, EntityID: entry.StudentID,
				Message: "unassigned entry names unknown student",
			})
			continue
		}
		if !student.Requests(entry.CourseID) {
			violations = append(violations, Violation{
				Dimension: DimUnassignedEntry, EntityID: entry.StudentID,
				Message: fmt.Sprintf("student %s never requested %s", entry.StudentID, entry.CourseID),
			})
		}
	}
	return violations
}

package service

import (
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-engine/internal/dto"
	"github.com/noah-isme/timetable-engine/internal/models"
)

// SectionFactory materializes empty sections and hands each a qualified
// teacher round-robin, honoring per-teacher section limits.
type SectionFactory struct {
	logger *zap.Logger
}

// NewSectionFactory builds the phase 1 component.
func NewSectionFactory(logger *zap.Logger) *SectionFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SectionFactory{logger: logger}
}

// Build walks courses in input order and emits course.Sections sections per
// course. A course with no qualified teacher below its limit yields sections
// with an absent teacher; the validator surfaces those downstream.
func (f *SectionFactory) Build(input *dto.ScheduleInput) []*models.Section {
	sections := make([]*models.Section, 0)
	assigned := make(map[string]int, len(input.Teachers))

	for ci := range input.Courses {
		course := &input.Courses[ci]

		pool := make([]*models.Teacher, 0)
		for ti := range input.Teachers {
			teacher := &input.Teachers[ti]
			if teacher.QualifiedFor(course.ID) && assigned[teacher.ID] < teacher.MaxSections {
				pool = append(pool, teacher)
			}
		}

		for i := 0; i < course.Sections; i++ {
			section := &models.Section{
				ID:       models.SectionID(course.ID, i+1),
				CourseID: course.ID,
				Capacity: course.MaxStudents,
				Enrolled: make([]string, 0),
				State:    models.SectionCreated,
			}
			if teacher := pickTeacher(pool, assigned, i); teacher != nil {
				section.TeacherID = teacher.ID
				assigned[teacher.ID]++
				section.State = models.SectionTeachered
			} else {
				f.logger.Warn("no qualified teacher available",
					zap.String("course_id", course.ID),
					zap.String("section_id", section.ID))
			}
			sections = append(sections, section)
		}
	}
	return sections
}

// pickTeacher starts at the round-robin position and walks the pool until a
// teacher still under max_sections is found.
func pickTeacher(pool []*models.Teacher, assigned map[string]int, index int) *models.Teacher {
	if len(pool) == 0 {
		return nil
	}
	for offset := 0; offset < len(pool); offset++ {
		teacher := pool[(index+offset)%len(pool)]
		if assigned[teacher.ID] < teacher.MaxSections {
			return teacher
		}
	}
	return nil
}

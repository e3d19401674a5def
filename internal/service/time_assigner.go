package service

import (
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-engine/internal/dto"
	"github.com/noah-isme/timetable-engine/internal/models"
)

// Penalty weights for slot selection. The same-course weight dominates so a
// course's sections spread across slots; the grade weight keeps two courses
// restricted to the same grade from colliding.
const (
	sameCourseSlotPenalty = 1000
	gradeSlotPenalty      = 500
)

// TimeAssigner picks one slot per section and fixes it across every weekday.
type TimeAssigner struct {
	logger *zap.Logger
}

// NewTimeAssigner builds the phase 2 component.
func NewTimeAssigner(logger *zap.Logger) *TimeAssigner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeAssigner{logger: logger}
}

// Assign runs the penalty-minimizing greedy over all sections, grouped by
// course in input order. Teacher occupancy is seeded with unavailability; a
// section with no feasible slot lands on slot 0 and is left for the
// validator to report.
func (a *TimeAssigner) Assign(input *dto.ScheduleInput, sections []*models.Section) {
	periodsPerDay := input.Config.PeriodsPerDay
	daysPerWeek := input.Config.DaysPerWeek

	slotUsage := make([]int, periodsPerDay)
	gradeSlotUsage := make(map[int][]int)
	teacherOccupied := newOccupancy()
	for i := range input.Teachers {
		teacherOccupied.seed(input.Teachers[i].ID, input.Teachers[i].Unavailable)
	}

	byCourse := make(map[string][]*models.Section, len(input.Courses))
	for _, section := range sections {
		byCourse[section.CourseID] = append(byCourse[section.CourseID], section)
	}

	for ci := range input.Courses {
		course := &input.Courses[ci]
		courseUsedSlots := make(map[int]bool)

		for _, section := range byCourse[course.ID] {
			slot, feasible := a.chooseSlot(section, course, courseUsedSlots, slotUsage, gradeSlotUsage, teacherOccupied, periodsPerDay, daysPerWeek)
			if !feasible {
				a.logger.Warn("no conflict-free slot, forcing slot 0",
					zap.String("section_id", section.ID),
					zap.String("teacher_id", section.TeacherID))
			}

			periods := models.WeekAtSlot(daysPerWeek, slot)
			section.Periods = periods
			section.State = models.SectionTimed

			if section.TeacherID != "" {
				teacherOccupied.commit(section.TeacherID, periods)
			}
			slotUsage[slot]++
			for _, grade := range course.GradeRestrictions {
				usage := gradeUsage(gradeSlotUsage, grade, periodsPerDay)
				usage[slot]++
			}
			courseUsedSlots[slot] = true
		}
	}
}

// chooseSlot returns the feasible slot of minimum penalty, smallest index on
// ties. The second return is false when every slot conflicts and slot 0 was
// forced.
func (a *TimeAssigner) chooseSlot(
	section *models.Section,
	course *models.Course,
	courseUsedSlots map[int]bool,
	slotUsage []int,
	gradeSlotUsage map[int][]int,
	teacherOccupied occupancy,
	periodsPerDay, daysPerWeek int,
) (int, bool) {
	bestSlot := -1
	bestPenalty := 0

	for slot := 0; slot < periodsPerDay; slot++ {
		if !a.slotFeasible(section.TeacherID, slot, daysPerWeek, teacherOccupied) {
			continue
		}
		penalty := slotUsage[slot]
		if courseUsedSlots[slot] {
			penalty += sameCourseSlotPenalty
		}
		for _, grade := range course.GradeRestrictions {
			if usage, ok := gradeSlotUsage[grade]; ok {
				penalty += gradeSlotPenalty * usage[slot]
			}
		}
		if bestSlot == -1 || penalty < bestPenalty {
			bestSlot = slot
			bestPenalty = penalty
		}
	}

	if bestSlot == -1 {
		return 0, false
	}
	return bestSlot, true
}

func (a *TimeAssigner) slotFeasible(teacherID string, slot, daysPerWeek int, teacherOccupied occupancy) bool {
	if teacherID == "" {
		return true
	}
	set, ok := teacherOccupied[teacherID]
	if !ok {
		return true
	}
	for day := 0; day < daysPerWeek; day++ {
		if set.Contains(models.Period{Day: day, Slot: slot}) {
			return false
		}
	}
	return true
}

func gradeUsage(gradeSlotUsage map[int][]int, grade, periodsPerDay int) []int {
	usage, ok := gradeSlotUsage[grade]
	if !ok {
		usage = make([]int, periodsPerDay)
		gradeSlotUsage[grade] = usage
	}
	return usage
}

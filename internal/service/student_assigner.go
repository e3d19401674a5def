package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-engine/internal/dto"
	"github.com/noah-isme/timetable-engine/internal/models"
	"github.com/noah-isme/timetable-engine/internal/solver"
)

// Objective weights. A required course dominates any elective by three
// orders of magnitude but stays an incentive, not an equality: forcing
// required enrollment turns any conflict into global infeasibility.
const (
	requiredCourseWeight = 1000
	electiveWeightBase   = 10
)

// electiveWeight returns the objective weight for the rank-th elective
// (0-indexed). Electives ranked 10 or later carry no weight and produce no
// decision variable; the cutoff is a documented limit of the model.
func electiveWeight(rank int) (float64, bool) {
	if rank < 0 || rank >= electiveWeightBase {
		return 0, false
	}
	return float64(electiveWeightBase - rank), true
}

// Unassigned reasons, stable across runs.
const (
	reasonILPUnplaced    = "ILP could not find feasible assignment"
	reasonGreedyUnplaced = "No available section (conflict or capacity)"
)

// StudentAssigner fills section enrollments. The primary path hands a binary
// program to the solver; the fallback is a two-pass greedy.
type StudentAssigner struct {
	solver solver.Solver
	logger *zap.Logger
}

// NewStudentAssigner builds the phase 4 component. A nil solver disables the
// ILP path entirely.
func NewStudentAssigner(mip solver.Solver, logger *zap.Logger) *StudentAssigner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentAssigner{solver: mip, logger: logger}
}

// assignmentOutcome summarises phase 4 for metadata and progress reporting.
type assignmentOutcome struct {
	Algorithm        string
	Unassigned       []models.Unassigned
	Warnings         []string
	StudentsAssigned int
}

// Assign enrolls students into sections, mutating the section list in place.
func (a *StudentAssigner) Assign(ctx context.Context, input *dto.ScheduleInput, sections []*models.Section, look *lookup) assignmentOutcome {
	outcome := assignmentOutcome{Algorithm: models.AlgorithmILP}

	if a.solver != nil {
		unassigned, err := a.assignILP(ctx, input, sections, look)
		if err == nil {
			outcome.Unassigned = unassigned
			outcome.StudentsAssigned = countAssigned(sections)
			markEnrolled(sections)
			return outcome
		}
		a.logger.Warn("ILP assignment failed, falling back to greedy", zap.Error(err))
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("ILP assignment failed (%v); greedy fallback used", err))
	}

	outcome.Algorithm = models.AlgorithmGreedy
	outcome.Unassigned = a.assignGreedy(input, sections, look)
	outcome.StudentsAssigned = countAssigned(sections)
	markEnrolled(sections)
	return outcome
}

// --- ILP path ---

// candidate is one admissible (student, section) pairing.
type candidate struct {
	student int // index into input.Students
	section int // index into sections
	varIdx  int
}

func (a *StudentAssigner) assignILP(ctx context.Context, input *dto.ScheduleInput, sections []*models.Section, look *lookup) ([]models.Unassigned, error) {
	model := solver.NewModel()
	candidates := make([]candidate, 0)

	// varsByStudentCourse[si][courseID] lists variable indices for the
	// student's sections of that course.
	varsByStudentCourse := make([]map[string][]int, len(input.Students))
	varsBySection := make([][]int, len(sections))

	for si := range input.Students {
		student := &input.Students[si]
		varsByStudentCourse[si] = make(map[string][]int)

		for ki, section := range sections {
			course := look.courses[section.CourseID]
			if course == nil || !course.AllowsGrade(student.Grade) {
				continue
			}

			var weight float64
			if contains(student.RequiredCourses, course.ID) {
				weight = requiredCourseWeight
			} else if w, ok := electiveWeight(student.ElectiveRank(course.ID)); ok {
				weight = w
			} else {
				continue
			}

			varIdx := model.AddVariable(fmt.Sprintf("x[%s,%s]", student.ID, section.ID), weight)
			candidates = append(candidates, candidate{student: si, section: ki, varIdx: varIdx})
			varsByStudentCourse[si][course.ID] = append(varsByStudentCourse[si][course.ID], varIdx)
			varsBySection[ki] = append(varsBySection[ki], varIdx)
		}
	}

	// At most one section per (student, course); required courses first to
	// keep row order deterministic, then electives.
	for si := range input.Students {
		student := &input.Students[si]
		emitted := make(map[string]bool)
		for _, courseID := range student.RequiredCourses {
			a.addCourseCap(model, student.ID, courseID, varsByStudentCourse[si], emitted)
		}
		for _, courseID := range student.ElectiveCourses {
			a.addCourseCap(model, student.ID, courseID, varsByStudentCourse[si], emitted)
		}
	}

	// Nominal section capacity.
	for ki, vars := range varsBySection {
		if len(vars) == 0 {
			continue
		}
		model.AddConstraint(
			fmt.Sprintf("cap[%s]", sections[ki].ID),
			varTerms(vars),
			float64(sections[ki].Capacity),
		)
	}

	// No student attends two sections meeting at the same period.
	for si := range input.Students {
		a.addConflictRows(model, input.Students[si].ID, si, candidates, sections)
	}

	result, err := a.solver.Solve(ctx, model)
	if err != nil {
		return nil, err
	}
	if !result.Status.Accepted() {
		return nil, fmt.Errorf("solver status %s", result.Status)
	}

	for _, cand := range candidates {
		if result.Values[cand.varIdx] > 0.5 {
			sections[cand.section].Enroll(input.Students[cand.student].ID)
		}
	}

	return a.collectILPUnassigned(input, sections, look), nil
}

func (a *StudentAssigner) addCourseCap(model *solver.Model, studentID, courseID string, byCourse map[string][]int, emitted map[string]bool) {
	if emitted[courseID] {
		return
	}
	vars := byCourse[courseID]
	if len(vars) == 0 {
		return
	}
	emitted[courseID] = true
	model.AddConstraint(fmt.Sprintf("one[%s,%s]", studentID, courseID), varTerms(vars), 1)
}

// addConflictRows emits one row per (student, period key) shared by two or
// more of the student's candidate sections. Keys are ordered by first
// appearance so the model is reproducible.
func (a *StudentAssigner) addConflictRows(model *solver.Model, studentID string, si int, candidates []candidate, sections []*models.Section) {
	varsByPeriod := make(map[string][]int)
	keyOrder := make([]string, 0)
	for _, cand := range candidates {
		if cand.student != si {
			continue
		}
		for _, period := range sections[cand.section].Periods {
			key := period.Key()
			if _, seen := varsByPeriod[key]; !seen {
				keyOrder = append(keyOrder, key)
			}
			varsByPeriod[key] = append(varsByPeriod[key], cand.varIdx)
		}
	}
	for _, key := range keyOrder {
		vars := varsByPeriod[key]
		if len(vars) < 2 {
			continue
		}
		model.AddConstraint(fmt.Sprintf("clash[%s,%s]", studentID, key), varTerms(vars), 1)
	}
}

func (a *StudentAssigner) collectILPUnassigned(input *dto.ScheduleInput, sections []*models.Section, look *lookup) []models.Unassigned {
	unassigned := make([]models.Unassigned, 0)
	for si := range input.Students {
		student := &input.Students[si]
		for _, courseID := range student.RequiredCourses {
			course := look.courses[courseID]
			if course == nil || !course.AllowsGrade(student.Grade) {
				continue
			}
			if !enrolledInCourse(sections, courseID, student.ID) {
				unassigned = append(unassigned, models.Unassigned{
					StudentID: student.ID,
					CourseID:  courseID,
					Reason:    reasonILPUnplaced,
				})
			}
		}
	}
	return unassigned
}

// --- Greedy fallback ---

// assignGreedy runs the two-pass greedy: required courses in listed order,
// then electives by preference. Elective failures are silent.
func (a *StudentAssigner) assignGreedy(input *dto.ScheduleInput, sections []*models.Section, look *lookup) []models.Unassigned {
	unassigned := make([]models.Unassigned, 0)
	studentPeriods := make(map[string]models.PeriodSet, len(input.Students))
	byCourse := make(map[string][]*models.Section)
	for _, section := range sections {
		byCourse[section.CourseID] = append(byCourse[section.CourseID], section)
	}

	for si := range input.Students {
		student := &input.Students[si]
		periods := models.NewPeriodSet()
		studentPeriods[student.ID] = periods

		for _, courseID := range student.RequiredCourses {
			if !a.tryEnroll(student, courseID, byCourse, look, periods) {
				unassigned = append(unassigned, models.Unassigned{
					StudentID: student.ID,
					CourseID:  courseID,
					Reason:    reasonGreedyUnplaced,
				})
			}
		}
	}
	for si := range input.Students {
		student := &input.Students[si]
		for _, courseID := range student.ElectiveCourses {
			a.tryEnroll(student, courseID, byCourse, look, studentPeriods[student.ID])
		}
	}
	return unassigned
}

// tryEnroll walks the course's sections least-enrolled first and commits the
// first one with room and no period clash. Insertion-order ties keep the
// walk deterministic.
func (a *StudentAssigner) tryEnroll(student *models.Student, courseID string, byCourse map[string][]*models.Section, look *lookup, periods models.PeriodSet) bool {
	if !eligible(look, courseID, student.Grade) {
		return true // silent skip, not a placement failure
	}
	courseSections := make([]*models.Section, len(byCourse[courseID]))
	copy(courseSections, byCourse[courseID])
	if len(courseSections) == 0 {
		return false
	}
	sort.SliceStable(courseSections, func(i, j int) bool {
		return len(courseSections[i].Enrolled) < len(courseSections[j].Enrolled)
	})

	for _, section := range courseSections {
		if section.AtCapacity() {
			continue
		}
		if periods.ContainsAny(section.Periods) {
			continue
		}
		section.Enroll(student.ID)
		periods.AddAll(section.Periods)
		return true
	}
	return false
}

// eligible reports whether the course exists and admits the student's grade.
func eligible(look *lookup, courseID string, grade int) bool {
	course := look.courses[courseID]
	return course != nil && course.AllowsGrade(grade)
}

// --- helpers ---

func varTerms(vars []int) []solver.Term {
	terms := make([]solver.Term, 0, len(vars))
	for _, v := range vars {
		terms = append(terms, solver.Term{Var: v, Coef: 1})
	}
	return terms
}

func contains(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}

func enrolledInCourse(sections []*models.Section, courseID, studentID string) bool {
	for _, section := range sections {
		if section.CourseID == courseID && section.HasStudent(studentID) {
			return true
		}
	}
	return false
}

func countAssigned(sections []*models.Section) int {
	seen := make(map[string]struct{})
	for _, section := range sections {
		for _, id := range section.Enrolled {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

func markEnrolled(sections []*models.Section) {
	for _, section := range sections {
		section.State = models.SectionEnrolled
	}
}

package service

import (
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-engine/internal/dto"
	"github.com/noah-isme/timetable-engine/internal/models"
)

// scoreWeights are the informational score coefficients. Tuning is allowed
// as long as the score stays monotonic in fewer empty sections, smaller
// spread, and fewer missing assignments.
type scoreWeights struct {
	EmptySection   float64
	SizeSpread     float64
	MissingRoom    float64
	MissingTeacher float64
}

var defaultScoreWeights = scoreWeights{
	EmptySection:   5,
	SizeSpread:     0.5,
	MissingRoom:    10,
	MissingTeacher: 10,
}

// Rebalancer evens out section sizes within each course by moving students
// from the largest to the smallest section when no conflict results.
type Rebalancer struct {
	weights scoreWeights
	logger  *zap.Logger
}

// NewRebalancer builds the phase 5 component.
func NewRebalancer(logger *zap.Logger) *Rebalancer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rebalancer{weights: defaultScoreWeights, logger: logger}
}

// Rebalance runs up to maxIterations local-search passes and stops early on
// the first pass with no improving move. Returns the iterations consumed.
func (r *Rebalancer) Rebalance(input *dto.ScheduleInput, sections []*models.Section, maxIterations int) int {
	if maxIterations <= 0 {
		return 0
	}

	byCourse := make(map[string][]*models.Section)
	for _, section := range sections {
		byCourse[section.CourseID] = append(byCourse[section.CourseID], section)
	}

	studentPeriods := make(map[string]models.PeriodSet)
	for _, section := range sections {
		for _, studentID := range section.Enrolled {
			set, ok := studentPeriods[studentID]
			if !ok {
				set = models.NewPeriodSet()
				studentPeriods[studentID] = set
			}
			set.AddAll(section.Periods)
		}
	}

	iterations := 0
	for ; iterations < maxIterations; iterations++ {
		improved := false
		for ci := range input.Courses {
			group := byCourse[input.Courses[ci].ID]
			if len(group) < 2 {
				continue
			}
			if r.balanceCourse(group, studentPeriods) {
				improved = true
			}
		}
		if !improved {
			break
		}
	}

	for _, section := range sections {
		section.State = models.SectionBalanced
	}
	return iterations
}

// balanceCourse attempts a single move from the course's largest section to
// its smallest. First section wins size ties, keeping runs reproducible.
func (r *Rebalancer) balanceCourse(group []*models.Section, studentPeriods map[string]models.PeriodSet) bool {
	smallest, largest := group[0], group[0]
	for _, section := range group[1:] {
		if len(section.Enrolled) < len(smallest.Enrolled) {
			smallest = section
		}
		if len(section.Enrolled) > len(largest.Enrolled) {
			largest = section
		}
	}
	if len(largest.Enrolled)-len(smallest.Enrolled) <= 1 {
		return false
	}

	for _, studentID := range largest.Enrolled {
		set := studentPeriods[studentID]
		if set == nil {
			continue
		}

		// Tentatively lift the periods this enrollment contributes, then
		// check the target section fits.
		set.RemoveAll(largest.Periods)
		if !set.ContainsAny(smallest.Periods) && !smallest.AtCapacity() {
			largest.Withdraw(studentID)
			smallest.Enroll(studentID)
			set.AddAll(smallest.Periods)
			r.logger.Debug("moved student between sections",
				zap.String("student_id", studentID),
				zap.String("from", largest.ID),
				zap.String("to", smallest.ID))
			return true
		}
		set.AddAll(largest.Periods)
	}
	return false
}

// Score computes the informational schedule score in [0, 100].
func (r *Rebalancer) Score(input *dto.ScheduleInput, sections []*models.Section) float64 {
	score := 100.0

	byCourse := make(map[string][]*models.Section)
	for _, section := range sections {
		byCourse[section.CourseID] = append(byCourse[section.CourseID], section)
		if len(section.Enrolled) == 0 {
			score -= r.weights.EmptySection
		}
		if section.RoomID == "" {
			score -= r.weights.MissingRoom
		}
		if section.TeacherID == "" {
			score -= r.weights.MissingTeacher
		}
	}

	for ci := range input.Courses {
		group := byCourse[input.Courses[ci].ID]
		if len(group) == 0 {
			continue
		}
		minSize, maxSize := len(group[0].Enrolled), len(group[0].Enrolled)
		for _, section := range group[1:] {
			if len(section.Enrolled) < minSize {
				minSize = len(section.Enrolled)
			}
			if len(section.Enrolled) > maxSize {
				maxSize = len(section.Enrolled)
			}
		}
		score -= r.weights.SizeSpread * float64(maxSize-minSize)
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

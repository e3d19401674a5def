package dto

import "github.com/noah-isme/timetable-engine/internal/models"

// ScheduleConfig fixes the weekly time grid for one solve.
type ScheduleConfig struct {
	PeriodsPerDay int `json:"periods_per_day" validate:"required,min=1,max=16"`
	DaysPerWeek   int `json:"days_per_week" validate:"required,min=1,max=7"`
}

// ScheduleInput carries every read-only document the engine consumes.
type ScheduleInput struct {
	Students []models.Student `json:"students" validate:"dive"`
	Teachers []models.Teacher `json:"teachers" validate:"dive"`
	Courses  []models.Course  `json:"courses" validate:"required,min=1,dive"`
	Rooms    []models.Room    `json:"rooms" validate:"dive"`
	Config   ScheduleConfig   `json:"config" validate:"required"`
}

// Progress phases, in pipeline order.
const (
	PhaseInitializing = "initializing"
	PhaseAssigning    = "assigning"
	PhaseOptimizing   = "optimizing"
	PhaseComplete     = "complete"
)

// ProgressCounters carries optional event counters.
type ProgressCounters struct {
	StudentsAssigned int `json:"students_assigned,omitempty"`
	SectionsCreated  int `json:"sections_created,omitempty"`
}

// ProgressEvent is emitted inline on the engine goroutine; handlers must
// return promptly. Percent is monotonic non-decreasing within one solve.
type ProgressEvent struct {
	Phase     string            `json:"phase"`
	Percent   float64           `json:"percent"`
	Operation string            `json:"operation"`
	Counters  *ProgressCounters `json:"counters,omitempty"`
}

// ProgressFunc receives progress events.
type ProgressFunc func(ProgressEvent)

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-engine/internal/dto"
	"github.com/noah-isme/timetable-engine/internal/models"
	"github.com/noah-isme/timetable-engine/internal/solver"
	appErrors "github.com/noah-isme/timetable-engine/pkg/errors"
)

// Options govern one solve.
type Options struct {
	// MaxOptimizationIterations caps the rebalancer; default 500.
	MaxOptimizationIterations int
	// UseILP selects the primary assignment path; default true.
	UseILP bool
	// OnProgress, when set, receives inline progress events.
	OnProgress dto.ProgressFunc
	// Solver overrides the default branch-and-bound backend.
	Solver solver.Solver
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		MaxOptimizationIterations: 500,
		UseILP:                    true,
	}
}

const defaultMaxOptimizationIterations = 500

// Engine runs the five-phase scheduling pipeline. It is single-threaded and
// synchronous; independent engines on disjoint inputs are parallel-safe.
type Engine struct {
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *Metrics
}

// NewEngine wires the pipeline. Metrics may be nil.
func NewEngine(validate *validator.Validate, logger *zap.Logger, metrics *Metrics) *Engine {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{validator: validate, logger: logger, metrics: metrics}
}

// progressTracker enforces monotonic non-decreasing percents.
type progressTracker struct {
	fn   dto.ProgressFunc
	last float64
}

func (p *progressTracker) emit(phase string, percent float64, operation string, counters *dto.ProgressCounters) {
	if p.fn == nil {
		return
	}
	if percent < p.last {
		percent = p.last
	}
	p.last = percent
	p.fn(dto.ProgressEvent{Phase: phase, Percent: percent, Operation: operation, Counters: counters})
}

// Generate produces a schedule for the input. The schedule is always
// complete: infeasibilities surface as absent teachers/rooms and unassigned
// entries, never as partial output.
func (e *Engine) Generate(ctx context.Context, input *dto.ScheduleInput, opts Options) (*models.Schedule, error) {
	started := time.Now()

	if err := e.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInput.Code, appErrors.ErrInput.Kind, "invalid schedule input")
	}
	if opts.MaxOptimizationIterations <= 0 {
		opts.MaxOptimizationIterations = defaultMaxOptimizationIterations
	}

	progress := &progressTracker{fn: opts.OnProgress}
	progress.emit(dto.PhaseInitializing, 0, "loading input", nil)

	look := newLookup(input)

	// Phase 1: sections and teachers.
	sections := NewSectionFactory(e.logger).Build(input)
	if err := e.checkFactoryInvariants(sections, look); err != nil {
		return nil, err
	}
	progress.emit(dto.PhaseInitializing, 10, "sections materialized",
		&dto.ProgressCounters{SectionsCreated: len(sections)})

	// Phase 2: time slots.
	NewTimeAssigner(e.logger).Assign(input, sections)
	progress.emit(dto.PhaseAssigning, 35, "time slots fixed", nil)

	// Phase 3: rooms.
	NewRoomAssigner(e.logger).Assign(input, sections, look)
	progress.emit(dto.PhaseAssigning, 50, "rooms assigned", nil)

	// Phase 4: enrollment.
	mip := opts.Solver
	if opts.UseILP && mip == nil {
		mip = solver.NewBranchBound(solver.Options{Logger: e.logger})
	}
	if !opts.UseILP {
		mip = nil
	}
	outcome := NewStudentAssigner(mip, e.logger).Assign(ctx, input, sections, look)
	if err := e.checkEnrollmentInvariants(sections); err != nil {
		return nil, err
	}
	progress.emit(dto.PhaseAssigning, 85, "students enrolled",
		&dto.ProgressCounters{StudentsAssigned: outcome.StudentsAssigned})

	// Phase 5: rebalancing and score.
	rebalancer := NewRebalancer(e.logger)
	iterations := rebalancer.Rebalance(input, sections, opts.MaxOptimizationIterations)
	score := rebalancer.Score(input, sections)
	progress.emit(dto.PhaseOptimizing, 95, fmt.Sprintf("rebalanced in %d iterations", iterations), nil)

	schedule := &models.Schedule{
		Sections:   sections,
		Unassigned: outcome.Unassigned,
		Metadata: models.ScheduleMetadata{
			RunID:       uuid.NewString(),
			GeneratedAt: time.Now().UTC(),
			Algorithm:   outcome.Algorithm,
			Score:       score,
			SolveTime:   time.Since(started),
			Warnings:    outcome.Warnings,
		},
	}

	if e.metrics != nil {
		e.metrics.ObserveSolve(schedule, time.Since(started))
	}

	e.logger.Info("schedule generated",
		zap.String("run_id", schedule.Metadata.RunID),
		zap.String("algorithm", outcome.Algorithm),
		zap.Float64("score", score),
		zap.Int("sections", len(sections)),
		zap.Int("students_assigned", outcome.StudentsAssigned),
		zap.Int("unassigned", len(outcome.Unassigned)),
		zap.Duration("solve_time", schedule.Metadata.SolveTime))

	progress.emit(dto.PhaseComplete, 100, "schedule complete",
		&dto.ProgressCounters{StudentsAssigned: outcome.StudentsAssigned, SectionsCreated: len(sections)})

	return schedule, nil
}

// checkFactoryInvariants aborts the solve when phase 1 hands a section to an
// unqualified teacher or exceeds a teacher's section limit.
func (e *Engine) checkFactoryInvariants(sections []*models.Section, look *lookup) error {
	counts := make(map[string]int)
	for _, section := range sections {
		if section.TeacherID == "" {
			continue
		}
		teacher := look.teachers[section.TeacherID]
		if teacher == nil {
			return appErrors.InPhase(appErrors.Clone(appErrors.ErrInternal,
				fmt.Sprintf("section %s references unknown teacher %s", section.ID, section.TeacherID)), "section_factory")
		}
		if !teacher.QualifiedFor(section.CourseID) {
			return appErrors.InPhase(appErrors.Clone(appErrors.ErrInternal,
				fmt.Sprintf("teacher %s not qualified for course %s", teacher.ID, section.CourseID)), "section_factory")
		}
		counts[teacher.ID]++
		if counts[teacher.ID] > teacher.MaxSections {
			return appErrors.InPhase(appErrors.Clone(appErrors.ErrInternal,
				fmt.Sprintf("teacher %s exceeds max sections %d", teacher.ID, teacher.MaxSections)), "section_factory")
		}
	}
	return nil
}

// checkEnrollmentInvariants aborts when phase 4 overfills a section.
func (e *Engine) checkEnrollmentInvariants(sections []*models.Section) error {
	for _, section := range sections {
		if len(section.Enrolled) > section.Capacity {
			return appErrors.InPhase(appErrors.Clone(appErrors.ErrInternal,
				fmt.Sprintf("section %s enrolled %d over capacity %d", section.ID, len(section.Enrolled), section.Capacity)), "student_assigner")
		}
	}
	return nil
}

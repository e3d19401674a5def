// Package ingest reads the four input documents and the constraint
// configuration file, and refuses to hand the engine anything malformed.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-engine/internal/dto"
	appErrors "github.com/noah-isme/timetable-engine/pkg/errors"
)

// Loader parses and validates input documents.
type Loader struct {
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLoader builds a loader.
func NewLoader(validate *validator.Validate, logger *zap.Logger) *Loader {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{validator: validate, logger: logger}
}

// Paths names the four input documents.
type Paths struct {
	Students string
	Teachers string
	Courses  string
	Rooms    string
}

// Load reads all documents, applies struct validation and referential
// checks, and returns the engine input with the given grid config.
func (l *Loader) Load(paths Paths, config dto.ScheduleConfig) (*dto.ScheduleInput, error) {
	input := &dto.ScheduleInput{Config: config}

	if err := readDocument(paths.Students, &input.Students); err != nil {
		return nil, err
	}
	if err := readDocument(paths.Teachers, &input.Teachers); err != nil {
		return nil, err
	}
	if err := readDocument(paths.Courses, &input.Courses); err != nil {
		return nil, err
	}
	if err := readDocument(paths.Rooms, &input.Rooms); err != nil {
		return nil, err
	}

	if err := l.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInput.Code, appErrors.ErrInput.Kind, "input documents failed validation")
	}
	if err := l.checkReferences(input); err != nil {
		return nil, err
	}

	l.logger.Info("input loaded",
		zap.Int("students", len(input.Students)),
		zap.Int("teachers", len(input.Teachers)),
		zap.Int("courses", len(input.Courses)),
		zap.Int("rooms", len(input.Rooms)))
	return input, nil
}

func readDocument(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInput.Code, appErrors.ErrInput.Kind,
			fmt.Sprintf("cannot read input document %s", path))
	}
	if err := json.Unmarshal(data, target); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInput.Code, appErrors.ErrInput.Kind,
			fmt.Sprintf("malformed input document %s", path))
	}
	return nil
}

// checkReferences rejects dangling course references before the engine runs.
func (l *Loader) checkReferences(input *dto.ScheduleInput) error {
	courses := make(map[string]bool, len(input.Courses))
	for i := range input.Courses {
		if courses[input.Courses[i].ID] {
			return appErrors.Clone(appErrors.ErrInput,
				fmt.Sprintf("duplicate course id %s", input.Courses[i].ID))
		}
		courses[input.Courses[i].ID] = true
	}

	for i := range input.Students {
		student := &input.Students[i]
		for _, courseID := range student.RequiredCourses {
			if !courses[courseID] {
				return appErrors.Clone(appErrors.ErrInput,
					fmt.Sprintf("student %s requires nonexistent course %s", student.ID, courseID))
			}
		}
		for _, courseID := range student.ElectiveCourses {
			if !courses[courseID] {
				return appErrors.Clone(appErrors.ErrInput,
					fmt.Sprintf("student %s lists nonexistent elective %s", student.ID, courseID))
			}
		}
	}
	return nil
}

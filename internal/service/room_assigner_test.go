package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-engine/internal/dto"
	"github.com/noah-isme/timetable-engine/internal/models"
)

func TestRoomAssignerPicksSmallestFeasibleRoom(t *testing.T) {
	input := &dto.ScheduleInput{
		Teachers: []models.Teacher{{ID: "t1", Subjects: []string{"math"}, MaxSections: 1}},
		Courses:  []models.Course{{ID: "math", MaxStudents: 20, Sections: 1}},
		Rooms: []models.Room{
			{ID: "hall", Capacity: 100},
			{ID: "r12", Capacity: 25},
			{ID: "r13", Capacity: 40},
		},
		Config: dto.ScheduleConfig{PeriodsPerDay: 4, DaysPerWeek: 5},
	}
	sections := NewSectionFactory(nil).Build(input)
	NewTimeAssigner(nil).Assign(input, sections)
	NewRoomAssigner(nil).Assign(input, sections, newLookup(input))

	assert.Equal(t, "r12", sections[0].RoomID)
}

func TestRoomAssignerFeatureSupersetBeatsSize(t *testing.T) {
	input := &dto.ScheduleInput{
		Teachers: []models.Teacher{{ID: "t1", Subjects: []string{"chem"}, MaxSections: 1}},
		Courses:  []models.Course{{ID: "chem", MaxStudents: 20, Sections: 1, RequiredFeatures: []string{"lab"}}},
		Rooms: []models.Room{
			{ID: "lab1", Capacity: 25, Features: []string{"lab"}},
			{ID: "plain", Capacity: 40},
		},
		Config: dto.ScheduleConfig{PeriodsPerDay: 4, DaysPerWeek: 5},
	}
	sections := NewSectionFactory(nil).Build(input)
	NewTimeAssigner(nil).Assign(input, sections)
	NewRoomAssigner(nil).Assign(input, sections, newLookup(input))

	assert.Equal(t, "lab1", sections[0].RoomID)
}

func TestRoomAssignerLeavesRoomAbsentWhenNoneFeasible(t *testing.T) {
	input := &dto.ScheduleInput{
		Teachers: []models.Teacher{{ID: "t1", Subjects: []string{"chem"}, MaxSections: 1}},
		Courses:  []models.Course{{ID: "chem", MaxStudents: 20, Sections: 1, RequiredFeatures: []string{"lab"}}},
		Rooms:    []models.Room{{ID: "plain", Capacity: 40}},
		Config:   dto.ScheduleConfig{PeriodsPerDay: 4, DaysPerWeek: 5},
	}
	sections := NewSectionFactory(nil).Build(input)
	NewTimeAssigner(nil).Assign(input, sections)
	NewRoomAssigner(nil).Assign(input, sections, newLookup(input))

	assert.Empty(t, sections[0].RoomID)
}

func TestRoomAssignerAvoidsDoubleBooking(t *testing.T) {
	// Two courses with one teacher each collapse onto overlapping slots only
	// if the grid is too small; with one slot both sections meet at 0 and the
	// single room can host only one of them.
	input := &dto.ScheduleInput{
		Teachers: []models.Teacher{
			{ID: "t1", Subjects: []string{"math"}, MaxSections: 1},
			{ID: "t2", Subjects: []string{"art"}, MaxSections: 1},
		},
		Courses: []models.Course{
			{ID: "math", MaxStudents: 20, Sections: 1},
			{ID: "art", MaxStudents: 20, Sections: 1},
		},
		Rooms:  []models.Room{{ID: "r1", Capacity: 30}},
		Config: dto.ScheduleConfig{PeriodsPerDay: 1, DaysPerWeek: 1},
	}
	sections := NewSectionFactory(nil).Build(input)
	NewTimeAssigner(nil).Assign(input, sections)
	NewRoomAssigner(nil).Assign(input, sections, newLookup(input))

	require.Len(t, sections, 2)
	assert.Equal(t, "r1", sections[0].RoomID)
	assert.Empty(t, sections[1].RoomID)
}

func TestRoomAssignerHonoursRoomUnavailability(t *testing.T) {
	input := &dto.ScheduleInput{
		Teachers: []models.Teacher{{ID: "t1", Subjects: []string{"math"}, MaxSections: 1}},
		Courses:  []models.Course{{ID: "math", MaxStudents: 20, Sections: 1}},
		Rooms: []models.Room{
			{ID: "r1", Capacity: 25, Unavailable: models.WeekAtSlot(1, 0)},
			{ID: "r2", Capacity: 30},
		},
		Config: dto.ScheduleConfig{PeriodsPerDay: 1, DaysPerWeek: 1},
	}
	sections := NewSectionFactory(nil).Build(input)
	NewTimeAssigner(nil).Assign(input, sections)
	NewRoomAssigner(nil).Assign(input, sections, newLookup(input))

	assert.Equal(t, "r2", sections[0].RoomID)
}

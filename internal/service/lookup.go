package service

import (
	"github.com/noah-isme/timetable-engine/internal/dto"
	"github.com/noah-isme/timetable-engine/internal/models"
)

// lookup indexes the read-only input documents for one solve. Sections hold
// ids only; every reverse mapping is derived here, never stored back.
type lookup struct {
	students map[string]*models.Student
	teachers map[string]*models.Teacher
	courses  map[string]*models.Course
	rooms    map[string]*models.Room
}

func newLookup(input *dto.ScheduleInput) *lookup {
	l := &lookup{
		students: make(map[string]*models.Student, len(input.Students)),
		teachers: make(map[string]*models.Teacher, len(input.Teachers)),
		courses:  make(map[string]*models.Course, len(input.Courses)),
		rooms:    make(map[string]*models.Room, len(input.Rooms)),
	}
	for i := range input.Students {
		l.students[input.Students[i].ID] = &input.Students[i]
	}
	for i := range input.Teachers {
		l.teachers[input.Teachers[i].ID] = &input.Teachers[i]
	}
	for i := range input.Courses {
		l.courses[input.Courses[i].ID] = &input.Courses[i]
	}
	for i := range input.Rooms {
		l.rooms[input.Rooms[i].ID] = &input.Rooms[i]
	}
	return l
}

// occupancy is a period-key table per entity id, seeded with unavailability
// and grown as the pipeline commits assignments.
type occupancy map[string]models.PeriodSet

func newOccupancy() occupancy {
	return make(occupancy)
}

func (o occupancy) forEntity(id string) models.PeriodSet {
	set, ok := o[id]
	if !ok {
		set = models.NewPeriodSet()
		o[id] = set
	}
	return set
}

func (o occupancy) seed(id string, periods []models.Period) {
	o.forEntity(id).AddAll(periods)
}

func (o occupancy) free(id string, periods []models.Period) bool {
	set, ok := o[id]
	if !ok {
		return true
	}
	return !set.ContainsAny(periods)
}

func (o occupancy) commit(id string, periods []models.Period) {
	o.forEntity(id).AddAll(periods)
}

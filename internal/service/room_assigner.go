package service

import (
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-engine/internal/dto"
	"github.com/noah-isme/timetable-engine/internal/models"
)

// RoomAssigner gives each section the smallest feasible room so large rooms
// stay available for the sections that need them.
type RoomAssigner struct {
	logger *zap.Logger
}

// NewRoomAssigner builds the phase 3 component.
func NewRoomAssigner(logger *zap.Logger) *RoomAssigner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomAssigner{logger: logger}
}

// Assign walks sections in order. Candidates must cover the course's feature
// requirements and hold the section's nominal capacity; the first candidate
// (ascending capacity, input order on ties) free at every section period
// wins. A section with no candidate keeps an absent room id.
func (r *RoomAssigner) Assign(input *dto.ScheduleInput, sections []*models.Section, look *lookup) {
	roomOccupied := newOccupancy()
	for i := range input.Rooms {
		roomOccupied.seed(input.Rooms[i].ID, input.Rooms[i].Unavailable)
	}

	for _, section := range sections {
		course := look.courses[section.CourseID]
		if course == nil {
			continue
		}

		candidates := make([]*models.Room, 0)
		for i := range input.Rooms {
			room := &input.Rooms[i]
			if room.Capacity >= section.Capacity && room.HasFeatures(course.RequiredFeatures) {
				candidates = append(candidates, room)
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Capacity < candidates[j].Capacity
		})

		for _, room := range candidates {
			if roomOccupied.free(room.ID, section.Periods) {
				section.RoomID = room.ID
				roomOccupied.commit(room.ID, section.Periods)
				break
			}
		}
		if section.RoomID == "" {
			r.logger.Warn("no feasible room",
				zap.String("section_id", section.ID),
				zap.Strings("required_features", course.RequiredFeatures))
		}
		section.State = models.SectionRoomed
	}
}

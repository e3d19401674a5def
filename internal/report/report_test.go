package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-engine/internal/dto"
	"github.com/noah-isme/timetable-engine/internal/models"
)

func fixtureSchedule() (*dto.ScheduleInput, *models.Schedule) {
	input := &dto.ScheduleInput{
		Config: dto.ScheduleConfig{PeriodsPerDay: 2, DaysPerWeek: 2},
	}
	schedule := &models.Schedule{
		Sections: []*models.Section{
			{
				ID: "math-1", CourseID: "math", TeacherID: "t1", RoomID: "r1",
				Periods:  models.WeekAtSlot(2, 0),
				Enrolled: []string{"s1", "s2"}, Capacity: 20,
			},
			{
				ID: "art-1", CourseID: "art",
				Periods:  models.WeekAtSlot(2, 1),
				Enrolled: []string{"s1"}, Capacity: 15,
			},
		},
		Unassigned: []models.Unassigned{
			{StudentID: "s3", CourseID: "math", Reason: "No available section (conflict or capacity)"},
		},
		Metadata: models.ScheduleMetadata{RunID: "run-1", Algorithm: models.AlgorithmGreedy, Score: 83.5},
	}
	return input, schedule
}

func TestMasterGrid(t *testing.T) {
	input, schedule := fixtureSchedule()
	grid := NewRenderer().MasterGrid(input, schedule)

	assert.Equal(t, []string{"Slot", "Monday", "Tuesday"}, grid.Headers)
	require.Len(t, grid.Rows, 2)
	assert.Equal(t, "math-1 (r1)", grid.Rows[0]["Monday"])
	assert.Equal(t, "art-1", grid.Rows[1]["Monday"], "roomless section renders without a room suffix")
}

func TestTeacherView(t *testing.T) {
	_, schedule := fixtureSchedule()
	view := NewRenderer().TeacherView(schedule, "t1")

	require.Len(t, view.Rows, 2, "one row per weekly meeting")
	assert.Equal(t, "Monday", view.Rows[0]["Day"])
	assert.Equal(t, "math-1", view.Rows[0]["Section"])
	assert.Equal(t, "2", view.Rows[0]["Students"])
}

func TestStudentView(t *testing.T) {
	_, schedule := fixtureSchedule()
	view := NewRenderer().StudentView(schedule, "s1")

	require.Len(t, view.Rows, 4, "two sections, two meetings each")
	assert.Equal(t, "-", view.Rows[1]["Teacher"], "absent teacher renders as dash")
}

func TestJSONRoundTrips(t *testing.T) {
	_, schedule := fixtureSchedule()
	data, err := NewRenderer().JSON(schedule)
	require.NoError(t, err)

	var decoded models.Schedule
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Sections, 2)
	assert.Equal(t, schedule.Sections[0].ID, decoded.Sections[0].ID)
	assert.Equal(t, schedule.Metadata.RunID, decoded.Metadata.RunID)
}

func TestMarkdownContainsGridAndUnassigned(t *testing.T) {
	input, schedule := fixtureSchedule()
	doc := NewRenderer().Markdown(input, schedule)

	assert.Contains(t, doc, "| Slot | Monday | Tuesday |")
	assert.Contains(t, doc, "math-1 (r1)")
	assert.Contains(t, doc, "## Unassigned")
	assert.Contains(t, doc, "s3 / math")
}

func TestTextSummary(t *testing.T) {
	_, schedule := fixtureSchedule()
	text := NewRenderer().Text(schedule)

	lines := strings.Split(strings.TrimSpace(text), "\n")
	assert.Contains(t, lines[0], "run-1")
	assert.Contains(t, text, "math-1")
	assert.Contains(t, text, "Unassigned:")
}

func TestDayNameFallback(t *testing.T) {
	assert.Equal(t, "Monday", DayName(0))
	assert.Equal(t, "Sunday", DayName(6))
	assert.Equal(t, "Day 8", DayName(7))
}

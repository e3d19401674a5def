// Package report renders a generated schedule for humans and machines. All
// renderers are pure: the schedule is read, never mutated.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/noah-isme/timetable-engine/internal/dto"
	"github.com/noah-isme/timetable-engine/internal/models"
	"github.com/noah-isme/timetable-engine/pkg/export"
)

var dayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DayName returns a display name for a 0-based day index.
func DayName(day int) string {
	if day >= 0 && day < len(dayNames) {
		return dayNames[day]
	}
	return fmt.Sprintf("Day %d", day+1)
}

// Renderer builds tables and text documents from a schedule.
type Renderer struct{}

// NewRenderer constructs a renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// MasterGrid renders the whole week: one row per slot, one column per day,
// each cell listing the sections meeting there.
func (r *Renderer) MasterGrid(input *dto.ScheduleInput, schedule *models.Schedule) export.Table {
	headers := make([]string, 0, input.Config.DaysPerWeek+1)
	headers = append(headers, "Slot")
	for day := 0; day < input.Config.DaysPerWeek; day++ {
		headers = append(headers, DayName(day))
	}

	cells := make(map[string][]string)
	for _, section := range schedule.Sections {
		for _, period := range section.Periods {
			cells[period.Key()] = append(cells[period.Key()], describeSection(section))
		}
	}

	rows := make([]map[string]string, 0, input.Config.PeriodsPerDay)
	for slot := 0; slot < input.Config.PeriodsPerDay; slot++ {
		row := map[string]string{"Slot": fmt.Sprintf("%d", slot+1)}
		for day := 0; day < input.Config.DaysPerWeek; day++ {
			key := models.Period{Day: day, Slot: slot}.Key()
			row[DayName(day)] = strings.Join(cells[key], "; ")
		}
		rows = append(rows, row)
	}

	return export.Table{Title: "Master timetable", Headers: headers, Rows: rows}
}

// TeacherView lists one teacher's sections in period order.
func (r *Renderer) TeacherView(schedule *models.Schedule, teacherID string) export.Table {
	rows := make([]map[string]string, 0)
	for _, section := range schedule.Sections {
		if section.TeacherID != teacherID {
			continue
		}
		periods := append([]models.Period(nil), section.Periods...)
		models.SortPeriods(periods)
		for _, period := range periods {
			rows = append(rows, map[string]string{
				"Day":      DayName(period.Day),
				"Slot":     fmt.Sprintf("%d", period.Slot+1),
				"Section":  section.ID,
				"Room":     orDash(section.RoomID),
				"Students": fmt.Sprintf("%d", len(section.Enrolled)),
			})
		}
	}
	sortRows(rows)
	return export.Table{
		Title:   fmt.Sprintf("Teacher %s", teacherID),
		Headers: []string{"Day", "Slot", "Section", "Room", "Students"},
		Rows:    rows,
	}
}

// StudentView lists one student's enrollments in period order.
func (r *Renderer) StudentView(schedule *models.Schedule, studentID string) export.Table {
	rows := make([]map[string]string, 0)
	for _, section := range schedule.Sections {
		if !section.HasStudent(studentID) {
			continue
		}
		periods := append([]models.Period(nil), section.Periods...)
		models.SortPeriods(periods)
		for _, period := range periods {
			rows = append(rows, map[string]string{
				"Day":     DayName(period.Day),
				"Slot":    fmt.Sprintf("%d", period.Slot+1),
				"Section": section.ID,
				"Teacher": orDash(section.TeacherID),
				"Room":    orDash(section.RoomID),
			})
		}
	}
	sortRows(rows)
	return export.Table{
		Title:   fmt.Sprintf("Student %s", studentID),
		Headers: []string{"Day", "Slot", "Section", "Teacher", "Room"},
		Rows:    rows,
	}
}

// JSON encodes the full schedule document.
func (r *Renderer) JSON(schedule *models.Schedule) ([]byte, error) {
	return json.MarshalIndent(schedule, "", "  ")
}

// Markdown renders the master grid plus the unassigned list as a document.
func (r *Renderer) Markdown(input *dto.ScheduleInput, schedule *models.Schedule) string {
	grid := r.MasterGrid(input, schedule)
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", grid.Title)
	fmt.Fprintf(&b, "Score: %.1f (%s)\n\n", schedule.Metadata.Score, schedule.Metadata.Algorithm)

	b.WriteString("| " + strings.Join(grid.Headers, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(grid.Headers)) + "\n")
	for _, row := range grid.Rows {
		values := make([]string, len(grid.Headers))
		for i, header := range grid.Headers {
			values[i] = row[header]
		}
		b.WriteString("| " + strings.Join(values, " | ") + " |\n")
	}

	if len(schedule.Unassigned) > 0 {
		b.WriteString("\n## Unassigned\n\n")
		for _, entry := range schedule.Unassigned {
			fmt.Fprintf(&b, "- %s / %s: %s\n", entry.StudentID, entry.CourseID, entry.Reason)
		}
	}
	return b.String()
}

// Text renders a plain-text summary: sections, then unassigned entries.
func (r *Renderer) Text(schedule *models.Schedule) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Schedule %s (%s) score=%.1f solve=%s\n",
		schedule.Metadata.RunID, schedule.Metadata.Algorithm,
		schedule.Metadata.Score, schedule.Metadata.SolveTime)

	for _, section := range schedule.Sections {
		fmt.Fprintf(&b, "%-16s teacher=%-10s room=%-8s enrolled=%3d/%3d %s\n",
			section.ID, orDash(section.TeacherID), orDash(section.RoomID),
			len(section.Enrolled), section.Capacity, describePeriods(section.Periods))
	}
	if len(schedule.Unassigned) > 0 {
		b.WriteString("Unassigned:\n")
		for _, entry := range schedule.Unassigned {
			fmt.Fprintf(&b, "  %s %s: %s\n", entry.StudentID, entry.CourseID, entry.Reason)
		}
	}
	for _, warning := range schedule.Metadata.Warnings {
		fmt.Fprintf(&b, "Warning: %s\n", warning)
	}
	return b.String()
}

func describeSection(section *models.Section) string {
	if section.RoomID == "" {
		return section.ID
	}
	return fmt.Sprintf("%s (%s)", section.ID, section.RoomID)
}

func describePeriods(periods []models.Period) string {
	sorted := append([]models.Period(nil), periods...)
	models.SortPeriods(sorted)
	keys := make([]string, 0, len(sorted))
	for _, p := range sorted {
		keys = append(keys, p.Key())
	}
	return strings.Join(keys, ",")
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

// sortRows orders view rows by day then slot for stable output.
func sortRows(rows []map[string]string) {
	dayIndex := make(map[string]int, len(dayNames))
	for i, name := range dayNames {
		dayIndex[name] = i
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if dayIndex[rows[i]["Day"]] != dayIndex[rows[j]["Day"]] {
			return dayIndex[rows[i]["Day"]] < dayIndex[rows[j]["Day"]]
		}
		si, _ := strconv.Atoi(rows[i]["Slot"])
		sj, _ := strconv.Atoi(rows[j]["Slot"])
		return si < sj
	})
}

package models

import "fmt"

// SectionState tracks pipeline progress for one section. Transitions are
// monotonic: a later phase never rewrites fields set by an earlier one.
type SectionState int

const (
	SectionCreated SectionState = iota
	SectionTeachered
	SectionTimed
	SectionRoomed
	SectionEnrolled
	SectionBalanced
)

func (s SectionState) String() string {
	switch s {
	case SectionCreated:
		return "created"
	case SectionTeachered:
		return "teachered"
	case SectionTimed:
		return "timed"
	case SectionRoomed:
		return "roomed"
	case SectionEnrolled:
		return "enrolled"
	case SectionBalanced:
		return "balanced"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Section is one weekly instance of a course. Teacher and room stay empty when
// no feasible assignment exists; the validator surfaces those downstream.
type Section struct {
	ID        string       `json:"id"`
	CourseID  string       `json:"course_id"`
	TeacherID string       `json:"teacher_id,omitempty"`
	RoomID    string       `json:"room_id,omitempty"`
	Periods   []Period     `json:"periods"`
	Enrolled  []string     `json:"enrolled"`
	Capacity  int          `json:"capacity"`
	State     SectionState `json:"-"`
}

// SectionID synthesizes the deterministic section identifier for the i-th
// (1-based) section of a course.
func SectionID(courseID string, index int) string {
	return fmt.Sprintf("%s-%d", courseID, index)
}

// HasStudent reports whether the student is already enrolled.
func (s *Section) HasStudent(studentID string) bool {
	for _, id := range s.Enrolled {
		if id == studentID {
			return true
		}
	}
	return false
}

// Enroll appends the student, preserving insertion order for reproducibility.
func (s *Section) Enroll(studentID string) {
	s.Enrolled = append(s.Enrolled, studentID)
}

// Withdraw removes the student; order of the remaining enrollment is preserved.
func (s *Section) Withdraw(studentID string) bool {
	for i, id := range s.Enrolled {
		if id == studentID {
			s.Enrolled = append(s.Enrolled[:i], s.Enrolled[i+1:]...)
			return true
		}
	}
	return false
}

// AtCapacity reports whether another enrollment would exceed nominal capacity.
func (s *Section) AtCapacity() bool {
	return len(s.Enrolled) >= s.Capacity
}

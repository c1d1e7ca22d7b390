package timetable

import "strings"

// SessionKind distinguishes the three weekly teaching components of a course.
type SessionKind string

const (
	SessionLecture   SessionKind = "Lecture"
	SessionTutorial  SessionKind = "Tutorial"
	SessionPractical SessionKind = "Practical"
)

// Instructor is an optional instructor identifier. The zero value means
// "not required" and is never filed in the faculty table.
type Instructor struct {
	name string
}

// NoInstructor is the absent instructor.
var NoInstructor = Instructor{}

// NewInstructor trims the name; a blank name yields NoInstructor.
func NewInstructor(name string) Instructor {
	return Instructor{name: strings.TrimSpace(name)}
}

// Present reports whether the instructor is a real key.
func (i Instructor) Present() bool {
	return i.name != ""
}

// Name returns the identifier, empty when absent.
func (i Instructor) Name() string {
	return i.name
}

func (i Instructor) String() string {
	return i.name
}

// ClassKey identifies one cohort of students: a branch in a given semester.
type ClassKey struct {
	Branch   string
	Semester string
}

// CourseRequirement is one input row describing a course's weekly demand.
type CourseRequirement struct {
	Branch     string
	Semester   string
	CourseCode string
	CourseName string
	Lectures   int
	Tutorials  int
	Practicals int
	Primary    Instructor
	Secondary  Instructor
}

// Valid reports whether the requirement carries both branch and course code.
func (r CourseRequirement) Valid() bool {
	return strings.TrimSpace(r.Branch) != "" && strings.TrimSpace(r.CourseCode) != ""
}

// ClassKey returns the class-section key the requirement is taught to.
func (r CourseRequirement) ClassKey() ClassKey {
	return ClassKey{Branch: r.Branch, Semester: r.Semester}
}

// TotalSessions is the number of weekly sessions the course needs.
func (r CourseRequirement) TotalSessions() int {
	return nonNegative(r.Lectures) + nonNegative(r.Tutorials) + nonNegative(r.Practicals)
}

// Sessions expands the L/T/P counts into one entry per required session,
// lectures first, then tutorials, then practicals.
func (r CourseRequirement) Sessions() []SessionKind {
	kinds := make([]SessionKind, 0, r.TotalSessions())
	for i := 0; i < nonNegative(r.Lectures); i++ {
		kinds = append(kinds, SessionLecture)
	}
	for i := 0; i < nonNegative(r.Tutorials); i++ {
		kinds = append(kinds, SessionTutorial)
	}
	for i := 0; i < nonNegative(r.Practicals); i++ {
		kinds = append(kinds, SessionPractical)
	}
	return kinds
}

// secondary returns the co-instructor only when it is a distinct real key.
func (r CourseRequirement) secondary() Instructor {
	if !r.Secondary.Present() || r.Secondary == r.Primary {
		return NoInstructor
	}
	return r.Secondary
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

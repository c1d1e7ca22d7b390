package timetable

// SessionAssigner is the single writer of both occupancy tables.
type SessionAssigner struct {
	faculty *FacultyOccupancy
	classes *ClassOccupancy
}

// NewSessionAssigner binds an assigner to the tables it commits into.
func NewSessionAssigner(faculty *FacultyOccupancy, classes *ClassOccupancy) *SessionAssigner {
	return &SessionAssigner{faculty: faculty, classes: classes}
}

// TryAssign places one session of req at slot when neither instructor nor the
// class-section is busy there. On conflict nothing is written.
func (a *SessionAssigner) TryAssign(req CourseRequirement, kind SessionKind, slot Slot) bool {
	secondary := req.secondary()

	if FacultyBusy(a.faculty, req.Primary, slot.Day, slot.Period) {
		return false
	}
	if FacultyBusy(a.faculty, secondary, slot.Day, slot.Period) {
		return false
	}
	if ClassBusy(a.classes, req.Branch, req.Semester, slot.Day, slot.Period) {
		return false
	}

	record := SessionRecord{
		Slot:       slot,
		CourseCode: req.CourseCode,
		CourseName: req.CourseName,
		Kind:       kind,
		Branch:     req.Branch,
		Semester:   req.Semester,
		Primary:    req.Primary,
		Secondary:  secondary,
	}
	if req.Primary.Present() {
		a.faculty.file(req.Primary, record)
	}
	if secondary.Present() {
		a.faculty.file(secondary, record)
	}
	a.classes.file(req.ClassKey(), record)
	return true
}

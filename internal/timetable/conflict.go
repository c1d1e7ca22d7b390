package timetable

// FacultyBusy reports whether instructor already teaches at (day, period).
// An absent instructor is never busy.
func FacultyBusy(table *FacultyOccupancy, instructor Instructor, day Day, period Period) bool {
	if !instructor.Present() || table == nil {
		return false
	}
	return table.occupied(instructor, day, period)
}

// ClassBusy reports whether the branch/semester cohort already has a session
// at (day, period).
func ClassBusy(table *ClassOccupancy, branch, semester string, day Day, period Period) bool {
	if table == nil {
		return false
	}
	return table.occupied(ClassKey{Branch: branch, Semester: semester}, day, period)
}

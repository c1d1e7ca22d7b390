package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ExportFormat is a rendered timetable file type.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatPDF  ExportFormat = "pdf"
)

// Valid reports whether the format can be rendered.
func (f ExportFormat) Valid() bool {
	switch f {
	case ExportFormatCSV, ExportFormatXLSX, ExportFormatPDF:
		return true
	}
	return false
}

// ContentType is the MIME type served for the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ExportFormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

// ExportKind names one of the three rendered tables.
type ExportKind string

const (
	ExportFaculty ExportKind = "faculty_timetable"
	ExportClass   ExportKind = "class_timetable"
	ExportSummary ExportKind = "department_summary"
)

// ExportKinds lists the tables rendered for every run.
var ExportKinds = []ExportKind{ExportFaculty, ExportClass, ExportSummary}

// Filename is the stored file name for the table in format.
func (k ExportKind) Filename(format ExportFormat) string {
	return string(k) + "." + string(format)
}

// TimetableRun is a persisted scheduling run.
type TimetableRun struct {
	ID               string         `db:"id" json:"id"`
	SourceFile       string         `db:"source_file" json:"source_file"`
	Seed             int64          `db:"seed" json:"seed"`
	RowsRead         int            `db:"rows_read" json:"rows_read"`
	RowsDropped      int            `db:"rows_dropped" json:"rows_dropped"`
	TotalCourses     int            `db:"total_courses" json:"total_courses"`
	CompleteCourses  int            `db:"complete_courses" json:"complete_courses"`
	SessionsRequired int            `db:"sessions_required" json:"sessions_required"`
	SessionsPlaced   int            `db:"sessions_placed" json:"sessions_placed"`
	Analytics        types.JSONText `db:"analytics" json:"analytics"`
	CreatedBy        string         `db:"created_by" json:"created_by"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
}

// TimetableSession is one placed session of a persisted run.
type TimetableSession struct {
	ID          string `db:"id" json:"id"`
	RunID       string `db:"run_id" json:"run_id"`
	Branch      string `db:"branch" json:"branch"`
	Semester    string `db:"semester" json:"semester"`
	Day         string `db:"day" json:"day"`
	DayIndex    int    `db:"day_index" json:"-"`
	Period      string `db:"period" json:"period"`
	PeriodIndex int    `db:"period_index" json:"-"`
	CourseCode  string `db:"course_code" json:"course_code"`
	CourseName  string `db:"course_name" json:"course_name"`
	SessionType string `db:"session_type" json:"session_type"`
	MainFaculty string `db:"main_faculty" json:"main_faculty"`
	CoFaculty   string `db:"co_faculty" json:"co_faculty,omitempty"`
}

// FacultyTimetableRow is one faculty-day-session line of the faculty export.
type FacultyTimetableRow struct {
	Faculty     string `csv:"Faculty" json:"faculty"`
	Day         string `csv:"Day" json:"day"`
	Period      string `csv:"Period" json:"period"`
	CourseCode  string `csv:"Course Code" json:"course_code"`
	CourseName  string `csv:"Course Name" json:"course_name"`
	SessionType string `csv:"Session Type" json:"session_type"`
	Branch      string `csv:"Branch" json:"branch"`
	Semester    string `csv:"Semester" json:"semester"`
	CoFaculty   string `csv:"Co-Faculty" json:"co_faculty,omitempty"`
}

// ClassTimetableRow is one class-day-session line of the class export.
type ClassTimetableRow struct {
	Branch      string `csv:"Branch" json:"branch"`
	Semester    string `csv:"Semester" json:"semester"`
	Day         string `csv:"Day" json:"day"`
	Period      string `csv:"Period" json:"period"`
	CourseCode  string `csv:"Course Code" json:"course_code"`
	CourseName  string `csv:"Course Name" json:"course_name"`
	SessionType string `csv:"Session Type" json:"session_type"`
	MainFaculty string `csv:"Main Faculty" json:"main_faculty"`
	CoFaculty   string `csv:"Co-Faculty" json:"co_faculty,omitempty"`
}

// DepartmentSummaryRow totals one class-section's weekly sessions.
type DepartmentSummaryRow struct {
	Branch        string `csv:"Branch" json:"branch"`
	Semester      string `csv:"Semester" json:"semester"`
	TotalSessions int    `csv:"Total Sessions" json:"total_sessions"`
	Lectures      int    `csv:"Lectures" json:"lectures"`
	Practicals    int    `csv:"Practicals" json:"practicals"`
	Tutorials     int    `csv:"Tutorials" json:"tutorials"`
}

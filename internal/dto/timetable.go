package dto

import (
	"time"

	"github.com/sonarsarthak/EDUManager/internal/ingest"
	"github.com/sonarsarthak/EDUManager/internal/models"
)

// GenerateTimetableRequest carries the uploaded course sheet and run options.
type GenerateTimetableRequest struct {
	Filename string                `validate:"required"`
	Content  []byte                `validate:"required"`
	Seed     *int64                `validate:"omitempty"`
	Formats  []models.ExportFormat `validate:"omitempty,max=3,unique,dive,oneof=csv xlsx pdf"`
	ActorID  string
}

// Tally is a named session count.
type Tally struct {
	Name     string `json:"name"`
	Sessions int    `json:"sessions"`
}

// CourseOutcome reports a course that was not placed in full.
type CourseOutcome struct {
	Branch     string `json:"branch"`
	Semester   string `json:"semester"`
	CourseCode string `json:"course_code"`
	Placed     int    `json:"placed"`
	Required   int    `json:"required"`
}

// TimetableAnalytics is the post-run aggregation payload.
type TimetableAnalytics struct {
	FacultySummary    []Tally         `json:"faculty_summary"`
	BranchSummary     []Tally         `json:"branch_summary"`
	DailySummary      []Tally         `json:"daily_summary"`
	IncompleteCourses []CourseOutcome `json:"incomplete_courses"`
}

// ExportLink points at a rendered timetable file.
type ExportLink struct {
	Kind      models.ExportKind   `json:"kind"`
	Format    models.ExportFormat `json:"format"`
	URL       string              `json:"url"`
	ExpiresAt time.Time           `json:"expires_at"`
}

// TimetableRunResponse summarises a scheduling run.
type TimetableRunResponse struct {
	RunID              string              `json:"run_id"`
	Seed               int64               `json:"seed"`
	Courses            int                 `json:"courses"`
	CoursesScheduled   int                 `json:"courses_scheduled"`
	SessionsRequired   int                 `json:"sessions_required"`
	SessionsScheduled  int                 `json:"sessions_scheduled"`
	SuccessRate        float64             `json:"success_rate"`
	SessionSuccessRate float64             `json:"session_success_rate"`
	Conflicts          int                 `json:"conflicts"`
	RowsRead           int                 `json:"rows_read"`
	DroppedRows        []ingest.DroppedRow `json:"dropped_rows,omitempty"`
	TimetableAnalytics
	Exports   []ExportLink `json:"exports,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// ClassTimetableQuery selects one class-section of a run.
type ClassTimetableQuery struct {
	Branch   string `form:"branch" validate:"required"`
	Semester string `form:"semester" validate:"required"`
}

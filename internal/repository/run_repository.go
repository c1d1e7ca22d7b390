package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sonarsarthak/EDUManager/internal/models"
)

// sessionBatchSize bounds the rows per multi-row INSERT; postgres caps bind
// parameters at 65535 and each session binds 13.
const sessionBatchSize = 500

const sessionColumns = `id, run_id, branch, semester, day, day_index, period, period_index, course_code, course_name, session_type, main_faculty, co_faculty`

// RunRepository persists timetable runs and their sessions in Postgres.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository builds the repository.
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create stores a run and all of its sessions in one transaction.
func (r *RunRepository) Create(ctx context.Context, run *models.TimetableRun, sessions []models.TimetableSession) (err error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertRun = `
INSERT INTO timetable_runs (id, source_file, seed, rows_read, rows_dropped, total_courses, complete_courses, sessions_required, sessions_placed, analytics, created_by, created_at)
VALUES (:id, :source_file, :seed, :rows_read, :rows_dropped, :total_courses, :complete_courses, :sessions_required, :sessions_placed, :analytics, :created_by, :created_at)`
	if _, err = sqlx.NamedExecContext(ctx, tx, insertRun, run); err != nil {
		return fmt.Errorf("insert timetable run: %w", err)
	}

	for i := range sessions {
		sessions[i].RunID = run.ID
		if sessions[i].ID == "" {
			sessions[i].ID = uuid.NewString()
		}
	}
	const insertSessions = `INSERT INTO timetable_sessions (` + sessionColumns + `)
VALUES (:id, :run_id, :branch, :semester, :day, :day_index, :period, :period_index, :course_code, :course_name, :session_type, :main_faculty, :co_faculty)`
	for start := 0; start < len(sessions); start += sessionBatchSize {
		end := start + sessionBatchSize
		if end > len(sessions) {
			end = len(sessions)
		}
		if _, err = sqlx.NamedExecContext(ctx, tx, insertSessions, sessions[start:end]); err != nil {
			return fmt.Errorf("insert timetable sessions: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit timetable run: %w", err)
	}
	return nil
}

// FindByID returns the run or an error wrapping sql.ErrNoRows.
func (r *RunRepository) FindByID(ctx context.Context, id string) (*models.TimetableRun, error) {
	const query = `SELECT id, source_file, seed, rows_read, rows_dropped, total_courses, complete_courses, sessions_required, sessions_placed, analytics, created_by, created_at
FROM timetable_runs WHERE id = $1`
	var run models.TimetableRun
	if err := r.db.GetContext(ctx, &run, query, id); err != nil {
		return nil, fmt.Errorf("get timetable run: %w", err)
	}
	return &run, nil
}

// ListByFaculty returns the sessions taught by name as main or co-faculty.
func (r *RunRepository) ListByFaculty(ctx context.Context, runID, name string) ([]models.TimetableSession, error) {
	const query = `SELECT ` + sessionColumns + ` FROM timetable_sessions
WHERE run_id = $1 AND (main_faculty = $2 OR co_faculty = $2) ORDER BY day_index ASC, period_index ASC`
	var sessions []models.TimetableSession
	if err := r.db.SelectContext(ctx, &sessions, query, runID, name); err != nil {
		return nil, fmt.Errorf("list faculty sessions: %w", err)
	}
	return sessions, nil
}

// ListByClass returns the sessions of one class-section.
func (r *RunRepository) ListByClass(ctx context.Context, runID, branch, semester string) ([]models.TimetableSession, error) {
	const query = `SELECT ` + sessionColumns + ` FROM timetable_sessions
WHERE run_id = $1 AND branch = $2 AND semester = $3 ORDER BY day_index ASC, period_index ASC`
	var sessions []models.TimetableSession
	if err := r.db.SelectContext(ctx, &sessions, query, runID, branch, semester); err != nil {
		return nil, fmt.Errorf("list class sessions: %w", err)
	}
	return sessions, nil
}

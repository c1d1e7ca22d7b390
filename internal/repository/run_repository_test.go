package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonarsarthak/EDUManager/internal/models"
)

var sessionColumnNames = []string{"id", "run_id", "branch", "semester", "day", "day_index", "period", "period_index", "course_code", "course_name", "session_type", "main_faculty", "co_faculty"}

func newRunRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func sampleRun() (*models.TimetableRun, []models.TimetableSession) {
	run := &models.TimetableRun{
		SourceFile:       "courses.csv",
		Seed:             7,
		RowsRead:         2,
		TotalCourses:     2,
		CompleteCourses:  2,
		SessionsRequired: 2,
		SessionsPlaced:   2,
		Analytics:        types.JSONText(`{"faculty_summary":[]}`),
		CreatedBy:        "admin-1",
	}
	sessions := []models.TimetableSession{
		{Branch: "CSE", Semester: "5", Day: "Tuesday", DayIndex: 1, Period: "9:00-10:00", CourseCode: "CS501", SessionType: "Lecture", MainFaculty: "Dr. A"},
		{Branch: "CSE", Semester: "5", Day: "Monday", DayIndex: 0, Period: "9:00-10:00", CourseCode: "CS502", SessionType: "Lecture", MainFaculty: "Dr. B"},
	}
	return run, sessions
}

func TestRunRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()

	repo := NewRunRepository(db)
	run, sessions := sampleRun()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_runs")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_sessions")).
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), run, sessions))
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())
	for _, session := range sessions {
		assert.Equal(t, run.ID, session.RunID)
		assert.NotEmpty(t, session.ID)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositoryCreateRollsBack(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()

	repo := NewRunRepository(db)
	run, sessions := sampleRun()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_runs")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_sessions")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), run, sessions)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert timetable sessions")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()

	repo := NewRunRepository(db)
	rows := sqlmock.NewRows([]string{"id", "source_file", "seed", "rows_read", "rows_dropped", "total_courses", "complete_courses", "sessions_required", "sessions_placed", "analytics", "created_by", "created_at"}).
		AddRow("run-1", "courses.csv", 7, 3, 1, 2, 1, 10, 9, []byte(`{"branch_summary":[]}`), "admin-1", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_runs WHERE id = $1")).
		WithArgs("run-1").
		WillReturnRows(rows)

	run, err := repo.FindByID(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), run.Seed)
	assert.Equal(t, 9, run.SessionsPlaced)
	assert.JSONEq(t, `{"branch_summary":[]}`, string(run.Analytics))

	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_runs WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositoryListByFaculty(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()

	repo := NewRunRepository(db)
	rows := sqlmock.NewRows(sessionColumnNames).
		AddRow("s-1", "run-1", "CSE", "5", "Monday", 0, "9:00-10:00", 0, "CS501", "Algorithms", "Lecture", "Dr. A", "Dr. D").
		AddRow("s-2", "run-1", "ECE", "3", "Monday", 0, "10:00-11:00", 1, "EC301", "Signals", "Tutorial", "Dr. C", "Dr. A")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE run_id = $1 AND (main_faculty = $2 OR co_faculty = $2)")).
		WithArgs("run-1", "Dr. A").
		WillReturnRows(rows)

	sessions, err := repo.ListByFaculty(context.Background(), "run-1", "Dr. A")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "Dr. A", sessions[1].CoFaculty)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositoryListByClass(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()

	repo := NewRunRepository(db)
	rows := sqlmock.NewRows(sessionColumnNames).
		AddRow("s-1", "run-1", "CSE", "5", "Friday", 4, "14:15-15:15", 4, "CS501", "Algorithms", "Practical", "Dr. A", "")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE run_id = $1 AND branch = $2 AND semester = $3")).
		WithArgs("run-1", "CSE", "5").
		WillReturnRows(rows)

	sessions, err := repo.ListByClass(context.Background(), "run-1", "CSE", "5")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 4, sessions[0].PeriodIndex)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryRunStore(t *testing.T) {
	store := NewMemoryRunStore()
	run, sessions := sampleRun()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, run, sessions))
	require.Error(t, store.Create(ctx, run, sessions))

	found, err := store.FindByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "courses.csv", found.SourceFile)

	_, err = store.FindByID(ctx, "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)

	class, err := store.ListByClass(ctx, run.ID, "CSE", "5")
	require.NoError(t, err)
	require.Len(t, class, 2)
	assert.Equal(t, "Monday", class[0].Day)
	assert.Equal(t, run.ID, class[0].RunID)

	faculty, err := store.ListByFaculty(ctx, run.ID, "Dr. A")
	require.NoError(t, err)
	require.Len(t, faculty, 1)
	assert.Equal(t, "CS501", faculty[0].CourseCode)

	empty, err := store.ListByClass(ctx, run.ID, "ME", "4")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

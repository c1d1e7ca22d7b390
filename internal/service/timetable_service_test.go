package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sonarsarthak/EDUManager/internal/dto"
	"github.com/sonarsarthak/EDUManager/internal/ingest"
	"github.com/sonarsarthak/EDUManager/internal/models"
	"github.com/sonarsarthak/EDUManager/internal/repository"
	appErrors "github.com/sonarsarthak/EDUManager/pkg/errors"
	"github.com/sonarsarthak/EDUManager/pkg/jobs"
)

const sampleCourseSheet = `Branch,Semester,Course Code,Course Name,L/T/P,Main Faculty,Co-Faculty
CSE,5,CS501,Algorithms,3/1/2,Dr. A,Dr. D
CSE,5,CS502,DBMS,3/0/2,Dr. B,N.R.
ECE,3,EC301,Signals,2/1/2,Dr. C,Dr. E
,5,CS999,Orphan,1/0/0,Dr. Z,
`

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type timetableFixture struct {
	svc   *TimetableService
	store *repository.MemoryRunStore
	cache *cacheRepoStub
	queue *queueStub
}

func newTimetableFixture(t *testing.T) *timetableFixture {
	t.Helper()
	exports, _ := newExportServiceForTest(t)
	f := &timetableFixture{
		store: repository.NewMemoryRunStore(),
		cache: newCacheRepoStub(),
		queue: &queueStub{},
	}
	runs := NewCacheService(f.cache, nil, time.Minute, zap.NewNop(), true)
	f.svc = NewTimetableService(f.store, runs, f.queue, exports, NewMetricsService(), validator.New(), TimetableServiceConfig{}, zap.NewNop())
	return f
}

func seed(v int64) *int64 {
	return &v
}

func generateSample(t *testing.T, svc *TimetableService) *dto.TimetableRunResponse {
	t.Helper()
	resp, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{
		Filename: "courses.csv",
		Content:  []byte(sampleCourseSheet),
		Seed:     seed(42),
		ActorID:  "admin-1",
	})
	require.NoError(t, err)
	return resp
}

func TestTimetableServiceGenerate(t *testing.T) {
	f := newTimetableFixture(t)
	resp := generateSample(t, f.svc)

	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, int64(42), resp.Seed)
	assert.Equal(t, 3, resp.Courses)
	assert.Equal(t, 3, resp.CoursesScheduled)
	assert.Equal(t, 16, resp.SessionsRequired)
	assert.Equal(t, 16, resp.SessionsScheduled)
	assert.Zero(t, resp.Conflicts)
	assert.InDelta(t, 100.0, resp.SuccessRate, 0.001)
	assert.Equal(t, 4, resp.RowsRead)
	require.Len(t, resp.DroppedRows, 1)
	assert.Equal(t, ingest.DroppedRow{Line: 5, Reason: "missing branch"}, resp.DroppedRows[0])

	require.Len(t, resp.FacultySummary, 5)
	assert.Equal(t, dto.Tally{Name: "Dr. A", Sessions: 6}, resp.FacultySummary[0])
	assert.Equal(t, []dto.Tally{{Name: "CSE", Sessions: 11}, {Name: "ECE", Sessions: 5}}, resp.BranchSummary)
	assert.Len(t, resp.DailySummary, 6)
	assert.Empty(t, resp.IncompleteCourses)

	require.Len(t, resp.Exports, 3)
	assert.Equal(t, models.ExportFormatCSV, resp.Exports[0].Format)

	require.Len(t, f.queue.jobs, 1)
	task, ok := f.queue.jobs[0].Payload.(ExportTask)
	require.True(t, ok)
	assert.Equal(t, resp.RunID, task.RunID)
	assert.Len(t, task.Tables.Classes, 16)

	run, err := f.store.FindByID(context.Background(), resp.RunID)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", run.CreatedBy)
	assert.Equal(t, 1, run.RowsDropped)
}

func TestTimetableServiceGenerateValidation(t *testing.T) {
	f := newTimetableFixture(t)
	ctx := context.Background()

	_, err := f.svc.Generate(ctx, dto.GenerateTimetableRequest{Filename: "courses.txt", Content: []byte("x")})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnsupportedMediaType, appErrors.FromError(err).Status)

	_, err = f.svc.Generate(ctx, dto.GenerateTimetableRequest{Filename: "courses.csv"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)

	_, err = f.svc.Generate(ctx, dto.GenerateTimetableRequest{
		Filename: "courses.csv",
		Content:  []byte(sampleCourseSheet),
		Formats:  []models.ExportFormat{"doc"},
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)

	_, err = f.svc.Generate(ctx, dto.GenerateTimetableRequest{
		Filename: "courses.csv",
		Content:  []byte(sampleCourseSheet),
		Formats:  []models.ExportFormat{models.ExportFormatCSV, models.ExportFormatCSV},
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)

	_, err = f.svc.Generate(ctx, dto.GenerateTimetableRequest{Filename: "courses.xlsx", Content: []byte("not a workbook")})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
	assert.Empty(t, f.queue.jobs)
}

func TestTimetableServiceGenerateMultipleFormats(t *testing.T) {
	f := newTimetableFixture(t)
	resp, err := f.svc.Generate(context.Background(), dto.GenerateTimetableRequest{
		Filename: "courses.csv",
		Content:  []byte(sampleCourseSheet),
		Formats:  []models.ExportFormat{models.ExportFormatXLSX, models.ExportFormatPDF},
	})
	require.NoError(t, err)
	assert.Len(t, f.queue.jobs, 2)
	assert.Len(t, resp.Exports, 6)
	assert.NotZero(t, resp.Seed)
}

func TestTimetableServiceGenerateSkipsFailedEnqueue(t *testing.T) {
	f := newTimetableFixture(t)
	f.queue.err = errors.New("queue stopped")

	resp := generateSample(t, f.svc)
	assert.Empty(t, resp.Exports)
}

func TestTimetableServiceGetRun(t *testing.T) {
	f := newTimetableFixture(t)
	created := generateSample(t, f.svc)
	ctx := context.Background()

	cached, hit, err := f.svc.GetRun(ctx, created.RunID)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, created.SessionsScheduled, cached.SessionsScheduled)

	f.cache.values = map[string][]byte{}
	loaded, hit, err := f.svc.GetRun(ctx, created.RunID)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, created.FacultySummary, loaded.FacultySummary)
	assert.Equal(t, created.DroppedRows, loaded.DroppedRows)
	assert.Len(t, loaded.Exports, 3)

	_, _, err = f.svc.GetRun(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestTimetableServiceFacultyAndClass(t *testing.T) {
	f := newTimetableFixture(t)
	created := generateSample(t, f.svc)
	ctx := context.Background()

	faculty, err := f.svc.FacultyTimetable(ctx, created.RunID, "Dr. D")
	require.NoError(t, err)
	require.Len(t, faculty, 6)
	for i, session := range faculty {
		assert.Equal(t, "CS501", session.CourseCode)
		assert.Equal(t, "Dr. D", session.CoFaculty)
		if i > 0 {
			prev := faculty[i-1]
			assert.True(t, prev.DayIndex < session.DayIndex || (prev.DayIndex == session.DayIndex && prev.PeriodIndex < session.PeriodIndex))
		}
	}

	class, err := f.svc.ClassTimetable(ctx, created.RunID, dto.ClassTimetableQuery{Branch: "ECE", Semester: "3"})
	require.NoError(t, err)
	assert.Len(t, class, 5)

	_, err = f.svc.ClassTimetable(ctx, created.RunID, dto.ClassTimetableQuery{Branch: "ECE"})
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)

	_, err = f.svc.ClassTimetable(ctx, created.RunID, dto.ClassTimetableQuery{Branch: "ME", Semester: "4"})
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)

	_, err = f.svc.FacultyTimetable(ctx, "missing", "Dr. A")
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestTimetableServiceSeedIsReproducible(t *testing.T) {
	f := newTimetableFixture(t)
	ctx := context.Background()
	first := generateSample(t, f.svc)
	second := generateSample(t, f.svc)

	a, err := f.svc.ClassTimetable(ctx, first.RunID, dto.ClassTimetableQuery{Branch: "CSE", Semester: "5"})
	require.NoError(t, err)
	b, err := f.svc.ClassTimetable(ctx, second.RunID, dto.ClassTimetableQuery{Branch: "CSE", Semester: "5"})
	require.NoError(t, err)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Day, b[i].Day)
		assert.Equal(t, a[i].Period, b[i].Period)
		assert.Equal(t, a[i].CourseCode, b[i].CourseCode)
	}
}

func TestTimetableServiceWithoutQueue(t *testing.T) {
	svc := NewTimetableService(repository.NewMemoryRunStore(), nil, nil, nil, nil, nil, TimetableServiceConfig{Seed: 9}, nil)
	resp, err := svc.Generate(context.Background(), dto.GenerateTimetableRequest{Filename: "courses.csv", Content: []byte(sampleCourseSheet)})
	require.NoError(t, err)
	assert.Equal(t, int64(9), resp.Seed)
	assert.Empty(t, resp.Exports)

	loaded, hit, err := svc.GetRun(context.Background(), resp.RunID)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, resp.SessionsScheduled, loaded.SessionsScheduled)
}

func TestTimetableServiceTemplate(t *testing.T) {
	f := newTimetableFixture(t)
	data, err := f.svc.Template(ingest.FormatCSV)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Course Code")

	_, err = f.svc.Template(ingest.Format("pdf"))
	assert.Equal(t, http.StatusUnsupportedMediaType, appErrors.FromError(err).Status)
}

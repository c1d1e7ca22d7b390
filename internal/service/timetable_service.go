package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/sonarsarthak/EDUManager/internal/dto"
	"github.com/sonarsarthak/EDUManager/internal/ingest"
	"github.com/sonarsarthak/EDUManager/internal/models"
	"github.com/sonarsarthak/EDUManager/internal/timetable"
	appErrors "github.com/sonarsarthak/EDUManager/pkg/errors"
	"github.com/sonarsarthak/EDUManager/pkg/jobs"
)

type runStore interface {
	Create(ctx context.Context, run *models.TimetableRun, sessions []models.TimetableSession) error
	FindByID(ctx context.Context, id string) (*models.TimetableRun, error)
	ListByFaculty(ctx context.Context, runID, name string) ([]models.TimetableSession, error)
	ListByClass(ctx context.Context, runID, branch, semester string) ([]models.TimetableSession, error)
}

type runCache interface {
	Run(ctx context.Context, id string) (*dto.TimetableRunResponse, bool)
	StoreRun(ctx context.Context, run *dto.TimetableRunResponse)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type exportLinker interface {
	Links(runID string, formats []models.ExportFormat) ([]dto.ExportLink, error)
}

// TimetableServiceConfig shapes each scheduling run.
type TimetableServiceConfig struct {
	Grid           timetable.Grid
	Seed           int64
	DefaultFormats []models.ExportFormat
}

// TimetableService runs the scheduling engine over uploaded course sheets
// and serves the persisted results.
type TimetableService struct {
	store    runStore
	cache    runCache
	queue    jobDispatcher
	exports  exportLinker
	metrics  *MetricsService
	validate *validator.Validate
	logger   *zap.Logger
	cfg      TimetableServiceConfig
	now      func() time.Time
}

// runDocument is the JSON stored in timetable_runs.analytics.
type runDocument struct {
	dto.TimetableAnalytics
	DroppedRows []ingest.DroppedRow   `json:"dropped_rows,omitempty"`
	Formats     []models.ExportFormat `json:"formats,omitempty"`
}

// NewTimetableService constructs the service. cache, queue and exports may be nil.
func NewTimetableService(store runStore, cache runCache, queue jobDispatcher, exports exportLinker, metrics *MetricsService, validate *validator.Validate, cfg TimetableServiceConfig, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.Grid.IsZero() {
		cfg.Grid = timetable.DefaultGrid()
	}
	if len(cfg.DefaultFormats) == 0 {
		cfg.DefaultFormats = []models.ExportFormat{models.ExportFormatCSV}
	}
	return &TimetableService{
		store:    store,
		cache:    cache,
		queue:    queue,
		exports:  exports,
		metrics:  metrics,
		validate: validate,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Grid returns the weekly grid runs are scheduled onto.
func (s *TimetableService) Grid() timetable.Grid {
	return s.cfg.Grid
}

// Generate parses the course sheet, schedules it, persists the run and
// queues its exports.
func (s *TimetableService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.TimetableRunResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable request")
	}
	format, err := ingest.DetectFormat(req.Filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnsupportedFormat.Code, appErrors.ErrUnsupportedFormat.Status, "course sheet must be .csv or .xlsx")
	}
	sheet, err := ingest.Load(bytes.NewReader(req.Content), format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read course sheet")
	}

	seed := s.resolveSeed(req.Seed)
	engine := timetable.NewEngine(
		timetable.WithGrid(s.cfg.Grid),
		timetable.WithSeed(seed),
		timetable.WithLogger(s.logger),
	)
	start := time.Now()
	stats := engine.Run(sheet.Requirements)
	s.metrics.ObserveTimetableRun(stats.SessionsPlaced, stats.SessionsRequired, stats.SuccessRate(), time.Since(start))

	formats := req.Formats
	if len(formats) == 0 {
		formats = s.cfg.DefaultFormats
	}
	if s.queue == nil {
		formats = nil
	}
	doc := runDocument{
		TimetableAnalytics: buildAnalytics(engine, stats),
		DroppedRows:        sheet.Dropped,
		Formats:            formats,
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode run analytics")
	}

	run := &models.TimetableRun{
		SourceFile:       req.Filename,
		Seed:             seed,
		RowsRead:         sheet.Rows,
		RowsDropped:      len(sheet.Dropped),
		TotalCourses:     stats.TotalCourses,
		CompleteCourses:  stats.FullySuccessfulCourses,
		SessionsRequired: stats.SessionsRequired,
		SessionsPlaced:   stats.SessionsPlaced,
		Analytics:        types.JSONText(payload),
		CreatedBy:        req.ActorID,
		CreatedAt:        s.now().UTC(),
	}
	sessions := buildSessions(engine.Grid(), engine.Classes())

	dbStart := time.Now()
	err = s.store.Create(ctx, run, sessions)
	s.metrics.ObserveDBQuery("timetable_runs.create", time.Since(dbStart))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save timetable run")
	}

	formats = s.enqueueExports(run.ID, formats, BuildTables(engine.Grid(), engine.Faculty(), engine.Classes()))
	doc.Formats = formats

	resp, err := s.toResponse(run, doc)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.StoreRun(ctx, resp)
	}

	s.logger.Info("timetable generated",
		zap.String("run_id", run.ID),
		zap.String("source_file", req.Filename),
		zap.Int64("seed", seed),
		zap.Int("rows_dropped", run.RowsDropped),
		zap.Float64("success_rate", stats.SuccessRate()),
	)
	return resp, nil
}

// GetRun loads a run summary. The boolean reports a cache hit.
func (s *TimetableService) GetRun(ctx context.Context, id string) (*dto.TimetableRunResponse, bool, error) {
	if s.cache != nil {
		if cached, hit := s.cache.Run(ctx, id); hit {
			return cached, true, nil
		}
	}

	run, err := s.findRun(ctx, id)
	if err != nil {
		return nil, false, err
	}
	var doc runDocument
	if err := run.Analytics.Unmarshal(&doc); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode run analytics")
	}
	resp, err := s.toResponse(run, doc)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		s.cache.StoreRun(ctx, resp)
	}
	return resp, false, nil
}

// FacultyTimetable lists the sessions an instructor teaches in a run.
func (s *TimetableService) FacultyTimetable(ctx context.Context, runID, name string) ([]models.TimetableSession, error) {
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "faculty name is required")
	}
	if _, err := s.findRun(ctx, runID); err != nil {
		return nil, err
	}
	start := time.Now()
	sessions, err := s.store.ListByFaculty(ctx, runID, name)
	s.metrics.ObserveDBQuery("timetable_sessions.by_faculty", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty timetable")
	}
	if len(sessions) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty has no sessions in this run")
	}
	return sessions, nil
}

// ClassTimetable lists the sessions of one class-section in a run.
func (s *TimetableService) ClassTimetable(ctx context.Context, runID string, query dto.ClassTimetableQuery) ([]models.TimetableSession, error) {
	if err := s.validate.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "branch and semester are required")
	}
	if _, err := s.findRun(ctx, runID); err != nil {
		return nil, err
	}
	start := time.Now()
	sessions, err := s.store.ListByClass(ctx, runID, query.Branch, query.Semester)
	s.metrics.ObserveDBQuery("timetable_sessions.by_class", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class timetable")
	}
	if len(sessions) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class has no sessions in this run")
	}
	return sessions, nil
}

// Template renders the sample course sheet.
func (s *TimetableService) Template(format ingest.Format) ([]byte, error) {
	data, err := ingest.Template(format)
	if err != nil {
		if errors.Is(err, ingest.ErrUnsupportedFormat) {
			return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, "template format must be csv or xlsx")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render template")
	}
	return data, nil
}

func (s *TimetableService) findRun(ctx context.Context, id string) (*models.TimetableRun, error) {
	start := time.Now()
	run, err := s.store.FindByID(ctx, id)
	s.metrics.ObserveDBQuery("timetable_runs.find", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable run")
	}
	return run, nil
}

func (s *TimetableService) resolveSeed(requested *int64) int64 {
	if requested != nil {
		return *requested
	}
	if s.cfg.Seed != 0 {
		return s.cfg.Seed
	}
	return s.now().UnixNano()
}

// enqueueExports queues one render job per format and returns the formats
// that were accepted.
func (s *TimetableService) enqueueExports(runID string, formats []models.ExportFormat, tables TimetableTables) []models.ExportFormat {
	if s.queue == nil {
		return nil
	}
	accepted := make([]models.ExportFormat, 0, len(formats))
	for _, format := range formats {
		job := jobs.Job{
			ID:      fmt.Sprintf("%s:%s", runID, format),
			Type:    ExportJobType,
			Payload: ExportTask{RunID: runID, Format: format, Tables: tables},
		}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("failed to enqueue timetable export", zap.String("run_id", runID), zap.String("format", string(format)), zap.Error(err))
			continue
		}
		accepted = append(accepted, format)
	}
	return accepted
}

func (s *TimetableService) toResponse(run *models.TimetableRun, doc runDocument) (*dto.TimetableRunResponse, error) {
	stats := timetable.RunStats{
		TotalCourses:           run.TotalCourses,
		FullySuccessfulCourses: run.CompleteCourses,
		SessionsPlaced:         run.SessionsPlaced,
		SessionsRequired:       run.SessionsRequired,
	}
	resp := &dto.TimetableRunResponse{
		RunID:              run.ID,
		Seed:               run.Seed,
		Courses:            stats.TotalCourses,
		CoursesScheduled:   stats.FullySuccessfulCourses,
		SessionsRequired:   stats.SessionsRequired,
		SessionsScheduled:  stats.SessionsPlaced,
		SuccessRate:        stats.SuccessRate(),
		SessionSuccessRate: stats.SessionSuccessRate(),
		Conflicts:          stats.Shortfall(),
		RowsRead:           run.RowsRead,
		DroppedRows:        doc.DroppedRows,
		TimetableAnalytics: doc.TimetableAnalytics,
		CreatedAt:          run.CreatedAt,
	}
	if s.exports != nil && len(doc.Formats) > 0 {
		links, err := s.exports.Links(run.ID, doc.Formats)
		if err != nil {
			return nil, err
		}
		resp.Exports = links
	}
	return resp, nil
}

func buildAnalytics(engine *timetable.Engine, stats timetable.RunStats) dto.TimetableAnalytics {
	summary := timetable.Summarize(engine.Grid(), engine.Faculty(), engine.Classes())
	analytics := dto.TimetableAnalytics{
		FacultySummary:    toTallies(summary.FacultyWorkload),
		BranchSummary:     toTallies(summary.BranchDistribution),
		DailySummary:      toTallies(summary.DailyDistribution),
		IncompleteCourses: []dto.CourseOutcome{},
	}
	for _, course := range stats.Courses {
		if course.Complete() {
			continue
		}
		analytics.IncompleteCourses = append(analytics.IncompleteCourses, dto.CourseOutcome{
			Branch:     course.Branch,
			Semester:   course.Semester,
			CourseCode: course.CourseCode,
			Placed:     course.Placed,
			Required:   course.Required,
		})
	}
	return analytics
}

func toTallies(in []timetable.Tally) []dto.Tally {
	out := make([]dto.Tally, len(in))
	for i, tally := range in {
		out[i] = dto.Tally{Name: tally.Label, Sessions: tally.Count}
	}
	return out
}

// buildSessions flattens the class table into rows, one per placed session.
func buildSessions(grid timetable.Grid, classes *timetable.ClassOccupancy) []models.TimetableSession {
	dayIndex := make(map[timetable.Day]int)
	for i, day := range grid.Days() {
		dayIndex[day] = i
	}
	periodIndex := make(map[timetable.Period]int)
	for i, period := range grid.Periods() {
		periodIndex[period] = i
	}

	entries := classes.Entries(grid.Days())
	sessions := make([]models.TimetableSession, 0, len(entries))
	for _, entry := range entries {
		rec := entry.Record
		sessions = append(sessions, models.TimetableSession{
			Branch:      rec.Branch,
			Semester:    rec.Semester,
			Day:         string(rec.Slot.Day),
			DayIndex:    dayIndex[rec.Slot.Day],
			Period:      string(rec.Slot.Period),
			PeriodIndex: periodIndex[rec.Slot.Period],
			CourseCode:  rec.CourseCode,
			CourseName:  rec.CourseName,
			SessionType: string(rec.Kind),
			MainFaculty: rec.Primary.Name(),
			CoFaculty:   rec.Secondary.Name(),
		})
	}
	return sessions
}

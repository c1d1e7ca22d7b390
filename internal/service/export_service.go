package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sonarsarthak/EDUManager/internal/dto"
	"github.com/sonarsarthak/EDUManager/internal/models"
	"github.com/sonarsarthak/EDUManager/internal/timetable"
	appErrors "github.com/sonarsarthak/EDUManager/pkg/errors"
	"github.com/sonarsarthak/EDUManager/pkg/export"
	"github.com/sonarsarthak/EDUManager/pkg/jobs"
	"github.com/sonarsarthak/EDUManager/pkg/storage"
)

// ExportJobType tags queue jobs that render a run's timetable files.
const ExportJobType = "timetable_export"

type fileStorage interface {
	Save(relPath string, data []byte) (string, error)
	Exists(relPath string) bool
	Path(relPath string) string
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type datasetRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix       string
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// TimetableTables holds the three tabular views of a finished run.
type TimetableTables struct {
	Faculty []models.FacultyTimetableRow
	Classes []models.ClassTimetableRow
	Summary []models.DepartmentSummaryRow
}

// RenderedFile is one encoded table ready to be stored.
type RenderedFile struct {
	Kind   models.ExportKind
	Format models.ExportFormat
	Name   string
	Data   []byte
}

// ExportTask is the queue payload for rendering a run in one format.
type ExportTask struct {
	RunID  string
	Format models.ExportFormat
	Tables TimetableTables
}

// ExportDownload describes a resolved download token.
type ExportDownload struct {
	Path        string
	Filename    string
	ContentType string
	ExpiresAt   time.Time
}

// ExportService renders timetable tables and serves them through signed links.
type ExportService struct {
	storage fileStorage
	signer  *storage.SignedURLSigner
	xlsx    datasetRenderer
	pdf     datasetRenderer
	metrics *MetricsService
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		storage: store,
		signer:  signer,
		xlsx:    export.NewXLSXExporter(),
		pdf:     export.NewPDFExporter(),
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}
}

// BuildTables flattens the sealed occupancy tables into export rows. Rows are
// grouped by key in first-scheduled order, then by grid day.
func BuildTables(grid timetable.Grid, faculty *timetable.FacultyOccupancy, classes *timetable.ClassOccupancy) TimetableTables {
	days := grid.Days()
	tables := TimetableTables{
		Faculty: make([]models.FacultyTimetableRow, 0, faculty.Total()),
		Classes: make([]models.ClassTimetableRow, 0, classes.Total()),
	}
	for _, entry := range faculty.Entries(days) {
		rec := entry.Record
		tables.Faculty = append(tables.Faculty, models.FacultyTimetableRow{
			Faculty:     entry.Key.Name(),
			Day:         string(rec.Slot.Day),
			Period:      string(rec.Slot.Period),
			CourseCode:  rec.CourseCode,
			CourseName:  rec.CourseName,
			SessionType: string(rec.Kind),
			Branch:      rec.Branch,
			Semester:    rec.Semester,
			CoFaculty:   rec.Secondary.Name(),
		})
	}
	for _, entry := range classes.Entries(days) {
		rec := entry.Record
		tables.Classes = append(tables.Classes, models.ClassTimetableRow{
			Branch:      entry.Key.Branch,
			Semester:    entry.Key.Semester,
			Day:         string(rec.Slot.Day),
			Period:      string(rec.Slot.Period),
			CourseCode:  rec.CourseCode,
			CourseName:  rec.CourseName,
			SessionType: string(rec.Kind),
			MainFaculty: rec.Primary.Name(),
			CoFaculty:   rec.Secondary.Name(),
		})
	}
	for _, section := range timetable.SectionSummaries(classes) {
		tables.Summary = append(tables.Summary, models.DepartmentSummaryRow{
			Branch:        section.Key.Branch,
			Semester:      section.Key.Semester,
			TotalSessions: section.Total,
			Lectures:      section.Lectures,
			Practicals:    section.Practicals,
			Tutorials:     section.Tutorials,
		})
	}
	return tables
}

// Render encodes the three tables in format.
func (s *ExportService) Render(tables TimetableTables, format models.ExportFormat) ([]RenderedFile, error) {
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}
	sources := map[models.ExportKind]interface{}{
		models.ExportFaculty: &tables.Faculty,
		models.ExportClass:   &tables.Classes,
		models.ExportSummary: &tables.Summary,
	}
	files := make([]RenderedFile, 0, len(models.ExportKinds))
	for _, kind := range models.ExportKinds {
		data, err := s.render(sources[kind], kind, format)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", kind.Filename(format), err)
		}
		files = append(files, RenderedFile{Kind: kind, Format: format, Name: kind.Filename(format), Data: data})
	}
	return files, nil
}

func (s *ExportService) render(rows interface{}, kind models.ExportKind, format models.ExportFormat) ([]byte, error) {
	if format == models.ExportFormatCSV {
		return export.MarshalCSV(rows)
	}
	dataset, err := export.Tabulate(rows)
	if err != nil {
		return nil, err
	}
	if format == models.ExportFormatPDF {
		return s.pdf.Render(dataset, exportTitle(kind))
	}
	return s.xlsx.Render(dataset, exportTitle(kind))
}

// Store writes files under dir and returns their relative paths. An empty
// dir stores them at the root of the output directory.
func (s *ExportService) Store(dir string, files []RenderedFile) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, file := range files {
		rel, err := s.storage.Save(path.Join(dir, file.Name), file.Data)
		if err != nil {
			return nil, err
		}
		paths = append(paths, rel)
	}
	return paths, nil
}

// HandleJob renders and stores one ExportTask taken from the queue.
func (s *ExportService) HandleJob(ctx context.Context, job jobs.Job) error {
	var task ExportTask
	switch payload := job.Payload.(type) {
	case ExportTask:
		task = payload
	case *ExportTask:
		if payload == nil {
			return fmt.Errorf("export job %s has nil payload", job.ID)
		}
		task = *payload
	default:
		return fmt.Errorf("export job %s has unexpected payload %T", job.ID, job.Payload)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	files, err := s.Render(task.Tables, task.Format)
	if err == nil {
		_, err = s.Store(task.RunID, files)
	}
	s.metrics.ObserveExport(string(task.Format), err)
	if err != nil {
		return err
	}
	s.logger.Info("timetable export stored",
		zap.String("run_id", task.RunID),
		zap.String("format", string(task.Format)),
		zap.Int("files", len(files)),
	)
	return nil
}

// Abandon records an export job the queue gave up on. Its links stay
// unresolvable and answer "export not ready".
func (s *ExportService) Abandon(job jobs.Job, err error) {
	task, ok := job.Payload.(ExportTask)
	if !ok {
		if ptr, isPtr := job.Payload.(*ExportTask); isPtr && ptr != nil {
			task, ok = *ptr, true
		}
	}
	format := "unknown"
	if ok {
		format = string(task.Format)
	}
	s.metrics.ObserveExportAbandoned(format)
	s.logger.Error("timetable export abandoned",
		zap.String("job_id", job.ID),
		zap.String("run_id", task.RunID),
		zap.String("format", format),
		zap.Int("attempts", job.Attempt),
		zap.Error(err),
	)
}

// Links signs a download URL for every table of the run in each format.
func (s *ExportService) Links(runID string, formats []models.ExportFormat) ([]dto.ExportLink, error) {
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	links := make([]dto.ExportLink, 0, len(formats)*len(models.ExportKinds))
	for _, format := range formats {
		for _, kind := range models.ExportKinds {
			token, expiresAt, err := s.signer.Generate(runID, path.Join(runID, kind.Filename(format)))
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export link")
			}
			links = append(links, dto.ExportLink{
				Kind:      kind,
				Format:    format,
				URL:       fmt.Sprintf("%s/timetables/download/%s", prefix, token),
				ExpiresAt: expiresAt,
			})
		}
	}
	return links, nil
}

// ResolveDownload validates token and locates the stored export file.
func (s *ExportService) ResolveDownload(token string) (*ExportDownload, error) {
	runID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrGone, "download link expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download token")
	}
	if path.Dir(relPath) != runID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if !s.storage.Exists(relPath) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export not ready")
	}
	filename := path.Base(relPath)
	format := models.ExportFormat(strings.TrimPrefix(path.Ext(filename), "."))
	return &ExportDownload{
		Path:        s.storage.Path(relPath),
		Filename:    filename,
		ContentType: format.ContentType(),
		ExpiresAt:   expiresAt,
	}, nil
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ExportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := s.Cleanup(0)
				if err != nil {
					s.logger.Sugar().Warnw("export cleanup failed", "error", err)
					continue
				}
				if len(deleted) > 0 {
					s.logger.Sugar().Infow("expired exports removed", "count", len(deleted))
				}
			}
		}
	}()
}

func exportTitle(kind models.ExportKind) string {
	switch kind {
	case models.ExportFaculty:
		return "Faculty Timetable"
	case models.ExportClass:
		return "Class Timetable"
	default:
		return "Department Summary"
	}
}

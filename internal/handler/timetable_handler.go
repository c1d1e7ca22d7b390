package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sonarsarthak/EDUManager/internal/dto"
	"github.com/sonarsarthak/EDUManager/internal/ingest"
	"github.com/sonarsarthak/EDUManager/internal/middleware"
	"github.com/sonarsarthak/EDUManager/internal/models"
	"github.com/sonarsarthak/EDUManager/internal/service"
	appErrors "github.com/sonarsarthak/EDUManager/pkg/errors"
	"github.com/sonarsarthak/EDUManager/pkg/response"
)

// multipartSlack covers form fields and boundaries around the uploaded file.
const multipartSlack = 64 << 10

type timetableService interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.TimetableRunResponse, error)
	GetRun(ctx context.Context, id string) (*dto.TimetableRunResponse, bool, error)
	FacultyTimetable(ctx context.Context, runID, name string) ([]models.TimetableSession, error)
	ClassTimetable(ctx context.Context, runID string, query dto.ClassTimetableQuery) ([]models.TimetableSession, error)
	Template(format ingest.Format) ([]byte, error)
}

type downloadResolver interface {
	ResolveDownload(token string) (*service.ExportDownload, error)
}

// TimetableHandler exposes timetable generation and lookup endpoints.
type TimetableHandler struct {
	service   timetableService
	downloads downloadResolver
	maxUpload int64
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService, exports *service.ExportService, maxUpload int64) *TimetableHandler {
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &TimetableHandler{service: svc, downloads: exports, maxUpload: maxUpload}
}

// Generate godoc
// @Summary Generate a timetable from a course sheet
// @Description Upload a CSV or XLSX course sheet. The run is persisted and rendered exports are queued.
// @Tags Timetables
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Course sheet (.csv or .xlsx)"
// @Param seed formData integer false "Shuffle seed for a reproducible run"
// @Param formats formData []string false "Export formats (csv, xlsx, pdf)"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /timetables [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+multipartSlack)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.ErrPayloadTooLarge)
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	if header.Size > h.maxUpload {
		response.Error(c, appErrors.ErrPayloadTooLarge)
		return
	}

	req := dto.GenerateTimetableRequest{Filename: header.Filename, ActorID: actorID(c)}
	if raw := strings.TrimSpace(c.PostForm("seed")); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "seed must be an integer"))
			return
		}
		req.Seed = &seed
	}
	req.Formats = parseFormats(c.PostFormArray("formats"))

	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck
	req.Content, err = io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read upload"))
		return
	}
	if int64(len(req.Content)) > h.maxUpload {
		response.Error(c, appErrors.ErrPayloadTooLarge)
		return
	}

	resp, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// GetRun godoc
// @Summary Get a timetable run summary
// @Tags Timetables
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/{id} [get]
func (h *TimetableHandler) GetRun(c *gin.Context) {
	resp, hit, err := h.service.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, resp, middleware.ExtractMeta(c))
}

// Faculty godoc
// @Summary List one instructor's sessions in a run
// @Tags Timetables
// @Produce json
// @Param id path string true "Run ID"
// @Param name query string true "Instructor name"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/faculty [get]
func (h *TimetableHandler) Faculty(c *gin.Context) {
	sessions, err := h.service.FacultyTimetable(c.Request.Context(), c.Param("id"), strings.TrimSpace(c.Query("name")))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "total", len(sessions))
	response.JSON(c, http.StatusOK, sessions, middleware.ExtractMeta(c))
}

// Classes godoc
// @Summary List one class-section's sessions in a run
// @Tags Timetables
// @Produce json
// @Param id path string true "Run ID"
// @Param branch query string true "Branch"
// @Param semester query string true "Semester"
// @Success 200 {object} response.Envelope
// @Router /timetables/{id}/classes [get]
func (h *TimetableHandler) Classes(c *gin.Context) {
	var query dto.ClassTimetableQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	sessions, err := h.service.ClassTimetable(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "total", len(sessions))
	response.JSON(c, http.StatusOK, sessions, middleware.ExtractMeta(c))
}

// Template godoc
// @Summary Download the sample course sheet
// @Tags Timetables
// @Produce octet-stream
// @Param format query string false "csv or xlsx" default(csv)
// @Success 200 {file} file
// @Router /timetables/template [get]
func (h *TimetableHandler) Template(c *gin.Context) {
	format := ingest.Format(strings.ToLower(c.DefaultQuery("format", string(ingest.FormatCSV))))
	data, err := h.service.Template(format)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("course_template.%s", format)
	response.Attachment(c, filename, models.ExportFormat(format).ContentType(), data)
}

// Download godoc
// @Summary Download a rendered timetable file
// @Tags Timetables
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /timetables/download/{token} [get]
func (h *TimetableHandler) Download(c *gin.Context) {
	download, err := h.downloads.ResolveDownload(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Type", download.ContentType)
	c.FileAttachment(download.Path, download.Filename)
}

// parseFormats accepts repeated fields as well as one comma separated value.
// Repeats collapse to the first occurrence.
func parseFormats(values []string) []models.ExportFormat {
	var formats []models.ExportFormat
	seen := make(map[string]bool)
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			formats = append(formats, models.ExportFormat(part))
		}
	}
	return formats
}

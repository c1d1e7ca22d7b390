package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/sonarsarthak/EDUManager/internal/timetable"
)

// Format identifies a course sheet encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for sheets that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported course sheet format")

// notRequired marks an instructor column that does not apply to the course.
const notRequired = "N.R."

// Row mirrors one line of the course sheet.
type Row struct {
	Branch      string `csv:"Branch" validate:"required"`
	Semester    string `csv:"Semester"`
	CourseCode  string `csv:"Course Code" validate:"required"`
	CourseName  string `csv:"Course Name"`
	LTP         string `csv:"L/T/P"`
	MainFaculty string `csv:"Main Faculty"`
	CoFaculty   string `csv:"Co-Faculty"`
}

// DroppedRow reports a sheet row that was not handed to the engine.
type DroppedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Result is the outcome of reading one course sheet.
type Result struct {
	Requirements []timetable.CourseRequirement
	Rows         int
	Dropped      []DroppedRow
}

var validate = validator.New()

// DetectFormat picks the decoder from the file extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// LoadFile reads the course sheet at path.
func LoadFile(path string) (*Result, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open course sheet: %w", err)
	}
	defer file.Close() //nolint:errcheck
	return Load(file, format)
}

// Load decodes a course sheet in the given format.
func Load(r io.Reader, format Format) (*Result, error) {
	switch format {
	case FormatCSV:
		return ParseCSV(r)
	case FormatXLSX:
		return ParseXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ParseCSV decodes a comma separated course sheet.
func ParseCSV(r io.Reader) (*Result, error) {
	reader := csv.NewReader(stripBOM(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	lines := &csvLineReader{Reader: reader}
	rows := []*Row{}
	if err := gocsv.UnmarshalCSV(lines, &rows); err != nil {
		return nil, fmt.Errorf("parse csv course sheet: %w", err)
	}
	return buildResult(rows, dataLines(lines.lines)), nil
}

// ParseXLSX decodes the first worksheet of an Excel workbook.
func ParseXLSX(r io.Reader) (*Result, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx course sheet: %w", err)
	}
	defer book.Close() //nolint:errcheck

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx course sheet has no worksheets")
	}
	records, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheets[0], err)
	}

	reader := newRecordReader(records)
	rows := []*Row{}
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		return nil, fmt.Errorf("parse xlsx course sheet: %w", err)
	}
	return buildResult(rows, dataLines(reader.lines)), nil
}

// buildResult converts decoded rows. lines[i] is the sheet line rows[i] was
// read from; without it rows are numbered as if the sheet had no blank lines.
func buildResult(rows []*Row, lines []int) *Result {
	result := &Result{Rows: len(rows)}
	for i, row := range rows {
		line := i + 2
		if i < len(lines) {
			line = lines[i]
		}
		normalizeRow(row)
		if err := validate.Struct(row); err != nil {
			result.Dropped = append(result.Dropped, DroppedRow{Line: line, Reason: dropReason(err)})
			continue
		}
		lectures, tutorials, practicals := ParseLTP(row.LTP)
		result.Requirements = append(result.Requirements, timetable.CourseRequirement{
			Branch:     row.Branch,
			Semester:   row.Semester,
			CourseCode: row.CourseCode,
			CourseName: row.CourseName,
			Lectures:   lectures,
			Tutorials:  tutorials,
			Practicals: practicals,
			Primary:    ParseInstructor(row.MainFaculty),
			Secondary:  ParseInstructor(row.CoFaculty),
		})
	}
	return result
}

func normalizeRow(row *Row) {
	row.Branch = blankIfMissing(row.Branch)
	row.Semester = normalizeSemester(blankIfMissing(row.Semester))
	row.CourseCode = blankIfMissing(row.CourseCode)
	row.CourseName = blankIfMissing(row.CourseName)
	row.LTP = strings.TrimSpace(row.LTP)
}

func dropReason(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		names := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			switch fe.Field() {
			case "Branch":
				names = append(names, "branch")
			case "CourseCode":
				names = append(names, "course code")
			default:
				names = append(names, strings.ToLower(fe.Field()))
			}
		}
		return "missing " + strings.Join(names, " and ")
	}
	return err.Error()
}

// ParseLTP splits "<lectures>/<tutorials>/<practicals>". Missing, malformed or
// negative segments count as zero.
func ParseLTP(raw string) (lectures, tutorials, practicals int) {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	counts := [3]int{}
	for i := 0; i < len(parts) && i < len(counts); i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 {
			continue
		}
		counts[i] = n
	}
	return counts[0], counts[1], counts[2]
}

// ParseInstructor maps blank cells and the "N.R." marker to an absent instructor.
func ParseInstructor(raw string) timetable.Instructor {
	name := blankIfMissing(raw)
	if strings.EqualFold(name, notRequired) {
		return timetable.NoInstructor
	}
	return timetable.NewInstructor(name)
}

// blankIfMissing trims the cell and clears spreadsheet null markers.
func blankIfMissing(raw string) string {
	value := strings.TrimSpace(raw)
	switch strings.ToLower(value) {
	case "nan", "null", "none":
		return ""
	}
	return value
}

// normalizeSemester renders "5.0" as "5" so numeric cells and text cells key
// the same class-section.
func normalizeSemester(raw string) string {
	if raw == "" {
		return raw
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int64(f)) {
		return raw
	}
	return strconv.FormatInt(int64(f), 10)
}

func stripBOM(r io.Reader) io.Reader {
	buffered := bufio.NewReader(r)
	if head, err := buffered.Peek(3); err == nil && bytes.Equal(head, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = buffered.Discard(3)
	}
	return buffered
}

// dataLines drops the header's entry.
func dataLines(lines []int) []int {
	if len(lines) == 0 {
		return nil
	}
	return lines[1:]
}

// csvLineReader records the line each record starts on. Quoted fields may span
// lines and blank lines are skipped, so record index and line drift apart.
type csvLineReader struct {
	*csv.Reader
	lines []int
}

func (r *csvLineReader) Read() ([]string, error) {
	record, err := r.Reader.Read()
	if err != nil {
		return nil, err
	}
	line, _ := r.FieldPos(0)
	r.lines = append(r.lines, line)
	return record, nil
}

func (r *csvLineReader) ReadAll() ([][]string, error) {
	return readAll(r.Read)
}

// recordReader feeds worksheet rows to gocsv. Rows are padded to the header
// width because excelize trims trailing empty cells. Blank rows after the
// header are skipped; lines keeps the 1-based worksheet row of each record.
type recordReader struct {
	records [][]string
	width   int
	next    int
	lines   []int
}

func newRecordReader(records [][]string) *recordReader {
	width := 0
	if len(records) > 0 {
		width = len(records[0])
	}
	return &recordReader{records: records, width: width}
}

func (r *recordReader) Read() ([]string, error) {
	for r.next < len(r.records) {
		record := r.records[r.next]
		r.next++
		if r.next > 1 && isEmptyRecord(record) {
			continue
		}
		r.lines = append(r.lines, r.next)
		return r.pad(record), nil
	}
	return nil, io.EOF
}

func (r *recordReader) ReadAll() ([][]string, error) {
	return readAll(r.Read)
}

func readAll(read func() ([]string, error)) ([][]string, error) {
	var out [][]string
	for {
		record, err := read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
}

func (r *recordReader) pad(record []string) []string {
	if len(record) >= r.width {
		return record
	}
	padded := make([]string, r.width)
	copy(padded, record)
	return padded
}

func isEmptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

package ingest

import (
	"bytes"
	"fmt"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"
)

const templateSheet = "Courses"

// TemplateRows is the sample course sheet offered to new users.
func TemplateRows() []*Row {
	return []*Row{
		{Branch: "CSE", Semester: "5", CourseCode: "CS501", CourseName: "Data Structures", LTP: "3/1/2", MainFaculty: "Dr. John Smith", CoFaculty: "Dr. Jane Doe"},
		{Branch: "CSE", Semester: "5", CourseCode: "CS502", CourseName: "Database Management", LTP: "3/0/2", MainFaculty: "Dr. Jane Doe", CoFaculty: ""},
		{Branch: "ECE", Semester: "3", CourseCode: "EC301", CourseName: "Digital Electronics", LTP: "2/1/2", MainFaculty: "Dr. Mike Johnson", CoFaculty: "Dr. Sarah Wilson"},
		{Branch: "ECE", Semester: "3", CourseCode: "EC302", CourseName: "Signals and Systems", LTP: "3/1/0", MainFaculty: "Dr. Sarah Wilson", CoFaculty: ""},
		{Branch: "ME", Semester: "4", CourseCode: "ME401", CourseName: "Thermodynamics", LTP: "3/0/2", MainFaculty: "Dr. Robert Brown", CoFaculty: ""},
		{Branch: "ME", Semester: "4", CourseCode: "ME402", CourseName: "Mechanics of Materials", LTP: "2/1/2", MainFaculty: "Dr. Robert Brown", CoFaculty: "Dr. Lisa Davis"},
	}
}

// Template renders the sample sheet in the requested format.
func Template(format Format) ([]byte, error) {
	rows := TemplateRows()
	switch format {
	case FormatCSV:
		data, err := gocsv.MarshalBytes(&rows)
		if err != nil {
			return nil, fmt.Errorf("marshal csv template: %w", err)
		}
		return data, nil
	case FormatXLSX:
		return templateWorkbook(rows)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func templateWorkbook(rows []*Row) ([]byte, error) {
	book := excelize.NewFile()
	defer book.Close() //nolint:errcheck

	if err := book.SetSheetName("Sheet1", templateSheet); err != nil {
		return nil, fmt.Errorf("name template sheet: %w", err)
	}
	header := []interface{}{"Branch", "Semester", "Course Code", "Course Name", "L/T/P", "Main Faculty", "Co-Faculty"}
	if err := book.SetSheetRow(templateSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write template header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{row.Branch, row.Semester, row.CourseCode, row.CourseName, row.LTP, row.MainFaculty, row.CoFaculty}
		if err := book.SetSheetRow(templateSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write template row %d: %w", i+1, err)
		}
	}
	if err := book.SetColWidth(templateSheet, "A", "G", 20); err != nil {
		return nil, fmt.Errorf("size template columns: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := book.Write(buf); err != nil {
		return nil, fmt.Errorf("render xlsx template: %w", err)
	}
	return buf.Bytes(), nil
}

package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/gocarina/gocsv"
)

// Dataset is tabular export content: one header row plus string cells.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

// MarshalCSV encodes a slice of csv-tagged structs.
func MarshalCSV(rows interface{}) ([]byte, error) {
	data, err := gocsv.MarshalBytes(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal csv: %w", err)
	}
	return data, nil
}

// Tabulate flattens a slice of csv-tagged structs into a Dataset so every
// format shares the column layout declared by the struct tags.
func Tabulate(rows interface{}) (Dataset, error) {
	data, err := MarshalCSV(rows)
	if err != nil {
		return Dataset{}, err
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return Dataset{}, fmt.Errorf("tabulate rows: %w", err)
	}
	if len(records) == 0 {
		return Dataset{}, fmt.Errorf("tabulate rows: no header")
	}
	return Dataset{Headers: records[0], Rows: records[1:]}, nil
}

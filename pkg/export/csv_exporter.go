package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is a titled table; rows are keyed by header.
type Dataset struct {
	Title   string
	Headers []string
	Rows    []map[string]string
}

// AddRow appends values in header order. Missing trailing values are left empty.
func (d *Dataset) AddRow(values ...string) {
	row := make(map[string]string, len(d.Headers))
	for i, header := range d.Headers {
		if i < len(values) {
			row[header] = values[i]
		}
	}
	d.Rows = append(d.Rows, row)
}

// CSVExporter renders datasets as RFC 4180 CSV.
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render writes the header row followed by every dataset row. Multiple
// sections are separated by a blank line and prefixed with their title.
func (e *CSVExporter) Render(sections ...Dataset) ([]byte, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("csv requires at least one dataset")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	for i, data := range sections {
		if len(data.Headers) == 0 {
			return nil, fmt.Errorf("csv requires at least one header")
		}
		if len(sections) > 1 {
			if i > 0 {
				if err := writer.Write([]string{}); err != nil {
					return nil, fmt.Errorf("write csv separator: %w", err)
				}
			}
			if err := writer.Write([]string{data.Title}); err != nil {
				return nil, fmt.Errorf("write csv title: %w", err)
			}
		}
		if err := writer.Write(data.Headers); err != nil {
			return nil, fmt.Errorf("write csv headers: %w", err)
		}
		for _, row := range data.Rows {
			record := make([]string, len(data.Headers))
			for j, header := range data.Headers {
				record[j] = row[header]
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

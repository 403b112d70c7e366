package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Row is one parsed CSV registration line.
type Row struct {
	Line      int
	Species   string
	Lat       *float64
	Lng       *float64
	PlantedBy string
	Campaign  string
	PlantedAt *time.Time
	Note      string
}

// RowError attaches a line number to a parse or registration failure.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

var dateFormats = []string{time.RFC3339, "2006-01-02"}

// parseRows reads the CSV stream into rows. The first record is a header;
// column order is free and header matching is case-insensitive. Only the
// species column is required. Malformed rows are collected, not fatal.
func parseRows(r io.Reader) ([]Row, []RowError, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("file is empty")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := columns["species"]; !ok {
		return nil, nil, fmt.Errorf("header is missing the species column")
	}

	var (
		rows    []Row
		rowErrs []RowError
	)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}
		row, err := parseRow(columns, record, line)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}
		rows = append(rows, row)
	}
	return rows, rowErrs, nil
}

func parseRow(columns map[string]int, record []string, line int) (Row, error) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	row := Row{
		Line:      line,
		Species:   field("species"),
		PlantedBy: field("planted_by"),
		Campaign:  field("campaign"),
		Note:      field("note"),
	}
	if row.Species == "" {
		return Row{}, fmt.Errorf("species is empty")
	}

	latText, lngText := field("lat"), field("lng")
	if (latText == "") != (lngText == "") {
		return Row{}, fmt.Errorf("lat and lng must be provided together")
	}
	if latText != "" {
		lat, err := strconv.ParseFloat(latText, 64)
		if err != nil {
			return Row{}, fmt.Errorf("bad lat %q", latText)
		}
		lng, err := strconv.ParseFloat(lngText, 64)
		if err != nil {
			return Row{}, fmt.Errorf("bad lng %q", lngText)
		}
		row.Lat, row.Lng = &lat, &lng
	}

	if plantedText := field("planted_at"); plantedText != "" {
		parsed, err := parseDate(plantedText)
		if err != nil {
			return Row{}, err
		}
		row.PlantedAt = &parsed
	}
	return row, nil
}

func parseDate(text string) (time.Time, error) {
	for _, format := range dateFormats {
		if parsed, err := time.Parse(format, text); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad planted_at %q (expected RFC3339 or YYYY-MM-DD)", text)
}

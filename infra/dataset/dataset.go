// Package dataset reads and writes commute trip files. CSV is decoded with
// gocsv, spreadsheets with excelize; both share the same header and the same
// row validation.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/commutecarbon/core/model"
)

// Supported file formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Columns that must be present in every dataset file.
var RequiredColumns = []string{
	"traffic_condition",
	"trip_duration",
	"distance_km",
	"fuel_efficiency_l_per_100km",
	"co2_emissions_kg",
}

// FormatOf infers the format from the file extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported dataset extension %q", filepath.Ext(path))
	}
}

// Load reads path using the format implied by its extension.
func Load(path string) ([]model.TripRecord, error) {
	return LoadFormat(path, "")
}

// LoadFormat reads path as format. An empty format is inferred from the
// extension.
func LoadFormat(path, format string) ([]model.TripRecord, error) {
	if format == "" {
		f, err := FormatOf(path)
		if err != nil {
			return nil, err
		}
		format = f
	}
	switch strings.ToLower(format) {
	case FormatCSV:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		defer f.Close()
		return ReadCSV(f)
	case FormatXLSX:
		return readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", format)
	}
}

// ReadCSV decodes a CSV stream with a header row.
func ReadCSV(r io.Reader) ([]model.TripRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	var rows [][]string
	var lines []int
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		// encoding/csv drops empty lines, so keep the line each record
		// starts on.
		line, _ := cr.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}
	return decodeRows(rows, lines)
}

func readXLSX(path string) ([]model.TripRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet %s has no sheet", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	// GetRows keeps empty rows, so positions are sheet rows.
	return decodeRows(rows, nil)
}

// rowsReader feeds already split rows to gocsv.
type rowsReader struct {
	rows [][]string
	pos  int
}

func (r *rowsReader) Read() ([]string, error) {
	if r.pos >= len(r.rows) {
		return nil, io.EOF
	}
	row := r.rows[r.pos]
	r.pos++
	return row, nil
}

func (r *rowsReader) ReadAll() ([][]string, error) {
	rest := r.rows[r.pos:]
	r.pos = len(r.rows)
	return rest, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// decodeRows maps a header row plus data rows onto trip records. fileLines
// holds the file line of each row; when nil, rows[i] is line i+1. Errors
// carry the file line of the offending row.
func decodeRows(rows [][]string, fileLines []int) ([]model.TripRecord, error) {
	lineOf := func(i int) int {
		if i < len(fileLines) {
			return fileLines[i]
		}
		return i + 1
	}
	if len(rows) == 0 || blank(rows[0]) {
		return nil, &model.InsufficientDataError{Op: "load dataset", Have: 0, Need: 1}
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	for _, c := range RequiredColumns {
		if _, ok := index[c]; !ok {
			return nil, &model.ValidationError{Row: lineOf(0), Field: c, Reason: "missing column"}
		}
	}

	body := [][]string{header}
	lines := []int{}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if blank(row) {
			continue
		}
		for _, c := range RequiredColumns {
			if j := index[c]; j >= len(row) || strings.TrimSpace(row[j]) == "" {
				return nil, &model.ValidationError{Row: lineOf(i), Field: c, Reason: "missing value"}
			}
		}
		body = append(body, row)
		lines = append(lines, lineOf(i))
	}
	if len(lines) == 0 {
		return nil, &model.InsufficientDataError{Op: "load dataset", Have: 0, Need: 1}
	}

	var out []model.TripRecord
	if err := gocsv.UnmarshalCSV(&rowsReader{rows: body}, &out); err != nil {
		var perr *csv.ParseError
		if !errors.As(err, &perr) {
			return nil, fmt.Errorf("decode dataset: %w", err)
		}
		idx := perr.Line - 2
		line, field, value := 0, "", ""
		if idx >= 0 && idx < len(lines) {
			line = lines[idx]
			if c := perr.Column - 1; c >= 0 && c < len(body[idx+1]) {
				value = body[idx+1][c]
			}
		}
		if c := perr.Column - 1; c >= 0 && c < len(header) {
			field = header[c]
		}
		var verr *model.ValidationError
		if errors.As(perr.Err, &verr) {
			cp := *verr
			cp.Row = line
			return nil, &cp
		}
		return nil, &model.ValidationError{Row: line, Field: field, Value: value, Reason: "not a number"}
	}
	for i, r := range out {
		if err := checkRecord(r); err != nil {
			var verr *model.ValidationError
			if errors.As(err, &verr) {
				verr.Row = lines[i]
			}
			return nil, err
		}
	}
	return out, nil
}

func checkRecord(r model.TripRecord) error {
	if err := model.CheckPositive("trip_duration", r.DurationMin); err != nil {
		return err
	}
	if err := model.CheckPositive("distance_km", r.DistanceKm); err != nil {
		return err
	}
	if err := model.CheckPositive("fuel_efficiency_l_per_100km", r.EfficiencyL100); err != nil {
		return err
	}
	if math.IsNaN(r.CO2Kg) || math.IsInf(r.CO2Kg, 0) || r.CO2Kg < 0 {
		return &model.ValidationError{
			Field:  "co2_emissions_kg",
			Value:  strconv.FormatFloat(r.CO2Kg, 'g', -1, 64),
			Reason: "must be a finite non-negative number",
		}
	}
	return nil
}

// AppendCSV appends trips to path, creating the file and writing the header
// when it is new or empty.
func AppendCSV(path string, trips ...model.TripRecord) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dataset dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat dataset: %w", err)
	}
	if info.Size() == 0 {
		err = gocsv.Marshal(trips, f)
	} else {
		err = gocsv.MarshalWithoutHeaders(trips, f)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("append trips: %w", err)
	}
	return f.Close()
}

// WriteCSV replaces path with the given corpus.
func WriteCSV(path string, trips []model.TripRecord) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dataset dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}
	if err := gocsv.Marshal(trips, f); err != nil {
		f.Close()
		return fmt.Errorf("write trips: %w", err)
	}
	return f.Close()
}

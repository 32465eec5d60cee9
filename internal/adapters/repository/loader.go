package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/surveytarget/internal/domain/model"
)

// RequiredColumns must all be present in the header row.
var RequiredColumns = []string{
	model.ColumnNPI,
	model.ColumnState,
	model.ColumnRegion,
	model.ColumnSpeciality,
	model.ColumnSurveyAttempts,
	model.ColumnUsageTime,
	model.ColumnLoginTime,
}

// timeLayouts are tried in order for textual login timestamps.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/06 15:04",
	"1/2/2006 15:04",
}

// Load reads the roster at path. The format follows the file extension:
// .xlsx/.xlsm via excelize, .csv via encoding/csv.
func Load(ctx context.Context, path string, opts ...Option) (*MemoryStore, error) {
	o := loadOptions{location: time.UTC}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(path, o.sheet)
	case ".csv":
		rows, err = readCSV(path)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupported, filepath.Ext(path))
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	records, err := parseTable(path, rows, o.location)
	if err != nil {
		return nil, err
	}
	return NewMemoryStore(path, records), nil
}

func readWorkbook(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	// Raw values keep date cells as serial numbers instead of locale text.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()
	return ReadCSV(fh)
}

// ReadCSV reads all rows of a delimited roster, tolerating a UTF-8 BOM and
// ragged rows.
func ReadCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func parseTable(path string, rows [][]string, loc *time.Location) ([]model.Record, error) {
	if len(rows) == 0 {
		return nil, &LoadError{Path: path, Err: errors.New("no header row")}
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[normalizeHeader(h)] = i
	}
	cols := make(map[string]int, len(RequiredColumns))
	for _, name := range RequiredColumns {
		i, ok := index[normalizeHeader(name)]
		if !ok {
			return nil, &LoadError{Path: path, Column: name, Err: ErrMissingColumn}
		}
		cols[name] = i
	}

	records := make([]model.Record, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if blank(row) {
			continue
		}
		line := n + 2
		cell := func(name string) string {
			if i := cols[name]; i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}

		rec := model.Record{
			NPI:        normalizeID(cell(model.ColumnNPI)),
			State:      cell(model.ColumnState),
			Region:     cell(model.ColumnRegion),
			Speciality: cell(model.ColumnSpeciality),
		}
		if rec.NPI == "" {
			return nil, &LoadError{Path: path, Row: line, Column: model.ColumnNPI, Err: errors.New("empty identifier")}
		}

		var err error
		if rec.SurveyAttempts, err = parseNumber(cell(model.ColumnSurveyAttempts)); err != nil {
			return nil, &LoadError{Path: path, Row: line, Column: model.ColumnSurveyAttempts, Err: err}
		}
		if rec.UsageMinutes, err = parseNumber(cell(model.ColumnUsageTime)); err != nil {
			return nil, &LoadError{Path: path, Row: line, Column: model.ColumnUsageTime, Err: err}
		}
		if rec.LoginTime, err = ParseTimestamp(cell(model.ColumnLoginTime), loc); err != nil {
			return nil, &LoadError{Path: path, Row: line, Column: model.ColumnLoginTime, Err: err}
		}
		rec.Derive()
		records = append(records, rec)
	}
	return records, nil
}

// ParseTimestamp accepts an Excel serial date or one of the textual layouts.
// Timestamps without an offset are interpreted in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("excel serial %q: %w", s, err)
		}
		// excelize returns wall-clock values in UTC; rebase into loc.
		t = t.Round(time.Second)
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func parseNumber(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}

// normalizeID strips the ".0" that spreadsheet round-trips add to integer ids.
func normalizeID(s string) string {
	if head, ok := strings.CutSuffix(s, ".0"); ok {
		if _, err := strconv.ParseUint(head, 10, 64); err == nil {
			return head
		}
	}
	return s
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

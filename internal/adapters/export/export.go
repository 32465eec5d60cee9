// Package export writes result sets as downloadable CSV or XLSX files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/surveytarget/internal/domain/model"
)

// Format is an export file format.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Default download names and the workbook sheet.
const (
	FileNameCSV  = "targeted_doctors.csv"
	FileNameXLSX = "targeted_doctors.xlsx"
	SheetName    = "Targets"
)

// Header is the column order of every export.
var Header = []string{
	model.ColumnNPI,
	model.ColumnState,
	model.ColumnRegion,
	model.ColumnSpeciality,
	model.ColumnProbability,
}

// ParseFormat maps a user supplied name to a Format; empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FileName returns the default download name for f.
func (f Format) FileName() string {
	if f == FormatXLSX {
		return FileNameXLSX
	}
	return FileNameCSV
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Write encodes matches in format f and returns the number of bytes written.
func Write(w io.Writer, f Format, matches []model.ScoredRecord) (int64, error) {
	cw := &countingWriter{w: w}
	var err error
	switch f {
	case FormatCSV:
		err = WriteCSV(cw, matches)
	case FormatXLSX:
		err = WriteXLSX(cw, matches)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	return cw.n, err
}

// WriteCSV writes the header and one row per match. Probabilities use the
// shortest decimal text that parses back to the same float64.
func WriteCSV(w io.Writer, matches []model.ScoredRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, m := range matches {
		if err := cw.Write(row(m)); err != nil {
			return fmt.Errorf("write csv row %s: %w", m.NPI, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes matches to the Targets sheet of a new workbook.
func WriteXLSX(w io.Writer, matches []model.ScoredRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}
	for i, m := range matches {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{m.NPI, m.State, m.Region, m.Speciality, m.Probability}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write xlsx row %s: %w", m.NPI, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ReadCSV parses an export produced by WriteCSV.
func ReadCSV(r io.Reader) ([]model.ScoredRecord, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 || strings.Join(rows[0], ",") != strings.Join(Header, ",") {
		return nil, fmt.Errorf("read csv: unexpected header")
	}
	out := make([]model.ScoredRecord, 0, len(rows)-1)
	for i, r := range rows[1:] {
		p, err := strconv.ParseFloat(r[4], 64)
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", i+2, err)
		}
		out = append(out, model.ScoredRecord{
			Record: model.Record{
				NPI:        r[0],
				State:      r[1],
				Region:     r[2],
				Speciality: r[3],
			},
			Probability: p,
		})
	}
	return out, nil
}

func row(m model.ScoredRecord) []string {
	return []string{
		m.NPI,
		m.State,
		m.Region,
		m.Speciality,
		strconv.FormatFloat(m.Probability, 'f', -1, 64),
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

package sampledata

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/surveytarget/internal/adapters/classifier"
	"github.com/okian/surveytarget/internal/domain/model"
	"github.com/okian/surveytarget/pkg/logger"
)

const csvTimeLayout = "2006-01-02 15:04:05"

var rosterHeader = []string{
	model.ColumnNPI,
	model.ColumnState,
	model.ColumnRegion,
	model.ColumnSpeciality,
	model.ColumnSurveyAttempts,
	model.ColumnUsageTime,
	model.ColumnLoginTime,
}

// Run generates the roster and model and writes both files.
func Run(ctx context.Context, cfg Config) error {
	log := logger.Named("sampledata")

	records := Roster(cfg)
	if err := WriteRoster(cfg.RosterPath, records); err != nil {
		return err
	}
	log.Info(ctx, "roster written",
		logger.String("path", cfg.RosterPath),
		logger.Int("records", len(records)),
		logger.Any("seed", cfg.Seed))

	if err := WriteModel(cfg.ModelPath, Model()); err != nil {
		return err
	}
	log.Info(ctx, "model artifact written", logger.String("path", cfg.ModelPath))
	return nil
}

// WriteRoster writes records to path; the extension picks xlsx or csv.
func WriteRoster(path string, records []model.Record) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return writeWorkbook(path, records)
	case ".csv":
		return writeCSV(path, records)
	}
	return fmt.Errorf("unsupported roster extension %q", filepath.Ext(path))
}

// WriteModel writes a as a YAML artifact.
func WriteModel(path string, a classifier.Artifact) error {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	if err := classifier.Encode(fh, a); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}

func writeWorkbook(path string, records []model.Record) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	header := make([]any, len(rosterHeader))
	for i, h := range rosterHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{r.NPI, r.State, r.Region, r.Speciality, r.SurveyAttempts, r.UsageMinutes, r.LoginTime}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeCSV(path string, records []model.Record) error {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create roster file: %w", err)
	}
	w := csv.NewWriter(fh)
	_ = w.Write(rosterHeader)
	for _, r := range records {
		_ = w.Write([]string{
			r.NPI, r.State, r.Region, r.Speciality,
			strconv.FormatFloat(r.SurveyAttempts, 'f', -1, 64),
			strconv.FormatFloat(r.UsageMinutes, 'f', -1, 64),
			r.LoginTime.Format(csvTimeLayout),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = fh.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	return fh.Close()
}

// Package importer bulk-loads spreadsheet rows into the movie collection.
// It shares the data model with the client but has no runtime interaction
// with it.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"cinelog/internal/domain"
)

// Expected spreadsheet columns. These match the original export, so a sheet
// that worked with the old migration script works here unchanged.
const (
	columnName   = "nombre"
	columnYear   = "año"
	columnPoster = "poster_url"
)

// Report summarizes an import run.
type Report struct {
	Total    int
	Imported int
	Failed   int
}

// RowStatus reports the outcome of one row, for console progress output.
type RowStatus struct {
	Row  int
	Name string
	Year int
	Err  error
}

// Run reads CSV rows from r and inserts each as a movie document with empty
// notes. Malformed rows are counted as failures and skipped; only an
// unreadable header is fatal. onRow, when non-nil, is called once per row.
func Run(ctx context.Context, store domain.DocumentStore, r io.Reader, logger *slog.Logger, onRow func(RowStatus)) (Report, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := readHeader(cr)
	if err != nil {
		return Report{}, fmt.Errorf("failed to read header: %w", err)
	}
	if _, ok := header[columnName]; !ok {
		return Report{}, fmt.Errorf("missing required column %q", columnName)
	}

	var report Report
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return report, fmt.Errorf("failed to read row %d: %w", report.Total+1, err)
		}
		if len(row) == 0 {
			continue
		}

		report.Total++
		status := RowStatus{Row: report.Total}

		name := valueAt(header, row, columnName)
		yearRaw := valueAt(header, row, columnYear)
		status.Name = name

		year, convErr := strconv.Atoi(yearRaw)
		if convErr == nil {
			status.Year = year
		}

		switch {
		case name == "":
			status.Err = &domain.ValidationError{Field: "name"}
		case yearRaw == "" || convErr != nil || year == 0:
			status.Err = &domain.ValidationError{Field: "year"}
		default:
			movie := domain.Movie{Name: name, Year: year, PosterURL: valueAt(header, row, columnPoster)}
			_, status.Err = store.Insert(ctx, movie.Fields())
		}

		if status.Err != nil {
			report.Failed++
			logger.Warn("row skipped", "row", report.Total, "name", name, "error", status.Err)
		} else {
			report.Imported++
		}

		if onRow != nil {
			onRow(status)
		}
	}

	logger.Info("import finished", "total", report.Total, "imported", report.Imported, "failed", report.Failed)
	return report, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

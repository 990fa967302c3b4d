package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mtorres1190/MATT-Report/internal/table"
	"github.com/mtorres1190/MATT-Report/pkg/contracts/domain"
)

// LoadCSV reads a CSV stream into a table. The first record is the header
// row; header cells are whitespace-trimmed because portal exports pad
// them. Data rows may be ragged; short rows pad with nulls.
func LoadCSV(r io.Reader) (*table.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	// Strip a UTF-8 BOM left by Excel re-saves.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t, err := table.New(header)
	if err != nil {
		return nil, fmt.Errorf("bad header row: %w", err)
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		if len(record) > len(header) {
			record = record[:len(header)]
		}
		if err := t.AppendRow(record); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return t, nil
}

// LoadExcel reads the first worksheet of an Excel stream into a table,
// using the same header conventions as LoadCSV.
func LoadExcel(r io.Reader) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	header := rows[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	t, err := table.New(header)
	if err != nil {
		return nil, fmt.Errorf("bad header row: %w", err)
	}
	for i, row := range rows[1:] {
		if len(row) > len(header) {
			row = row[:len(header)]
		}
		if err := t.AppendRow(row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	return t, nil
}

// LoadFile loads a tabular file, dispatching on extension. CSV and xlsx
// are the formats the portal exports.
func LoadFile(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(f)
	case ".xlsx", ".xlsm":
		return LoadExcel(f)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

// LoadUpload loads an uploaded extract from a stream, dispatching on
// the uploaded filename's extension.
func LoadUpload(r io.Reader, filename string) (*table.Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return LoadCSV(r)
	case ".xlsx", ".xlsm":
		return LoadExcel(r)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(filename))
	}
}

// ValidateUpload checks that an uploaded extract carries the full MATT
// header set. This is stricter than what the transform itself needs; it
// catches files that are not MATT reports at all before any work is done.
func ValidateUpload(t *table.Table) error {
	if missing := t.MissingColumns(domain.RequiredUploadColumns); len(missing) > 0 {
		return fmt.Errorf("not a valid MATT report, missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

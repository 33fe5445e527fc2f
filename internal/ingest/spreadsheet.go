// Package ingest reads uploaded spreadsheets into ordered row records.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ahylith/formagent/internal/domain/model"
)

// Column sets accepted at upload time. A file must carry one of them in full;
// beyond that, field names are free-form and validated only against the
// mapping at fill time.
var (
	applicantColumns     = []string{"ApplicantFirstName", "ApplicantLastName", "DOB"}
	tenantReceiptColumns = []string{"TenantName", "Amount", "ReceiptDate"}
)

// ErrUnsupportedFormat is returned for files that are neither .xlsx nor .csv.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format (expected .xlsx or .csv)")

// Read parses the named spreadsheet (format chosen by extension) into ordered
// rows, first row as header.
func Read(r io.Reader, filename string) ([]model.Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return readCSV(r)
	case ".xlsx", ".xlsm":
		return readXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// Validate checks the required-column contract: either the applicant set or
// the tenant receipt set must be fully present.
func Validate(rows []model.Row) error {
	if len(rows) == 0 {
		return errors.New("spreadsheet contains no data rows")
	}
	if hasColumns(rows[0], applicantColumns) || hasColumns(rows[0], tenantReceiptColumns) {
		return nil
	}
	return fmt.Errorf(
		"file must contain either applicant columns %v or tenant receipt columns %v",
		applicantColumns, tenantReceiptColumns)
}

func hasColumns(row model.Row, cols []string) bool {
	for _, c := range cols {
		if _, ok := row.Values[c]; !ok {
			return false
		}
	}
	return true
}

func readCSV(r io.Reader) ([]model.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return tabulate(records)
}

func readXLSX(r io.Reader) ([]model.Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("xlsx has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return tabulate(records)
}

// tabulate turns a header row plus data rows into Row records. Cells beyond
// the header width are ignored; missing trailing cells are treated as absent
// values rather than empty strings.
func tabulate(records [][]string) ([]model.Row, error) {
	if len(records) == 0 {
		return nil, errors.New("spreadsheet is empty")
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}

	rows := make([]model.Row, 0, len(records)-1)
	for i, record := range records[1:] {
		values := make(map[string]string, len(header))
		for col, name := range header {
			if name == "" || col >= len(record) {
				continue
			}
			values[name] = strings.TrimSpace(record[col])
		}
		rows = append(rows, model.Row{Index: i, Values: values})
	}
	return rows, nil
}

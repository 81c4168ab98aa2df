// parsers/picklist_parser.go
package parsers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"picklist/mappers"
	"picklist/model"
)

// ErrUnsupportedFormat is returned for files that are neither .csv nor .xlsx.
var ErrUnsupportedFormat = errors.New("unsupported file format: upload a .xlsx or .csv file")

// requiredHeaders are the columns a picklist file must carry.
var requiredHeaders = [][]string{{"VFID", "VF_ID", "VF ID"}}

// IsSupported reports whether the file name has an importable extension.
func IsSupported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// ParsePicklistFile picks the reader from the file extension.
func ParsePicklistFile(filename string, r io.Reader) ([]model.InventoryItem, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return ParsePicklistCSV(r)
	case ".xlsx":
		return ParsePicklistXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// ParsePicklistCSV reads a picklist exported as CSV.
func ParsePicklistCSV(r io.Reader) ([]model.InventoryItem, error) {
	text, err := DecodeText(r)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(bytes.NewReader(text))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("CSV file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var rows [][]string
	line := 1
	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			zap.L().Warn("skipping unreadable CSV line", zap.Int("line", line), zap.Error(err))
			rows = append(rows, nil)
			continue
		}
		rows = append(rows, rec)
	}
	return rowsToItems(header, rows, "CSV")
}

// ParsePicklistXLSX reads the first sheet of a workbook.
func ParsePicklistXLSX(r io.Reader) ([]model.InventoryItem, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}
	return rowsToItems(all[0], all[1:], "XLSX")
}

// rowsToItems maps data rows by header name. rows[i] is file line i+2; nil rows
// were unreadable and have already been reported.
func rowsToItems(header []string, rows [][]string, kind string) ([]model.InventoryItem, error) {
	colIndex, err := getColIndex(header, requiredHeaders)
	if err != nil {
		return nil, err
	}

	var items []model.InventoryItem
	for i, rec := range rows {
		line := i + 2
		if rec == nil || isBlank(rec) {
			continue
		}

		raw := make(map[string]any, len(colIndex))
		for name, idx := range colIndex {
			if idx < len(rec) {
				raw[name] = strings.TrimSpace(rec[idx])
			}
		}

		item := mappers.ToInventoryItem(raw)
		if item.VFID == "" {
			zap.L().Warn("skipping row without VFID", zap.String("format", kind), zap.Int("line", line))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
